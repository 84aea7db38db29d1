package server

import (
	"net/http"
	"sort"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/stats"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleVolumeChart renders total volume per workout over time as a
// standalone HTML page.
func (s *Server) handleVolumeChart(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.GetCompletedWorkouts(r.Context(), defaultUserID, 0)
	if err != nil {
		http.Error(w, "failed to load workout history", http.StatusInternalServerError)
		return
	}

	// History comes back newest-first; charts read left to right.
	dates := make([]string, 0, len(history))
	volumes := make([]opts.LineData, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		dates = append(dates, history[i].Date)
		volumes = append(volumes, opts.LineData{Value: history[i].TotalVolume})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Workout Volume",
			Subtitle: "Total volume (kg) per completed workout",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kg"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(dates)
	line.AddSeries("Volume", volumes)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		s.log.Error("rendering volume chart", "error", err)
	}
}

// handleMuscleChart renders the set-weighted muscle group distribution as a
// bar chart.
func (s *Server) handleMuscleChart(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.GetCompletedWorkouts(r.Context(), defaultUserID, 0)
	if err != nil {
		http.Error(w, "failed to load workout history", http.StatusInternalServerError)
		return
	}

	agg := stats.Compute(history, s.now())

	groups := make([]string, 0, len(agg.MuscleGroupStats))
	for g := range agg.MuscleGroupStats {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if agg.MuscleGroupStats[groups[i]] != agg.MuscleGroupStats[groups[j]] {
			return agg.MuscleGroupStats[groups[i]] > agg.MuscleGroupStats[groups[j]]
		}
		return groups[i] < groups[j]
	})

	values := make([]opts.BarData, 0, len(groups))
	for _, g := range groups {
		values = append(values, opts.BarData{Value: agg.MuscleGroupStats[g]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Muscle Group Focus",
			Subtitle: "Sets performed per muscle group",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "sets"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(groups)
	bar.AddSeries("Sets", values)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		s.log.Error("rendering muscle chart", "error", err)
	}
}
