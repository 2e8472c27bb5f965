// Package charts renders the HTML stats report with go-echarts and serves it
// over HTTP for interactive viewing.
package charts

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/pokestats/schema"
)

// statMax is the radar axis maximum, the highest base stat in the games.
const statMax = 255

// shutdownTimeout bounds how long Serve waits for open requests.
const shutdownTimeout = 5 * time.Second

// Render writes the report as a single HTML page.
func Render(w io.Writer, data *schema.ReportData) error {
	page := components.NewPage()
	page.PageTitle = data.Title
	page.SetLayout(components.PageFlexLayout)

	if c := data.Comparison; c != nil {
		page.AddCharts(comparisonBar(c), comparisonRadar(c))
	}
	if len(data.Correlation) > 0 {
		page.AddCharts(correlationHeatMap(data.Columns, data.Correlation))
	}
	if len(data.Profiles) > 0 {
		page.AddCharts(profilePie(data.Profiles))
	}
	if data.Projection != nil && len(data.Projection.Points) > 0 {
		page.AddCharts(projectionScatter(data.Projection))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func comparisonBar(c *schema.ComparisonResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Base stats", Subtitle: fmt.Sprintf("%s vs %s", c.Left.Name, c.Right.Name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: pointer(true)}),
		charts.WithLegendOpts(opts.Legend{Show: pointer(true), Top: "bottom"}),
	)
	left := make([]opts.BarData, len(c.Stats))
	right := make([]opts.BarData, len(c.Stats))
	for i, s := range c.Stats {
		left[i] = opts.BarData{Value: s.Left}
		right[i] = opts.BarData{Value: s.Right}
	}
	bar.SetXAxis(schema.StatColumns).
		AddSeries(c.Left.Name, left).
		AddSeries(c.Right.Name, right)
	return bar
}

func comparisonRadar(c *schema.ComparisonResult) *charts.Radar {
	indicators := make([]*opts.Indicator, len(schema.StatColumns))
	for i, col := range schema.StatColumns {
		indicators[i] = &opts.Indicator{Name: col, Max: statMax}
	}
	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Stat shape"}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators, Shape: "polygon"}),
		charts.WithLegendOpts(opts.Legend{Show: pointer(true), Top: "bottom"}),
	)
	for _, row := range []schema.LabeledRow{c.Left, c.Right} {
		values := make([]float32, len(row.Stats))
		for i, v := range row.Stats {
			values[i] = float32(v)
		}
		radar.AddSeries(row.Name, []opts.RadarData{{Name: row.Name, Value: values}})
	}
	return radar
}

func correlationHeatMap(columns []string, corr [][]float64) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Stat correlation"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: pointer(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: columns}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: columns}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: pointer(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#f7f7f7", "#a50026"}},
		}),
	)
	var cells []opts.HeatMapData
	for i := range corr {
		for j := range corr[i] {
			cells = append(cells, opts.HeatMapData{Value: [3]any{i, j, round2(corr[i][j])}})
		}
	}
	hm.SetXAxis(columns).AddSeries("correlation", cells)
	return hm
}

func profilePie(shares []schema.ProfileShare) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Profiles"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: pointer(true)}),
	)
	items := make([]opts.PieData, len(shares))
	for i, s := range shares {
		items[i] = opts.PieData{Name: s.Profile, Value: s.Count}
	}
	pie.AddSeries("profiles", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: pointer(true), Formatter: "{b}: {c}"}))
	return pie
}

func projectionScatter(proj *schema.Projection) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "PCA projection",
			Subtitle: fmt.Sprintf("PC1 %.0f%%, PC2 %.0f%% of variance", proj.ExplainedVariance[0]*100, proj.ExplainedVariance[1]*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: pointer(true), Formatter: "{a}: {b}"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "PC1"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "PC2"}),
		charts.WithLegendOpts(opts.Legend{Show: pointer(true), Top: "bottom"}),
	)

	groups := make(map[string][]opts.ScatterData)
	for _, p := range proj.Points {
		name := p.Profile
		if name == "" {
			name = "unlabeled"
		}
		groups[name] = append(groups[name], opts.ScatterData{Name: p.Name, Value: []any{round2(p.X), round2(p.Y)}})
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.SortFunc(names, cmp.Compare[string])
	for _, name := range names {
		scatter.AddSeries(name, groups[name]).
			SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: pointer(false), Position: "top"}))
	}
	return scatter
}

// Serve renders the report on every request to addr until ctx is done.
func Serve(ctx context.Context, addr string, data *schema.ReportData) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	fmt.Fprintf(os.Stderr, "📈 Serving report on http://%s (Ctrl+C to stop)\n", ln.Addr())
	return serve(ctx, ln, data)
}

func serve(ctx context.Context, ln net.Listener, data *schema.ReportData) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := Render(w, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pointer(b bool) *bool {
	return &b
}
