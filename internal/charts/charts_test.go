package charts

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *schema.ReportData {
	left := schema.LabeledRow{Pokemon: schema.Pokemon{Name: "Pikachu", Stats: schema.Stats{35, 55, 40, 50, 50, 90}}, Cluster: 2, Profile: "Fast"}
	right := schema.LabeledRow{Pokemon: schema.Pokemon{Name: "Onix", Stats: schema.Stats{35, 45, 160, 30, 45, 70}}, Cluster: 1, Profile: "Tank"}
	corr := make([][]float64, schema.NumStats)
	for i := range corr {
		corr[i] = make([]float64, schema.NumStats)
		corr[i][i] = 1
	}
	return &schema.ReportData{
		Title:       "Pikachu vs Onix",
		Comparison:  &schema.ComparisonResult{Left: left, Right: right, Stats: []schema.StatComparison{{Stat: schema.ColHP, Left: 35, Right: 35}}},
		Columns:     schema.StatColumns,
		Correlation: corr,
		Profiles:    []schema.ProfileShare{{Profile: "Tank", Count: 3}, {Profile: "Fast", Count: 2}},
		Projection: &schema.Projection{
			Points:            []schema.ProjectedPoint{{Name: "Pikachu", X: 1.234, Y: -0.5, Cluster: 2, Profile: "Fast"}, {Name: "Onix", X: -2, Y: 1.5, Cluster: 1, Profile: "Tank"}},
			ExplainedVariance: [2]float64{0.6, 0.25},
		},
		Labeled: true,
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Pikachu vs Onix")
	assert.Contains(t, html, "Stat correlation")
	assert.Contains(t, html, "PCA projection")
	assert.Contains(t, html, "Profiles")
	assert.Contains(t, html, "Tank")
}

func TestRenderSkipsMissingSections(t *testing.T) {
	var buf bytes.Buffer
	data := &schema.ReportData{Title: "Only correlation", Columns: schema.StatColumns, Correlation: sampleReport().Correlation}
	require.NoError(t, Render(&buf, data))

	html := buf.String()
	assert.Contains(t, html, "Stat correlation")
	assert.NotContains(t, html, "Stat shape")
	assert.NotContains(t, html, "PCA projection")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, -0.57, round2(-0.567))
	assert.Equal(t, 0.0, round2(0))
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, sampleReport()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Pikachu vs Onix")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeBadAddress(t *testing.T) {
	err := Serve(context.Background(), "not-an-address", sampleReport())
	assert.ErrorContains(t, err, "failed to listen")
}
