package graph_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/revstats/pkg/graph"
)

// Test constants to avoid magic strings/numbers.
const (
	testID     = "g1"
	testWidth  = 100
	testHeight = 50
	testMargin = 10
)

func newTestRenderer() *graph.Renderer {
	return graph.New(testID, graph.Options{Width: testWidth, Height: testHeight, Margin: testMargin})
}

func TestMap_CornersOfBoundingBox(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	require.NoError(t, r.AddSeries("s"))
	require.NoError(t, r.AddPoints("s", []graph.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}))

	box, ok := r.Bounds()
	require.True(t, ok)

	px, py := r.Map(box, graph.Point{X: 0, Y: 0})
	assert.InDelta(t, testMargin, px, 1e-9)
	assert.InDelta(t, testHeight-testMargin, py, 1e-9)

	px, py = r.Map(box, graph.Point{X: 10, Y: 10})
	assert.InDelta(t, testWidth-testMargin, px, 1e-9)
	assert.InDelta(t, testMargin, py, 1e-9)
}

func TestBounds_UnionOfAllSeries(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	require.NoError(t, r.AddSeries("a"))
	require.NoError(t, r.AddSeries("b"))
	require.NoError(t, r.AddSeries("empty"))
	require.NoError(t, r.AddPoints("a", []graph.Point{{X: 1, Y: 5}, {X: 3, Y: 2}}))
	require.NoError(t, r.AddPoints("b", []graph.Point{{X: -2, Y: 7}}))

	box, ok := r.Bounds()
	require.True(t, ok)
	assert.Equal(t, graph.Box{MinX: -2, MinY: 2, MaxX: 3, MaxY: 7}, box)
}

func TestBounds_NoPoints(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	require.NoError(t, r.AddSeries("empty"))

	_, ok := r.Bounds()
	assert.False(t, ok)
}

func TestMap_DegenerateAxesUseMidpoint(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	require.NoError(t, r.AddSeries("s"))
	require.NoError(t, r.AddPoints("s", []graph.Point{{X: 4, Y: 1}, {X: 4, Y: 9}}))

	box, ok := r.Bounds()
	require.True(t, ok)

	for _, p := range []graph.Point{{X: 4, Y: 1}, {X: 4, Y: 9}} {
		px, _ := r.Map(box, p)
		assert.InDelta(t, testWidth/2, px, 1e-9)
	}

	flat := graph.Box{MinX: 0, MaxX: 10, MinY: 3, MaxY: 3}
	_, py := r.Map(flat, graph.Point{X: 5, Y: 3})
	assert.InDelta(t, testHeight/2, py, 1e-9)
}

func TestSeriesHue_EvenlySpaced(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, r.AddSeries(name))
	}

	want := map[string]float64{"a": 0, "b": 1.0 / 3, "c": 2.0 / 3}

	for name, hue := range want {
		got, err := r.SeriesHue(name)
		require.NoError(t, err)
		assert.InDelta(t, hue, got, 1e-9)
	}

	rerun := newTestRenderer()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, rerun.AddSeries(name))
	}

	for _, name := range []string{"a", "b", "c"} {
		first, err := r.SeriesColor(name)
		require.NoError(t, err)

		again, err := rerun.SeriesColor(name)
		require.NoError(t, err)
		assert.Equal(t, first, again, name)
	}
}

func TestSeriesColor_Unknown(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()

	_, err := r.SeriesColor("missing")
	require.ErrorIs(t, err, graph.ErrUnknownSeries)

	err = r.AddPoint("missing", graph.Point{})
	require.ErrorIs(t, err, graph.ErrUnknownSeries)
}

func TestAddSeries_Duplicate(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	require.NoError(t, r.AddSeries("a"))
	require.ErrorIs(t, r.AddSeries("a"), graph.ErrDuplicateSeries)
}

func TestHSVToRGB_Primaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, graph.Color{R: 255}, graph.HSVToRGB(0, 1, 1))
	assert.Equal(t, graph.Color{G: 255}, graph.HSVToRGB(1.0/3, 1, 1))
	assert.Equal(t, graph.Color{B: 255}, graph.HSVToRGB(2.0/3, 1, 1))
	assert.Equal(t, graph.Color{R: 128, G: 128, B: 128}, graph.HSVToRGB(0.5, 0, 0.5))
	assert.Equal(t, "#ff0000", graph.HSVToRGB(0, 1, 1).Hex())
}

func TestRender_SVGStructure(t *testing.T) {
	t.Parallel()

	r := graph.New(testID, graph.Options{
		Width: testWidth, Height: testHeight, Margin: testMargin,
		XTitle: "date", YTitle: "commits & more",
	})
	require.NoError(t, r.AddSeries("alice"))
	require.NoError(t, r.AddSeries("nobody"))
	require.NoError(t, r.AddPoints("alice", []graph.Point{{X: 10, Y: 10}, {X: 0, Y: 0}}))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, out, `id="g1-series-0" d="M 10 40 L 90 10"`)
	assert.Contains(t, out, `>alice</textPath>`)
	assert.NotContains(t, out, "nobody")
	assert.NotContains(t, out, "g1-series-1")
	assert.Contains(t, out, "rotate(-90)")
	assert.Contains(t, out, "commits &amp; more")
	assert.Equal(t, 2, strings.Count(out, "<polygon"))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestRender_EmptyRendererDrawsAxesOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newTestRenderer().Render(&buf))

	assert.Contains(t, buf.String(), "<line")
	assert.NotContains(t, buf.String(), "<path")
}

func TestRender_IDsArePerInstance(t *testing.T) {
	t.Parallel()

	a := graph.New("first", graph.Options{})
	b := graph.New("second", graph.Options{})

	for _, r := range []*graph.Renderer{a, b} {
		require.NoError(t, r.AddSeries("s"))
		require.NoError(t, r.AddPoint("s", graph.Point{X: 1, Y: 1}))
	}

	var bufA, bufB bytes.Buffer
	require.NoError(t, a.Render(&bufA))
	require.NoError(t, b.Render(&bufB))

	assert.Contains(t, bufA.String(), "first-series-0")
	assert.Contains(t, bufB.String(), "second-series-0")
	assert.Equal(t, float64(graph.DefaultWidth), a.Options().Width)
}

func TestTimeX_RoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, ts, graph.XTime(graph.TimeX(ts)))
}
