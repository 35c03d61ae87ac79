package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() Config {
	return Config{
		OffsetX:          8,
		MinVerticalGap:   0.8,
		HorizontalWindow: 50,
		MinY:             0,
		MaxY:             23.5,
	}
}

func strictConfig() Config {
	return Config{
		OffsetX:          8,
		MinVerticalGap:   0.6,
		HorizontalWindow: 40,
		MinY:             13.8,
		MaxY:             22.5,
		Strict:           true,
	}
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(nil, defaultConfig()))
}

func TestResolve_SinglePoint(t *testing.T) {
	got := Resolve([]Point{{X: 100, Y: 15, ID: "de"}}, defaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, 108.0, got[0].X)
	assert.Equal(t, 15.0, got[0].Y)
}

func TestResolve_IdenticalPointsSeparated(t *testing.T) {
	cfg := defaultConfig()
	points := []Point{
		{X: 100, Y: 20, ID: "de"},
		{X: 100, Y: 20, ID: "nl"},
	}
	got := Resolve(points, cfg)
	require.Len(t, got, 2)
	gap := math.Abs(got[0].Y - got[1].Y)
	assert.GreaterOrEqual(t, gap, cfg.MinVerticalGap)
}

func TestResolve_StrictIdenticalPointsSeparated(t *testing.T) {
	cfg := strictConfig()
	points := []Point{
		{X: 0, Y: 20, ID: "de"},
		{X: 0, Y: 20, ID: "nl"},
	}
	got := Resolve(points, cfg)
	require.Len(t, got, 2)
	gap := math.Abs(got[0].Y - got[1].Y)
	assert.GreaterOrEqual(t, gap, cfg.MinVerticalGap)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Y, cfg.MinY)
		assert.LessOrEqual(t, p.Y, cfg.MaxY)
	}
}

func TestResolve_FarApartUntouched(t *testing.T) {
	cfg := defaultConfig()
	points := []Point{
		{X: -200, Y: 21, ID: "ch"},
		{X: 300, Y: 10, ID: "tr"},
	}
	got := Resolve(points, cfg)
	require.Len(t, got, 2)
	assert.Equal(t, points[0].Y, got[0].Y)
	assert.Equal(t, points[1].Y, got[1].Y)
}

func TestResolve_PreservesInputOrder(t *testing.T) {
	// Input deliberately unsorted by x; outputs must stay aligned with
	// their inputs, not with placement order.
	points := []Point{
		{X: 300, Y: 10, ID: "right"},
		{X: -200, Y: 21, ID: "left"},
		{X: 50, Y: 15, ID: "mid"},
	}
	got := Resolve(points, defaultConfig())
	require.Len(t, got, len(points))
	assert.Equal(t, 308.0, got[0].X)
	assert.Equal(t, -192.0, got[1].X)
	assert.Equal(t, 58.0, got[2].X)
}

func TestResolve_Deterministic(t *testing.T) {
	points := []Point{
		{X: 10, Y: 20, ID: "a"},
		{X: 12, Y: 20.2, ID: "b"},
		{X: 14, Y: 19.9, ID: "c"},
		{X: 11, Y: 20.1, ID: "d"},
	}
	first := Resolve(points, defaultConfig())
	second := Resolve(points, defaultConfig())
	assert.Equal(t, first, second)
}

func TestResolve_StrictBounded(t *testing.T) {
	cfg := strictConfig()
	// Cluster near the top of the valid range: displacement upward
	// would leave the range, so candidates above MaxY are discarded.
	points := []Point{
		{X: 0, Y: 22.4, ID: "a"},
		{X: 0, Y: 22.4, ID: "b"},
		{X: 0, Y: 22.4, ID: "c"},
	}
	got := Resolve(points, cfg)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Y, cfg.MinY)
		assert.LessOrEqual(t, p.Y, cfg.MaxY)
	}
}

func TestResolve_DenseClusterReducesCollisions(t *testing.T) {
	cfg := strictConfig()
	points := []Point{
		{X: 0, Y: 18, ID: "a"},
		{X: 1, Y: 18, ID: "b"},
		{X: 2, Y: 18, ID: "c"},
		{X: 3, Y: 18, ID: "d"},
	}
	got := Resolve(points, cfg)
	require.Len(t, got, 4)

	conflicts := 0
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if math.Abs(got[i].X-got[j].X) < cfg.HorizontalWindow &&
				math.Abs(got[i].Y-got[j].Y) < cfg.MinVerticalGap {
				conflicts++
			}
		}
	}
	// Greedy placement cannot promise zero residual overlap, but a
	// four-point pile-up must end up better than untouched (6 pairs).
	assert.Less(t, conflicts, 6)
}
