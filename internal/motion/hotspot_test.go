package motion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addN adds n samples of value v at (x, y).
func addN(a *Aggregator, x, y, n int, v float32) {
	for i := 0; i < n; i++ {
		a.Add(x, y, v)
	}
}

func TestAggregator_Gates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		count int
		value float32
		want  int
	}{
		{"one short of min size", 4, 100, 0},
		{"peak equal to threshold", 5, 50, 0},
		{"peak just above threshold", 5, 50.5, 1},
		{"many samples", 40, 120, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator(DefaultAggregatorParams())
			a.Begin(120, 60)
			addN(a, 10, 10, tt.count, tt.value)
			a.Finish()
			assert.Len(t, a.Hotspots(), tt.want)
		})
	}
}

func TestAggregator_HotspotFields(t *testing.T) {
	t.Parallel()
	a := NewAggregator(DefaultAggregatorParams())
	a.Begin(200, 130) // 4 x 3 cells, the last row and column partial

	addN(a, 190, 125, 3, 60)
	addN(a, 190, 125, 3, 90)
	a.Finish()

	want := []Hotspot{{X: 210, Y: 150, Intensity: 75, Size: 6, MaxMotion: 90}}
	if diff := cmp.Diff(want, a.Hotspots()); diff != "" {
		t.Errorf("Hotspots() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregator_SortAndCap(t *testing.T) {
	t.Parallel()
	p := DefaultAggregatorParams()
	p.MaxActiveHotspots = 2
	a := NewAggregator(p)
	a.Begin(240, 60)

	addN(a, 10, 10, 5, 60)  // cell 0
	addN(a, 70, 10, 5, 80)  // cell 1
	addN(a, 130, 10, 5, 70) // cell 2
	addN(a, 190, 10, 5, 80) // cell 3 ties cell 1
	a.Finish()

	all := a.Hotspots()
	require.Len(t, all, 4)
	var xs []float64
	for _, h := range all {
		xs = append(xs, h.X)
	}
	// Ties keep row-major order
	assert.Equal(t, []float64{90, 210, 150, 30}, xs)

	active := a.Active()
	require.Len(t, active, 2)
	assert.Equal(t, all[:2], active)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Intensity, all[i].Intensity)
	}
}

func TestAggregator_ArenaReuse(t *testing.T) {
	t.Parallel()
	a := NewAggregator(DefaultAggregatorParams())

	a.Begin(120, 120)
	addN(a, 5, 5, 10, 100)
	a.Finish()
	require.Len(t, a.Hotspots(), 1)
	prev := a.Hotspots()

	// Same size: cleared in place, old list untouched
	a.Begin(120, 120)
	a.Finish()
	assert.Equal(t, 1, a.Allocations())
	assert.Empty(t, a.Hotspots())
	assert.Len(t, prev, 1)

	a.Begin(180, 120)
	assert.Equal(t, 2, a.Allocations())
}

func TestAggregator_OutOfRangeIgnored(t *testing.T) {
	t.Parallel()
	a := NewAggregator(DefaultAggregatorParams())
	a.Begin(120, 60)
	addN(a, -1, 10, 10, 100)
	addN(a, 120, 10, 10, 100)
	addN(a, 10, 60, 10, 100)
	a.Finish()
	assert.Empty(t, a.Hotspots())
}

func TestAggregator_CountSaturates(t *testing.T) {
	t.Parallel()
	a := NewAggregator(DefaultAggregatorParams())
	a.Begin(60, 60)
	addN(a, 1, 1, 70000, 1)
	g := a.Grid()
	assert.Equal(t, 65535, g.Count[0])
}

func TestAggregator_ClearAndGrid(t *testing.T) {
	t.Parallel()
	a := NewAggregator(DefaultAggregatorParams())
	a.Begin(120, 60)
	addN(a, 70, 5, 5, 100)
	a.Finish()

	g := a.Grid()
	assert.Equal(t, 2, g.Cols)
	assert.Equal(t, 1, g.Rows)
	assert.Equal(t, []float64{0, 100}, g.Mean)

	a.Clear()
	assert.Empty(t, a.Hotspots())
	assert.Empty(t, a.Active())
}
