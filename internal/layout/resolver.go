// -----------------------------------------------------------------------
// Label Placement Resolver - greedy collision avoidance for chart labels
// -----------------------------------------------------------------------

package layout

import (
	"math"
	"sort"
)

// Point is a labelled data point in chart coordinates.
type Point struct {
	X  float64
	Y  float64
	ID string
}

// Placed is the resolved draw position for one Point.
type Placed struct {
	X float64
	Y float64
}

// Config controls the placement search.
type Config struct {
	// OffsetX shifts every label right of its data point.
	OffsetX float64

	// MinVerticalGap is the smallest vertical distance two labels in
	// the same column may have.
	MinVerticalGap float64

	// HorizontalWindow is the horizontal distance within which two
	// labels are considered to share a column.
	HorizontalWindow float64

	// MinY and MaxY bound candidate positions in strict mode.
	// Candidates outside the range are discarded.
	MinY float64
	MaxY float64

	// Strict enables the denser-layout variant: points sort by (x, y),
	// displacement also tries ±1.5 gaps, and the candidate with the
	// fewest residual conflicts wins.
	Strict bool
}

// Resolve assigns a draw position to every point. The result is
// one-to-one with the input and in input order.
//
// Placement itself is greedy and runs in x order (strict: x then y), so
// the outcome depends on that order; with a fixed input the result is
// deterministic. Collisions are reduced, not eliminated: when no bounded
// candidate is free the least-bad position is used. O(n²) over the
// placed set, which is fine at the expected scale of under a hundred
// labels.
func Resolve(points []Point, cfg Config) []Placed {
	out := make([]Placed, len(points))
	if len(points) == 0 {
		return out
	}

	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := points[order[a]], points[order[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		if cfg.Strict {
			return pa.Y < pb.Y
		}
		return false
	})

	placed := make([]Placed, 0, len(points))
	for _, idx := range order {
		p := points[idx]
		pos := Placed{X: p.X + cfg.OffsetX, Y: p.Y}

		if cfg.Strict {
			pos.Y = resolveStrict(pos, placed, cfg)
		} else {
			pos.Y = resolveSimple(pos, placed, cfg)
		}

		placed = append(placed, pos)
		out[idx] = pos
	}
	return out
}

// resolveSimple nudges the label one gap away from each conflicting
// earlier label, re-checking against the remaining ones as it goes.
func resolveSimple(pos Placed, placed []Placed, cfg Config) float64 {
	y := pos.Y
	for _, u := range placed {
		if math.Abs(pos.X-u.X) >= cfg.HorizontalWindow {
			continue
		}
		if math.Abs(y-u.Y) >= cfg.MinVerticalGap {
			continue
		}
		if y >= u.Y {
			y = u.Y + cfg.MinVerticalGap
		} else {
			y = u.Y - cfg.MinVerticalGap
		}
	}
	return y
}

// resolveStrict stops at the first conflicting label and picks, among
// the bounded displacement candidates, the one with the fewest
// conflicts against everything already placed. The original position is
// the fallback when every candidate is out of range.
func resolveStrict(pos Placed, placed []Placed, cfg Config) float64 {
	for _, u := range placed {
		if math.Abs(pos.X-u.X) >= cfg.HorizontalWindow {
			continue
		}
		if math.Abs(pos.Y-u.Y) >= cfg.MinVerticalGap {
			continue
		}

		candidates := []float64{
			u.Y + cfg.MinVerticalGap,
			u.Y - cfg.MinVerticalGap,
			u.Y + cfg.MinVerticalGap*1.5,
			u.Y - cfg.MinVerticalGap*1.5,
		}

		bestY := pos.Y
		bestConflicts := math.MaxInt32
		for _, c := range candidates {
			if c < cfg.MinY || c > cfg.MaxY {
				continue
			}
			conflicts := countConflicts(pos.X, c, placed, cfg)
			if conflicts < bestConflicts {
				bestConflicts = conflicts
				bestY = c
			}
		}
		return bestY
	}
	return pos.Y
}

func countConflicts(x, y float64, placed []Placed, cfg Config) int {
	n := 0
	for _, u := range placed {
		if math.Abs(x-u.X) < cfg.HorizontalWindow && math.Abs(y-u.Y) < cfg.MinVerticalGap {
			n++
		}
	}
	return n
}
