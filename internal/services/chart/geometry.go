package chart

import "math"

// axes maps data coordinates onto a plot rectangle in page millimetres.
// The y axis is flipped: larger data values sit higher on the page.
type axes struct {
	x0, y0, w, h           float64
	minX, maxX, minY, maxY float64
}

func (a axes) px(x float64) float64 {
	return a.x0 + (x-a.minX)/(a.maxX-a.minX)*a.w
}

func (a axes) py(y float64) float64 {
	return a.y0 + a.h - (y-a.minY)/(a.maxY-a.minY)*a.h
}

// xTicks picks round tick positions for the spread axis.
func xTicks(min, max float64) []float64 {
	span := max - min
	step := 100.0
	for span/step > 12 {
		step *= 2
	}
	start := math.Ceil(min/step) * step
	var ticks []float64
	for v := start; v <= max; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// leastSquares fits y = m*x + b by ordinary least squares.
func leastSquares(xs, ys []float64) (m, b float64) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var num, den float64
	for i := range xs {
		num += (xs[i] - meanX) * (ys[i] - meanY)
		den += (xs[i] - meanX) * (xs[i] - meanX)
	}
	if den == 0 {
		return 0, meanY
	}
	m = num / den
	return m, meanY - m*meanX
}
