// Package regression implements the ordinary-least-squares fit used to
// turn matched correlation points into a linear time-correction model.
package regression

import "math"

// Model is an OLS fit y = Intercept + Slope*x over integer-millisecond
// (x, y) pairs, plus the diagnostics the synchronizer and rift detector
// need to accept or reject it.
type Model struct {
	Intercept  float64
	Slope      float64
	Stdev      float64
	R          float64
	N          int
	XLeft      float64
	XRight     float64
	SquaresSum float64
}

// Fit computes the closed-form OLS solution over x and y. x and y must be
// the same length; Fit panics if they are not (a programmer error, never
// a data error — callers always build both slices from the same matched
// points).
func Fit(x, y []float64) Model {
	if len(x) != len(y) {
		panic("regression.Fit: x and y must have equal length")
	}
	n := len(x)
	if n == 0 {
		return Model{}
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	xbar := sumX / float64(n)
	ybar := sumY / float64(n)

	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := x[i] - xbar
		dy := y[i] - ybar
		sxy += dx * dy
		sxx += dx * dx
	}

	var slope float64
	if sxx != 0 {
		slope = sxy / sxx
	}
	intercept := ybar - slope*xbar

	var squaresSum float64
	for i := 0; i < n; i++ {
		residual := y[i] - (intercept + slope*x[i])
		squaresSum += residual * residual
	}
	stdev := math.Sqrt(squaresSum / float64(n))

	var sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}
	denom := math.Sqrt((float64(n)*sumXX - sumX*sumX) * (float64(n)*sumYY - sumY*sumY))
	var r float64
	if denom != 0 {
		r = (float64(n)*sumXY - sumX*sumY) / denom
	}

	return Model{
		Intercept:  intercept,
		Slope:      slope,
		Stdev:      stdev,
		R:          r,
		N:          n,
		XLeft:      x[0],
		XRight:     x[n-1],
		SquaresSum: squaresSum,
	}
}

// Residual returns y_i - predicted(x_i) for a fitted model.
func (m Model) Residual(x, y float64) float64 {
	return y - (m.Intercept + m.Slope*x)
}

// Predict returns the model's fitted y for a given x.
func (m Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}
