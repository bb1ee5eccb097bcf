// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

package momentsketch

import (
	"math"
	"sort"
)

const (
	invertGridSize  = 2048
	invertTolerance = 1e-6
)

// invertCDF returns y in [-1, 1] such that the cumulative distribution of
// the density f(y) = exp(sum_j lambda_j T_j(y)) reaches the fraction q of
// its total mass. The cumulative distribution is integrated on a uniform
// grid, then the bracketing grid cell is refined with Newton steps
// safeguarded by bisection.
func invertCDF(lambda []float64, q float64) float64 {
	density := func(y float64) float64 {
		return math.Exp(chebyshevSum(lambda, y))
	}

	h := 2.0 / invertGridSize
	cumulative := make([]float64, invertGridSize+1)
	fPrevious := density(-1)
	for i := 1; i <= invertGridSize; i++ {
		f := density(-1 + h*float64(i))
		cumulative[i] = cumulative[i-1] + (fPrevious+f)*h/2
		fPrevious = f
	}
	total := cumulative[invertGridSize]
	if !(total > 0) || math.IsInf(total, 0) {
		return math.NaN()
	}
	target := q * total

	i := sort.SearchFloat64s(cumulative, target)
	if i <= 0 {
		return -1
	}
	if i > invertGridSize {
		return 1
	}
	lo := -1 + h*float64(i-1)
	hi := lo + h
	cellStart := lo
	cellCumulative := cumulative[i-1]
	fStart := density(cellStart)

	y := (lo + hi) / 2
	for iteration := 0; iteration < 100; iteration++ {
		f := density(y)
		cdf := cellCumulative + (y-cellStart)*(fStart+f)/2
		diff := cdf - target
		if math.Abs(diff) <= invertTolerance*total {
			break
		}
		if diff > 0 {
			hi = y
		} else {
			lo = y
		}
		next := y
		if f > 0 {
			next = y - diff/f
		}
		if next > lo && next < hi {
			y = next
		} else {
			y = (lo + hi) / 2
		}
		if hi-lo < 1e-14 {
			break
		}
	}
	return y
}
