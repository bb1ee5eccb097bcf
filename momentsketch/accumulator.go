// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

package momentsketch

import (
	"math"
)

// accumulator maintains the raw power sums of the inserted values and, while
// every inserted value is strictly positive, of their logarithms. Power sums
// of high degree cancel catastrophically when naively shifted, so the
// accumulator keeps them raw and leaves any change of basis to the solver.
type accumulator struct {
	k            int
	powerSums    []float64
	logPowerSums []float64
	logsEnabled  bool
	min          float64
	max          float64
	logMin       float64
	logMax       float64
}

func newAccumulator(k int, logMode bool) *accumulator {
	a := &accumulator{
		k:           k,
		powerSums:   make([]float64, k),
		logsEnabled: logMode,
		min:         math.Inf(1),
		max:         math.Inf(-1),
		logMin:      math.Inf(1),
		logMax:      math.Inf(-1),
	}
	if logMode {
		a.logPowerSums = make([]float64, k)
	}
	return a
}

func (a *accumulator) add(value, count float64) {
	term := count
	for j := 0; j < a.k; j++ {
		a.powerSums[j] += term
		term *= value
	}
	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}
	if !a.logsEnabled {
		return
	}
	if value <= 0 {
		// Log moments cannot represent non-positive values; they are
		// dropped for the rest of the accumulator's lifetime.
		a.logsEnabled = false
		return
	}
	logValue := math.Log(value)
	term = count
	for j := 0; j < a.k; j++ {
		a.logPowerSums[j] += term
		term *= logValue
	}
	if logValue < a.logMin {
		a.logMin = logValue
	}
	if logValue > a.logMax {
		a.logMax = logValue
	}
}

func (a *accumulator) mergeWith(o *accumulator) {
	for j := 0; j < a.k; j++ {
		a.powerSums[j] += o.powerSums[j]
	}
	a.logsEnabled = a.logsEnabled && o.logsEnabled
	if a.logsEnabled {
		for j := 0; j < a.k; j++ {
			a.logPowerSums[j] += o.logPowerSums[j]
		}
		if o.logMin < a.logMin {
			a.logMin = o.logMin
		}
		if o.logMax > a.logMax {
			a.logMax = o.logMax
		}
	}
	if o.min < a.min {
		a.min = o.min
	}
	if o.max > a.max {
		a.max = o.max
	}
}

func (a *accumulator) count() float64 {
	return a.powerSums[0]
}

func (a *accumulator) sum() float64 {
	return a.powerSums[1]
}

func (a *accumulator) copy() *accumulator {
	c := &accumulator{
		k:           a.k,
		powerSums:   append([]float64(nil), a.powerSums...),
		logsEnabled: a.logsEnabled,
		min:         a.min,
		max:         a.max,
		logMin:      a.logMin,
		logMax:      a.logMax,
	}
	if a.logPowerSums != nil {
		c.logPowerSums = append([]float64(nil), a.logPowerSums...)
	}
	return c
}
