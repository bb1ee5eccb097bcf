// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

package momentsketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The Chebyshev moments of the uniform distribution on [-1, 1]:
// E[T_0] = 1, E[T_1] = 0, E[T_2] = -1/3, E[T_3] = 0, E[T_4] = -1/15.
func uniformChebyshevMoments(k int) []float64 {
	moments := make([]float64, k)
	for n := 0; n < k; n++ {
		if n%2 == 1 {
			continue
		}
		// E[T_n] over the uniform distribution is -1/(n^2-1) for even n.
		moments[n] = -1 / (float64(n)*float64(n) - 1)
	}
	moments[0] = 1
	return moments
}

func TestSolveUniform(t *testing.T) {
	solver := newMaxEntropySolver(6)
	lambda, err := solver.solve(uniformChebyshevMoments(6))
	require.NoError(t, err)
	// The maximum-entropy density matching uniform moments is the uniform
	// density 1/2.
	for _, y := range []float64{-0.9, -0.5, 0, 0.3, 0.8} {
		f := math.Exp(chebyshevSum(lambda, y))
		assert.InDelta(t, 0.5, f, 1e-3, "y=%v", y)
	}
}

func TestSolveMatchesMoments(t *testing.T) {
	// Compute the moments of a known density, then check that the solver
	// recovers multipliers whose density reproduces those moments.
	solver := newMaxEntropySolver(5)
	reference := []float64{-0.7, 0.3, -0.5, 0.1, 0.05}
	f := make([]float64, len(solver.nodes))
	solver.density(reference, f)
	moments := make([]float64, len(reference))
	for j := range moments {
		for i, w := range solver.weights {
			moments[j] += w * solver.basis[j][i] * f[i]
		}
	}

	lambda, err := solver.solve(moments)
	require.NoError(t, err)
	solver.density(lambda, f)
	for j := range moments {
		var m float64
		for i, w := range solver.weights {
			m += w * solver.basis[j][i] * f[i]
		}
		assert.InDelta(t, moments[j], m, 1e-8, "moment %d", j)
	}
	// The dual is strictly convex, so the multipliers themselves match.
	for j := range reference {
		assert.InDelta(t, reference[j], lambda[j], 1e-6, "lambda %d", j)
	}
}

func TestChebyshevMomentsOfUniform(t *testing.T) {
	// Power sums of the uniform distribution on [0, 2]:
	// E[x^j] = 2^j/(j+1), with total weight 1.
	powerSums := []float64{1, 1, 4.0 / 3, 2, 16.0 / 5}
	moments := chebyshevMoments(powerSums, 0, 2)
	expected := uniformChebyshevMoments(5)
	for j := range expected {
		assert.InDelta(t, expected[j], moments[j], 1e-12, "moment %d", j)
	}
}

func TestChebyshevSum(t *testing.T) {
	lambda := []float64{0.5, -1, 2, 0.25}
	for _, y := range []float64{-1, -0.3, 0, 0.7, 1} {
		expected := 0.5 - y + 2*(2*y*y-1) + 0.25*(4*y*y*y-3*y)
		assert.InDelta(t, expected, chebyshevSum(lambda, y), 1e-12)
	}
}

func TestInvertCDFUniform(t *testing.T) {
	// With lambda matching the uniform density, the CDF is linear and its
	// inverse maps q to 2q-1.
	solver := newMaxEntropySolver(6)
	lambda, err := solver.solve(uniformChebyshevMoments(6))
	require.NoError(t, err)
	for _, q := range []float64{0.01, 0.25, 0.5, 0.75, 0.99} {
		y := invertCDF(lambda, q)
		assert.InDelta(t, 2*q-1, y, 1e-3, "q=%v", q)
	}
}

func TestSolverFailsOnInfeasibleMoments(t *testing.T) {
	// An infeasible moment vector (|E[T_1]| > 1 is impossible on [-1, 1])
	// makes the solve fail rather than loop forever.
	solver := newMaxEntropySolver(4)
	_, err := solver.solve([]float64{1, 1.5, 0, 0})
	assert.Error(t, err)
}
