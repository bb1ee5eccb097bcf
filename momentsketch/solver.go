// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

package momentsketch

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultSolverTolerance  = 1e-9
	defaultSolverIterations = 200
	armijoSlope             = 1e-4
	maxBacktrackingSteps    = 40
)

var errSolverFailed = errors.New("the dual minimization did not converge")

// maxEntropySolver recovers the density of maximum entropy whose first
// Chebyshev moments on [-1, 1] match the provided ones. The density has the
// form f(y) = exp(sum_j lambda_j T_j(y)); the multipliers are found by
// minimizing the convex dual
//
//	G(lambda) = integral exp(sum_j lambda_j T_j(y)) dy - sum_j lambda_j c_j
//
// with damped Newton steps. The gradient of G is the moment mismatch and its
// Hessian is the Gram matrix of the basis functions weighted by the density,
// which is symmetric positive definite.
type maxEntropySolver struct {
	k          int
	nodes      []float64
	weights    []float64
	basis      [][]float64
	tolerance  float64
	iterations int
}

// newMaxEntropySolver prepares quadrature nodes and basis values for solving
// systems of up to k moments. The Gauss-Legendre order comfortably exceeds
// the minimum of 2k required to resolve the moment integrals.
func newMaxEntropySolver(k int) *maxEntropySolver {
	gridSize := 16 * k
	if gridSize < 128 {
		gridSize = 128
	}
	nodes := make([]float64, gridSize)
	weights := make([]float64, gridSize)
	quad.Legendre{}.FixedLocations(nodes, weights, -1, 1)

	basis := make([][]float64, k)
	basis[0] = make([]float64, gridSize)
	for i := range basis[0] {
		basis[0][i] = 1
	}
	if k > 1 {
		basis[1] = append([]float64(nil), nodes...)
	}
	for j := 2; j < k; j++ {
		basis[j] = make([]float64, gridSize)
		for i, y := range nodes {
			basis[j][i] = 2*y*basis[j-1][i] - basis[j-2][i]
		}
	}
	return &maxEntropySolver{
		k:          k,
		nodes:      nodes,
		weights:    weights,
		basis:      basis,
		tolerance:  defaultSolverTolerance,
		iterations: defaultSolverIterations,
	}
}

// density evaluates f(y; lambda) at every quadrature node.
func (s *maxEntropySolver) density(lambda, out []float64) {
	for i := range s.nodes {
		var exponent float64
		for j, l := range lambda {
			exponent += l * s.basis[j][i]
		}
		out[i] = math.Exp(exponent)
	}
}

// dual evaluates G(lambda) given the density at the quadrature nodes.
func (s *maxEntropySolver) dual(lambda, f, moments []float64) float64 {
	var g float64
	for i, w := range s.weights {
		g += w * f[i]
	}
	for j, l := range lambda {
		g -= l * moments[j]
	}
	return g
}

// solve returns the Lagrange multipliers matching the provided Chebyshev
// moments, whose number may be smaller than the solver's k. It fails with
// errSolverFailed when the Newton iteration cannot make progress, which the
// caller handles by dropping the highest moments and retrying.
func (s *maxEntropySolver) solve(moments []float64) ([]float64, error) {
	k := len(moments)
	lambda := make([]float64, k)
	candidate := make([]float64, k)
	f := make([]float64, len(s.nodes))
	grad := make([]float64, k)
	hessian := make([]float64, k*k)
	direction := mat.NewVecDense(k, nil)
	negGrad := mat.NewVecDense(k, nil)
	var cholesky mat.Cholesky

	s.density(lambda, f)
	g := s.dual(lambda, f, moments)

	for iteration := 0; iteration < s.iterations; iteration++ {
		// Gradient: moment mismatch at the current multipliers.
		maxMismatch := 0.0
		for j := 0; j < k; j++ {
			var m float64
			for i, w := range s.weights {
				m += w * s.basis[j][i] * f[i]
			}
			grad[j] = m - moments[j]
			if math.Abs(grad[j]) > maxMismatch {
				maxMismatch = math.Abs(grad[j])
			}
		}
		if maxMismatch < s.tolerance {
			return lambda, nil
		}

		// Hessian: density-weighted Gram matrix of the basis.
		for j := 0; j < k; j++ {
			for l := j; l < k; l++ {
				var h float64
				for i, w := range s.weights {
					h += w * s.basis[j][i] * s.basis[l][i] * f[i]
				}
				hessian[j*k+l] = h
				hessian[l*k+j] = h
			}
		}
		if !cholesky.Factorize(mat.NewSymDense(k, hessian)) {
			return nil, errSolverFailed
		}
		for j := 0; j < k; j++ {
			negGrad.SetVec(j, -grad[j])
		}
		if err := cholesky.SolveVecTo(direction, negGrad); err != nil {
			return nil, errSolverFailed
		}

		// Backtracking line search on the convex dual.
		var slope float64
		for j := 0; j < k; j++ {
			slope += grad[j] * direction.AtVec(j)
		}
		step := 1.0
		accepted := false
		for t := 0; t < maxBacktrackingSteps; t++ {
			for j := 0; j < k; j++ {
				candidate[j] = lambda[j] + step*direction.AtVec(j)
			}
			s.density(candidate, f)
			gCandidate := s.dual(candidate, f, moments)
			if !math.IsNaN(gCandidate) && !math.IsInf(gCandidate, 0) && gCandidate <= g+armijoSlope*step*slope {
				copy(lambda, candidate)
				g = gCandidate
				accepted = true
				break
			}
			step /= 2
		}
		if !accepted {
			return nil, errSolverFailed
		}
	}
	return nil, errSolverFailed
}
