// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

package momentsketch

// chebyshevMoments converts raw power sums over [a, b] into the expected
// values of the Chebyshev polynomials of the scaled variable
// y = (2x-(a+b))/(b-a), which lives on [-1, 1]. Working in this basis keeps
// the moment-matching system of the solver well conditioned.
func chebyshevMoments(powerSums []float64, a, b float64) []float64 {
	k := len(powerSums)
	total := powerSums[0]

	// Normalized moments of x.
	moments := make([]float64, k)
	for j := 0; j < k; j++ {
		moments[j] = powerSums[j] / total
	}

	// Moments of y = c1*x + c0, by binomial expansion:
	// E[y^n] = sum_i binom(n, i) * c1^i * c0^(n-i) * E[x^i].
	c1 := 2 / (b - a)
	c0 := -(a + b) / (b - a)
	c1Powers := make([]float64, k)
	c0Powers := make([]float64, k)
	c1Powers[0], c0Powers[0] = 1, 1
	for j := 1; j < k; j++ {
		c1Powers[j] = c1Powers[j-1] * c1
		c0Powers[j] = c0Powers[j-1] * c0
	}
	scaled := make([]float64, k)
	for n := 0; n < k; n++ {
		binomial := 1.0
		var s float64
		for i := 0; i <= n; i++ {
			s += binomial * c1Powers[i] * c0Powers[n-i] * moments[i]
			binomial = binomial * float64(n-i) / float64(i+1)
		}
		scaled[n] = s
	}

	// Chebyshev moments from monomial moments, using the coefficient
	// recurrence T_n = 2y*T_(n-1) - T_(n-2).
	coefficients := make([][]float64, k)
	coefficients[0] = []float64{1}
	if k > 1 {
		coefficients[1] = []float64{0, 1}
	}
	for n := 2; n < k; n++ {
		row := make([]float64, n+1)
		for i, c := range coefficients[n-1] {
			row[i+1] += 2 * c
		}
		for i, c := range coefficients[n-2] {
			row[i] -= c
		}
		coefficients[n] = row
	}
	chebyshev := make([]float64, k)
	for n := 0; n < k; n++ {
		var s float64
		for i, c := range coefficients[n] {
			s += c * scaled[i]
		}
		chebyshev[n] = s
	}
	return chebyshev
}

// chebyshevSum evaluates sum_j lambda_j * T_j(y) with the Clenshaw
// recurrence.
func chebyshevSum(lambda []float64, y float64) float64 {
	var b1, b2 float64
	for j := len(lambda) - 1; j >= 1; j-- {
		b1, b2 = 2*y*b1-b2+lambda[j], b1
	}
	return y*b1 - b2 + lambda[0]
}
