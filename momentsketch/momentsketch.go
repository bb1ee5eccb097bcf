// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

// Package momentsketch provides a mergeable quantile sketch that summarizes
// a stream by its first k power sums and recovers quantiles at query time by
// solving a maximum-entropy problem over those moment constraints. It uses
// O(k) memory independently of the stream length, and merging two sketches
// is a component-wise sum of their moment vectors.
package momentsketch

import (
	"errors"
	"math"

	enc "github.com/LogFlow-AI/GPUQuantile/ddsketch/encoding"
)

const (
	minNumMoments = 4
	maxNumMoments = 40

	// fallbackNumMoments is the smallest number of moments the quantile
	// query falls back to when the solver fails on the full moment vector.
	fallbackNumMoments = 4
)

var (
	// ErrEmptySketch is returned when querying a quantile of a sketch that
	// does not contain any value.
	ErrEmptySketch = errors.New("no such element exists")
	// ErrOutOfRange is returned when inserting a non-finite value, a
	// negative count, or querying a quantile outside [0, 1].
	ErrOutOfRange = errors.New("input value is outside the range that is tracked by the sketch")
	// ErrIncompatibleSketch is returned when merging sketches that do not
	// maintain the same number of moments.
	ErrIncompatibleSketch = errors.New("cannot merge sketches with different numbers of moments")
	// ErrInvalidConfig is returned when constructing a sketch from an
	// invalid configuration.
	ErrInvalidConfig = errors.New("invalid sketch configuration")
	// ErrNonConvergence is returned when the maximum-entropy solver fails
	// on every fallback moment count.
	ErrNonConvergence = errors.New("the maximum-entropy solver did not converge")
)

// Config gathers the construction parameters of a MomentSketch.
type Config struct {
	// K is the number of moments the sketch maintains, between 4 and 40.
	// More moments give more accurate quantiles at a higher query cost;
	// beyond about 20 the gain is usually marginal.
	K int
	// LogMode additionally maintains the moments of the logarithms of the
	// values, which the quantile query prefers when available since it
	// handles data spanning many orders of magnitude much better. Log
	// moments are dropped permanently on the first non-positive value.
	LogMode bool
}

// MomentSketch computes approximate quantiles from the first k power sums
// of the inserted values. Construction-time configuration is immutable; all
// mutation goes through Add, AddWithCount and MergeWith.
//
// A sketch is not safe for concurrent use; callers must serialize mutations.
type MomentSketch struct {
	accumulator *accumulator
	solver      *maxEntropySolver
}

// New returns a sketch maintaining k moments, with log moments disabled.
func New(k int) (*MomentSketch, error) {
	return NewFromConfig(Config{K: k})
}

// NewFromConfig returns a sketch built according to the provided
// configuration, or ErrInvalidConfig.
func NewFromConfig(c Config) (*MomentSketch, error) {
	if c.K < minNumMoments || c.K > maxNumMoments {
		return nil, ErrInvalidConfig
	}
	return &MomentSketch{
		accumulator: newAccumulator(c.K, c.LogMode),
		solver:      newMaxEntropySolver(c.K),
	}, nil
}

func (s *MomentSketch) Add(value float64) error {
	return s.AddWithCount(value, 1)
}

// AddWithCount adds a value to the sketch with the provided non-negative
// count. The sketch is left unchanged when an error is returned.
func (s *MomentSketch) AddWithCount(value, count float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrOutOfRange
	}
	if count < 0 || math.IsNaN(count) || math.IsInf(count, 0) {
		return ErrOutOfRange
	}
	if count == 0 {
		return nil
	}
	s.accumulator.add(value, count)
	return nil
}

// MergeWith merges the other sketch into this one. Sketches are compatible
// when they maintain the same number of moments; log moments survive the
// merge only if they are live on both sides.
func (s *MomentSketch) MergeWith(other *MomentSketch) error {
	if s.accumulator.k != other.accumulator.k {
		return ErrIncompatibleSketch
	}
	s.accumulator.mergeWith(other.accumulator)
	return nil
}

// GetCount returns the total count of the values added to the sketch.
func (s *MomentSketch) GetCount() float64 {
	return s.accumulator.count()
}

// GetSum returns the sum of the values added to the sketch.
func (s *MomentSketch) GetSum() float64 {
	return s.accumulator.sum()
}

// GetMinValue returns the exact minimum of the values added to the sketch.
func (s *MomentSketch) GetMinValue() (float64, error) {
	if s.IsEmpty() {
		return math.NaN(), ErrEmptySketch
	}
	return s.accumulator.min, nil
}

// GetMaxValue returns the exact maximum of the values added to the sketch.
func (s *MomentSketch) GetMaxValue() (float64, error) {
	if s.IsEmpty() {
		return math.NaN(), ErrEmptySketch
	}
	return s.accumulator.max, nil
}

func (s *MomentSketch) IsEmpty() bool {
	return s.GetCount() == 0
}

// GetValueAtQuantile returns the value at the provided quantile of the
// maximum-entropy distribution matching the maintained moments. When the
// solver fails to converge on the full moment vector, the query retries with
// progressively fewer moments before giving up with ErrNonConvergence.
func (s *MomentSketch) GetValueAtQuantile(quantile float64) (float64, error) {
	if quantile < 0 || quantile > 1 || math.IsNaN(quantile) {
		return math.NaN(), ErrOutOfRange
	}
	if s.IsEmpty() {
		return math.NaN(), ErrEmptySketch
	}
	minValue := s.accumulator.min
	maxValue := s.accumulator.max
	if quantile == 0 || minValue == maxValue {
		return minValue, nil
	}
	if quantile == 1 {
		return maxValue, nil
	}

	// The log domain is preferred when available: heavy-tailed data is far
	// better conditioned after the log transform.
	useLogs := s.accumulator.logsEnabled && s.accumulator.logMin < s.accumulator.logMax
	var powerSums []float64
	var a, b float64
	if useLogs {
		powerSums = s.accumulator.logPowerSums
		a, b = s.accumulator.logMin, s.accumulator.logMax
	} else {
		powerSums = s.accumulator.powerSums
		a, b = minValue, maxValue
	}

	for k := s.accumulator.k; k >= fallbackNumMoments; k-- {
		moments := chebyshevMoments(powerSums[:k], a, b)
		lambda, err := s.solver.solve(moments)
		if err != nil {
			continue
		}
		y := invertCDF(lambda, quantile)
		if math.IsNaN(y) {
			continue
		}
		value := ((b-a)*y + (a + b)) / 2
		if useLogs {
			value = math.Exp(value)
		}
		if value < minValue {
			value = minValue
		}
		if value > maxValue {
			value = maxValue
		}
		return value, nil
	}
	return math.NaN(), ErrNonConvergence
}

// GetValuesAtQuantiles returns the values at the provided quantiles.
func (s *MomentSketch) GetValuesAtQuantiles(quantiles []float64) ([]float64, error) {
	values := make([]float64, len(quantiles))
	for i, q := range quantiles {
		value, err := s.GetValueAtQuantile(q)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

func (s *MomentSketch) Copy() *MomentSketch {
	return &MomentSketch{
		accumulator: s.accumulator.copy(),
		solver:      s.solver,
	}
}

// Encode appends the serialized sketch to the provided buffer: the number of
// moments, the support of the values and of their logarithms, and the raw
// power sums.
func (s *MomentSketch) Encode(b *[]byte) {
	a := s.accumulator
	enc.EncodeUvarint64(b, uint64(a.k))
	if a.logsEnabled {
		enc.EncodeUvarint64(b, 1)
	} else {
		enc.EncodeUvarint64(b, 0)
	}
	enc.EncodeFloat64LE(b, a.min)
	enc.EncodeFloat64LE(b, a.max)
	for _, p := range a.powerSums {
		enc.EncodeFloat64LE(b, p)
	}
	if a.logsEnabled {
		enc.EncodeFloat64LE(b, a.logMin)
		enc.EncodeFloat64LE(b, a.logMax)
		for _, p := range a.logPowerSums {
			enc.EncodeFloat64LE(b, p)
		}
	}
}

// DecodeMomentSketch rebuilds a sketch that has been serialized with Encode.
func DecodeMomentSketch(b []byte) (*MomentSketch, error) {
	k, err := enc.DecodeUvarint64(&b)
	if err != nil {
		return nil, err
	}
	if k < minNumMoments || k > maxNumMoments {
		return nil, ErrInvalidConfig
	}
	logsEnabled, err := enc.DecodeUvarint64(&b)
	if err != nil {
		return nil, err
	}
	sketch, err := NewFromConfig(Config{K: int(k), LogMode: logsEnabled != 0})
	if err != nil {
		return nil, err
	}
	a := sketch.accumulator
	if a.min, err = enc.DecodeFloat64LE(&b); err != nil {
		return nil, err
	}
	if a.max, err = enc.DecodeFloat64LE(&b); err != nil {
		return nil, err
	}
	for j := range a.powerSums {
		if a.powerSums[j], err = enc.DecodeFloat64LE(&b); err != nil {
			return nil, err
		}
	}
	if logsEnabled != 0 {
		if a.logMin, err = enc.DecodeFloat64LE(&b); err != nil {
			return nil, err
		}
		if a.logMax, err = enc.DecodeFloat64LE(&b); err != nil {
			return nil, err
		}
		for j := range a.logPowerSums {
			if a.logPowerSums[j], err = enc.DecodeFloat64LE(&b); err != nil {
				return nil, err
			}
		}
	}
	return sketch, nil
}
