// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package mapping

import (
	"errors"
	"math"

	enc "github.com/LogFlow-AI/GPUQuantile/ddsketch/encoding"
)

const (
	expOverflow      = 7.094361393031e+02      // The value at which math.Exp overflows
	minNormalFloat64 = 2.2250738585072014e-308 // 2^(-1022)

	exponentBias    = 1023
	exponentMask    = uint64(0x7FF0000000000000)
	exponentShift   = 52
	significandMask = uint64(0x000FFFFFFFFFFFFF)
	oneMask         = uint64(0x3FF0000000000000)
)

// Interpolation identifies how a mapping approximates the logarithm, for
// serialization purposes.
type Interpolation uint64

const (
	InterpolationNone Interpolation = iota
	InterpolationLinear
	InterpolationCubic
)

var ErrUnknownInterpolation = errors.New("unknown mapping interpolation")

// IndexMapping maps positive values to bucket indexes so that close indexes
// correspond to values within a fixed relative distance of one another.
// Implementations are immutable and safe for concurrent use.
type IndexMapping interface {
	Equals(other IndexMapping) bool
	Index(value float64) int
	Value(index int) float64
	RelativeAccuracy() float64
	// MinIndexableValue is the smallest positive value the mapping tracks.
	MinIndexableValue() float64
	// MaxIndexableValue is the largest positive value the mapping tracks.
	MaxIndexableValue() float64
	// Encode appends the serialized mapping to the provided buffer.
	Encode(b *[]byte)
}

// Decode deserializes a mapping that has been serialized with Encode,
// consuming the read bytes.
func Decode(b *[]byte) (IndexMapping, error) {
	interpolation, err := enc.DecodeUvarint64(b)
	if err != nil {
		return nil, err
	}
	relativeAccuracy, err := enc.DecodeFloat64LE(b)
	if err != nil {
		return nil, err
	}
	switch Interpolation(interpolation) {
	case InterpolationNone:
		return NewLogarithmicMapping(relativeAccuracy)
	case InterpolationLinear:
		return NewLinearlyInterpolatedMapping(relativeAccuracy)
	case InterpolationCubic:
		return NewCubicallyInterpolatedMapping(relativeAccuracy)
	default:
		return nil, ErrUnknownInterpolation
	}
}

func encodeMapping(b *[]byte, interpolation Interpolation, relativeAccuracy float64) {
	enc.EncodeUvarint64(b, uint64(interpolation))
	enc.EncodeFloat64LE(b, relativeAccuracy)
}

func withinTolerance(x, y, tolerance float64) bool {
	return math.Abs(x-y) <= tolerance
}

func getExponent(float64Bits uint64) float64 {
	return float64(int((float64Bits&exponentMask)>>exponentShift) - exponentBias)
}

func getSignificandPlusOne(float64Bits uint64) float64 {
	return math.Float64frombits((float64Bits & significandMask) | oneMask)
}

// buildFloat64 returns the positive float64 with the provided exponent and
// significand, the latter being expected to be within [1, 2).
func buildFloat64(exponent int, significandPlusOne float64) float64 {
	return math.Float64frombits(
		(uint64(exponent+exponentBias) << exponentShift & exponentMask) |
			(math.Float64bits(significandPlusOne) & significandMask))
}
