// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package ddsketch

import (
	"errors"
	"math"

	enc "github.com/LogFlow-AI/GPUQuantile/ddsketch/encoding"
	"github.com/LogFlow-AI/GPUQuantile/ddsketch/mapping"
	"github.com/LogFlow-AI/GPUQuantile/ddsketch/stat"
	"github.com/LogFlow-AI/GPUQuantile/ddsketch/store"
)

var (
	// ErrEmptySketch is returned when querying a quantile of a sketch that
	// does not contain any value.
	ErrEmptySketch = errors.New("no such element exists")
	// ErrOutOfRange is returned when inserting NaN or a value whose magnitude
	// exceeds the largest indexable value, a negative count, or querying a
	// quantile outside [0, 1].
	ErrOutOfRange = errors.New("input value is outside the range that is tracked by the sketch")
	// ErrIncompatibleSketch is returned when merging sketches whose index
	// mappings do not match.
	ErrIncompatibleSketch = errors.New("cannot merge sketches with different index mappings")
	// ErrInvalidConfig is returned when constructing a sketch from an
	// invalid configuration.
	ErrInvalidConfig = errors.New("invalid sketch configuration")
)

// DDSketch computes quantiles with a relative-error guarantee: the value it
// returns for a quantile is within a factor (1±relativeAccuracy) of the value
// whose rank matches the quantile. Values of either sign as well as zeros can
// be added to the sketch; negative values are tracked in their own store,
// keyed by the index of their magnitude.
//
// A sketch is not safe for concurrent use; callers must serialize mutations.
type DDSketch struct {
	mapping.IndexMapping
	positiveValueStore store.Store
	negativeValueStore store.Store
	zeroCount          float64
	summaryStatistics  *stat.SummaryStatistics

	// maxNumBins bounds the number of non-empty bins of each store; 0 means
	// unbounded. When the stores enforce the bound themselves (the
	// self-collapsing dense stores), storesCollapse is true and the sketch
	// does not apply the collapse strategy itself.
	maxNumBins     int
	collapse       CollapseStrategy
	storesCollapse bool
	collapseToggle bool
}

// NewDDSketch constructs a sketch from its parts. The provided stores define
// the collapsing behavior: unbounded stores never collapse, self-collapsing
// stores enforce their own bin limit.
func NewDDSketch(indexMapping mapping.IndexMapping, positiveValueStore store.Store, negativeValueStore store.Store) *DDSketch {
	return &DDSketch{
		IndexMapping:       indexMapping,
		positiveValueStore: positiveValueStore,
		negativeValueStore: negativeValueStore,
		summaryStatistics:  stat.NewSummaryStatistics(),
		collapse:           CollapseNone,
		storesCollapse:     true,
	}
}

// NewDefaultDDSketch returns a sketch with the logarithmic mapping and
// unbounded dense stores.
func NewDefaultDDSketch(relativeAccuracy float64) (*DDSketch, error) {
	indexMapping, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewDenseStore(), store.NewDenseStore()), nil
}

// MemoryOptimalCollapsingLowestSketch returns a sketch with the logarithmic
// mapping and dense stores that collapse the buckets that track the lowest
// part of the distribution once maxNumBins is reached, which protects the
// high quantiles that usually matter for latency data.
func MemoryOptimalCollapsingLowestSketch(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingLowestDenseStore(maxNumBins), store.NewCollapsingHighestDenseStore(maxNumBins)), nil
}

func (s *DDSketch) Add(value float64) error {
	return s.AddWithCount(value, float64(1))
}

// AddWithCount adds a value to the sketch with the provided non-negative
// count. The sketch is left unchanged when an error is returned.
func (s *DDSketch) AddWithCount(value, count float64) error {
	if value < -s.MaxIndexableValue() || value > s.MaxIndexableValue() || math.IsNaN(value) {
		return ErrOutOfRange
	}
	if count < 0 || math.IsNaN(count) {
		return ErrOutOfRange
	}
	if count == 0 {
		return nil
	}

	if value > s.MinIndexableValue() {
		s.positiveValueStore.AddWithCount(s.Index(value), count)
	} else if value < -s.MinIndexableValue() {
		s.negativeValueStore.AddWithCount(s.Index(-value), count)
	} else {
		s.zeroCount += count
	}
	s.summaryStatistics.Add(value, count)
	s.applyCollapse()
	return nil
}

// GetValueAtQuantile returns the value at the provided quantile. The lowest
// and highest quantiles return the exact minimum and maximum of the added
// values, and every result is clamped to that range.
func (s *DDSketch) GetValueAtQuantile(quantile float64) (float64, error) {
	if quantile < 0 || quantile > 1 || math.IsNaN(quantile) {
		return math.NaN(), ErrOutOfRange
	}
	count := s.GetCount()
	if count == 0 {
		return math.NaN(), ErrEmptySketch
	}
	minValue := s.summaryStatistics.Min()
	maxValue := s.summaryStatistics.Max()
	if quantile == 0 {
		return minValue, nil
	}
	if quantile == 1 {
		return maxValue, nil
	}

	rank := quantile * (count - 1)
	negativeValueCount := s.negativeValueStore.TotalCount()
	var value float64
	if rank < negativeValueCount {
		// The most negative values have the highest indexes in the negative
		// value store.
		value = -s.Value(s.negativeValueStore.KeyAtDescendingRank(rank))
	} else if rank < s.zeroCount+negativeValueCount {
		value = 0
	} else {
		value = s.Value(s.positiveValueStore.KeyAtRank(rank - s.zeroCount - negativeValueCount))
	}
	if value < minValue {
		value = minValue
	}
	if value > maxValue {
		value = maxValue
	}
	return value, nil
}

// GetValuesAtQuantiles returns the values at the provided quantiles.
func (s *DDSketch) GetValuesAtQuantiles(quantiles []float64) ([]float64, error) {
	values := make([]float64, len(quantiles))
	for i, q := range quantiles {
		val, err := s.GetValueAtQuantile(q)
		if err != nil {
			return nil, err
		}
		values[i] = val
	}
	return values, nil
}

// GetCount returns the total count of the values added to the sketch.
func (s *DDSketch) GetCount() float64 {
	return s.summaryStatistics.Count()
}

// GetSum returns the exact sum of the values added to the sketch.
func (s *DDSketch) GetSum() float64 {
	return s.summaryStatistics.Sum()
}

// GetMinValue returns the exact minimum of the values added to the sketch.
func (s *DDSketch) GetMinValue() (float64, error) {
	if s.IsEmpty() {
		return math.NaN(), ErrEmptySketch
	}
	return s.summaryStatistics.Min(), nil
}

// GetMaxValue returns the exact maximum of the values added to the sketch.
func (s *DDSketch) GetMaxValue() (float64, error) {
	if s.IsEmpty() {
		return math.NaN(), ErrEmptySketch
	}
	return s.summaryStatistics.Max(), nil
}

func (s *DDSketch) IsEmpty() bool {
	return s.GetCount() == 0
}

// MergeWith merges the other sketch into this one. The other sketch is left
// unchanged, and so is this sketch when an error is returned. Merging is
// commutative and associative up to collapsing and floating-point rounding.
func (s *DDSketch) MergeWith(other *DDSketch) error {
	if !s.IndexMapping.Equals(other.IndexMapping) {
		return ErrIncompatibleSketch
	}
	s.positiveValueStore.MergeWith(other.positiveValueStore)
	s.negativeValueStore.MergeWith(other.negativeValueStore)
	s.zeroCount += other.zeroCount
	s.summaryStatistics.MergeWith(other.summaryStatistics)
	s.applyCollapse()
	return nil
}

func (s *DDSketch) Copy() *DDSketch {
	return &DDSketch{
		IndexMapping:       s.IndexMapping,
		positiveValueStore: s.positiveValueStore.Copy(),
		negativeValueStore: s.negativeValueStore.Copy(),
		zeroCount:          s.zeroCount,
		summaryStatistics:  s.summaryStatistics.Copy(),
		maxNumBins:         s.maxNumBins,
		collapse:           s.collapse,
		storesCollapse:     s.storesCollapse,
		collapseToggle:     s.collapseToggle,
	}
}

// applyCollapse enforces the bin limit on each store. The strategy applies
// to the tails of the distribution, which for the negative value store means
// collapsing the bins whose indexes are on the opposite side compared to the
// positive value store.
func (s *DDSketch) applyCollapse() {
	if s.maxNumBins <= 0 || s.storesCollapse || s.collapse == CollapseNone {
		return
	}
	s.collapseStore(s.positiveValueStore, false)
	s.collapseStore(s.negativeValueStore, true)
}

func (s *DDSketch) collapseStore(st store.Store, negative bool) {
	excess := st.NumBins() - s.maxNumBins
	if excess <= 0 {
		return
	}
	switch s.collapse {
	case CollapseLowest:
		if negative {
			st.CollapseHighest(excess)
		} else {
			st.CollapseLowest(excess)
		}
	case CollapseHighest:
		if negative {
			st.CollapseLowest(excess)
		} else {
			st.CollapseHighest(excess)
		}
	case CollapseBothEnds:
		lowest := excess / 2
		highest := excess - lowest
		if s.collapseToggle {
			lowest, highest = highest, lowest
		}
		s.collapseToggle = !s.collapseToggle
		st.CollapseLowest(lowest)
		st.CollapseHighest(highest)
	}
}

// Encode appends the serialized sketch to the provided buffer: the mapping,
// the bin limit and collapse strategy, the zero count, the exact summary
// statistics, and the bins of both stores.
func (s *DDSketch) Encode(b *[]byte) {
	s.IndexMapping.Encode(b)
	enc.EncodeUvarint64(b, uint64(s.maxNumBins))
	enc.EncodeUvarint64(b, uint64(s.collapse))
	enc.EncodeVarfloat64(b, s.zeroCount)
	enc.EncodeFloat64LE(b, s.summaryStatistics.Count())
	enc.EncodeFloat64LE(b, s.summaryStatistics.Sum())
	enc.EncodeFloat64LE(b, s.summaryStatistics.Min())
	enc.EncodeFloat64LE(b, s.summaryStatistics.Max())
	s.positiveValueStore.Encode(b)
	s.negativeValueStore.Encode(b)
}

// DecodeDDSketch rebuilds a sketch that has been serialized with Encode,
// using the provided store provider, or dense stores if nil.
func DecodeDDSketch(b []byte, storeProvider store.Provider) (*DDSketch, error) {
	if storeProvider == nil {
		storeProvider = store.DenseStoreConstructor
	}
	indexMapping, err := mapping.Decode(&b)
	if err != nil {
		return nil, err
	}
	maxNumBins, err := enc.DecodeUvarint64(&b)
	if err != nil {
		return nil, err
	}
	collapse, err := enc.DecodeUvarint64(&b)
	if err != nil {
		return nil, err
	}
	zeroCount, err := enc.DecodeVarfloat64(&b)
	if err != nil {
		return nil, err
	}
	var summaryData [4]float64
	for i := range summaryData {
		summaryData[i], err = enc.DecodeFloat64LE(&b)
		if err != nil {
			return nil, err
		}
	}
	summaryStatistics, err := stat.NewSummaryStatisticsFromData(summaryData[0], summaryData[1], summaryData[2], summaryData[3])
	if err != nil {
		return nil, err
	}
	positiveValueStore := storeProvider()
	if err := store.DecodeAndMergeWith(positiveValueStore, &b); err != nil {
		return nil, err
	}
	negativeValueStore := storeProvider()
	if err := store.DecodeAndMergeWith(negativeValueStore, &b); err != nil {
		return nil, err
	}
	return &DDSketch{
		IndexMapping:       indexMapping,
		positiveValueStore: positiveValueStore,
		negativeValueStore: negativeValueStore,
		zeroCount:          zeroCount,
		summaryStatistics:  summaryStatistics,
		maxNumBins:         int(maxNumBins),
		collapse:           CollapseStrategy(collapse),
	}, nil
}
