// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package ddsketch

import (
	"github.com/LogFlow-AI/GPUQuantile/ddsketch/mapping"
	"github.com/LogFlow-AI/GPUQuantile/ddsketch/store"
)

// MappingKind selects how values are mapped to bucket indexes.
type MappingKind int

const (
	// MappingLogarithmic computes the exact logarithm; it requires the
	// fewest buckets for a given accuracy but is the slowest on insertion.
	MappingLogarithmic MappingKind = iota
	// MappingLinearInterpolation interpolates the logarithm linearly
	// between powers of 2; it is the fastest on insertion.
	MappingLinearInterpolation
	// MappingCubicInterpolation interpolates the logarithm with a cubic
	// polynomial; it is nearly as compact as the logarithmic mapping while
	// avoiding transcendental calls.
	MappingCubicInterpolation
)

// StorageKind selects how bucket counts are stored.
type StorageKind int

const (
	// StorageDense stores counts in a contiguous array; suited to streams
	// whose active bucket range is narrow.
	StorageDense StorageKind = iota
	// StorageSparse stores counts in a map; suited to streams whose active
	// buckets are few but widely separated.
	StorageSparse
)

// CollapseStrategy selects which buckets get folded together when the bin
// limit is reached.
type CollapseStrategy int

const (
	// CollapseLowest folds the buckets tracking the lowest part of the
	// distribution, protecting the high quantiles. This is the default.
	CollapseLowest CollapseStrategy = iota
	// CollapseHighest folds the buckets tracking the highest part of the
	// distribution, protecting the low quantiles.
	CollapseHighest
	// CollapseBothEnds alternates between both tails; for when the tail of
	// interest is not known in advance.
	CollapseBothEnds
	// CollapseNone never folds buckets; the stores grow unboundedly.
	CollapseNone
)

// Config gathers the construction parameters of a DDSketch. The zero value
// of every field other than RelativeAccuracy is a usable default: the
// logarithmic mapping, dense storage, no bin limit, collapsing the lowest
// buckets if a limit is set.
type Config struct {
	// RelativeAccuracy is the accuracy guarantee of the sketch, between 0
	// and 1 exclusive.
	RelativeAccuracy float64
	Mapping          MappingKind
	Storage          StorageKind
	// MaxNumBins bounds the number of non-empty buckets of each of the
	// positive and negative value stores. Zero means unbounded.
	MaxNumBins int
	Collapse   CollapseStrategy
}

// NewFromConfig returns a sketch built according to the provided
// configuration, or ErrInvalidConfig.
func NewFromConfig(c Config) (*DDSketch, error) {
	if c.RelativeAccuracy <= 0 || c.RelativeAccuracy >= 1 {
		return nil, ErrInvalidConfig
	}
	if c.MaxNumBins < 0 {
		return nil, ErrInvalidConfig
	}

	var indexMapping mapping.IndexMapping
	var err error
	switch c.Mapping {
	case MappingLogarithmic:
		indexMapping, err = mapping.NewLogarithmicMapping(c.RelativeAccuracy)
	case MappingLinearInterpolation:
		indexMapping, err = mapping.NewLinearlyInterpolatedMapping(c.RelativeAccuracy)
	case MappingCubicInterpolation:
		indexMapping, err = mapping.NewCubicallyInterpolatedMapping(c.RelativeAccuracy)
	default:
		return nil, ErrInvalidConfig
	}
	if err != nil {
		return nil, ErrInvalidConfig
	}

	bounded := c.MaxNumBins > 0 && c.Collapse != CollapseNone

	// The self-collapsing dense stores enforce the bin limit inline, without
	// any extra work on the insertion path. The negative value store gets the
	// mirrored variant since the low tail of the distribution sits at its
	// high indexes.
	if bounded && c.Storage == StorageDense {
		switch c.Collapse {
		case CollapseLowest:
			s := NewDDSketch(indexMapping, store.NewCollapsingLowestDenseStore(c.MaxNumBins), store.NewCollapsingHighestDenseStore(c.MaxNumBins))
			s.maxNumBins = c.MaxNumBins
			s.collapse = c.Collapse
			return s, nil
		case CollapseHighest:
			s := NewDDSketch(indexMapping, store.NewCollapsingHighestDenseStore(c.MaxNumBins), store.NewCollapsingLowestDenseStore(c.MaxNumBins))
			s.maxNumBins = c.MaxNumBins
			s.collapse = c.Collapse
			return s, nil
		}
	}

	var provider store.Provider
	switch c.Storage {
	case StorageDense:
		provider = store.DenseStoreConstructor
	case StorageSparse:
		provider = store.SparseStoreConstructor
	default:
		return nil, ErrInvalidConfig
	}

	s := NewDDSketch(indexMapping, provider(), provider())
	if bounded {
		s.maxNumBins = c.MaxNumBins
		s.collapse = c.Collapse
		s.storesCollapse = false
	}
	return s, nil
}
