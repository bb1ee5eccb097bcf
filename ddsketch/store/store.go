// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package store

import (
	enc "github.com/LogFlow-AI/GPUQuantile/ddsketch/encoding"
)

// Store maps bucket indexes to non-negative counts.
type Store interface {
	Add(index int)
	AddBin(bin Bin)
	AddWithCount(index int, count float64)
	// Bins yields the non-empty bins in ascending index order.
	Bins() <-chan Bin
	// DescendingBins yields the non-empty bins in descending index order.
	DescendingBins() <-chan Bin
	// NumBins returns the number of non-empty bins.
	NumBins() int
	Copy() Store
	IsEmpty() bool
	MaxIndex() (int, error)
	MinIndex() (int, error)
	TotalCount() float64
	// KeyAtRank returns the index of the bin within which the bin counts,
	// cumulated in ascending index order, exceed the provided rank.
	KeyAtRank(rank float64) int
	// KeyAtDescendingRank is the equivalent of KeyAtRank with the bin counts
	// cumulated in descending index order.
	KeyAtDescendingRank(rank float64) int
	MergeWith(store Store)
	// CollapseLowest folds the n lowest non-empty bins into the next
	// non-empty bin, conserving the total count.
	CollapseLowest(n int)
	// CollapseHighest folds the n highest non-empty bins into the next
	// non-empty bin, conserving the total count.
	CollapseHighest(n int)
	// Encode appends the serialized bins to the provided buffer.
	Encode(b *[]byte)
}

// Provider returns a new empty store.
type Provider func() Store

var (
	DenseStoreConstructor  = Provider(func() Store { return NewDenseStore() })
	SparseStoreConstructor = Provider(func() Store { return NewSparseStore() })
)

func CollapsingLowestDenseStoreConstructor(maxNumBins int) Provider {
	return func() Store { return NewCollapsingLowestDenseStore(maxNumBins) }
}

func CollapsingHighestDenseStoreConstructor(maxNumBins int) Provider {
	return func() Store { return NewCollapsingHighestDenseStore(maxNumBins) }
}

// encodeBins serializes bins as their number followed by, for each bin, the
// difference between its index and the previous one, and its count.
func encodeBins(b *[]byte, numBins int, bins <-chan Bin) {
	enc.EncodeUvarint64(b, uint64(numBins))
	previousIndex := 0
	for bin := range bins {
		enc.EncodeVarint64(b, int64(bin.index-previousIndex))
		enc.EncodeVarfloat64(b, bin.count)
		previousIndex = bin.index
	}
}

// DecodeAndMergeWith deserializes bins that have been serialized with Encode
// and adds them to the provided store.
func DecodeAndMergeWith(s Store, b *[]byte) error {
	numBins, err := enc.DecodeUvarint64(b)
	if err != nil {
		return err
	}
	index := 0
	for i := uint64(0); i < numBins; i++ {
		indexDelta, err := enc.DecodeVarint64(b)
		if err != nil {
			return err
		}
		count, err := enc.DecodeVarfloat64(b)
		if err != nil {
			return err
		}
		index += int(indexDelta)
		s.AddWithCount(index, count)
	}
	return nil
}

// ToBytes generates a byte representation of a Store.
func ToBytes(s Store) []byte {
	var b []byte
	s.Encode(&b)
	return b
}

// FromBytes returns a DenseStore decoded from the byte representation of a
// store.
func FromBytes(b []byte) (Store, error) {
	store := NewDenseStore()
	if err := DecodeAndMergeWith(store, &b); err != nil {
		return nil, err
	}
	return store, nil
}
