// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package store

import (
	"sort"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
)

func TestSparseAdd(t *testing.T) {
	nTests := 100
	f := fuzz.New().NilChance(0).NumElements(10, 1000)
	var values []int32
	for i := 0; i < nTests; i++ {
		store := NewSparseStore()
		f.Fuzz(&values)
		var valuesInt []int
		for _, v := range values {
			store.Add(int(v))
			valuesInt = append(valuesInt, int(v))
		}
		sort.Slice(valuesInt, func(i, j int) bool { return valuesInt[i] < valuesInt[j] })
		assert.Equal(t, float64(len(valuesInt)), store.TotalCount())
		minIndex, _ := store.MinIndex()
		assert.Equal(t, valuesInt[0], minIndex)
		maxIndex, _ := store.MaxIndex()
		assert.Equal(t, valuesInt[len(valuesInt)-1], maxIndex)
		var bins []Bin
		for bin := range store.Bins() {
			bins = append(bins, bin)
		}
		EvaluateBins(t, bins, valuesInt)
	}
}

func TestSparseKeyAtRank(t *testing.T) {
	store := NewSparseStore()
	store.AddWithCount(-10, 2)
	store.AddWithCount(0, 1)
	store.AddWithCount(25, 3)
	assert.Equal(t, -10, store.KeyAtRank(0))
	assert.Equal(t, -10, store.KeyAtRank(1.5))
	assert.Equal(t, 0, store.KeyAtRank(2))
	assert.Equal(t, 25, store.KeyAtRank(3))
	assert.Equal(t, 25, store.KeyAtRank(5.5))
	assert.Equal(t, 25, store.KeyAtDescendingRank(0))
	assert.Equal(t, 0, store.KeyAtDescendingRank(3))
	assert.Equal(t, -10, store.KeyAtDescendingRank(4))
}

func TestSparseMerge(t *testing.T) {
	nTests := 100
	var values1, values2 []int32
	f := fuzz.New().NilChance(0).NumElements(10, 1000)
	for i := 0; i < nTests; i++ {
		var merged []int
		f.Fuzz(&values1)
		store1 := NewSparseStore()
		for _, v := range values1 {
			store1.Add(int(v))
			merged = append(merged, int(v))
		}
		f.Fuzz(&values2)
		store2 := NewSparseStore()
		for _, v := range values2 {
			store2.Add(int(v))
			merged = append(merged, int(v))
		}
		store1.MergeWith(store2)
		var bins []Bin
		for bin := range store1.Bins() {
			bins = append(bins, bin)
		}
		EvaluateBins(t, bins, merged)
	}
}

func TestSparseMergeWithDense(t *testing.T) {
	sparse := NewSparseStore()
	dense := NewDenseStore()
	var values []int
	for i := 0; i < 100; i += 3 {
		sparse.Add(i)
		values = append(values, i)
	}
	for i := 1; i < 50; i += 2 {
		dense.Add(i)
		values = append(values, i)
	}
	sparse.MergeWith(dense)
	var bins []Bin
	for bin := range sparse.Bins() {
		bins = append(bins, bin)
	}
	EvaluateBins(t, bins, values)
}

func testCollapseStores() map[string]func() Store {
	return map[string]func() Store{
		"dense":  func() Store { return NewDenseStore() },
		"sparse": func() Store { return NewSparseStore() },
	}
}

func TestCollapseLowestOperation(t *testing.T) {
	for name, provider := range testCollapseStores() {
		t.Run(name, func(t *testing.T) {
			store := provider()
			for i := 0; i < 10; i++ {
				store.AddWithCount(i, float64(i+1))
			}
			totalCount := store.TotalCount()
			store.CollapseLowest(4)
			assert.Equal(t, totalCount, store.TotalCount())
			assert.Equal(t, 6, store.NumBins())
			minIndex, _ := store.MinIndex()
			assert.Equal(t, 4, minIndex)
			// The lowest remaining bin holds its own count plus the collapsed ones.
			var bins []Bin
			for bin := range store.Bins() {
				bins = append(bins, bin)
			}
			assert.Equal(t, 4, bins[0].Index())
			assert.Equal(t, float64(1+2+3+4+5), bins[0].Count())
		})
	}
}

func TestCollapseHighestOperation(t *testing.T) {
	for name, provider := range testCollapseStores() {
		t.Run(name, func(t *testing.T) {
			store := provider()
			for i := 0; i < 10; i++ {
				store.AddWithCount(i, float64(i+1))
			}
			totalCount := store.TotalCount()
			store.CollapseHighest(4)
			assert.Equal(t, totalCount, store.TotalCount())
			assert.Equal(t, 6, store.NumBins())
			maxIndex, _ := store.MaxIndex()
			assert.Equal(t, 5, maxIndex)
			var bins []Bin
			for bin := range store.DescendingBins() {
				bins = append(bins, bin)
			}
			assert.Equal(t, 5, bins[0].Index())
			assert.Equal(t, float64(6+7+8+9+10), bins[0].Count())
		})
	}
}

func TestCollapseAllBins(t *testing.T) {
	for name, provider := range testCollapseStores() {
		t.Run(name, func(t *testing.T) {
			store := provider()
			store.AddWithCount(3, 1)
			store.AddWithCount(7, 2)
			store.CollapseLowest(10)
			assert.Equal(t, 1, store.NumBins())
			assert.Equal(t, float64(3), store.TotalCount())
			maxIndex, _ := store.MaxIndex()
			assert.Equal(t, 7, maxIndex)
		})
	}
}

func TestSparseSerialization(t *testing.T) {
	nTests := 100
	var values []int32
	f := fuzz.New().NilChance(0).NumElements(10, 1000)
	for i := 0; i < nTests; i++ {
		f.Fuzz(&values)
		store := NewSparseStore()
		for _, v := range values {
			store.Add(int(v))
		}
		var b []byte
		store.Encode(&b)
		deserialized := NewSparseStore()
		assert.NoError(t, DecodeAndMergeWith(deserialized, &b))
		assert.Zero(t, len(b))
		assertSameBins(t, store, deserialized)
	}
}

func TestSparseCopy(t *testing.T) {
	store := NewSparseStore()
	store.AddWithCount(1, 2)
	store.AddWithCount(5, 3)
	copied := store.Copy()
	store.AddWithCount(9, 1)
	assert.Equal(t, float64(5), copied.TotalCount())
	assert.Equal(t, 2, copied.NumBins())
	assert.Equal(t, float64(6), store.TotalCount())
}
