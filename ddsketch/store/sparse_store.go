// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package store

import (
	"errors"
	"sort"
)

// SparseStore is a store mapping bin indexes to counts with a memory
// footprint that only depends on the number of non-empty bins. It is suited
// to input whose active indexes are few but possibly widely separated, where
// a contiguous store would allocate long runs of empty bins.
type SparseStore struct {
	counts map[int]float64
	count  float64
}

func NewSparseStore() *SparseStore {
	return &SparseStore{counts: make(map[int]float64)}
}

func (s *SparseStore) Add(index int) {
	s.AddWithCount(index, float64(1))
}

func (s *SparseStore) AddBin(bin Bin) {
	s.AddWithCount(bin.index, bin.count)
}

func (s *SparseStore) AddWithCount(index int, count float64) {
	if count == 0 {
		return
	}
	s.counts[index] += count
	s.count += count
}

func (s *SparseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *SparseStore) TotalCount() float64 {
	return s.count
}

func (s *SparseStore) NumBins() int {
	return len(s.counts)
}

// orderedIndexes materializes the bin indexes in ascending order.
func (s *SparseStore) orderedIndexes() []int {
	indexes := make([]int, 0, len(s.counts))
	for index := range s.counts {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}

func (s *SparseStore) MinIndex() (int, error) {
	if s.count == 0 {
		return 0, errors.New("MinIndex of empty store is undefined.")
	}
	first := true
	minIndex := 0
	for index := range s.counts {
		if first || index < minIndex {
			minIndex = index
			first = false
		}
	}
	return minIndex, nil
}

func (s *SparseStore) MaxIndex() (int, error) {
	if s.count == 0 {
		return 0, errors.New("MaxIndex of empty store is undefined.")
	}
	first := true
	maxIndex := 0
	for index := range s.counts {
		if first || index > maxIndex {
			maxIndex = index
			first = false
		}
	}
	return maxIndex, nil
}

func (s *SparseStore) KeyAtRank(rank float64) int {
	indexes := s.orderedIndexes()
	var n float64
	for _, index := range indexes {
		n += s.counts[index]
		if n > rank {
			return index
		}
	}
	if len(indexes) == 0 {
		return 0
	}
	return indexes[len(indexes)-1]
}

func (s *SparseStore) KeyAtDescendingRank(rank float64) int {
	indexes := s.orderedIndexes()
	var n float64
	for i := len(indexes) - 1; i >= 0; i-- {
		n += s.counts[indexes[i]]
		if n > rank {
			return indexes[i]
		}
	}
	if len(indexes) == 0 {
		return 0
	}
	return indexes[0]
}

func (s *SparseStore) MergeWith(other Store) {
	if other.TotalCount() == 0 {
		return
	}
	o, ok := other.(*SparseStore)
	if !ok {
		for bin := range other.Bins() {
			s.AddBin(bin)
		}
		return
	}
	for index, count := range o.counts {
		s.counts[index] += count
	}
	s.count += o.count
}

// CollapseLowest folds the n lowest bins into the next bin up, conserving
// the total count. If the store contains at most n bins, they all end up in
// a single bin, the highest of them.
func (s *SparseStore) CollapseLowest(n int) {
	if n <= 0 || s.count == 0 {
		return
	}
	indexes := s.orderedIndexes()
	if n >= len(indexes) {
		n = len(indexes) - 1
	}
	if n <= 0 {
		return
	}
	var collapsed float64
	for _, index := range indexes[:n] {
		collapsed += s.counts[index]
		delete(s.counts, index)
	}
	s.counts[indexes[n]] += collapsed
}

// CollapseHighest folds the n highest bins into the next bin down,
// conserving the total count. If the store contains at most n bins, they all
// end up in a single bin, the lowest of them.
func (s *SparseStore) CollapseHighest(n int) {
	if n <= 0 || s.count == 0 {
		return
	}
	indexes := s.orderedIndexes()
	if n >= len(indexes) {
		n = len(indexes) - 1
	}
	if n <= 0 {
		return
	}
	var collapsed float64
	for _, index := range indexes[len(indexes)-n:] {
		collapsed += s.counts[index]
		delete(s.counts, index)
	}
	s.counts[indexes[len(indexes)-n-1]] += collapsed
}

func (s *SparseStore) Bins() <-chan Bin {
	indexes := s.orderedIndexes()
	ch := make(chan Bin)
	go func() {
		defer close(ch)
		for _, index := range indexes {
			ch <- Bin{index: index, count: s.counts[index]}
		}
	}()
	return ch
}

func (s *SparseStore) DescendingBins() <-chan Bin {
	indexes := s.orderedIndexes()
	ch := make(chan Bin)
	go func() {
		defer close(ch)
		for i := len(indexes) - 1; i >= 0; i-- {
			ch <- Bin{index: indexes[i], count: s.counts[indexes[i]]}
		}
	}()
	return ch
}

func (s *SparseStore) Copy() Store {
	counts := make(map[int]float64, len(s.counts))
	for index, count := range s.counts {
		counts[index] = count
	}
	return &SparseStore{counts: counts, count: s.count}
}

func (s *SparseStore) Encode(b *[]byte) {
	encodeBins(b, s.NumBins(), s.Bins())
}
