// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantiles(t *testing.T) {
	d := NewDataset()
	for _, v := range []float64{3, 1, 4, 1, 5} {
		d.Add(v)
	}
	assert.Equal(t, float64(1), d.Min())
	assert.Equal(t, float64(5), d.Max())
	assert.Equal(t, float64(5), d.Count)
	assert.Equal(t, float64(14), d.Sum())
	assert.Equal(t, float64(3), d.LowerQuantile(0.5))
	assert.Equal(t, float64(1), d.LowerQuantile(0))
	assert.Equal(t, float64(5), d.LowerQuantile(1))
	assert.Equal(t, float64(1), d.UpperQuantile(0.25))
	assert.Equal(t, float64(3), d.UpperQuantile(0.3))
}

func TestMergeDatasets(t *testing.T) {
	d1 := NewDataset()
	d1.Add(1)
	d2 := NewDataset()
	d2.Add(2)
	d1.Merge(d2)
	assert.Equal(t, float64(2), d1.Count)
	assert.Equal(t, float64(2), d1.Max())
}
