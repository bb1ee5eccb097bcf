// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package ddsketch_test

import (
	"fmt"
	"math"

	"github.com/LogFlow-AI/GPUQuantile/ddsketch"
)

func Example() {
	sketch, err := ddsketch.NewDefaultDDSketch(0.01)
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := 1; i <= 100; i++ {
		if err := sketch.Add(float64(i)); err != nil {
			fmt.Println(err)
			return
		}
	}

	p50, err := sketch.GetValueAtQuantile(0.5)
	if err != nil {
		fmt.Println(err)
		return
	}
	minValue, _ := sketch.GetMinValue()
	maxValue, _ := sketch.GetMaxValue()

	fmt.Println(sketch.GetCount())
	fmt.Println(minValue, maxValue)
	fmt.Println(math.Abs(p50-50)/50 <= 0.01)
	// Output:
	// 100
	// 1 100
	// true
}

func ExampleDDSketch_MergeWith() {
	// Shards ingest independently and merge into a coordinator sketch.
	coordinator, _ := ddsketch.NewDefaultDDSketch(0.01)
	shard1, _ := ddsketch.NewDefaultDDSketch(0.01)
	shard2, _ := ddsketch.NewDefaultDDSketch(0.01)
	shard1.Add(1)
	shard1.Add(2)
	shard2.Add(3)
	coordinator.MergeWith(shard1)
	coordinator.MergeWith(shard2)
	fmt.Println(coordinator.GetCount())
	// Output:
	// 3
}
