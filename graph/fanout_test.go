package graph

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOutPreservesInputOrder(t *testing.T) {
	const n = 32
	items := make([]int, n)
	for i := range items {
		items[i] = i * 10
	}

	for round := 0; round < 5; round++ {
		out := make(chan []int, 1)
		FanOut(context.Background(), 0, items, func(_ context.Context, _ int, item int) int {
			time.Sleep(time.Duration(rand.IntN(3000)) * time.Microsecond)
			return item + 1
		}, func(results []int) {
			out <- results
		})

		select {
		case results := <-out:
			require.Len(t, results, n)
			for i, r := range results {
				assert.Equal(t, items[i]+1, r)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("fan-out did not join")
		}
	}
}

func TestFanOutRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]struct{}, 12)

	out := make(chan int, 1)
	FanOut(context.Background(), 3, items, func(context.Context, int, struct{}) bool {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return true
	}, func(results []bool) {
		out <- len(results)
	})

	select {
	case n := <-out:
		assert.Equal(t, 12, n)
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out did not join")
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestFanOutWithNoItemsStillJoins(t *testing.T) {
	out := make(chan int, 1)
	FanOut(context.Background(), 0, []string(nil), func(context.Context, int, string) int {
		return 0
	}, func(results []int) {
		out <- len(results)
	})

	select {
	case n := <-out:
		assert.Zero(t, n)
	case <-time.After(time.Second):
		t.Fatal("fan-out did not join")
	}
}
