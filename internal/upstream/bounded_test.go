package upstream

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedMap_RespectsLimit(t *testing.T) {
	var inFlight, maxInFlight int32
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	results, failed := BoundedMap(items, 5, func(item int) (int, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if cur <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, cur) {
				break
			}
		}
		atomic.AddInt32(&inFlight, -1)
		return item * 2, nil
	})

	assert.LessOrEqual(t, int(maxInFlight), 5)
	assert.Len(t, results, 50)
	assert.Equal(t, 98, results[49])
	for _, f := range failed {
		assert.False(t, f)
	}
}

func TestBoundedMap_IsolatesFailures(t *testing.T) {
	items := []int{1, 2, 3, 4}
	results, failed := BoundedMap(items, 2, func(item int) (int, error) {
		if item == 2 {
			return 0, fmt.Errorf("boom")
		}
		return item * 10, nil
	})

	assert.False(t, failed[0])
	assert.True(t, failed[1])
	assert.False(t, failed[2])
	assert.False(t, failed[3])
	assert.Equal(t, 10, results[0])
}
