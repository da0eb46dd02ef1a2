package algo_test

import (
	"container/heap"
	"testing"

	"git.fiblab.net/sim/transit-catalogue/router/algo"
	"github.com/stretchr/testify/assert"
)

func TestPriorityQueue(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	for _, v := range []int{7, 3, 9, 1} {
		heap.Push(&pq, &algo.Item{Value: v, Priority: float64(v) / 2})
	}

	// 按优先级从小到大弹出
	for _, want := range []int{1, 3, 7, 9} {
		item := heap.Pop(&pq).(*algo.Item)
		assert.Equal(t, want, item.Value)
		assert.Equal(t, float64(want)/2, item.Priority)
		assert.Equal(t, -1, item.Index)
	}
	assert.Equal(t, 0, pq.Len())
}

func TestPriorityQueueDecreaseKey(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	items := make(map[int]*algo.Item)
	for _, v := range []int{4, 2, 1, 3} {
		items[v] = &algo.Item{Value: v, Priority: float64(v)}
		heap.Push(&pq, items[v])
	}

	// 将Value==3的优先级降为0
	items[3].Priority = 0
	heap.Fix(&pq, items[3].Index)

	order := make([]int, 0)
	for pq.Len() > 0 {
		order = append(order, heap.Pop(&pq).(*algo.Item).Value)
	}
	assert.Equal(t, []int{3, 1, 2, 4}, order)
}
