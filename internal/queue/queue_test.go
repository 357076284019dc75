package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testItem is a simple struct for testing the generic queue
type testItem struct {
	ID   int
	Name string
}

func TestQueue_PushTake(t *testing.T) {
	q := NewBounded[testItem](0)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Take(1), "take from empty queue")

	q.Push(testItem{ID: 1, Name: "first"})
	q.Push(testItem{ID: 2}, testItem{ID: 3})
	require.Equal(t, 3, q.Len())

	assert.Equal(t, []testItem{{ID: 1, Name: "first"}}, q.Take(1))
	assert.Equal(t, 2, q.Len())
}

func TestQueue_Take(t *testing.T) {
	q := NewBounded[int](0)
	q.Push(1, 2, 3, 4, 5)

	assert.Equal(t, []int{1, 2}, q.Take(2))
	assert.Equal(t, []int{3, 4, 5}, q.Take(10))
	assert.Nil(t, q.Take(3))
	assert.Nil(t, q.Take(0))
}

func TestBounded_DropsOldest(t *testing.T) {
	q := NewBounded[int](3)

	q.Push(1, 2)
	q.Push(3)
	assert.Equal(t, uint64(0), q.Dropped())

	q.Push(4)
	q.Push(5, 6, 7)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, uint64(4), q.Dropped())
	assert.Equal(t, []int{5, 6, 7}, q.Take(10))
}

func TestBounded_ZeroIsUnbounded(t *testing.T) {
	q := NewBounded[int](0)
	for i := 0; i < 1000; i++ {
		q.Push(i)
	}
	assert.Equal(t, 1000, q.Len())
	assert.Equal(t, uint64(0), q.Dropped())
}

func TestQueue_Concurrent(t *testing.T) {
	q := NewBounded[int](500)

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(w*100 + i)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			q.Take(5)
		}
	}()
	wg.Wait()

	assert.LessOrEqual(t, q.Len(), 500)
}
