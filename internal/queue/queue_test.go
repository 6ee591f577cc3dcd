package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	require := require.New(t)

	q := New[int](4)
	require.True(q.IsEmpty())
	require.Equal(0, q.Length())

	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)
	require.False(q.IsEmpty())
	require.Equal(3, q.Length())

	head, ok := q.Peek()
	require.True(ok)
	require.Equal(1, head)
	require.Equal(3, q.Length())

	for want := 1; want <= 3; want++ {
		item, ok := q.Dequeue()
		require.True(ok)
		require.Equal(want, item)
	}

	_, ok = q.Dequeue()
	require.False(ok)
	_, ok = q.Peek()
	require.False(ok)
}

func TestQueue_Drain(t *testing.T) {
	require := require.New(t)

	q := New[string](0)
	require.Nil(q.Drain())

	q.Enqueue("a")
	q.Enqueue("b")

	items := q.Drain()
	require.Equal([]string{"a", "b"}, items)
	require.True(q.IsEmpty())
	require.Nil(q.Drain())

	// The queue remains usable after a drain.
	q.Enqueue("c")
	require.Equal([]string{"c"}, q.Drain())
}

func TestQueue_Reset(t *testing.T) {
	require := require.New(t)

	q := New[int](0)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Reset()

	require.True(q.IsEmpty())
	_, ok := q.Dequeue()
	require.False(ok)

	q.Enqueue(7)
	item, ok := q.Dequeue()
	require.True(ok)
	require.Equal(7, item)
}
