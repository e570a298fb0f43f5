package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringwindow/errors"
)

func newTestRing[T any](t *testing.T, capacity int, options ...Option[T]) *Ring[T] {
	t.Helper()
	r, err := NewRing[T](capacity, options...)
	require.NoError(t, err)
	return r
}

func TestNewRing_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		r, err := NewRing[int](capacity)
		require.Error(t, err)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		assert.True(t, errors.IsInvalid(err))
	}
}

func TestRing_InitialState(t *testing.T) {
	r := newTestRing[int](t, 5)

	assert.Equal(t, 5, r.Capacity())
	assert.Equal(t, 0, r.Count())
	assert.True(t, r.IsEmpty())
	assert.False(t, r.IsFull())
	assert.True(t, r.AllowOverwrite())
	assert.Equal(t, "ring", r.Name())
	assert.Equal(t, uint64(0), r.Version())
	assert.Empty(t, r.ToSlice())
	assert.NotNil(t, r.ToSlice())
}

func TestRing_FillToCapacity(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 7, 64, 100} {
		r := newTestRing[int](t, capacity)
		for i := range capacity {
			require.NoError(t, r.Enqueue(i))
		}
		assert.Equal(t, capacity, r.Count(), "capacity %d", capacity)
		assert.True(t, r.IsFull())
	}
}

func TestRing_FIFO(t *testing.T) {
	r := newTestRing[string](t, 4)

	for _, s := range []string{"first", "second", "third"} {
		require.NoError(t, r.Enqueue(s))
	}

	v, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.Equal(t, 3, r.Count(), "Peek should not change count")

	for _, want := range []string{"first", "second", "third"} {
		got, err := r.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, r.IsEmpty())
}

func TestRing_FIFOAcrossWraps(t *testing.T) {
	r := newTestRing[int](t, 3, WithOverwrite[int](false))

	next := 0
	expect := 0
	for round := 0; round < 50; round++ {
		for r.TryEnqueue(next) {
			next++
		}
		for range 2 {
			v, ok := r.TryDequeue()
			require.True(t, ok)
			require.Equal(t, expect, v)
			expect++
		}
	}
	for _, v := range r.ToSlice() {
		assert.Equal(t, expect, v)
		expect++
	}
}

func TestRing_DequeueEmpty(t *testing.T) {
	r := newTestRing[int](t, 2)

	_, ok := r.TryDequeue()
	assert.False(t, ok)

	_, err := r.Dequeue()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBufferEmpty)
	assert.ErrorIs(t, err, errors.ErrInvalidOperation)
	assert.True(t, errors.IsTransient(err))

	_, ok = r.TryPeek()
	assert.False(t, ok)

	_, err = r.Peek()
	assert.ErrorIs(t, err, ErrBufferEmpty)
}

func TestRing_DequeueBatch(t *testing.T) {
	r := newTestRing[int](t, 5)
	for i := range 5 {
		require.NoError(t, r.Enqueue(i))
	}

	assert.Equal(t, []int{0, 1}, r.DequeueBatch(2))
	assert.Equal(t, []int{2, 3, 4}, r.DequeueBatch(10))
	assert.Empty(t, r.DequeueBatch(3))
	assert.Empty(t, r.DequeueBatch(0))
	assert.Empty(t, r.DequeueBatch(-1))
}

// A dequeue frees a slot, so the next enqueue does not evict.
func TestRing_OverwriteAfterDequeue(t *testing.T) {
	var evicted []int
	r := newTestRing[int](t, 3, WithEvictedHandler(func(v int) error {
		evicted = append(evicted, v)
		return nil
	}))

	for i := 1; i <= 3; i++ {
		require.NoError(t, r.Enqueue(i))
	}
	v, err := r.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, r.Enqueue(4))
	assert.Equal(t, []int{2, 3, 4}, r.ToSlice())
	assert.Empty(t, evicted)
}

// A full ring without overwrite rejects and leaves contents and version untouched.
func TestRing_RejectWhenFull(t *testing.T) {
	r := newTestRing[int](t, 2, WithOverwrite[int](false))

	require.NoError(t, r.Enqueue(1))
	require.NoError(t, r.Enqueue(2))
	versionBefore := r.Version()

	err := r.Enqueue(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBufferFull)
	assert.ErrorIs(t, err, errors.ErrInvalidOperation)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, 2, r.Count())

	assert.False(t, r.TryEnqueue(3))
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []int{1, 2}, r.ToSlice())
	assert.Equal(t, versionBefore, r.Version())
	assert.Equal(t, int64(2), r.Stats().Rejected())
}

// A stored nil pointer is an element, not an empty slot.
func TestRing_NilPayload(t *testing.T) {
	a, b := "A", "B"
	r := newTestRing[*string](t, 3)

	require.NoError(t, r.Enqueue(&a))
	require.NoError(t, r.Enqueue(nil))
	require.NoError(t, r.Enqueue(&b))

	assert.Equal(t, []*string{&a, nil, &b}, r.ToSlice())
	assert.Equal(t, 3, r.Count())
	assert.True(t, Contains(r, nil))

	v, err := r.At(1)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, _ = r.Dequeue()
	v, ok := r.TryDequeue()
	require.True(t, ok, "a stored nil is not an empty slot")
	assert.Nil(t, v)
}

func TestRing_ZeroValuePayload(t *testing.T) {
	r := newTestRing[int](t, 2)
	require.NoError(t, r.Enqueue(0))

	assert.Equal(t, 1, r.Count())
	v, ok := r.TryDequeue()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestRing_SetAllowOverwrite(t *testing.T) {
	r := newTestRing[int](t, 1)
	require.NoError(t, r.Enqueue(1))
	require.NoError(t, r.Enqueue(2))
	assert.Equal(t, []int{2}, r.ToSlice())

	r.SetAllowOverwrite(false)
	assert.False(t, r.AllowOverwrite())
	assert.ErrorIs(t, r.Enqueue(3), ErrBufferFull)

	r.SetAllowOverwrite(true)
	require.NoError(t, r.Enqueue(3))
	assert.Equal(t, []int{3}, r.ToSlice())
}

func TestRing_CapacityOne(t *testing.T) {
	r := newTestRing[int](t, 1)

	for i := range 10 {
		require.NoError(t, r.Enqueue(i))
		assert.Equal(t, 1, r.Count())
		assert.Equal(t, []int{i}, r.ToSlice())
	}

	v, ok := r.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 9, v)
	assert.True(t, r.IsEmpty())

	_, ok = r.TryDequeue()
	assert.False(t, ok)

	require.NoError(t, r.Enqueue(42))
	v, ok = r.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestRing_VersionAdvancesOnMutation(t *testing.T) {
	r := newTestRing[int](t, 2)

	v0 := r.Version()
	require.NoError(t, r.Enqueue(1))
	v1 := r.Version()
	assert.Greater(t, v1, v0)

	_ = r.ToSlice()
	_, _ = r.TryPeek()
	assert.Equal(t, v1, r.Version(), "reads must not change the version")

	_, _ = r.TryDequeue()
	assert.Greater(t, r.Version(), v1)
}

func TestNewRingFrom(t *testing.T) {
	t.Run("sized to source", func(t *testing.T) {
		r, err := NewRingFrom([]int{1, 2, 3}, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, r.Capacity())
		assert.Equal(t, []int{1, 2, 3}, r.ToSlice())
		assert.True(t, r.IsFull())
	})

	t.Run("empty source keeps minimum capacity", func(t *testing.T) {
		r, err := NewRingFrom[int](nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, r.Capacity())
		assert.True(t, r.IsEmpty())
	})

	t.Run("larger capacity", func(t *testing.T) {
		r, err := NewRingFrom([]int{1, 2}, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, r.Capacity())
		require.NoError(t, r.Enqueue(3))
		assert.Equal(t, []int{1, 2, 3}, r.ToSlice())
	})

	t.Run("oversized source keeps newest with overwrite", func(t *testing.T) {
		var evicted int
		r, err := NewRingFrom([]int{1, 2, 3, 4, 5}, 3, WithEvictingHandler(func(int) error {
			evicted++
			return nil
		}))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4, 5}, r.ToSlice())
		assert.Zero(t, evicted, "construction does not notify")

		require.NoError(t, r.Enqueue(6))
		assert.Equal(t, []int{4, 5, 6}, r.ToSlice())
		assert.Equal(t, 1, evicted)
	})

	t.Run("oversized source rejected without overwrite", func(t *testing.T) {
		r, err := NewRingFrom([]int{1, 2, 3}, 2, WithOverwrite[int](false))
		require.Error(t, err)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrSourceTooLarge)
		assert.ErrorIs(t, err, errors.ErrInvalidOperation)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := NewRingFrom([]int{1}, -1)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("source is copied", func(t *testing.T) {
		src := []int{1, 2}
		r, err := NewRingFrom(src, 0)
		require.NoError(t, err)
		src[0] = 99
		assert.Equal(t, []int{1, 2}, r.ToSlice())
	})
}

func TestRing_Clear(t *testing.T) {
	var evicted int
	r := newTestRing[int](t, 4, WithEvictingHandler(func(int) error {
		evicted++
		return nil
	}))
	for i := range 6 {
		require.NoError(t, r.Enqueue(i))
	}
	require.Equal(t, 2, evicted)

	r.Clear()
	assert.True(t, r.IsEmpty())
	assert.Empty(t, r.ToSlice())
	assert.Equal(t, 4, r.Capacity())
	assert.Equal(t, 2, evicted, "Clear does not notify eviction handlers")
	assert.Equal(t, int64(1), r.Stats().Clears())

	require.NoError(t, r.Enqueue(10))
	assert.Equal(t, []int{10}, r.ToSlice())
}

func TestRing_Options(t *testing.T) {
	r := newTestRing[int](t, 2,
		WithName[int]("telemetry"),
		WithLogger[int](nil),
		nil,
	)
	assert.Equal(t, "telemetry", r.Name())
	assert.NotNil(t, r.logger)
}

func TestRing_Statistics(t *testing.T) {
	r := newTestRing[int](t, 3)

	for i := range 5 {
		require.NoError(t, r.Enqueue(i))
	}
	_, _ = r.TryDequeue()

	stats := r.Stats()
	assert.Equal(t, int64(5), stats.Enqueued())
	assert.Equal(t, int64(1), stats.Dequeued())
	assert.Equal(t, int64(2), stats.Evicted())
	assert.Equal(t, int64(3), stats.MaxSize())
	assert.Equal(t, int64(2), stats.CurrentSize())
	assert.InDelta(t, 0.4, stats.EvictionRate(), 1e-9)
	assert.InDelta(t, 2.0/3.0, stats.Utilization(3), 1e-9)

	summary := stats.Summary()
	assert.Equal(t, int64(5), summary.Enqueued)
	assert.Equal(t, int64(2), summary.Evicted)

	stats.Reset()
	assert.Zero(t, stats.Enqueued())
	assert.Zero(t, stats.MaxSize())
	assert.Zero(t, stats.RejectionRate())
}
