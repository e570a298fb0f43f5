package buffer

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringwindow/errors"
)

// wrappedRing returns a capacity-5 ring holding 3..7 with head in the middle of
// the backing array.
func wrappedRing(t *testing.T) *Ring[int] {
	t.Helper()
	r := newTestRing[int](t, 5)
	for i := range 8 {
		require.NoError(t, r.Enqueue(i))
	}
	return r
}

func TestRing_At(t *testing.T) {
	r := wrappedRing(t)

	for i, want := range []int{3, 4, 5, 6, 7} {
		got, err := r.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, index := range []int{-1, 5, 100} {
		_, err := r.At(index)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		assert.True(t, errors.IsInvalid(err))
	}

	_, _ = r.TryDequeue()
	_, err := r.At(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange, "index is checked against the current count")
}

func TestRing_CopyTo(t *testing.T) {
	r := wrappedRing(t)

	dst := make([]int, 7)
	require.NoError(t, r.CopyTo(dst, 2))
	assert.Equal(t, []int{0, 0, 3, 4, 5, 6, 7}, dst)

	exact := make([]int, 5)
	require.NoError(t, r.CopyTo(exact, 0))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, exact)

	err := r.CopyTo(make([]int, 6), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDestinationTooSmall)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	err = r.CopyTo(make([]int, 6), -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	err = r.CopyTo(make([]int, 6), 7)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	empty := newTestRing[int](t, 2)
	assert.NoError(t, empty.CopyTo([]int{}, 0))
}

func TestRing_Iterators(t *testing.T) {
	r := wrappedRing(t)

	var indexes, values []int
	for i, v := range r.All() {
		indexes = append(indexes, i)
		values = append(values, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indexes)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, values)

	assert.Equal(t, []int{3, 4, 5, 6, 7}, slices.Collect(r.Values()))

	// Early break
	var firstTwo []int
	for v := range r.Values() {
		firstTwo = append(firstTwo, v)
		if len(firstTwo) == 2 {
			break
		}
	}
	assert.Equal(t, []int{3, 4}, firstTwo)

	// The iterator works on a copy taken when iteration starts.
	for range r.All() {
		_, _ = r.TryDequeue()
	}
	assert.True(t, r.IsEmpty())
}

func TestRing_Contains(t *testing.T) {
	r := wrappedRing(t)

	assert.True(t, Contains(r, 3))
	assert.True(t, Contains(r, 7))
	assert.False(t, Contains(r, 2), "evicted elements are gone")
	assert.True(t, r.ContainsFunc(func(v int) bool { return v%5 == 0 }))
	assert.False(t, r.ContainsFunc(func(v int) bool { return v > 7 }))

	empty := newTestRing[int](t, 2)
	assert.False(t, Contains(empty, 0))
}

func TestRing_Segments(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		r := newTestRing[int](t, 3)
		first, second := r.Segments()
		assert.Zero(t, first.Len())
		assert.Zero(t, second.Len())
	})

	t.Run("contiguous", func(t *testing.T) {
		r := newTestRing[int](t, 5)
		for i := range 3 {
			require.NoError(t, r.Enqueue(i))
		}
		first, second := r.Segments()
		assert.Equal(t, []int{0, 1, 2}, first.AppendTo(nil))
		assert.Equal(t, 0, first.Offset())
		assert.Zero(t, second.Len())
		assert.Equal(t, 3, second.Offset())
	})

	t.Run("wrapped", func(t *testing.T) {
		r := wrappedRing(t)
		first, second := r.Segments()

		// head sits at physical index 3
		assert.Equal(t, 2, first.Len())
		assert.Equal(t, 3, second.Len())
		assert.Equal(t, 2, second.Offset())
		assert.Equal(t, r.ToSlice(), second.AppendTo(first.AppendTo(nil)))

		var indexes []int
		for i := range second.All() {
			indexes = append(indexes, i)
		}
		assert.Equal(t, []int{2, 3, 4}, indexes)

		v, ok := first.At(0)
		assert.True(t, ok)
		assert.Equal(t, 3, v)
		_, ok = first.At(2)
		assert.False(t, ok)
	})

	t.Run("live view", func(t *testing.T) {
		r := newTestRing[int](t, 3)
		for i := range 3 {
			require.NoError(t, r.Enqueue(i))
		}
		first, _ := r.Segments()

		_, _ = r.TryDequeue()
		_, ok := first.At(0)
		assert.False(t, ok, "dequeued slot reads as vacant")
		assert.Equal(t, []int{1, 2}, first.AppendTo(nil))
	})
}

func TestRing_ToSliceBound(t *testing.T) {
	r := newTestRing[int](t, 4)
	for i := range 20 {
		require.NoError(t, r.Enqueue(i))
		items := r.ToSlice()
		assert.Equal(t, r.Count(), len(items))
		assert.LessOrEqual(t, len(items), r.Capacity())
	}
}

func TestRing_TrimExcess(t *testing.T) {
	t.Run("shrinks to count preserving order", func(t *testing.T) {
		r := wrappedRing(t)
		_, _ = r.TryDequeue()
		_, _ = r.TryDequeue()

		r.TrimExcess()
		assert.Equal(t, 3, r.Capacity())
		assert.Equal(t, 3, r.Count())
		if diff := cmp.Diff([]int{5, 6, 7}, r.ToSlice()); diff != "" {
			t.Errorf("contents after trim (-want +got):\n%s", diff)
		}
		assert.Equal(t, int64(1), r.Stats().Trims())

		// A trimmed ring is full and keeps working.
		require.NoError(t, r.Enqueue(8))
		assert.Equal(t, []int{6, 7, 8}, r.ToSlice())
		v, err := r.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, 6, v)
	})

	t.Run("idempotent", func(t *testing.T) {
		r := newTestRing[int](t, 10)
		for i := range 4 {
			require.NoError(t, r.Enqueue(i))
		}

		r.TrimExcess()
		version := r.Version()
		r.TrimExcess()
		assert.Equal(t, version, r.Version(), "second trim is a no-op")
		assert.Equal(t, 4, r.Capacity())
		assert.Equal(t, int64(1), r.Stats().Trims())
	})

	t.Run("empty keeps capacity one", func(t *testing.T) {
		r := newTestRing[int](t, 8)
		r.TrimExcess()
		assert.Equal(t, 1, r.Capacity())
		assert.True(t, r.IsEmpty())

		require.NoError(t, r.Enqueue(1))
		require.NoError(t, r.Enqueue(2))
		assert.Equal(t, []int{2}, r.ToSlice())
	})

	t.Run("full ring unchanged", func(t *testing.T) {
		r := wrappedRing(t)
		version := r.Version()
		r.TrimExcess()
		assert.Equal(t, 5, r.Capacity())
		assert.Equal(t, version, r.Version())
	})

	t.Run("old segments stay readable", func(t *testing.T) {
		r := newTestRing[int](t, 6)
		for i := range 3 {
			require.NoError(t, r.Enqueue(i))
		}
		first, _ := r.Segments()
		r.TrimExcess()
		_, _ = r.TryDequeue()

		assert.Equal(t, []int{0, 1, 2}, first.AppendTo(nil))
		assert.Equal(t, []int{1, 2}, r.ToSlice())
	})
}
