package buffer_test

import (
	"fmt"

	"github.com/c360/ringwindow/pkg/buffer"
)

func ExampleRing() {
	ring, err := buffer.NewRing[int](3)
	if err != nil {
		panic(err)
	}

	ring.OnEvicted(func(old int) error {
		fmt.Println("evicted", old)
		return nil
	})

	for i := 1; i <= 4; i++ {
		_ = ring.Enqueue(i)
	}
	fmt.Println(ring.ToSlice())

	v, _ := ring.Dequeue()
	fmt.Println("dequeued", v)
	fmt.Println(ring.Count(), "of", ring.Capacity())
	// Output:
	// evicted 1
	// [2 3 4]
	// dequeued 2
	// 2 of 3
}

func ExampleRing_rejecting() {
	ring, _ := buffer.NewRing[string](2, buffer.WithOverwrite[string](false))

	fmt.Println(ring.TryEnqueue("a"), ring.TryEnqueue("b"), ring.TryEnqueue("c"))
	fmt.Println(ring.ToSlice())
	// Output:
	// true true false
	// [a b]
}

func ExampleRing_Segments() {
	ring, _ := buffer.NewRingFrom([]int{1, 2, 3, 4, 5, 6}, 4)

	first, second := ring.Segments()
	fmt.Println(first.AppendTo(nil), second.AppendTo(nil))
	// Output:
	// [3 4 5 6] []
}

func ExampleRing_TrimExcess() {
	ring, _ := buffer.NewRing[int](100)
	_ = ring.Enqueue(1)
	_ = ring.Enqueue(2)

	ring.TrimExcess()
	fmt.Println(ring.Capacity(), ring.ToSlice())
	// Output:
	// 2 [1 2]
}
