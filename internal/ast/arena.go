package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is append-only storage with stable 1-based indices; index 0 is
// reserved as the invalid sentinel so the zero value of an ID type
// never resolves.
type Arena[T any] struct {
	data []T
}

// NewArena creates an arena with a capacity hint. Slot 0 is occupied by
// a zero sentinel.
func NewArena[T any](capHint uint) *Arena[T] {
	a := &Arena[T]{data: make([]T, 1, capHint+1)}
	return a
}

// Allocate stores the item and returns its 1-based index.
func (a *Arena[T]) Allocate(item T) uint32 {
	idx, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	a.data = append(a.data, item)
	return idx
}

// Get returns a pointer to the stored item, or nil for index 0 and
// out-of-range indices.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) >= len(a.data) {
		return nil
	}
	return &a.data[index]
}

// Len reports the number of allocated items, excluding the sentinel.
func (a *Arena[T]) Len() int {
	return len(a.data) - 1
}

// Each calls f for every allocated item in allocation order. Returning
// false stops the walk.
func (a *Arena[T]) Each(f func(index uint32, item *T) bool) {
	for i := 1; i < len(a.data); i++ {
		idx, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("arena overflow: %w", err))
		}
		if !f(idx, &a.data[i]) {
			return
		}
	}
}
