// Package smallarray provides Array, a sequence container that starts out in
// caller-provided memory and moves to a container-owned, growable slice once
// that memory is full.
//
// The common use is a list-rendering hot path where most lists are short:
//
//	var buf [16]*listitem.ListItem
//	var items smallarray.Array[*listitem.ListItem]
//	items.Init(buf[:])
//	defer items.Destroy(nil)
//
//	for _, it := range visible {
//	    items.Append(it) // no allocation until the 17th element
//	}
//
// # Ownership
//
// The slice passed to Init is borrowed. The caller keeps it alive for the
// lifetime of the Array and must not read or write it through another alias
// while the Array is in use. The Array never releases it and Destroy never
// writes to it.
//
// The overflow slice is owned by the Array. It is created once, on the first
// element that does not fit in the borrowed buffer, and dropped by Destroy.
// There is no way back to the borrowed buffer.
//
// # Faults
//
// Index preconditions are checked in every build. An out-of-range index or
// any use after Destroy reports an [errors.FaultError] to the global handler
// and panics with it.
//
// Array is not safe for concurrent use.
package smallarray

import (
	"fmt"
	"iter"

	"github.com/go-drift/listkit/pkg/errors"
)

// minOverflowCap is the smallest capacity given to the overflow slice.
const minOverflowCap = 8

// Mode identifies which storage currently holds the elements.
type Mode uint8

const (
	// ModeInline means elements live in the borrowed buffer.
	ModeInline Mode = iota
	// ModeOverflow means elements live in the owned overflow slice.
	ModeOverflow
	// ModeDestroyed means Destroy has run and the Array is unusable.
	ModeDestroyed
)

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModeOverflow:
		return "overflow"
	case ModeDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Array is a hybrid small array. The zero value is an inline Array with no
// reserved slots; every Append on it migrates straight to overflow.
//
// mode is the tag over the two storages: in ModeInline only inline is
// meaningful and it is borrowed; in ModeOverflow only overflow is
// meaningful and it is owned.
type Array[T any] struct {
	mode     Mode
	n        int
	inline   []T
	overflow []T
}

// New returns an Array backed by buf. The capacity of the inline storage is
// len(buf).
func New[T any](buf []T) *Array[T] {
	a := &Array[T]{}
	a.Init(buf)
	return a
}

// Init (re)initializes a in inline mode over buf. It does not allocate.
// Calling Init on a destroyed Array makes it usable again.
func (a *Array[T]) Init(buf []T) {
	a.mode = ModeInline
	a.n = 0
	a.inline = buf[:len(buf):len(buf)]
	a.overflow = nil
}

// Len returns the number of stored elements.
func (a *Array[T]) Len() int {
	return a.n
}

// ReservedSize returns the number of slots in the borrowed buffer.
func (a *Array[T]) ReservedSize() int {
	return len(a.inline)
}

// Mode reports the active storage.
func (a *Array[T]) Mode() Mode {
	return a.mode
}

// Overflowed reports whether the Array has migrated to owned storage.
func (a *Array[T]) Overflowed() bool {
	return a.mode == ModeOverflow
}

// Get returns the element at index i. It faults unless 0 <= i < Len().
func (a *Array[T]) Get(i int) T {
	a.checkLive("smallarray.Get")
	if uint(i) >= uint(a.n) {
		errors.BoundsFault("smallarray.Get", i, a.n)
	}
	if a.mode == ModeOverflow {
		return a.overflow[i]
	}
	return a.inline[i]
}

// Append adds v at the end.
func (a *Array[T]) Append(v T) {
	a.checkLive("smallarray.Append")
	if a.mode == ModeInline {
		if a.n < len(a.inline) {
			a.inline[a.n] = v
			a.n++
			return
		}
		a.migrate()
	}
	a.overflow = append(a.overflow, v)
	a.n++
}

// Insert places v at index i, shifting the elements at i and after up by
// one. An index at or past Len() appends. A negative index faults.
func (a *Array[T]) Insert(i int, v T) {
	a.checkLive("smallarray.Insert")
	if i < 0 {
		errors.BoundsFault("smallarray.Insert", i, a.n)
	}
	if i >= a.n {
		a.Append(v)
		return
	}
	if a.mode == ModeInline {
		if a.n < len(a.inline) {
			copy(a.inline[i+1:a.n+1], a.inline[i:a.n])
			a.inline[i] = v
			a.n++
			return
		}
		a.migrate()
	}
	var zero T
	a.overflow = append(a.overflow, zero)
	copy(a.overflow[i+1:], a.overflow[i:a.n])
	a.overflow[i] = v
	a.n++
}

// Slice returns the stored elements as a slice of length Len(). The slice
// aliases the active storage and is only valid until the next mutation. Its
// capacity is clipped so appending to it never writes into the Array.
func (a *Array[T]) Slice() []T {
	a.checkLive("smallarray.Slice")
	if a.mode == ModeOverflow {
		return a.overflow[:a.n:a.n]
	}
	return a.inline[:a.n:a.n]
}

// All returns an iterator over index/element pairs in order. Mutating the
// Array during iteration is not allowed.
func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range a.Slice() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Destroy passes every element to free, in index order, when free is not
// nil, then releases the overflow storage. The borrowed buffer is neither
// written nor released. Any further use of a faults until Init is called
// again.
func (a *Array[T]) Destroy(free func(T)) {
	a.checkLive("smallarray.Destroy")
	if free != nil {
		for _, v := range a.Slice() {
			free(v)
		}
	}
	a.mode = ModeDestroyed
	a.n = 0
	a.inline = nil
	a.overflow = nil
}

func (a *Array[T]) String() string {
	if a.mode == ModeDestroyed {
		return "smallarray.Array{destroyed}"
	}
	return fmt.Sprintf("smallarray.Array{%s len=%d reserved=%d}", a.mode, a.n, len(a.inline))
}

// migrate moves the inline elements into a freshly allocated overflow slice
// with room for at least one more element.
func (a *Array[T]) migrate() {
	size := max(a.n+1, 2*len(a.inline), minOverflowCap)
	a.overflow = make([]T, a.n, size)
	copy(a.overflow, a.inline[:a.n])
	a.mode = ModeOverflow
}

func (a *Array[T]) checkLive(op string) {
	if a.mode == ModeDestroyed {
		errors.Fault(&errors.FaultError{
			Op:     op,
			Kind:   errors.KindUseAfterDestroy,
			Detail: "array used after Destroy",
		})
	}
}
