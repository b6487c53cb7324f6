package listview

// Model supplies the items displayed by a View.
type Model interface {
	// Len returns the number of items.
	Len() int
	// Item returns the item at position i, 0 <= i < Len().
	Item(i int) any
}

// SliceModel adapts a slice to Model.
type SliceModel[T any] []T

// Len implements Model.
func (m SliceModel[T]) Len() int { return len(m) }

// Item implements Model.
func (m SliceModel[T]) Item(i int) any { return m[i] }

// FuncModel is a Model computed on demand.
type FuncModel struct {
	N  int
	Fn func(i int) any
}

// Len implements Model.
func (m FuncModel) Len() int { return m.N }

// Item implements Model.
func (m FuncModel) Item(i int) any { return m.Fn(i) }
