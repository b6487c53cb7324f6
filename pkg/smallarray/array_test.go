package smallarray

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/listkit/pkg/errors"
)

// quietHandler swallows fault reports so expected faults do not spam the
// test log.
type quietHandler struct{}

func (quietHandler) HandleError(*errors.KitError)   {}
func (quietHandler) HandlePanic(*errors.PanicError) {}
func (quietHandler) HandleFault(*errors.FaultError) {}

func silenceFaults(t *testing.T) {
	t.Helper()
	old := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	t.Cleanup(func() { errors.SetHandler(old) })
}

func expectFault(t *testing.T, kind errors.ErrorKind, fn func()) *errors.FaultError {
	t.Helper()
	var fault *errors.FaultError
	func() {
		defer func() {
			r := recover()
			fe, ok := r.(*errors.FaultError)
			if !ok {
				t.Fatalf("recovered %v (%T), want *errors.FaultError", r, r)
			}
			fault = fe
		}()
		fn()
	}()
	if fault.Kind != kind {
		t.Errorf("fault kind = %s, want %s", fault.Kind, kind)
	}
	return fault
}

func contents[T any](a *Array[T]) []T {
	out := make([]T, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		out = append(out, a.Get(i))
	}
	return out
}

func TestAppendWithinReservedStaysInline(t *testing.T) {
	var buf [4]string
	a := New(buf[:])
	for _, s := range []string{"A", "B", "C", "D"} {
		a.Append(s)
	}

	if a.Overflowed() {
		t.Fatal("array migrated before exceeding its reserved size")
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, contents(a)); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, buf[:]); diff != "" {
		t.Errorf("inline buffer should hold the elements (-want +got):\n%s", diff)
	}
}

func TestAppendWithinReservedDoesNotAllocate(t *testing.T) {
	var buf [8]uintptr
	var a Array[uintptr]
	allocs := testing.AllocsPerRun(100, func() {
		a.Init(buf[:])
		for i := range len(buf) {
			a.Append(uintptr(i + 1))
		}
		_ = a.Get(len(buf) - 1)
		_ = a.Slice()
	})
	if allocs != 0 {
		t.Errorf("allocations = %v, want 0", allocs)
	}
	if a.Overflowed() {
		t.Error("array should still be inline")
	}
}

func TestMigrationHappensExactlyOnce(t *testing.T) {
	var buf [4]uintptr
	var a Array[uintptr]
	allocs := testing.AllocsPerRun(100, func() {
		a.Init(buf[:])
		for i := range len(buf) + 1 {
			a.Append(uintptr(i))
		}
	})
	if allocs != 1 {
		t.Errorf("allocations = %v, want exactly 1 for the migration", allocs)
	}

	a.Init(buf[:])
	for i := range len(buf) {
		a.Append(uintptr(10 + i))
	}
	before := append([]uintptr(nil), a.Slice()...)
	a.Append(99)

	if !a.Overflowed() {
		t.Fatal("array should have migrated")
	}
	want := append(before, 99)
	if diff := cmp.Diff(want, contents(&a)); diff != "" {
		t.Errorf("contents after migration (-want +got):\n%s", diff)
	}
}

func TestOverflowIsNeverAbandoned(t *testing.T) {
	var buf [2]int
	a := New(buf[:])
	for i := range 100 {
		a.Append(i)
	}
	if a.Mode() != ModeOverflow {
		t.Fatalf("mode = %s, want overflow", a.Mode())
	}
	if a.Len() != 100 || a.ReservedSize() != 2 {
		t.Errorf("len=%d reserved=%d, want 100 and 2", a.Len(), a.ReservedSize())
	}
	for i := range 100 {
		if got := a.Get(i); got != i {
			t.Fatalf("Get(%d) = %d", i, got)
		}
	}
	// The borrowed buffer is abandoned after migration, not kept in sync.
	if buf != [2]int{0, 1} {
		t.Errorf("inline buffer = %v, want first two elements only", buf)
	}
}

func TestZeroReservedMigratesOnFirstAppend(t *testing.T) {
	var a Array[int]
	a.Init(nil)
	a.Append(1)
	if !a.Overflowed() {
		t.Error("zero-capacity array should migrate on first append")
	}
	if got := a.Get(0); got != 1 {
		t.Errorf("Get(0) = %d, want 1", got)
	}
}

func TestInsertInline(t *testing.T) {
	tests := []struct {
		name  string
		start []string
		index int
		want  []string
	}{
		{"front", []string{"a", "b", "c"}, 0, []string{"h", "a", "b", "c"}},
		{"middle", []string{"a", "b", "c"}, 1, []string{"a", "h", "b", "c"}},
		{"end", []string{"a", "b", "c"}, 3, []string{"a", "b", "c", "h"}},
		{"past end", []string{"a", "b"}, 10, []string{"a", "b", "h"}},
		{"empty", nil, 0, []string{"h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf [4]string
			a := New(buf[:])
			for _, s := range tt.start {
				a.Append(s)
			}
			a.Insert(tt.index, "h")
			if a.Overflowed() {
				t.Error("insert with room should stay inline")
			}
			if diff := cmp.Diff(tt.want, contents(a)); diff != "" {
				t.Errorf("contents (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInsertTriggersMigration(t *testing.T) {
	var buf [3]string
	a := New(buf[:])
	a.Append("a")
	a.Append("b")
	a.Append("c")

	a.Insert(1, "h")

	if !a.Overflowed() {
		t.Fatal("insert into a full inline buffer should migrate")
	}
	if diff := cmp.Diff([]string{"a", "h", "b", "c"}, contents(a)); diff != "" {
		t.Errorf("contents (-want +got):\n%s", diff)
	}
}

func TestInsertAfterMigration(t *testing.T) {
	var buf [2]int
	a := New(buf[:])
	for i := range 5 {
		a.Append(i)
	}
	a.Insert(0, -1)
	a.Insert(3, 100)
	a.Insert(a.Len(), 200)

	want := []int{-1, 0, 1, 100, 2, 3, 4, 200}
	if diff := cmp.Diff(want, contents(a)); diff != "" {
		t.Errorf("contents (-want +got):\n%s", diff)
	}
}

func TestDestroyVisitsEachElementInOrder(t *testing.T) {
	for _, n := range []int{0, 3, 4, 5, 40} {
		var buf [4]int
		a := New(buf[:])
		for i := range n {
			a.Insert(0, i)
		}
		want := append([]int(nil), a.Slice()...)

		var visited []int
		a.Destroy(func(v int) { visited = append(visited, v) })

		if len(visited) != n {
			t.Errorf("n=%d: destructor ran %d times", n, len(visited))
		}
		if diff := cmp.Diff(want, visited); diff != "" {
			t.Errorf("n=%d: destruction order (-want +got):\n%s", n, diff)
		}
	}
}

func TestDestroyDoesNotTouchInlineBuffer(t *testing.T) {
	const sentinel = ^uintptr(0)
	for _, n := range []int{2, 4, 9} {
		// One guard slot on each side of the borrowed region.
		var guarded [6]uintptr
		for i := range guarded {
			guarded[i] = sentinel
		}
		a := New(guarded[1:5])
		for i := range n {
			a.Append(uintptr(i + 1))
		}
		before := guarded

		a.Destroy(func(uintptr) {})

		if guarded != before {
			t.Errorf("n=%d: Destroy modified the inline buffer: %v -> %v", n, before, guarded)
		}
		if guarded[0] != sentinel || guarded[5] != sentinel {
			t.Errorf("n=%d: guard slots overwritten: %v", n, guarded)
		}
	}
}

func TestUseAfterDestroyFaults(t *testing.T) {
	silenceFaults(t)

	var buf [2]int
	a := New(buf[:])
	a.Append(1)
	a.Destroy(nil)

	expectFault(t, errors.KindUseAfterDestroy, func() { a.Get(0) })
	expectFault(t, errors.KindUseAfterDestroy, func() { a.Append(2) })
	expectFault(t, errors.KindUseAfterDestroy, func() { a.Insert(0, 2) })
	expectFault(t, errors.KindUseAfterDestroy, func() { a.Slice() })
	expectFault(t, errors.KindUseAfterDestroy, func() { a.Destroy(nil) })

	a.Init(buf[:])
	a.Append(7)
	if got := a.Get(0); got != 7 {
		t.Errorf("Get(0) after re-Init = %d, want 7", got)
	}
}

func TestGetOutOfBoundsFaults(t *testing.T) {
	silenceFaults(t)

	var buf [4]int
	a := New(buf[:])
	a.Append(1)
	a.Append(2)

	fault := expectFault(t, errors.KindBounds, func() { a.Get(2) })
	if fault.Index != 2 || fault.Len != 2 {
		t.Errorf("fault index=%d len=%d, want 2 and 2", fault.Index, fault.Len)
	}
	expectFault(t, errors.KindBounds, func() { a.Get(-1) })
	// Slots past Len are not readable even though the inline buffer has them.
	expectFault(t, errors.KindBounds, func() { a.Get(3) })
	expectFault(t, errors.KindBounds, func() { a.Insert(-1, 0) })
}

func TestSliceIsClipped(t *testing.T) {
	var buf [4]int
	a := New(buf[:])
	a.Append(1)
	a.Append(2)

	view := a.Slice()
	if cap(view) != 2 {
		t.Errorf("cap(view) = %d, want 2", cap(view))
	}
	_ = append(view, 99)
	if buf[2] != 0 {
		t.Error("appending to the view wrote into the inline buffer")
	}
}

func TestAllStopsEarly(t *testing.T) {
	var buf [2]int
	a := New(buf[:])
	for i := range 6 {
		a.Append(i * 10)
	}
	var got []int
	for i, v := range a.All() {
		if i == 3 {
			break
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]int{0, 10, 20}, got); diff != "" {
		t.Errorf("iteration (-want +got):\n%s", diff)
	}
}

func TestString(t *testing.T) {
	var buf [2]int
	a := New(buf[:])
	a.Append(1)
	if got, want := a.String(), "smallarray.Array{inline len=1 reserved=2}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	a.Destroy(nil)
	if got, want := a.String(), "smallarray.Array{destroyed}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestScenario(t *testing.T) {
	type handle struct{ Name string }
	A, B, C, D, E, F := &handle{"A"}, &handle{"B"}, &handle{"C"}, &handle{"D"}, &handle{"E"}, &handle{"F"}

	var buf [4]*handle
	a := New(buf[:])
	for _, h := range []*handle{A, B, C, D} {
		a.Append(h)
	}
	if a.Overflowed() {
		t.Fatal("four elements should fit inline")
	}
	if diff := cmp.Diff([]*handle{A, B, C, D}, a.Slice()); diff != "" {
		t.Errorf("after A..D (-want +got):\n%s", diff)
	}

	a.Append(E)
	if !a.Overflowed() {
		t.Fatal("fifth element should migrate")
	}
	if diff := cmp.Diff([]*handle{A, B, C, D, E}, a.Slice()); diff != "" {
		t.Errorf("after E (-want +got):\n%s", diff)
	}

	a.Insert(2, F)
	if diff := cmp.Diff([]*handle{A, B, F, C, D, E}, a.Slice()); diff != "" {
		t.Errorf("after insert F (-want +got):\n%s", diff)
	}

	var recorded []string
	a.Destroy(func(h *handle) { recorded = append(recorded, h.Name) })
	if diff := cmp.Diff([]string{"A", "B", "F", "C", "D", "E"}, recorded); diff != "" {
		t.Errorf("destroy order (-want +got):\n%s", diff)
	}
}

func BenchmarkAppendInline(b *testing.B) {
	var buf [16]uintptr
	var a Array[uintptr]
	b.ReportAllocs()
	for b.Loop() {
		a.Init(buf[:])
		for i := range 16 {
			a.Append(uintptr(i))
		}
	}
}

func BenchmarkAppendOverflow(b *testing.B) {
	var buf [16]uintptr
	var a Array[uintptr]
	b.ReportAllocs()
	for b.Loop() {
		a.Init(buf[:])
		for i := range 64 {
			a.Append(uintptr(i))
		}
	}
}
