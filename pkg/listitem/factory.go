package listitem

import (
	"fmt"

	"github.com/go-drift/listkit/pkg/errors"
	"github.com/go-drift/listkit/pkg/smallarray"
)

// Factory creates and recycles the contents of list items.
//
// Implementations must enforce the lifecycle: Setup on a new item, Bind on a
// set-up item, Unbind on a bound item, Teardown on a set-up or bound item.
type Factory interface {
	// Setup prepares a new item, typically by creating its child.
	Setup(li *ListItem)
	// Bind attaches the item to a model position.
	Bind(li *ListItem, position int, item any)
	// Unbind detaches the item from its model position.
	Unbind(li *ListItem)
	// Teardown releases the item. A bound item is unbound first.
	Teardown(li *ListItem)
}

// Signal identifies a lifecycle event of SignalFactory.
type Signal uint8

const (
	SignalSetup Signal = iota
	SignalBind
	SignalUnbind
	SignalTeardown
	numSignals
)

func (s Signal) String() string {
	switch s {
	case SignalSetup:
		return "setup"
	case SignalBind:
		return "bind"
	case SignalUnbind:
		return "unbind"
	case SignalTeardown:
		return "teardown"
	default:
		return fmt.Sprintf("Signal(%d)", uint8(s))
	}
}

// Handler is a callback connected to a Signal.
type Handler func(li *ListItem)

// HandlerID identifies a connected handler. IDs are never reused by a
// factory and are never zero.
type HandlerID uint64

type handler struct {
	id           HandlerID
	signal       Signal
	fn           Handler
	disconnected bool
}

// inlineHandlers is the number of handlers per signal stored without a heap
// allocation for the handler list.
const inlineHandlers = 4

type handlerList struct {
	buf      [inlineHandlers]*handler
	arr      smallarray.Array[*handler]
	ready    bool
	live     int
	dead     int
	emitting int
}

func (l *handlerList) ensure() {
	if !l.ready {
		l.arr.Init(l.buf[:])
		l.ready = true
	}
}

// compact rebuilds the list without disconnected handlers.
func (l *handlerList) compact() {
	keep := make([]*handler, 0, l.live)
	for _, h := range l.arr.Slice() {
		if !h.disconnected {
			keep = append(keep, h)
		}
	}
	l.arr.Destroy(nil)
	l.buf = [inlineHandlers]*handler{}
	l.arr.Init(l.buf[:])
	for _, h := range keep {
		l.arr.Append(h)
	}
	l.dead = 0
}

// SignalFactory is a Factory that emits a signal for every lifecycle
// transition. Handlers for a signal run in the order they were connected. A
// handler that panics is reported as a callback error to the global error
// handler and the remaining handlers still run.
//
// The zero value is ready to use. A SignalFactory must not be copied after
// the first handler is connected, and it is not safe for concurrent use.
type SignalFactory struct {
	nextID  HandlerID
	signals [numSignals]handlerList
	index   map[HandlerID]*handler
}

// Connect adds fn to the handlers of sig and returns its ID.
func (f *SignalFactory) Connect(sig Signal, fn Handler) HandlerID {
	if sig >= numSignals {
		errors.Fault(&errors.FaultError{
			Op:     "listitem.SignalFactory.Connect",
			Kind:   errors.KindBounds,
			Index:  int(sig),
			Len:    int(numSignals),
			Detail: "unknown signal",
		})
	}
	f.nextID++
	h := &handler{id: f.nextID, signal: sig, fn: fn}
	l := &f.signals[sig]
	l.ensure()
	l.arr.Append(h)
	l.live++
	if f.index == nil {
		f.index = make(map[HandlerID]*handler)
	}
	f.index[h.id] = h
	return h.id
}

// OnSetup connects fn to SignalSetup.
func (f *SignalFactory) OnSetup(fn Handler) HandlerID {
	return f.Connect(SignalSetup, fn)
}

// OnBind connects fn to SignalBind.
func (f *SignalFactory) OnBind(fn Handler) HandlerID {
	return f.Connect(SignalBind, fn)
}

// OnUnbind connects fn to SignalUnbind.
func (f *SignalFactory) OnUnbind(fn Handler) HandlerID {
	return f.Connect(SignalUnbind, fn)
}

// OnTeardown connects fn to SignalTeardown.
func (f *SignalFactory) OnTeardown(fn Handler) HandlerID {
	return f.Connect(SignalTeardown, fn)
}

// Disconnect removes the handler with the given ID. It reports whether the
// handler was connected. Disconnecting from inside a handler is allowed; the
// disconnected handler does not run again, including later in the current
// emission.
func (f *SignalFactory) Disconnect(id HandlerID) bool {
	h, ok := f.index[id]
	if !ok {
		return false
	}
	delete(f.index, id)
	h.disconnected = true
	l := &f.signals[h.signal]
	l.live--
	l.dead++
	if l.emitting == 0 && l.dead > l.live {
		l.compact()
	}
	return true
}

// HandlerCount returns the number of handlers connected to sig.
func (f *SignalFactory) HandlerCount(sig Signal) int {
	if sig >= numSignals {
		return 0
	}
	return f.signals[sig].live
}

// Setup implements Factory.
func (f *SignalFactory) Setup(li *ListItem) {
	expectState(li, "listitem.SignalFactory.Setup", StateNew)
	li.state = StateSetup
	f.emit(SignalSetup, li)
}

// Bind implements Factory.
func (f *SignalFactory) Bind(li *ListItem, position int, item any) {
	expectState(li, "listitem.SignalFactory.Bind", StateSetup)
	if position < 0 {
		errors.BoundsFault("listitem.SignalFactory.Bind", position, 0)
	}
	li.position = position
	li.item = item
	li.state = StateBound
	f.emit(SignalBind, li)
}

// Unbind implements Factory.
func (f *SignalFactory) Unbind(li *ListItem) {
	expectState(li, "listitem.SignalFactory.Unbind", StateBound)
	f.emit(SignalUnbind, li)
	li.position = -1
	li.item = nil
	li.selected = false
	li.state = StateSetup
}

// Teardown implements Factory.
func (f *SignalFactory) Teardown(li *ListItem) {
	if li.state == StateBound {
		f.Unbind(li)
	}
	expectState(li, "listitem.SignalFactory.Teardown", StateSetup)
	f.emit(SignalTeardown, li)
	li.child = nil
	li.state = StateTornDown
}

func (f *SignalFactory) emit(sig Signal, li *ListItem) {
	l := &f.signals[sig]
	if l.live == 0 {
		return
	}
	l.emitting++
	defer func() {
		l.emitting--
		if l.emitting == 0 && l.dead > l.live {
			l.compact()
		}
	}()
	for _, h := range l.arr.Slice() {
		if h.disconnected {
			continue
		}
		invoke(sig, h, li)
	}
}

func invoke(sig Signal, h *handler, li *ListItem) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fe, ok := r.(*errors.FaultError); ok {
			panic(fe)
		}
		errors.Report(&errors.KitError{
			Op:         "listitem.SignalFactory." + sig.String(),
			Kind:       errors.KindCallback,
			Err:        fmt.Errorf("handler %d panicked: %v", h.id, r),
			Position:   li.position,
			StackTrace: errors.CaptureStack(),
		})
	}()
	h.fn(li)
}

func expectState(li *ListItem, op string, want State) {
	if li.state != want {
		errors.Fault(&errors.FaultError{
			Op:     op,
			Kind:   errors.KindLifecycle,
			Detail: fmt.Sprintf("item is %s, want %s", li.state, want),
		})
	}
}
