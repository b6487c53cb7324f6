// Package listitem defines the list item model and the factories that drive
// a list item through its lifecycle.
//
// A list view creates a ListItem for a row, asks its Factory to set it up
// once, and then binds and unbinds it to model positions as the row is
// recycled while scrolling. When the view no longer needs the row it is
// torn down:
//
//	New ──Setup──▶ Setup ──Bind──▶ Bound
//	                 ▲               │
//	                 └────Unbind─────┘
//	Setup ──Teardown──▶ TornDown
//
// SignalFactory implements Factory by forwarding each transition to
// callbacks connected by the application:
//
//	f := &listitem.SignalFactory{}
//	f.OnSetup(func(li *listitem.ListItem) {
//	    li.SetChild(&Label{})
//	})
//	f.OnBind(func(li *listitem.ListItem) {
//	    li.Child().(*Label).Text = li.Item().(string)
//	})
package listitem

import "fmt"

// State is the lifecycle state of a ListItem.
type State uint8

const (
	// StateNew is a freshly created item that has not been set up.
	StateNew State = iota
	// StateSetup is an item with its child created but no model item bound.
	StateSetup
	// StateBound is an item displaying a model item.
	StateBound
	// StateTornDown is an item released by its factory.
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateSetup:
		return "setup"
	case StateBound:
		return "bound"
	case StateTornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ListItem is one row of a list view. The view owns the item; factories and
// their callbacks may set its child and read its binding.
type ListItem struct {
	state       State
	position    int
	item        any
	child       any
	selected    bool
	activatable bool
}

// New returns an unbound item in StateNew.
func New() *ListItem {
	return &ListItem{position: -1, activatable: true}
}

// State returns the lifecycle state.
func (li *ListItem) State() State {
	return li.state
}

// Position returns the model position the item is bound to, or -1.
func (li *ListItem) Position() int {
	return li.position
}

// Item returns the bound model item, or nil when unbound.
func (li *ListItem) Item() any {
	return li.item
}

// Child returns the widget created for this row during setup.
func (li *ListItem) Child() any {
	return li.child
}

// SetChild sets the widget displayed for this row.
func (li *ListItem) SetChild(child any) {
	li.child = child
}

// Selected reports whether the bound item is selected.
func (li *ListItem) Selected() bool {
	return li.selected
}

// SetSelected marks the row as selected. Unbinding clears it.
func (li *ListItem) SetSelected(selected bool) {
	li.selected = selected
}

// Activatable reports whether the row can be activated. Defaults to true.
func (li *ListItem) Activatable() bool {
	return li.activatable
}

// SetActivatable sets whether the row can be activated.
func (li *ListItem) SetActivatable(activatable bool) {
	li.activatable = activatable
}

func (li *ListItem) String() string {
	if li.state == StateBound {
		return fmt.Sprintf("ListItem{%s position=%d}", li.state, li.position)
	}
	return fmt.Sprintf("ListItem{%s}", li.state)
}
