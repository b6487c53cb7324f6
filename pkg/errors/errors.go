// Package errors provides structured error handling for listkit.
//
// Two failure classes exist. Recoverable problems (bad configuration, a
// panicking user callback) are described by [KitError] and [PanicError] and
// sent to the global [ErrorHandler]. Contract violations by the caller, such
// as indexing past the end of a container, are described by [FaultError];
// they are reported to the handler and then raised as a panic by [Fault].
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindBounds indicates an index outside the valid range.
	KindBounds
	// KindUseAfterDestroy indicates use of a container after Destroy.
	KindUseAfterDestroy
	// KindLifecycle indicates a list item used in the wrong lifecycle state.
	KindLifecycle
	// KindCallback indicates a failing user callback.
	KindCallback
	// KindConfig indicates an invalid configuration.
	KindConfig
	// KindRender indicates a snapshot rendering error.
	KindRender
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindBounds:
		return "bounds"
	case KindUseAfterDestroy:
		return "use-after-destroy"
	case KindLifecycle:
		return "lifecycle"
	case KindCallback:
		return "callback"
	case KindConfig:
		return "config"
	case KindRender:
		return "render"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// KitError represents a structured, recoverable error.
type KitError struct {
	// Op is the operation that failed (e.g., "listitem.SignalFactory.Bind").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Position is the list position involved, or -1 when not applicable.
	Position int
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *KitError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s [%s] position=%d: %v", e.Op, e.Kind, e.Position, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *KitError) Unwrap() error {
	return e.Err
}

// FaultError describes a violated precondition. It is never returned as a
// normal result; [Fault] panics with it.
type FaultError struct {
	// Op is the operation whose contract was violated (e.g., "smallarray.Get").
	Op string
	// Kind is KindBounds, KindUseAfterDestroy or KindLifecycle.
	Kind ErrorKind
	// Index is the offending index for bounds faults.
	Index int
	// Len is the container length at the time of a bounds fault.
	Len int
	// Detail is a free-form description for non-bounds faults.
	Detail string
	// StackTrace contains the call stack at the time of the fault.
	StackTrace string
	// Timestamp is when the fault occurred.
	Timestamp time.Time
}

func (e *FaultError) Error() string {
	if e.Kind == KindBounds {
		return fmt.Sprintf("%s: index %d out of range [0:%d]", e.Op, e.Index, e.Len)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s [%s]", e.Op, e.Kind)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "listitem.SignalFactory.Setup").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by listkit.
type ErrorHandler interface {
	// HandleError is called when a recoverable error occurs.
	HandleError(err *KitError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleFault is called just before a contract violation panics.
	HandleFault(err *FaultError)
}
