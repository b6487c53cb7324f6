package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
)

func TestKitErrorString(t *testing.T) {
	err := &KitError{
		Op:       "listitem.SignalFactory.Bind",
		Kind:     KindCallback,
		Err:      stderrors.New("boom"),
		Position: -1,
	}
	want := "listitem.SignalFactory.Bind [callback]: boom"
	if got := err.Error(); got != want {
		t.Errorf("KitError.Error() = %q, want %q", got, want)
	}
}

func TestKitErrorWithPosition(t *testing.T) {
	err := &KitError{
		Op:       "listview.Layout",
		Kind:     KindCallback,
		Err:      stderrors.New("boom"),
		Position: 7,
	}
	if got := err.Error(); !strings.Contains(got, "position=7") {
		t.Errorf("error string %q should contain position", got)
	}
}

func TestKitErrorUnwrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := &KitError{Op: "config.Resolve", Kind: KindConfig, Err: inner, Position: -1}
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should see the wrapped error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindBounds, "bounds"},
		{KindUseAfterDestroy, "use-after-destroy"},
		{KindLifecycle, "lifecycle"},
		{KindCallback, "callback"},
		{KindConfig, "config"},
		{KindRender, "render"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestFaultErrorString(t *testing.T) {
	bounds := &FaultError{Op: "smallarray.Get", Kind: KindBounds, Index: 5, Len: 3}
	if got, want := bounds.Error(), "smallarray.Get: index 5 out of range [0:3]"; got != want {
		t.Errorf("FaultError.Error() = %q, want %q", got, want)
	}

	dead := &FaultError{Op: "smallarray.Append", Kind: KindUseAfterDestroy, Detail: "array used after Destroy"}
	if got, want := dead.Error(), "smallarray.Append [use-after-destroy]: array used after Destroy"; got != want {
		t.Errorf("FaultError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "listitem.SignalFactory.Setup"
	if got, want := err.Error(), "panic in listitem.SignalFactory.Setup: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *KitError
	handler := &testHandler{
		onError: func(err *KitError) {
			capturedErr = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&KitError{
		Op:       "test.op",
		Kind:     KindConfig,
		Err:      stderrors.New("bad value"),
		Position: -1,
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestFaultPanicsAfterReporting(t *testing.T) {
	var captured *FaultError
	handler := &testHandler{
		onFault: func(err *FaultError) {
			captured = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	defer func() {
		r := recover()
		fe, ok := r.(*FaultError)
		if !ok {
			t.Fatalf("recovered %T, want *FaultError", r)
		}
		if captured != fe {
			t.Error("handler should see the same fault that is raised")
		}
		if fe.StackTrace == "" {
			t.Error("expected stack trace on fault")
		}
		if fe.Index != 3 || fe.Len != 2 {
			t.Errorf("fault = %+v, want index 3 len 2", fe)
		}
	}()
	BoundsFault("test.get", 3, 2)
	t.Fatal("BoundsFault returned")
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
}

func TestRecoverReraisesFaults(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	defer func() {
		if _, ok := recover().(*FaultError); !ok {
			t.Error("fault should propagate through Recover")
		}
	}()
	func() {
		defer Recover("test.recover")
		BoundsFault("test.get", 1, 0)
	}()
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.recover", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback got %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandlerWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: log.NewLogfmtLogger(&buf)}

	h.HandleError(&KitError{Op: "config.Resolve", Kind: KindConfig, Err: stderrors.New("bad"), Position: -1})
	h.HandlePanic(&PanicError{Op: "listitem.SignalFactory.Bind", Value: "oops"})
	h.HandleFault(&FaultError{Op: "smallarray.Get", Kind: KindBounds, Index: 1, Len: 0})

	out := buf.String()
	for _, want := range []string{
		"level=error",
		"op=config.Resolve",
		"kind=config",
		"value=oops",
		`err="smallarray.Get: index 1 out of range [0:0]"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testHandler struct {
	onError func(*KitError)
	onPanic func(*PanicError)
	onFault func(*FaultError)
}

func (h *testHandler) HandleError(err *KitError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleFault(err *FaultError) {
	if h.onFault != nil {
		h.onFault(err)
	}
}
