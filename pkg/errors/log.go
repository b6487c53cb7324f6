package errors

import (
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	stderrLoggerOnce sync.Once
	stderrLogger     log.Logger
)

func defaultLogger() log.Logger {
	stderrLoggerOnce.Do(func() {
		stderrLogger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		stderrLogger = log.With(stderrLogger, "ts", log.DefaultTimestampUTC)
	})
	return stderrLogger
}

// LogHandler is an ErrorHandler that writes structured log lines.
type LogHandler struct {
	// Logger receives the log lines. Nil means logfmt on stderr.
	Logger log.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return defaultLogger()
}

// HandleError logs a KitError.
func (h *LogHandler) HandleError(err *KitError) {
	if err == nil {
		return
	}
	kv := []any{"msg", "listkit error", "op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.Position >= 0 {
		kv = append(kv, "position", err.Position)
	}
	if h.Verbose && err.StackTrace != "" {
		kv = append(kv, "stack", err.StackTrace)
	}
	level.Error(h.logger()).Log(kv...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	kv := []any{"msg", "recovered panic", "value", err.Value}
	if err.Op != "" {
		kv = append(kv, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		kv = append(kv, "stack", err.StackTrace)
	}
	level.Error(h.logger()).Log(kv...)
}

// HandleFault logs a FaultError. The stack trace is always included since a
// fault is a bug in the caller.
func (h *LogHandler) HandleFault(err *FaultError) {
	if err == nil {
		return
	}
	level.Error(h.logger()).Log("msg", "contract violation", "op", err.Op, "kind", err.Kind.String(), "err", err.Error(), "stack", err.StackTrace)
}
