package xpath

import (
	"io"
	"log/slog"
	"os"
)

// Tracer observes the phases of a query: the parser reports each
// production it enters and leaves, the compiler and the evaluator
// report failures as they surface, and the trace function labels the
// values flowing through it.
type Tracer interface {
	Enter(string)
	Leave(string)
	Error(string, error)
	Print(label, value string)
}

type discardTracer struct{}

func (_ discardTracer) Enter(_ string)          {}
func (_ discardTracer) Leave(_ string)          {}
func (_ discardTracer) Error(_ string, _ error) {}
func (_ discardTracer) Print(_, _ string)       {}

type stdioTracer struct {
	logger   *slog.Logger
	depth    int
	errcount int
}

func TraceStdout() Tracer {
	tracer := stdioTracer{
		logger: stdioLogger(os.Stdout),
	}
	return &tracer
}

func TraceStderr() Tracer {
	tracer := stdioTracer{
		logger: stdioLogger(os.Stderr),
	}
	return &tracer
}

func stdioLogger(w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}

func (t *stdioTracer) Enter(rule string) {
	t.depth++
	args := []any{
		"rule",
		rule,
		"depth",
		t.depth,
	}
	t.logger.Debug("enter", args...)
}

func (t *stdioTracer) Leave(rule string) {
	t.depth--
	args := []any{
		"rule",
		rule,
		"depth",
		t.depth,
	}
	t.logger.Debug("leave", args...)
}

func (t *stdioTracer) Error(rule string, err error) {
	t.errcount++
	args := []any{
		"rule",
		rule,
		"error",
		err,
		"count",
		t.errcount,
	}
	t.logger.Error("fail", args...)
}

func (t *stdioTracer) Print(label, value string) {
	args := []any{
		"label",
		label,
		"value",
		value,
	}
	t.logger.Info("trace", args...)
}
