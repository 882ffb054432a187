// Package errors extends the standard library errors with slog annotations and the source location where the
// error was created or wrapped.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	file  string
	line  int
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

func (e *annotatedError) source() string {
	if e.file == "" {
		return ""
	}
	return e.file + ":" + strconv.Itoa(e.line)
}

func newAnnotated(msg string, err error, skip int, attrs []slog.Attr) *annotatedError {
	_, file, line, _ := runtime.Caller(skip + 1)
	return &annotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		file:  file,
		line:  line,
	}
}

// NewSentinel creates a sentinel error meant to be declared as a package level variable. Sentinels carry no source
// location since the declaration site is not interesting when debugging.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // this is the sentinel constructor.
}

// New creates an error annotated with attrs and the caller's source location.
func New(msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, nil, 1, attrs)
}

// Wrap wraps err with msg and attrs. The caller's source location is recorded and reported by [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, err, 1, attrs)
}

// DecoratePanic converts a recovered panic value into an error pointing to the line that panicked.
//
// It must be called from the deferred function that recovered the panic. Returns nil when excp is nil.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var decorated *annotatedError
	if err, ok := excp.(error); ok {
		decorated = &annotatedError{msg: "panic", err: err, attrs: nil, file: "", line: 0}
	} else {
		decorated = &annotatedError{msg: fmt.Sprintf("panic: %v", excp), err: nil, attrs: nil, file: "", line: 0}
	}
	decorated.file, decorated.line = panicSite()
	return decorated
}

// panicSite walks the stack past runtime.gopanic to find the frame that panicked.
func panicSite() (string, int) {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(3, pcs) //nolint:mnd // skip runtime.Callers, panicSite, and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])
	var (
		first      runtime.Frame
		seenFirst  bool
		afterPanic bool
	)
	for {
		frame, more := frames.Next()
		if !seenFirst {
			first = frame
			seenFirst = true
		}
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File, frame.Line
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			break
		}
	}
	return first.File, first.Line
}

// SlogError renders err as a structured "error" group containing the message, the annotations collected from the
// whole error chain, and the source location of the innermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var (
		annotations []any
		source      string
	)
	walk(err, func(e *annotatedError) {
		for _, attr := range e.attrs {
			annotations = append(annotations, attr)
		}
		if s := e.source(); s != "" {
			source = s
		}
	})
	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// walk visits every annotated error in the chain from outermost to innermost, descending into joined errors.
func walk(err error, visit func(*annotatedError)) {
	for err != nil {
		if annotated, ok := err.(*annotatedError); ok { //nolint:errorlint // we walk the chain manually.
			visit(annotated)
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok { //nolint:errorlint // same as above.
			for _, inner := range joined.Unwrap() {
				walk(inner, visit)
			}
			return
		}
		err = stderrors.Unwrap(err)
	}
}

// Is reports whether any error in err's tree matches target. See [errors.Is].
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target. See [errors.As].
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors. See [errors.Join].
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
