package testhelpers

import (
	"io"
	"strings"
	"testing"
)

// Writer implements io.Writer on top of t.Log so that logs are only shown for failing tests.
type Writer struct {
	t    *testing.T
	done chan struct{}
}

// NewWriter creates a new Writer that writes to t.Log.
//
// Writing after the test has finished panics. That happens when a server or a background worker such as the plan
// persister outlives the test, which means a missing t.Cleanup.
func NewWriter(t *testing.T) io.Writer {
	w := &Writer{
		t:    t,
		done: make(chan struct{}),
	}
	t.Cleanup(func() {
		close(w.done)
	})
	return w
}

// Write implements io.Writer by writing to t.Log.
func (w *Writer) Write(p []byte) (int, error) {
	select {
	case <-w.done:
		panic("testwriter: write after test completion: " + string(p))
	default:
	}
	// t.Log adds its own newline.
	if output := strings.TrimSuffix(string(p), "\n"); output != "" {
		w.t.Log(output)
	}
	return len(p), nil
}
