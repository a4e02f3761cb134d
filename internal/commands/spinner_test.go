package commands

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var out syncBuffer
	s := newSpinner(&out, "Generating DAG")
	s.start()
	time.Sleep(200 * time.Millisecond)
	s.stopWithSuccess("done")

	got := out.String()
	if !strings.Contains(got, "Generating DAG") {
		t.Errorf("spinner never rendered its message: %q", got)
	}
	if !strings.HasSuffix(got, "done\n") {
		t.Errorf("output = %q, want success line last", got)
	}
}

func TestSpinnerLifecycle_StopTwice(t *testing.T) {
	var out syncBuffer
	s := newSpinner(&out, "Generating DAG")
	s.start()
	s.stopWithError()
	s.stopWithError()
}
