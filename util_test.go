package pipex

import (
	"testing"
	"time"
)

// expectBlocked runs fn on its own goroutine and asserts it stays parked for
// a short window. The returned channel closes when fn eventually returns.
func expectBlocked(t *testing.T, name string, fn func()) chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("%s returned while it should block", name)
	case <-time.After(50 * time.Millisecond):
	}
	return done
}

// expectDone asserts a previously blocked call finishes promptly.
func expectDone(t *testing.T, name string, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("%s did not return", name)
	}
}

// stillBlocked asserts a previously blocked call has not finished yet.
func stillBlocked(t *testing.T, name string, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
		t.Fatalf("%s returned too early", name)
	case <-time.After(50 * time.Millisecond):
	}
}

// expectPanic asserts fn panics.
func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
