package test

import (
	"context"
	"testing"
	"time"

	"github.com/ridge/quarry/tlog"
)

// Context returns a new testing context carrying a verbose logger named
// after the test.
//
// Code run by run.Tool expects a logger in its context; test it with Context
// to provide one.
func Context(t *testing.T) context.Context {
	return tlog.WithLogger(context.Background(), tlog.NewForTesting(t))
}

// ContextWithTimeout is a version of Context with a timeout.
//
// If the timeout expires, the test context is closed with
// context.DeadlineExceeded.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(Context(t), timeout)
	t.Cleanup(cancel)
	return ctx
}
