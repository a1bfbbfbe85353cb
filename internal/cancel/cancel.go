// internal/cancel/cancel.go

// Package cancel merges a caller's context and a connection-establishment
// timeout into one context, so that aborting either aborts the request.
package cancel

import (
	"context"
	"time"
)

// Guard derives a context from the caller's that is additionally cancelled
// if the timeout fires before Settle is called. Once the connection is
// established the caller disarms the timeout with Settle and keeps sole
// control through the parent context.
type Guard struct {
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer
}

// Connect starts a guard. A timeout of zero or less means no timeout.
func Connect(parent context.Context, timeout time.Duration) *Guard {
	ctx, cancelFn := context.WithCancel(parent)
	g := &Guard{ctx: ctx, cancel: cancelFn}
	if timeout > 0 {
		g.timer = time.AfterFunc(timeout, cancelFn)
	}
	return g
}

// Context is the merged cancellation context for the request.
func (g *Guard) Context() context.Context {
	return g.ctx
}

// Settle disarms the timeout; the connection is established and from here
// on cancellation is solely the caller's responsibility.
func (g *Guard) Settle() {
	if g.timer != nil {
		g.timer.Stop()
	}
}

// Cancel releases the guard's context and timer. Safe to call repeatedly;
// must be called once the request is finished to avoid leaking the child
// context.
func (g *Guard) Cancel() {
	g.Settle()
	g.cancel()
}
