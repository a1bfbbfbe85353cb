package cancel

import (
	"context"
	"testing"
	"time"
)

func TestConnectTimeoutFires(t *testing.T) {
	g := Connect(context.Background(), 10*time.Millisecond)
	defer g.Cancel()

	select {
	case <-g.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("timeout did not cancel the context")
	}
}

func TestSettleDisarmsTimeout(t *testing.T) {
	g := Connect(context.Background(), 10*time.Millisecond)
	defer g.Cancel()
	g.Settle()

	select {
	case <-g.Context().Done():
		t.Fatal("context cancelled after Settle")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestParentCancelPropagates(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	g := Connect(parent, time.Hour)
	defer g.Cancel()
	g.Settle()

	cancelParent()
	select {
	case <-g.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not propagate")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	g := Connect(context.Background(), time.Hour)
	g.Cancel()
	g.Cancel()
	if g.Context().Err() == nil {
		t.Fatal("context still live after Cancel")
	}
}
