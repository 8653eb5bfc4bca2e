package core

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestGate_OpensWhenAllMarked(t *testing.T) {
	g := NewGate(ReadyData, ReadyView)

	select {
	case <-g.Done():
		t.Fatal("gate open before any condition")
	default:
	}

	g.Mark(ReadyView)
	if got := g.Pending(); !reflect.DeepEqual(got, []string{ReadyData}) {
		t.Errorf("Pending() = %v", got)
	}

	g.Mark(ReadyData)
	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("gate did not open")
	}
}

func TestGate_MarkTwiceAndUnknown(t *testing.T) {
	g := NewGate(ReadyData)
	g.Mark("unknown")
	g.Mark(ReadyData)
	g.Mark(ReadyData) // must not close twice

	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v", err)
	}
}

func TestGate_NoConditions(t *testing.T) {
	g := NewGate()
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want open gate", err)
	}
}

func TestGate_WaitCancelled(t *testing.T) {
	g := NewGate(ReadyData)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := g.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
}

func TestGate_Then(t *testing.T) {
	g := NewGate(ReadyData, ReadyView)
	ran := make(chan struct{})

	g.Then(context.Background(), func() { close(ran) })

	g.Mark(ReadyData)
	select {
	case <-ran:
		t.Fatal("deferred action ran before the view was ready")
	case <-time.After(10 * time.Millisecond):
	}

	g.Mark(ReadyView)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("deferred action did not run")
	}
}
