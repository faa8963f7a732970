package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(RefreshEvent{ID: "later", Reason: ReasonManual, TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(RefreshEvent{ID: "sooner", Reason: ReasonPageCreated, TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
	if first.Reason != ReasonPageCreated {
		t.Fatalf("reason not carried through: %q", first.Reason)
	}
}

func TestEngineAfterDelaysEvent(t *testing.T) {
	engine := NewEngine(2)
	engine.Start()
	defer engine.Stop()

	start := time.Now()
	if err := engine.After("page", ReasonPageCreated, 50*time.Millisecond); err != nil {
		t.Fatalf("after: %v", err)
	}
	ev := waitEvent(t, engine.C(), time.Second)
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Fatalf("event fired too early: %v", elapsed)
	}
	if ev.ID != "page" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestEngineDebounceCoalesces(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	for i := 0; i < 10; i++ {
		if err := engine.Debounce("graph", ReasonGraphChanged, 40*time.Millisecond); err != nil {
			t.Fatalf("debounce: %v", err)
		}
	}
	if got := engine.Pending(); got > 1 {
		t.Fatalf("expected at most one pending event, got %d", got)
	}

	waitEvent(t, engine.C(), time.Second)
	select {
	case ev := <-engine.C():
		t.Fatalf("expected a single coalesced event, got extra %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(RefreshEvent{
			ID:        "evt",
			Reason:    ReasonGraphChanged,
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(RefreshEvent{ID: "bad"}); !errors.Is(err, ErrInvalidTriggerTime) {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestScheduleAfterStop(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.After("x", ReasonManual, time.Millisecond); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected output channel closed after stop")
	}
}

func waitEvent(t *testing.T, ch <-chan RefreshEvent, timeout time.Duration) RefreshEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return RefreshEvent{}
	}
}
