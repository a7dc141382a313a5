package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTask_RunsRepeatedly(t *testing.T) {
	var calls atomic.Int32
	task := Start(context.Background(), 5*time.Millisecond, func(ctx context.Context) {
		calls.Add(1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	task.Stop()
	task.Wait()

	if calls.Load() < 3 {
		t.Errorf("Expected at least 3 runs, got %d", calls.Load())
	}
}

func TestTask_NoRunAfterStop(t *testing.T) {
	var calls atomic.Int32
	task := Start(context.Background(), time.Millisecond, func(ctx context.Context) {
		calls.Add(1)
	})

	time.Sleep(20 * time.Millisecond)
	task.Stop()
	after := calls.Load()

	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != after {
		t.Errorf("Expected no runs after Stop, went from %d to %d", after, got)
	}

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("Loop did not exit after Stop")
	}
}

func TestTask_RunsDoNotOverlap(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	task := Start(context.Background(), 0, func(ctx context.Context) {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
	})

	time.Sleep(30 * time.Millisecond)
	task.Stop()
	task.Wait()

	if maxInFlight.Load() != 1 {
		t.Errorf("Expected at most one run in flight, saw %d", maxInFlight.Load())
	}
}

func TestTask_StopDoesNotInterruptRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	task := Start(context.Background(), time.Hour, func(ctx context.Context) {
		close(started)
		<-release
		finished.Store(true)
	})

	<-started
	task.Stop()
	task.Stop()

	close(release)
	task.Wait()
	if !finished.Load() {
		t.Error("Admitted run should complete")
	}
}

func TestTask_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Start(ctx, time.Millisecond, func(ctx context.Context) {})

	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("Loop did not exit on context cancel")
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateCounter_WindowThenIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rc := NewRateCounterWithClock(time.Second, clock.now)

	if rc.Rate() != 0 {
		t.Errorf("Expected 0 before any ticks, got %d", rc.Rate())
	}

	for i := 0; i < 7; i++ {
		rc.Tick()
		clock.advance(100 * time.Millisecond)
	}
	clock.advance(300 * time.Millisecond)

	if got := rc.Rate(); got != 7 {
		t.Errorf("Expected 7 after one window, got %d", got)
	}

	clock.advance(time.Second)
	if got := rc.Rate(); got != 0 {
		t.Errorf("Expected 0 after an idle window, got %d", got)
	}
}

func TestRateCounter_LongGap(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rc := NewRateCounterWithClock(time.Second, clock.now)

	for i := 0; i < 5; i++ {
		rc.Tick()
	}
	clock.advance(5 * time.Second)

	if got := rc.Rate(); got != 0 {
		t.Errorf("Expected 0 after a long gap, got %d", got)
	}
}

func TestRateCounter_Reset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rc := NewRateCounterWithClock(time.Second, clock.now)

	for i := 0; i < 4; i++ {
		rc.Tick()
	}
	clock.advance(time.Second)
	if rc.Rate() != 4 {
		t.Fatalf("Expected 4, got %d", rc.Rate())
	}

	rc.Reset()
	if got := rc.Rate(); got != 0 {
		t.Errorf("Expected 0 after Reset, got %d", got)
	}
}
