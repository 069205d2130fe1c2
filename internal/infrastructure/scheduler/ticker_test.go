package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs int32
	s := NewTickerScheduler(10 * time.Millisecond)
	if err := s.Start(context.Background(), func(time.Time) { atomic.AddInt32(&runs, 1) }); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	n := atomic.LoadInt32(&runs)
	if n < 3 {
		t.Fatalf("expected at least 3 runs, got %d", n)
	}
	time.Sleep(30 * time.Millisecond)
	if after := atomic.LoadInt32(&runs); after != n {
		t.Fatalf("job ran after Stop: %d -> %d", n, after)
	}
}

func TestTickerSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewTickerScheduler(time.Hour)
	started := make(chan struct{}, 1)
	if err := s.Start(ctx, func(time.Time) { started <- struct{}{} }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	<-started
	cancel()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestTickerSchedulerRejectsBadInterval(t *testing.T) {
	t.Parallel()

	if err := NewTickerScheduler(0).Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if err := NewTickerScheduler(time.Second).Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle scheduler: %v", err)
	}
}
