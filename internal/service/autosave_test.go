package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAutoSaver_SingleSave(t *testing.T) {
	var saves int64
	saver := NewAutoSaver(20*time.Millisecond, func() { atomic.AddInt64(&saves, 1) })
	defer saver.Stop()

	saver.Schedule()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt64(&saves); got != 1 {
		t.Errorf("Expected 1 save, got %d", got)
	}
}

func TestAutoSaver_ResetNotStack(t *testing.T) {
	var saves int64
	saver := NewAutoSaver(50*time.Millisecond, func() { atomic.AddInt64(&saves, 1) })
	defer saver.Stop()

	// Rapid scheduling inside the window resets the pending timer
	saver.Schedule()
	time.Sleep(10 * time.Millisecond)
	saver.Schedule()
	time.Sleep(10 * time.Millisecond)
	saver.Schedule()

	time.Sleep(120 * time.Millisecond)

	if got := atomic.LoadInt64(&saves); got != 1 {
		t.Errorf("Expected 1 save after rapid scheduling, got %d", got)
	}
}

func TestAutoSaver_SeparateWindows(t *testing.T) {
	var saves int64
	saver := NewAutoSaver(20*time.Millisecond, func() { atomic.AddInt64(&saves, 1) })
	defer saver.Stop()

	saver.Schedule()
	time.Sleep(60 * time.Millisecond)
	saver.Schedule()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt64(&saves); got != 2 {
		t.Errorf("Expected 2 saves across separate windows, got %d", got)
	}
}

func TestAutoSaver_Stop(t *testing.T) {
	var saves int64
	saver := NewAutoSaver(20*time.Millisecond, func() { atomic.AddInt64(&saves, 1) })

	saver.Schedule()
	saver.Stop()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt64(&saves); got != 0 {
		t.Errorf("Expected no save after Stop, got %d", got)
	}
}
