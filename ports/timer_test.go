package ports

import (
	"testing"
	"time"
)

func TestStdTimerFires(t *testing.T) {
	fired := make(chan struct{}, 1)
	tm := NewStdTimer(func() { fired <- struct{}{} })
	tm.Reset(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire within 1s")
	}
}

func TestStdTimerStop(t *testing.T) {
	fired := make(chan struct{}, 1)
	tm := NewStdTimer(func() { fired <- struct{}{} })
	tm.Reset(50 * time.Millisecond)
	tm.Stop()
	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBackoffTimerDoublesThenResets(t *testing.T) {
	bt := NewBackoffTimer(10*time.Millisecond, 80*time.Millisecond, func() {})
	got := []time.Duration{bt.Miss(), bt.Miss(), bt.Miss(), bt.Miss()}
	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		80 * time.Millisecond, // capped
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("miss %d: got %v want %v", i, got[i], w)
		}
	}
	bt.Hit()
	if got := bt.Miss(); got != 10*time.Millisecond {
		t.Fatalf("after Hit, Miss restarted at %v, want %v", got, 10*time.Millisecond)
	}
}
