package ports

import (
	"time"

	"github.com/soypat/tcpcore/internal"
)

// StdTimer adapts a time.Timer to the Timer port.
type StdTimer struct {
	t  *time.Timer
	fn func()
}

// NewStdTimer creates a stopped timer that invokes fn when it fires.
func NewStdTimer(fn func()) *StdTimer {
	t := time.AfterFunc(time.Hour, fn)
	t.Stop()
	return &StdTimer{t: t, fn: fn}
}

func (s *StdTimer) Reset(d time.Duration) { s.t.Reset(d) }
func (s *StdTimer) Stop()                 { s.t.Stop() }

// BackoffTimer composes a StdTimer with an exponential backoff so a peer
// that stops acking doesn't get hammered at a fixed, short RTO forever.
// Implements tcpcore.BackingOffTimer.
type BackoffTimer struct {
	*StdTimer
	backoff internal.Backoff
}

// NewBackoffTimer creates a stopped timer backed by an exponential backoff
// starting at base and capped at max; fn is invoked on every expiry.
func NewBackoffTimer(base, max time.Duration, fn func()) *BackoffTimer {
	return &BackoffTimer{
		StdTimer: NewStdTimer(fn),
		backoff:  internal.NewBackoff(base, max),
	}
}

func (bt *BackoffTimer) Miss() time.Duration { return bt.backoff.Miss() }
func (bt *BackoffTimer) Hit()                { bt.backoff.Hit() }
