package tcpcore

import "time"

// The interfaces in this file are the collaborator ports a ControlBlock (or
// the Conn that wraps it) is bound to by an embedder: packet I/O, the
// retransmission queue, pending read/write buffers, timers, RTT estimation,
// and user-visible signals. The state dispatcher in dispatch.go never talks
// to any of these directly - it only ever produces Segment values and
// Result codes - which keeps sequence-number bookkeeping decoupled from
// however a given embedding chooses to frame, buffer, and schedule bytes.
// Package ports ships minimal in-memory reference implementations of each.

// PacketIO hands a finalized outgoing segment's header fields and payload to
// whatever owns the physical link (Ethernet/IP framing, a net.Conn, a DMA
// ring, ...).
type PacketIO interface {
	SendSegment(seg Segment, payload []byte) error
}

// QueuedSegment is one entry in a RetransmitQueue: the segment sent and the
// time it was sent at, so a retransmit timer can judge staleness.
type QueuedSegment struct {
	Seg     Segment
	Payload []byte
	SentAt  time.Time
}

// RetransmitQueue tracks segments sent but not yet acknowledged, so they can
// be replayed if a retransmit timer fires before the peer acknowledges them.
// The ControlBlock itself never buffers unacked data; it only ever reports
// SND.UNA/SND.NXT, which a RetransmitQueue.Ack call is driven from.
type RetransmitQueue interface {
	Queue(seg Segment, payload []byte)
	// Ack retires every queued segment fully covered by ack, returning how
	// many were retired.
	Ack(ack Value) int
	Pending() []QueuedSegment
	Flush()
}

// WriteQueue buffers application bytes accepted by a SEND call but not yet
// packaged into an outgoing segment.
type WriteQueue interface {
	Write(b []byte) (int, error)
	// Peek returns up to n buffered bytes without consuming them, so the
	// caller can size a Segment before committing to Advance.
	Peek(n int) []byte
	// Advance consumes n bytes previously returned by Peek.
	Advance(n int)
	Buffered() int
}

// ReadQueue buffers octets from accepted, in-order segments awaiting a
// RECEIVE call by the application.
type ReadQueue interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Buffered() int
}

// Timer models a single-shot retransmission/keepalive/MSL timer.
type Timer interface {
	Reset(d time.Duration)
	Stop()
}

// RTTEstimator observes round-trip samples and produces a retransmission
// timeout, per the style of estimator described in RFC 6298.
type RTTEstimator interface {
	Sample(rtt time.Duration)
	RTO() time.Duration
}

// Signals delivers the user-visible events named in the state dispatcher's
// per-state contracts: connection acceptance, connection completion,
// orderly and abortive disconnection, and asynchronous errors.
type Signals interface {
	// SignalAccept is asked whether to accept an inbound SYN while
	// LISTENing. Returning false refuses the connection.
	SignalAccept() bool
	SignalConnect()
	SignalDisconnect()
	SignalError(err error)
	ReceiveDisconnect()
}

// BackingOffTimer is a Timer whose Reset schedule backs off across repeated
// retransmission timeouts, per RFC 6298, and resets once an ack confirms
// progress.
type BackingOffTimer interface {
	Timer
	// Miss reports the timeout to arm after a retransmission fired with no
	// ack, and grows the backoff for the following call.
	Miss() time.Duration
	// Hit resets the backoff once a newly acknowledged segment confirms the
	// peer is still making progress.
	Hit()
}
