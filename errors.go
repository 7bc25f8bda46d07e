package tcpcore

import "errors"

var (
	// errDropSegment signals that a segment must be silently discarded: no
	// error surfaced to the user, at most a pending ACK/RST, and no state
	// change except that a preestablished RST on a connection reached via
	// LISTEN returns it to LISTEN.
	errDropSegment = errors.New("tcpcore: drop segment")

	errTCBNotClosed      = errors.New("tcpcore: TCB not closed")
	errInvalidState      = errors.New("tcpcore: invalid state for call")
	errConnNotexist      = errors.New("tcpcore: connection does not exist")
	errConnectionClosing = errors.New("tcpcore: connection closing")
	// errConnReset is returned by Recv when a believable RST tears down the
	// TCB outright, as opposed to errDropSegment's silent discard.
	errConnReset = errors.New("tcpcore: connection reset by peer")
	// errConnRefused is returned by Recv when a connection attempt is turned
	// away: either the LISTEN-side accept hook declined the incoming SYN, or
	// a preestablished RST lands on a SYN-RECEIVED reached via simultaneous
	// open, which has no listener to fall back to.
	errConnRefused = errors.New("tcpcore: connection refused")

	errWindowTooLarge      = newRejectErr("window > 2**16")
	errSeqNotInWindow      = newRejectErr("seq not in receive window")
	errLastNotInWindow     = newRejectErr("last octet not in receive window")
	errRequireSequential   = newRejectErr("seq != rcv.nxt (require sequential segments)")
	errAckNotRcvNxt        = newRejectErr("ack != rcv.nxt")
	errSeqNotInSendWindow  = newRejectErr("seq not in send window")
	errLastNotInSendWindow = newRejectErr("last octet not in send window")
)

func newRejectErr(msg string) *RejectError { return &RejectError{err: "reject segment: " + msg} }

// RejectError is returned when a segment fails admission into the
// ControlBlock: the segment is distinguishable from an API misuse error
// (errInvalidState et al.) because a RejectError is expected network noise,
// not a bug in the caller.
type RejectError struct {
	err string
}

func (e *RejectError) Error() string { return e.err }
