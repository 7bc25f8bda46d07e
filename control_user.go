package tcpcore

import (
	"log/slog"
	"math"

	"github.com/soypat/tcpcore/internal"
)

// Functions in this file implement the user-facing "system calls" described
// in RFC 9293 section 3.10 (OPEN, CLOSE), plus Send and Recv, which admit
// outgoing and incoming segments, adapted around the ControlBlock rather than
// a full socket: ABORT and RECEIVE are not implemented here (see the Signals
// and ReadQueue ports in collab.go) since the TCB only owns sequence-space
// bookkeeping, not buffered bytes.

// Open implements a passive or active opening of a connection. state must be
// StateListen (passive) or StateSynSent (active).
func (tcb *ControlBlock) Open(iss Value, wnd Size, state State) (err error) {
	switch {
	case tcb.state != StateClosed && tcb.state != StateListen:
		err = errTCBNotClosed
	case state != StateListen && state != StateSynSent:
		err = errInvalidState
	case wnd > math.MaxUint16:
		err = errWindowTooLarge
	}
	if err != nil {
		tcb.logerr("tcb:open", slog.String("err", err.Error()))
		return err
	}
	tcb.setState(state)
	tcb.resetRcv(wnd, 0)
	tcb.resetSnd(iss, 1)
	tcb.pending = [2]Flags{}
	tcb.dupacks = 0
	if state == StateSynSent {
		tcb.pending[0] = FlagSYN
	}
	tcb.trace("tcb:open", slog.String("state", tcb.state.String()))
	return nil
}

// Close implements a passive or active closing of a connection. In LISTEN and
// SYN-SENT it closes the TCB at once; in every other open state it does not
// immediately tear down the TCB; it queues the segments that drive the
// close sequence. After Close, the caller must not queue more outgoing data.
func (tcb *ControlBlock) Close() (err error) {
	// See RFC 9293 3.10.4.
	switch tcb.state {
	case StateClosed:
		err = errConnNotexist
	case StateCloseWait:
		// RFC 1122 4.2.2.20 correction to RFC 793: CLOSE-WAIT transitions to
		// LAST-ACK, not CLOSING, since the remote's FIN was already seen.
		tcb.setState(StateLastAck)
		tcb.pending = [2]Flags{finack, 0}
	case StateListen, StateSynSent:
		tcb.close()
	case StateSynRcvd, StateEstablished:
		// Past the handshake every outgoing segment piggybacks an ACK of
		// RCV.NXT, so the closing FIN always carries one too.
		tcb.pending[0] = finack
	case StateFinWait1, StateFinWait2, StateClosing, StateLastAck, StateTimeWait:
		err = errConnectionClosing
	default:
		err = errInvalidState
	}
	if err == nil {
		tcb.trace("tcb:close", slog.String("state", tcb.state.String()))
	} else {
		tcb.logerr("tcb:close", slog.String("err", err.Error()))
	}
	return err
}

// Send processes a segment about to be transmitted, updating the TCB if it
// is admissible.
func (tcb *ControlBlock) Send(seg Segment) error {
	err := tcb.validateOutgoingSegment(seg)
	if err != nil {
		tcb.traceSnd("tcb:snd.reject")
		tcb.traceSeg("tcb:snd.reject", seg)
		tcb.logerr("tcb:snd.reject", slog.String("err", err.Error()))
		return err
	}

	hasFIN := seg.Flags.HasAny(FlagFIN)
	hasACK := seg.Flags.HasAny(FlagACK)
	var newPending Flags
	switch tcb.state {
	case StateSynRcvd:
		if hasFIN {
			tcb.setState(StateFinWait1)
		}
	case StateClosing:
		if hasACK {
			tcb.setState(StateTimeWait)
		}
	case StateEstablished:
		if hasFIN {
			tcb.setState(StateFinWait1)
		}
	case StateCloseWait:
		if hasFIN {
			tcb.setState(StateLastAck)
		} else if hasACK {
			newPending = finack
		}
	}

	// Advance the pending-flags queue: drop whatever this send satisfied,
	// then promote the second slot if the first is now empty.
	tcb.pending[0] &^= seg.Flags
	if tcb.pending[0] == 0 {
		tcb.pending = [2]Flags{tcb.pending[1] &^ (seg.Flags & FlagFIN), 0}
	}
	tcb.pending[0] |= newPending

	seglen := seg.LEN()
	tcb.snd.NXT.UpdateForward(seglen)
	tcb.rcv.WND = seg.WND

	if tcb.logenabled(internal.LevelTrace) {
		tcb.traceSnd("tcb:snd")
		tcb.traceSeg("tcb:snd", seg)
	}
	return nil
}

// Recv processes a segment received from the network, updating the TCB if
// it is admissible. Recv only accepts segments whose SEQ is exactly
// RCV.NXT; out-of-order buffering and reassembly is the caller's concern.
func (tcb *ControlBlock) Recv(seg Segment) (result Result, err error) {
	err = tcb.validateIncomingSegment(seg)
	if err != nil {
		tcb.traceRcv("tcb:rcv.reject")
		tcb.traceSeg("tcb:rcv.reject", seg)
		if _, isReject := err.(*RejectError); isReject {
			tcb.logerr("tcb:rcv.reject", slog.String("err", err.Error()))
		}
		return ResultOK, err
	}

	pending, result, err := tcb.dispatch(seg)
	if err != nil {
		return ResultOK, err
	}

	tcb.pending[0] |= pending
	tcb.snd.WND = seg.WND
	if seg.Flags.HasAny(FlagACK) && LessThan(tcb.snd.UNA, seg.ACK) {
		tcb.snd.UNA = seg.ACK
		tcb.noteNewAck(tcb.snd.UNA)
	}
	seglen := seg.LEN()
	tcb.rcv.NXT.UpdateForward(seglen)

	if tcb.logenabled(internal.LevelTrace) {
		tcb.traceRcv("tcb:rcv")
		tcb.traceSeg("tcb:rcv", seg)
	}
	return result, nil
}

// PendingSegment calculates a suitable next segment to send, given a payload
// length available from the write queue. ok is false if there is nothing to
// send: no pending control flags and no room to send new data.
func (tcb *ControlBlock) PendingSegment(payloadLen int) (_ Segment, ok bool) {
	pending := tcb.pending[0]
	if pending == 0 && tcb.challengeAck {
		pending = FlagACK
	}
	if payloadLen == 0 && pending == 0 {
		return Segment{}, false
	}
	if payloadLen > 0 && tcb.state != StateEstablished {
		payloadLen = 0
	}
	if payloadLen > math.MaxUint16 || Size(payloadLen) > tcb.snd.WND {
		payloadLen = int(tcb.snd.WND)
	}
	if payloadLen == 0 && pending == 0 {
		return Segment{}, false
	}

	var ack Value
	if pending.HasAny(FlagACK) || tcb.challengeAck {
		ack = tcb.rcv.NXT
	}
	seq := tcb.snd.NXT
	if pending.HasAny(FlagRST) {
		seq = tcb.rstPtr
	}

	seg := Segment{
		SEQ:     seq,
		ACK:     ack,
		WND:     tcb.rcv.WND,
		Flags:   pending,
		DATALEN: Size(payloadLen),
	}
	tcb.challengeAck = false
	return seg, true
}
