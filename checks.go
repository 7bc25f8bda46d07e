package tcpcore

import (
	"io"
	"math"
)

// checkSeq validates an incoming segment's sequence numbers against the
// receive window, per the first step of RFC 9293 3.10.7.1's segment-arrives
// ladder. SYN segments bypass the window check since they initialize it.
func (tcb *ControlBlock) checkSeq(seg Segment) error {
	if seg.Flags.HasAny(FlagSYN) {
		return nil
	}
	if !InWindow(seg.SEQ, tcb.rcv.NXT, tcb.rcv.WND) {
		return errSeqNotInWindow
	}
	if !InWindow(seg.Last(), tcb.rcv.NXT, tcb.rcv.WND) {
		return errLastNotInWindow
	}
	if seg.SEQ != tcb.rcv.NXT {
		// This ControlBlock only admits sequential segments; out-of-order
		// buffering is left to the caller.
		return errRequireSequential
	}
	return nil
}

// checkAck validates an incoming segment's acknowledgment number and, if it
// is within bounds, applies the guarded send-window update described in
// RFC 9293 3.10.7.4: the window is only accepted if it is more recent than
// the last update, comparing WL1/WL2 against SEQ/ACK of THIS segment. A
// naive re-implementation of the original source code assigned SND.WL1
// unconditionally instead of comparing it; that bug is fixed here by using
// the actual RFC793-mandated guard.
func (tcb *ControlBlock) checkAck(seg Segment) error {
	hasAck := seg.Flags.HasAny(FlagACK)
	if !hasAck {
		return nil
	}
	if LessThan(seg.ACK, tcb.snd.UNA) {
		return nil // old ack, handled by caller as a duplicate/ignorable ack.
	}
	if LessThan(tcb.snd.NXT, seg.ACK) {
		return nil // acks unsent data, handled by caller.
	}
	if LessThan(tcb.snd.WL1, seg.SEQ) || (tcb.snd.WL1 == seg.SEQ && LessThanEq(tcb.snd.WL2, seg.ACK)) {
		tcb.snd.WND = seg.WND
		tcb.snd.WL1 = seg.SEQ
		tcb.snd.WL2 = seg.ACK
	}
	return nil
}

// validateIncomingSegment runs the full admission ladder for a segment
// arriving from the network, updating pending control flags as a side
// effect of rejections that require a reply (ACK of unsent data, RST of
// stale data, challenge ACK, remote RST).
func (tcb *ControlBlock) validateIncomingSegment(seg Segment) (err error) {
	flags := seg.Flags
	hasAck := flags.HasAll(FlagACK)
	established := tcb.state == StateEstablished
	preestablished := tcb.state.IsPreestablished()
	// LISTEN and SYN-SENT have no peer ISS yet, so RCV.NXT/RCV.WND are not
	// meaningful: RFC 9293 3.10.7.1/3.10.7.3 special-case segment
	// acceptability for those two states around ACK/RST/SYN instead of SEQ.
	rcvInitialized := tcb.state != StateListen && tcb.state != StateSynSent
	checkSEQ := !flags.HasAny(FlagSYN) && rcvInitialized
	// ackNotNew covers both a strictly stale ack and the RFC 5681 duplicate
	// ack (SEG.ACK == SND.UNA, not advancing the window): RFC 9293 3.10.7.4
	// treats SEG.ACK =< SND.UNA uniformly as not acceptable/new.
	ackNotNew := hasAck && LessThanEq(seg.ACK, tcb.snd.UNA)
	acksUnsentData := hasAck && !LessThanEq(seg.ACK, tcb.snd.NXT)
	// A stale/duplicate ACK only ever feeds the Reno dup-ack counter; it
	// never drops the segment on its own (that is reserved for ACKs ahead
	// of SND.NXT, above). The only segments an ackNotNew verdict is allowed
	// to discard outright are the ones carrying nothing else worth keeping:
	// no payload, no FIN. A data segment that happens to also carry a stale
	// ACK must still reach the caller.
	pureDupAck := established && ackNotNew && seg.DATALEN == 0 && !flags.HasAny(FlagFIN)

	if seg.WND > math.MaxUint16 {
		return errWindowTooLarge
	}
	if tcb.state == StateClosed {
		return io.ErrClosedPipe
	}
	if checkSEQ {
		if err = tcb.checkSeq(seg); err != nil {
			// RFC 9293 3.10.7.1: once a receive space exists (anything past
			// LISTEN/SYN-SENT), an unacceptable segment still gets an ACK in
			// reply, so the peer can resynchronize, before being dropped.
			tcb.pending[0] = FlagACK
			return err
		}
	}

	switch {
	// A RST landing exactly at RCV.NXT on a synchronized connection (at or
	// past ESTABLISHED) always wins over any other verdict below: the
	// segment's ACK staleness is irrelevant, the connection is simply gone,
	// per RFC 9293's per-state reset handling. Only SYN-SENT and the
	// SYN-RECEIVED cases further down have different RST provenance rules.
	case tcb.state.IsSynchronized() && flags.HasAny(FlagRST):
		err = errConnReset
		tcb.close()

	// Duplicate ACKs on an established connection carrying no control/data
	// are completely ignored (no pending reply queued); see RFC9293
	// 3.10.7.4-2.5.2.2.2.3.2.1 and the dup-ack counter in reno.go which
	// observes these before they are dropped here. A segment that also
	// carries data or a FIN is never dropped this way, regardless of its
	// ACK: see pureDupAck above.
	case pureDupAck:
		tcb.observeDupAck(seg)
		err = errDropSegment
		tcb.pending[0] = 0

	case established && acksUnsentData:
		err = errDropSegment
		tcb.pending[0] = FlagACK

	case preestablished && (ackNotNew || acksUnsentData):
		err = errDropSegment
		tcb.pending[0] = FlagRST
		tcb.rstPtr = seg.ACK
		tcb.resetSnd(tcb.snd.ISS, seg.WND)

	case tcb.state == StateSynSent && flags.HasAny(FlagRST) && hasAck:
		// RFC 9293 3.10.7.3: in SYN-SENT a believable RST (ACK acking our SYN)
		// tears the connection down and reports an error, rather than
		// bouncing back to LISTEN like the passive-open case below - there is
		// no listener backing an active open to return to.
		err = errConnReset
		tcb.close()

	case flags.HasAny(FlagRST) && checkSEQ && seg.SEQ != tcb.rcv.NXT:
		// In-window but not exactly the next expected byte: RFC 5961 3.2
		// calls for a challenge ACK instead of honoring the reset outright,
		// guarding against off-path blind resets.
		err = errDropSegment
		tcb.challengeAck = true
		tcb.pending[0] = FlagACK

	case preestablished && flags.HasAny(FlagRST) && tcb.state == StateSynRcvd && tcb.prevState == StateSynSent:
		// Reached SYN-RECEIVED via the simultaneous-open leg of rcvSynSent,
		// not via LISTEN: this connection was actively opened, so there is no
		// listener behind it to bounce back to. RFC 9293 3.10.7.3 calls for
		// raising a refusal and tearing down to CLOSED instead.
		err = errConnRefused
		tcb.close()

	case preestablished && flags.HasAny(FlagRST):
		// Reached via LISTEN (including SYN-RECEIVED from a passive open):
		// bounce back to LISTEN for a fresh attempt, picking a new local ISS
		// past every sequence number already used so the torn-down
		// connection's stray retransmits can't be mistaken for the next
		// attempt's segments.
		err = errDropSegment
		tcb.pending = [2]Flags{}
		tcb.setState(StateListen)
		tcb.resetSnd(tcb.snd.NXT+1, tcb.snd.WND)
		tcb.resetRcv(tcb.rcv.WND, 0) // overwritten by rcvListen once the next SYN arrives.
	}
	if err == nil {
		err = tcb.checkAck(seg)
	}
	return err
}

// validateOutgoingSegment checks a segment the caller is about to send
// against the current send window before it is admitted into the TCB.
func (tcb *ControlBlock) validateOutgoingSegment(seg Segment) error {
	if tcb.state == StateClosed {
		return io.ErrClosedPipe
	}
	if seg.WND > math.MaxUint16 {
		return errWindowTooLarge
	}
	if seg.Flags.HasAny(FlagACK) && seg.ACK != tcb.rcv.NXT {
		return errAckNotRcvNxt
	}
	if seg.Flags.HasAny(FlagRST) {
		// A RST may echo rstPtr from a rejected segment's ACK rather than
		// SND.NXT, so it doesn't have to sit inside the current send window.
		return nil
	}
	if !InWindow(seg.SEQ, tcb.snd.NXT, tcb.snd.WND) {
		return errSeqNotInSendWindow
	}
	if !InWindow(seg.Last(), tcb.snd.NXT, tcb.snd.WND) {
		return errLastNotInSendWindow
	}
	return nil
}
