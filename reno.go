package tcpcore

// DupAckObserver is notified whenever the ControlBlock recognizes a
// duplicate ACK on an established connection - the trigger condition for
// RFC 5681 fast retransmit / fast recovery. The ControlBlock only performs
// the recognition (counting consecutive duplicates and signaling each one
// with the running count); the actual congestion-window and ssthresh adjustment policy is
// intentionally left to the observer, since cwnd/ssthresh/smss are opaque
// to the state dispatcher by design.
type DupAckObserver interface {
	// OnDupAck is called for every duplicate ACK observed, with the running
	// count of consecutive duplicates (starting at 1) and the ACK value
	// being repeated.
	OnDupAck(count uint8, ack Value)
	// OnNewAck is called whenever a segment's ACK advances SND.UNA, so an
	// observer tracking fast-recovery state knows to reset its counter.
	OnNewAck(ack Value)
}

// SetDupAckObserver installs a hook for RFC 5681 duplicate-ACK recognition.
// A nil observer disables the hook.
func (tcb *ControlBlock) SetDupAckObserver(obs DupAckObserver) {
	tcb.dupObs = obs
}

// observeDupAck is called by validateIncomingSegment when it recognizes an
// ACK that does not advance SND.UNA on an established connection carrying
// no data or control flags - the definition of a duplicate ACK used by the
// fast-retransmit trigger.
func (tcb *ControlBlock) observeDupAck(seg Segment) {
	if tcb.dupObs == nil {
		return
	}
	if tcb.dupacks < 255 {
		tcb.dupacks++
	}
	tcb.dupObs.OnDupAck(tcb.dupacks, seg.ACK)
}

// noteNewAck resets the duplicate-ACK counter and notifies the observer that
// new data was acknowledged. Called by Recv whenever SND.UNA advances.
func (tcb *ControlBlock) noteNewAck(ack Value) {
	if tcb.dupacks != 0 {
		tcb.dupacks = 0
	}
	if tcb.dupObs != nil {
		tcb.dupObs.OnNewAck(ack)
	}
}
