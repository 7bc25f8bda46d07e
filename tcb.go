package tcpcore

import "log/slog"

// ControlBlock is the Transmission Control Block (TCB) as described by
// RFC 9293 page 19 and clarified further on page 25. It is the building
// block that solves sequence-number bookkeeping and segment admission in
// a TCP implementation; buffer management, retransmission, and timers are
// left to the collaborator ports in package ports.
//
// A ControlBlock's internal state is modified only by the "system calls"
// defined in RFC9293: Open, Close, Send and Recv. Segments are represented
// by the Segment type.
type ControlBlock struct {
	// # Send Sequence Space
	//
	//	     1         2          3          4
	//	----------|----------|----------|----------
	//		   SND.UNA    SND.NXT    SND.UNA
	//								+SND.WND
	//	1. old sequence numbers which have been acknowledged
	//	2. sequence numbers of unacknowledged data
	//	3. sequence numbers allowed for new data transmission
	//	4. future sequence numbers which are not yet allowed
	snd sendSpace
	// # Receive Sequence Space
	//
	//		1          2          3
	//	----------|----------|----------
	//		   RCV.NXT    RCV.NXT
	//					 +RCV.WND
	//	1 - old sequence numbers which have been acknowledged
	//	2 - sequence numbers allowed for new reception
	//	3 - future sequence numbers which are not yet allowed
	rcv recvSpace

	// rstPtr is the sequence number an outgoing RST should carry, set when
	// a rejection determines the RST must echo the offending ACK rather
	// than SND.NXT so it lands inside the peer's window. See RFC 5961 3.2.
	rstPtr Value

	// pending holds up to two outgoing control flags queued by the last
	// Recv/Close call: pending[0] is sent first, pending[1] only after
	// pending[0] has been fully drained by Send. Two slots are required
	// because e.g. CLOSE-WAIT must queue both the immediate ACK of a FIN
	// and the eventual FIN of the local close.
	pending [2]Flags
	state   State
	// prevState records the state the TCB transitioned from on the last
	// setState call. SYN-RECEIVED's RST handling depends on it: reached via
	// passive LISTEN, a preestablished RST bounces back to LISTEN; reached
	// via active SYN-SENT (simultaneous open), there is no listener to
	// return to, so it must refuse instead. See RFC 9293 3.10.7.3.
	prevState State

	// challengeAck marks that the next outgoing ACK must be sent regardless
	// of pending, per RFC 5961's response to an in-window, non-exact RST/SYN.
	challengeAck bool

	// cwnd and ssthresh are congestion-control state. Nothing in this package
	// reads or writes them, and a DupAckObserver (see reno.go) only receives
	// ACK values, not these fields. smss is the peer's MSS, written by
	// learnMSS when rcvListen or rcvSynSent admits a SYN.
	cwnd     Size
	ssthresh Size
	smss     Size
	dupacks  uint8
	dupObs   DupAckObserver

	// acceptGate is consulted by rcvListen for every inbound SYN, mirroring
	// DupAckObserver's hook pattern. See accept.go.
	acceptGate AcceptGate

	log *slog.Logger
}

// sendSpace contains Send Sequence Space data; its sequence numbers correspond
// to local data.
type sendSpace struct {
	ISS Value // initial send sequence number, chosen locally on connection start.
	UNA Value // send unacknowledged.
	NXT Value // send next.
	WND Size  // send window, as advertised by remote.
	WL1 Value // seg.seq of the segment used for the last window update.
	WL2 Value // seg.ack of the segment used for the last window update.
}

// recvSpace contains Receive Sequence Space data; its sequence numbers
// correspond to remote data.
type recvSpace struct {
	IRS Value // initial receive sequence number, as chosen by remote in its SYN.
	NXT Value // receive next.
	WND Size  // receive window, as advertised locally.
}

func (tcb *ControlBlock) resetSnd(localISS Value, remoteWND Size) {
	tcb.snd = sendSpace{
		ISS: localISS,
		UNA: localISS,
		NXT: localISS,
		WND: remoteWND,
		// WL1, WL2 reset to zero; rcvListen then sets WL1 to the peer's
		// SYN sequence number.
	}
}

func (tcb *ControlBlock) resetRcv(localWND Size, remoteISS Value) {
	tcb.rcv = recvSpace{
		IRS: remoteISS,
		NXT: remoteISS,
		WND: localWND,
	}
}

// State returns the current state of the connection.
func (tcb *ControlBlock) State() State { return tcb.state }

// PrevState returns the state the TCB was in immediately before its current
// one.
func (tcb *ControlBlock) PrevState() State { return tcb.prevState }

// setState is the only place tcb.state is ever assigned, so prevState stays
// accurate for every transition.
func (tcb *ControlBlock) setState(s State) {
	tcb.prevState = tcb.state
	tcb.state = s
}

// hasIRS reports whether the TCB has synchronized with a remote ISN, i.e.
// is at or beyond SYN-RECEIVED/SYN-SENT's completion.
func (tcb *ControlBlock) hasIRS() bool {
	return tcb.state != StateClosed && tcb.state != StateListen && tcb.state != StateSynSent
}

// RecvNext returns the next sequence number expected to be received from remote.
func (tcb *ControlBlock) RecvNext() Value { return tcb.rcv.NXT }

// RecvWindow returns the receive window size.
func (tcb *ControlBlock) RecvWindow() Size { return tcb.rcv.WND }

// SendUNA returns the oldest unacknowledged sequence number of local data.
func (tcb *ControlBlock) SendUNA() Value { return tcb.snd.UNA }

// SendNext returns the next sequence number to be used for local data.
func (tcb *ControlBlock) SendNext() Value { return tcb.snd.NXT }

// ISS returns the initial sequence number defined on the call to Open.
func (tcb *ControlBlock) ISS() Value { return tcb.snd.ISS }

// IRS returns the initial sequence number learned from the remote's SYN.
// Returns 0 before synchronization.
func (tcb *ControlBlock) IRS() Value { return tcb.rcv.IRS }

// MaxInFlightData returns the maximum size of a segment that can be sent,
// taking into account the send window and unacknowledged data in flight.
// Returns 0 in CLOSED, LISTEN and SYN-SENT.
func (tcb *ControlBlock) MaxInFlightData() Size {
	if !tcb.hasIRS() {
		return 0
	}
	unacked := Sizeof(tcb.snd.UNA, tcb.snd.NXT)
	if unacked >= tcb.snd.WND {
		return 0
	}
	return tcb.snd.WND - unacked
}

// SetRecvWindow sets the local receive window. This is the maximum amount of
// data permitted to be in flight from the remote.
func (tcb *ControlBlock) SetRecvWindow(wnd Size) {
	tcb.rcv.WND = wnd
}

// SendMSS returns the peer-advertised MSS learned from their SYN, or 0 if
// none was advertised (or the handshake hasn't happened yet).
func (tcb *ControlBlock) SendMSS() Size { return tcb.smss }

// learnMSS records the peer's advertised MSS from an incoming SYN segment,
// ignoring a zero value (no option present).
func (tcb *ControlBlock) learnMSS(seg Segment) {
	if seg.Flags.HasAny(FlagSYN) && seg.MSS != 0 {
		tcb.smss = Size(seg.MSS)
	}
}

// SetLogger sets the logger used by the ControlBlock for debug/trace output.
func (tcb *ControlBlock) SetLogger(log *slog.Logger) {
	tcb.log = log
}

// IncomingIsKeepalive reports whether an incoming segment is a keepalive probe:
// a zero-payload ACK that restates the last acknowledged byte. Keepalive
// segments must not be passed to Recv, since Recv admits only segments whose
// SEQ is exactly RCV.NXT.
func (tcb *ControlBlock) IncomingIsKeepalive(seg Segment) bool {
	return seg.DATALEN == 0 &&
		seg.Flags == FlagACK &&
		seg.SEQ == tcb.rcv.NXT-1 &&
		seg.ACK == tcb.snd.NXT
}

// MakeKeepalive builds a keepalive segment. It must not be passed to Send.
func (tcb *ControlBlock) MakeKeepalive() Segment {
	return Segment{
		SEQ:   tcb.snd.NXT - 1,
		ACK:   tcb.rcv.NXT,
		Flags: FlagACK,
		WND:   tcb.rcv.WND,
	}
}
