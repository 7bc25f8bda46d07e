package tcpcore

import (
	"errors"
	"testing"
)

// TestHandshakePassive reproduces a textbook passive three-way handshake:
// local ISS=1000, remote ISS=5000, RCV.WND=8192.
func TestHandshakePassive(t *testing.T) {
	var tcb ControlBlock
	if err := tcb.Open(1000, 8192, StateListen); err != nil {
		t.Fatalf("Open: %v", err)
	}

	syn := Segment{SEQ: 5000, Flags: FlagSYN, WND: 8192, MSS: 1460}
	_, err := tcb.Recv(syn)
	if err != nil {
		t.Fatalf("Recv(SYN): %v", err)
	}
	if tcb.state != StateSynRcvd {
		t.Fatalf("state = %v, want SynRcvd", tcb.state)
	}
	if got := tcb.SendMSS(); got != 1460 {
		t.Fatalf("SendMSS() = %d, want 1460", got)
	}

	synack, ok := tcb.PendingSegment(0)
	if !ok {
		t.Fatal("expected a pending SYN|ACK")
	}
	if synack.SEQ != 1000 || synack.ACK != 5001 || synack.Flags != (FlagSYN|FlagACK) {
		t.Fatalf("unexpected SYN|ACK: %+v", synack)
	}
	if err := tcb.Send(synack); err != nil {
		t.Fatalf("Send(SYN|ACK): %v", err)
	}
	if tcb.snd.NXT != 1001 {
		t.Fatalf("SND.NXT = %d, want 1001", tcb.snd.NXT)
	}

	ack := Segment{SEQ: 5001, ACK: 1001, Flags: FlagACK, WND: 8192}
	_, err = tcb.Recv(ack)
	if err != nil {
		t.Fatalf("Recv(ACK): %v", err)
	}
	if tcb.state != StateEstablished {
		t.Fatalf("state = %v, want Established", tcb.state)
	}
	if tcb.snd.UNA != 1001 || tcb.snd.NXT != 1001 {
		t.Fatalf("SND.UNA/NXT = %d/%d, want 1001/1001", tcb.snd.UNA, tcb.snd.NXT)
	}
	if tcb.rcv.NXT != 5001 {
		t.Fatalf("RCV.NXT = %d, want 5001", tcb.rcv.NXT)
	}
}

// TestUnacceptableSeqStillAcks checks that an out-of-window segment is
// dropped but still gets a reply ACK, per RFC 9293 3.10.7.1 step 1.
func TestUnacceptableSeqStillAcks(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateEstablished
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	seg := Segment{SEQ: 14000, DATALEN: 10, ACK: 1001, Flags: FlagACK, WND: 8192}
	_, err := tcb.Recv(seg)
	var reject *RejectError
	if !errors.As(err, &reject) {
		t.Fatalf("Recv(unacceptable seq) = %v, want a *RejectError", err)
	}
	if tcb.state != StateEstablished {
		t.Fatalf("state changed to %v on a rejected segment", tcb.state)
	}
	if tcb.rcv.NXT != 5001 {
		t.Fatalf("RCV.NXT changed to %d on a rejected segment", tcb.rcv.NXT)
	}
	reply, ok := tcb.PendingSegment(0)
	if !ok {
		t.Fatal("expected a pending reply ACK")
	}
	if reply.SEQ != 1001 || reply.ACK != 5001 || reply.Flags != FlagACK {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

type countingDupObserver struct {
	dupCalls []uint8
	newAcks  []Value
}

func (c *countingDupObserver) OnDupAck(count uint8, ack Value) { c.dupCalls = append(c.dupCalls, count) }
func (c *countingDupObserver) OnNewAck(ack Value)              { c.newAcks = append(c.newAcks, ack) }

// TestTripleDupAckTriggersObserver checks the RFC 5681 fast-retransmit
// trigger: three consecutive non-advancing ACKs.
func TestTripleDupAckTriggersObserver(t *testing.T) {
	var tcb ControlBlock
	obs := &countingDupObserver{}
	tcb.SetDupAckObserver(obs)
	tcb.state = StateEstablished
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 2001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	dup := Segment{SEQ: 5001, ACK: 1001, WND: 8192, Flags: FlagACK}
	for i := 0; i < 3; i++ {
		_, err := tcb.Recv(dup)
		if !errors.Is(err, errDropSegment) {
			t.Fatalf("dup ack %d: err = %v, want errDropSegment", i+1, err)
		}
	}
	if len(obs.dupCalls) != 3 || obs.dupCalls[2] != 3 {
		t.Fatalf("dupCalls = %v, want [1 2 3]", obs.dupCalls)
	}
	if tcb.snd.UNA != 1001 {
		t.Fatalf("SND.UNA = %d, want unchanged at 1001", tcb.snd.UNA)
	}
}

// TestActiveClose walks ESTABLISHED through FIN-WAIT-1, FIN-WAIT-2 and into
// TIME-WAIT following an active Close call.
func TestActiveClose(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateEstablished
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	if err := tcb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	fin, ok := tcb.PendingSegment(0)
	if !ok {
		t.Fatal("expected a pending FIN|ACK")
	}
	if fin.SEQ != 1001 || fin.ACK != 5001 || fin.Flags != (FlagFIN|FlagACK) {
		t.Fatalf("unexpected FIN: %+v", fin)
	}
	// The state only advances to FIN-WAIT-1 once the FIN is actually sent.
	if err := tcb.Send(fin); err != nil {
		t.Fatalf("Send(FIN): %v", err)
	}
	if tcb.state != StateFinWait1 {
		t.Fatalf("state = %v, want FinWait1", tcb.state)
	}
	if tcb.snd.NXT != 1002 {
		t.Fatalf("SND.NXT = %d, want 1002", tcb.snd.NXT)
	}

	ackOfFin := Segment{SEQ: 5001, ACK: 1002, Flags: FlagACK, WND: 8192}
	if _, err := tcb.Recv(ackOfFin); err != nil {
		t.Fatalf("Recv(ACK): %v", err)
	}
	if tcb.state != StateFinWait2 {
		t.Fatalf("state = %v, want FinWait2", tcb.state)
	}

	peerFin := Segment{SEQ: 5001, ACK: 1002, Flags: FlagFIN | FlagACK, WND: 8192}
	result, err := tcb.Recv(peerFin)
	if err != nil {
		t.Fatalf("Recv(FIN|ACK): %v", err)
	}
	if result != ResultClose {
		t.Fatalf("result = %v, want ResultClose", result)
	}
	if tcb.state != StateTimeWait {
		t.Fatalf("state = %v, want TimeWait", tcb.state)
	}
	bareAck, ok := tcb.PendingSegment(0)
	if !ok || bareAck.Flags != FlagACK {
		t.Fatalf("expected a bare ACK, got %+v ok=%v", bareAck, ok)
	}
}

// TestResetInSynSent checks that a believable RST while awaiting the
// handshake's second leg tears the connection down and reports an error.
func TestResetInSynSent(t *testing.T) {
	var tcb ControlBlock
	if err := tcb.Open(1000, 8192, StateSynSent); err != nil {
		t.Fatalf("Open: %v", err)
	}
	syn, ok := tcb.PendingSegment(0)
	if !ok || syn.Flags != FlagSYN {
		t.Fatalf("expected a pending SYN, got %+v ok=%v", syn, ok)
	}
	if err := tcb.Send(syn); err != nil {
		t.Fatalf("Send(SYN): %v", err)
	}
	if tcb.snd.NXT != 1001 {
		t.Fatalf("SND.NXT = %d, want 1001", tcb.snd.NXT)
	}

	rst := Segment{Flags: FlagRST | FlagACK, ACK: 1001}
	_, err := tcb.Recv(rst)
	if !errors.Is(err, errConnReset) {
		t.Fatalf("Recv(RST) = %v, want errConnReset", err)
	}
	if tcb.state != StateClosed {
		t.Fatalf("state = %v, want Closed", tcb.state)
	}
	if _, ok := tcb.PendingSegment(0); ok {
		t.Fatal("expected no egress after a connection reset")
	}
}

// TestCloseWaitToClosed drives the passive-close tail: CLOSE-WAIT -> Close
// call -> LAST-ACK -> final ACK -> CLOSED.
func TestCloseWaitToClosed(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateCloseWait
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	if err := tcb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if tcb.state != StateLastAck {
		t.Fatalf("state = %v, want LastAck", tcb.state)
	}
	fin, ok := tcb.PendingSegment(0)
	if !ok || fin.Flags != (FlagFIN|FlagACK) {
		t.Fatalf("expected pending FIN|ACK, got %+v ok=%v", fin, ok)
	}
	if err := tcb.Send(fin); err != nil {
		t.Fatalf("Send(FIN): %v", err)
	}

	finalAck := Segment{SEQ: 5001, ACK: tcb.snd.NXT, Flags: FlagACK, WND: 8192}
	result, err := tcb.Recv(finalAck)
	if err != nil {
		t.Fatalf("Recv(final ACK): %v", err)
	}
	if result != ResultClosed {
		t.Fatalf("result = %v, want ResultClosed", result)
	}
	if tcb.state != StateClosed {
		t.Fatalf("state = %v, want Closed", tcb.state)
	}
}

// TestLastAckRequiresExactAck is the Open Question #2 regression: an ACK
// that doesn't actually acknowledge the outstanding FIN must not tear the
// TCB down early.
func TestLastAckRequiresExactAck(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateLastAck
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1002, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	staleAck := Segment{SEQ: 5001, ACK: 1001, Flags: FlagACK, WND: 8192}
	result, err := tcb.Recv(staleAck)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if result == ResultClosed || tcb.state == StateClosed {
		t.Fatal("LastAck closed on an ACK that didn't acknowledge the FIN")
	}
}

// TestRSTTearsDownEstablished checks that an RST landing exactly at RCV.NXT
// while ESTABLISHED resets the connection, rather than being silently
// admitted as ordinary data/ack.
func TestRSTTearsDownEstablished(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateEstablished
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	rst := Segment{SEQ: 5001, ACK: 1001, Flags: FlagRST | FlagACK, WND: 8192}
	_, err := tcb.Recv(rst)
	if !errors.Is(err, errConnReset) {
		t.Fatalf("Recv(RST) = %v, want errConnReset", err)
	}
	if tcb.state != StateClosed {
		t.Fatalf("state = %v, want Closed", tcb.state)
	}
	if _, ok := tcb.PendingSegment(0); ok {
		t.Fatal("expected no egress after a connection reset")
	}
}

// TestRSTTearsDownCloseWait checks the same RST-in-synchronized-state
// behavior outside ESTABLISHED, since the fix must cover every state
// IsSynchronized reports true for, not just ESTABLISHED.
func TestRSTTearsDownCloseWait(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateCloseWait
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	rst := Segment{SEQ: 5001, ACK: 1001, Flags: FlagRST, WND: 8192}
	_, err := tcb.Recv(rst)
	if !errors.Is(err, errConnReset) {
		t.Fatalf("Recv(RST) = %v, want errConnReset", err)
	}
	if tcb.state != StateClosed {
		t.Fatalf("state = %v, want Closed", tcb.state)
	}
}

// TestDataWithStaleAckNotDropped checks that a data segment whose ACK
// doesn't advance SND.UNA and carries no PSH still reaches the caller,
// instead of being misclassified as a pure duplicate ACK and dropped.
func TestDataWithStaleAckNotDropped(t *testing.T) {
	var tcb ControlBlock
	tcb.state = StateEstablished
	tcb.snd = sendSpace{ISS: 1000, UNA: 1001, NXT: 1001, WND: 8192}
	tcb.rcv = recvSpace{IRS: 5000, NXT: 5001, WND: 8192}

	data := Segment{SEQ: 5001, ACK: 1001, DATALEN: 10, Flags: FlagACK, WND: 8192}
	_, err := tcb.Recv(data)
	if err != nil {
		t.Fatalf("Recv(data with stale ack) = %v, want nil", err)
	}
	if tcb.rcv.NXT != 5011 {
		t.Fatalf("RCV.NXT = %d, want 5011 (segment must be admitted)", tcb.rcv.NXT)
	}
}

// refusingGate is an AcceptGate that always declines.
type refusingGate struct{}

func (refusingGate) Accept() bool { return false }

// TestListenRefusesConnection checks that a LISTEN-state ControlBlock backed
// by a refusing AcceptGate tears down to CLOSED instead of answering with
// SYN|ACK.
func TestListenRefusesConnection(t *testing.T) {
	var tcb ControlBlock
	tcb.SetAcceptGate(refusingGate{})
	if err := tcb.Open(1000, 8192, StateListen); err != nil {
		t.Fatalf("Open: %v", err)
	}

	syn := Segment{SEQ: 5000, Flags: FlagSYN, WND: 8192}
	_, err := tcb.Recv(syn)
	if !errors.Is(err, errConnRefused) {
		t.Fatalf("Recv(SYN) = %v, want errConnRefused", err)
	}
	if tcb.state != StateClosed {
		t.Fatalf("state = %v, want Closed", tcb.state)
	}
	if _, ok := tcb.PendingSegment(0); ok {
		t.Fatal("expected no pending SYN|ACK after a refusal")
	}
}

// TestSimultaneousOpenRSTRefuses drives SYN-RECEIVED via the simultaneous-
// open leg of rcvSynSent (not via LISTEN) and checks that a preestablished
// RST there refuses the connection instead of bouncing back to LISTEN,
// since there is no listener behind an active open to return to.
func TestSimultaneousOpenRSTRefuses(t *testing.T) {
	var tcb ControlBlock
	if err := tcb.Open(1000, 8192, StateSynSent); err != nil {
		t.Fatalf("Open: %v", err)
	}
	syn, ok := tcb.PendingSegment(0)
	if !ok || syn.Flags != FlagSYN {
		t.Fatalf("expected a pending SYN, got %+v ok=%v", syn, ok)
	}
	if err := tcb.Send(syn); err != nil {
		t.Fatalf("Send(SYN): %v", err)
	}

	peerSyn := Segment{SEQ: 5000, Flags: FlagSYN, WND: 8192}
	if _, err := tcb.Recv(peerSyn); err != nil {
		t.Fatalf("Recv(bare SYN): %v", err)
	}
	if tcb.state != StateSynRcvd {
		t.Fatalf("state = %v, want SynRcvd", tcb.state)
	}
	if tcb.PrevState() != StateSynSent {
		t.Fatalf("prevState = %v, want SynSent", tcb.PrevState())
	}

	rst := Segment{SEQ: tcb.rcv.NXT, Flags: FlagRST, WND: 8192}
	_, err := tcb.Recv(rst)
	if !errors.Is(err, errConnRefused) {
		t.Fatalf("Recv(RST) = %v, want errConnRefused", err)
	}
	if tcb.state != StateClosed {
		t.Fatalf("state = %v, want Closed", tcb.state)
	}
}
