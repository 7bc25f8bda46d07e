package tcpcore

// AcceptGate lets a LISTEN-state ControlBlock ask whether to accept an
// inbound SYN before answering it. It is the ControlBlock-facing
// counterpart of Signals.SignalAccept - Conn adapts one to the other in
// Configure - kept separate so the state dispatcher never has to know
// about the rest of the Signals port, following the same narrow-hook shape
// as DupAckObserver.
type AcceptGate interface {
	// Accept is called once per inbound SYN while LISTENing. Returning false
	// refuses the connection: the TCB tears down to CLOSED instead of
	// answering with SYN|ACK.
	Accept() bool
}

// SetAcceptGate installs the accept hook. A nil gate accepts every SYN.
func (tcb *ControlBlock) SetAcceptGate(g AcceptGate) {
	tcb.acceptGate = g
}
