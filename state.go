package tcpcore

// State enumerates states a TCP connection progresses through during its lifetime,
// per the state diagram in RFC 9293 figure 5.
//
//go:generate stringer -type=State -trimprefix=State
type State uint8

const (
	// StateClosed represents no connection state at all.
	StateClosed State = iota
	// StateListen represents waiting for a connection request from any remote TCP and port.
	StateListen
	// StateSynSent represents waiting for a matching connection request
	// after having sent a connection request.
	StateSynSent
	// StateSynRcvd represents waiting for a confirming connection request
	// acknowledgment after having both received and sent a connection request.
	StateSynRcvd
	// StateEstablished represents an open connection, data received can be
	// delivered to the user. The normal state for the data transfer phase.
	StateEstablished
	// StateFinWait1 represents waiting for a connection termination request
	// from the remote TCP, or an acknowledgment of the termination request
	// previously sent.
	StateFinWait1
	// StateFinWait2 represents waiting for a connection termination request
	// from the remote TCP.
	StateFinWait2
	// StateClosing represents waiting for a connection termination request
	// acknowledgment from the remote TCP.
	StateClosing
	// StateCloseWait represents waiting for a connection termination request
	// from the local user.
	StateCloseWait
	// StateLastAck represents waiting for an acknowledgment of the connection
	// termination request previously sent to the remote TCP (which includes
	// an acknowledgment of its termination request).
	StateLastAck
	// StateTimeWait represents waiting for enough time to pass to be sure the
	// remote TCP received the acknowledgment of its connection termination request.
	StateTimeWait
)

var stateStrings = [...]string{
	StateClosed:      "Closed",
	StateListen:      "Listen",
	StateSynSent:     "SynSent",
	StateSynRcvd:     "SynRcvd",
	StateEstablished: "Established",
	StateFinWait1:    "FinWait1",
	StateFinWait2:    "FinWait2",
	StateClosing:     "Closing",
	StateCloseWait:   "CloseWait",
	StateLastAck:     "LastAck",
	StateTimeWait:    "TimeWait",
}

func (s State) String() string {
	if int(s) >= len(stateStrings) {
		return "State(?)"
	}
	return stateStrings[s]
}

// IsPreestablished reports whether s is one of the states preceding
// ESTABLISHED in a connection that has not yet completed its handshake.
func (s State) IsPreestablished() bool {
	return s == StateSynRcvd || s == StateSynSent || s == StateListen
}

// IsClosing reports whether s belongs to the passive or active close sequence.
func (s State) IsClosing() bool {
	switch s {
	case StateFinWait1, StateFinWait2, StateClosing, StateCloseWait, StateLastAck, StateTimeWait:
		return true
	}
	return false
}

// IsClosed reports whether s is the fully closed state.
func (s State) IsClosed() bool { return s == StateClosed }

// IsSynchronized reports whether both sides have exchanged and acknowledged
// a SYN, i.e. the connection is at or beyond ESTABLISHED.
func (s State) IsSynchronized() bool {
	return s == StateEstablished || s.IsClosing()
}
