package ports

import (
	"log/slog"

	"github.com/soypat/tcpcore"
)

// LogSignals implements Signals by logging every event. Useful as a
// placeholder embedding and in tests that only assert on ControlBlock state,
// not on user-visible callbacks.
type LogSignals struct {
	Log *slog.Logger
}

// SignalAccept always accepts; embed LogSignals and override this method to
// gate connections.
func (s LogSignals) SignalAccept() bool { s.log("tcp:accept"); return true }
func (s LogSignals) SignalConnect()     { s.log("tcp:connect") }
func (s LogSignals) SignalDisconnect()  { s.log("tcp:disconnect") }
func (s LogSignals) ReceiveDisconnect() { s.log("tcp:recv-disconnect") }
func (s LogSignals) SignalError(err error) {
	if s.Log != nil {
		s.Log.Error("tcp:error", slog.String("err", err.Error()))
	}
}

func (s LogSignals) log(msg string) {
	if s.Log != nil {
		s.Log.Info(msg)
	}
}

// MemPacketIO records every segment handed to it, for assertions in tests.
type MemPacketIO struct {
	Sent []SentSegment
}

// SentSegment is one segment captured by MemPacketIO.
type SentSegment struct {
	Seg     tcpcore.Segment
	Payload []byte
}

func (m *MemPacketIO) SendSegment(seg tcpcore.Segment, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.Sent = append(m.Sent, SentSegment{Seg: seg, Payload: cp})
	return nil
}
