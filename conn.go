package tcpcore

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	errNotOpen = errors.New("tcpcore: connection not open")
	errNoPorts = errors.New("tcpcore: Conn missing required collaborator port")
)

// sigAcceptGate adapts a Signals to an AcceptGate so the state dispatcher
// can consult SignalAccept without importing the rest of the Signals port.
type sigAcceptGate struct{ sig Signals }

func (g sigAcceptGate) Accept() bool { return g.sig.SignalAccept() }

// ConnConfig carries the collaborator ports and buffer sizing a Conn needs
// at construction time. PacketOut is required; the rest may be left nil, and
// a nil port is not replaced by a default: a nil WriteQ or ReadQ makes Write
// or Read return an error, a nil Retransmit, Sig or RTOTimer turns off
// retransmission tracking, signals or the retransmission timer, and a nil
// RTO arms the timer with defaultRTO.
type ConnConfig struct {
	PacketOut  PacketIO
	Retransmit RetransmitQueue
	WriteQ     WriteQueue
	ReadQ      ReadQueue
	Sig        Signals
	RTO        RTTEstimator
	RTOTimer   Timer
	Logger     *slog.Logger
	// MSS is stamped onto outgoing SYN and SYN|ACK segments as the MSS
	// option advertised to the peer. Zero omits the option.
	MSS uint16
}

// Conn owns exactly one ControlBlock and the collaborator ports it was
// configured with: one read buffer, one write queue, one retransmission
// queue, and the signal/timer/RTT hooks. It serializes every call with a
// mutex, matching the single-threaded-per-connection concurrency model: a
// Conn may be driven concurrently by a network-receive goroutine and a
// user-facing Write/Read/Close goroutine, but never processes two segments
// or two user calls at once.
type Conn struct {
	mu  sync.Mutex
	tcb ControlBlock

	packetOut PacketIO
	rtq       RetransmitQueue
	wq        WriteQueue
	rq        ReadQueue
	sig       Signals
	rto       RTTEstimator
	rtoTimer  Timer
	mss       uint16
}

// Configure binds collaborator ports to the Conn. It must be called before
// Open. Every port is replaced by the one in cfg, so an optional port left
// nil in cfg becomes nil even if an earlier Configure call had set it.
func (c *Conn) Configure(cfg ConnConfig) error {
	if cfg.PacketOut == nil {
		return errNoPorts
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packetOut = cfg.PacketOut
	c.rtq = cfg.Retransmit
	c.wq = cfg.WriteQ
	c.rq = cfg.ReadQ
	c.sig = cfg.Sig
	c.rto = cfg.RTO
	c.rtoTimer = cfg.RTOTimer
	c.mss = cfg.MSS
	c.tcb.SetLogger(cfg.Logger)
	if cfg.Sig != nil {
		c.tcb.SetAcceptGate(sigAcceptGate{cfg.Sig})
	} else {
		c.tcb.SetAcceptGate(nil)
	}
	return nil
}

// State returns the current TCP state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tcb.State()
}

// OpenActive begins an active open: the ControlBlock transitions to
// SYN-SENT and a SYN segment is flushed to PacketIO immediately.
func (c *Conn) OpenActive(iss Value, wnd Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.tcb.Open(iss, wnd, StateSynSent); err != nil {
		return err
	}
	return c.flushLocked(0)
}

// OpenListen begins a passive open: the ControlBlock transitions to LISTEN
// and waits for an incoming SYN.
func (c *Conn) OpenListen(iss Value, wnd Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tcb.Open(iss, wnd, StateListen)
}

// Close initiates an orderly close. See ControlBlock.Close for the
// state-dependent semantics.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.tcb.Close()
	if err != nil {
		return err
	}
	if c.rtq != nil && c.tcb.State() == StateClosed {
		c.rtq.Flush()
	}
	return c.flushLocked(0)
}

// Write queues application data for transmission and flushes what the
// current send window allows.
func (c *Conn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tcb.State() == StateClosed {
		return 0, errNotOpen
	}
	if c.wq == nil {
		return 0, errNoPorts
	}
	n, err := c.wq.Write(b)
	if err != nil {
		return n, err
	}
	return n, c.flushLocked(c.wq.Buffered())
}

// Read copies received, in-order application bytes into b.
func (c *Conn) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rq == nil {
		return 0, errNoPorts
	}
	return c.rq.Read(b)
}

// Deliver processes one incoming segment and its payload. It is the entry
// point a packet-demultiplexing layer calls for every segment addressed to
// this connection.
func (c *Conn) Deliver(seg Segment, payload []byte) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tcb.IncomingIsKeepalive(seg) {
		return ResultOK, nil
	}
	result, err := c.tcb.Recv(seg)
	if err != nil {
		var reject *RejectError
		torndown := errors.Is(err, errConnReset) || errors.Is(err, errConnRefused)
		reportable := errors.As(err, &reject) || torndown
		if reportable && c.sig != nil {
			c.sig.SignalError(err)
			if torndown {
				c.sig.ReceiveDisconnect()
			}
		}
		if torndown && c.rtoTimer != nil {
			c.rtoTimer.Stop()
		}
		return result, err
	}
	// Only buffer the payload once Recv has admitted the segment: it is now
	// confirmed to sit exactly at the byte the read queue expects next.
	if len(payload) > 0 && c.rq != nil {
		if _, err := c.rq.Write(payload); err != nil {
			return result, err
		}
	}
	if c.rtq != nil && seg.Flags.HasAny(FlagACK) {
		acked := c.rtq.Ack(seg.ACK)
		if acked > 0 {
			c.onAckProgress()
		}
	}
	if c.sig != nil {
		switch {
		case result == ResultClosed:
			c.sig.ReceiveDisconnect()
		case result == ResultClose:
			c.sig.SignalDisconnect()
		case seg.Flags.HasAny(FlagSYN) && c.tcb.State() == StateEstablished:
			c.sig.SignalConnect()
		}
	}
	return result, c.flushLocked(0)
}

// flushLocked drains every pending control segment and, when space and state
// allow, one data segment sized from the write queue. mu must be held.
func (c *Conn) flushLocked(writeAvail int) error {
	for {
		seg, ok := c.tcb.PendingSegment(0)
		if !ok {
			break
		}
		if err := c.send(seg, nil); err != nil {
			return err
		}
	}
	if writeAvail == 0 || c.wq == nil {
		return nil
	}
	avail := c.wq.Buffered()
	seg, ok := c.tcb.PendingSegment(avail)
	if !ok || seg.DATALEN == 0 {
		return nil
	}
	payload := c.wq.Peek(int(seg.DATALEN))
	if err := c.send(seg, payload); err != nil {
		return err
	}
	c.wq.Advance(len(payload))
	return nil
}

func (c *Conn) send(seg Segment, payload []byte) error {
	if c.mss != 0 && seg.Flags.HasAny(FlagSYN) {
		seg.MSS = c.mss
	}
	if err := c.tcb.Send(seg); err != nil {
		return err
	}
	if c.rtq != nil && (seg.DATALEN > 0 || seg.Flags.HasAny(FlagSYN|FlagFIN)) {
		c.rtq.Queue(seg, payload)
		c.armRTOLocked()
	}
	return c.packetOut.SendSegment(seg, payload)
}

// armRTOLocked schedules the retransmission timer for a freshly queued
// segment, using the RTT estimator's current estimate. mu must be held.
func (c *Conn) armRTOLocked() {
	if c.rtoTimer == nil {
		return
	}
	d := defaultRTO
	if c.rto != nil {
		d = c.rto.RTO()
	}
	c.rtoTimer.Reset(d)
}

// onAckProgress resets the backoff schedule once an ack retires at least one
// queued segment, and either stops the timer (nothing left pending) or
// re-arms it fresh for whatever remains. mu must be held.
func (c *Conn) onAckProgress() {
	if c.rtoTimer == nil {
		return
	}
	if bo, ok := c.rtoTimer.(BackingOffTimer); ok {
		bo.Hit()
	}
	if c.rtq == nil || len(c.rtq.Pending()) == 0 {
		c.rtoTimer.Stop()
		return
	}
	c.armRTOLocked()
}

// OnRetransmitTimeout retransmits the oldest unacknowledged segment after the
// retransmission timer fires, and re-arms the timer with the next backoff
// step when the timer supports one. It is the callback an embedder should
// pass to ports.NewBackoffTimer/ports.NewStdTimer when constructing
// ConnConfig.RTOTimer, e.g. ports.NewBackoffTimer(base, max, conn.OnRetransmitTimeout).
func (c *Conn) OnRetransmitTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rtq == nil || c.packetOut == nil {
		return
	}
	pending := c.rtq.Pending()
	if len(pending) == 0 {
		return
	}
	oldest := pending[0]
	if err := c.packetOut.SendSegment(oldest.Seg, oldest.Payload); err != nil {
		if c.sig != nil {
			c.sig.SignalError(err)
		}
		return
	}
	if c.rtoTimer == nil {
		return
	}
	if bo, ok := c.rtoTimer.(BackingOffTimer); ok {
		c.rtoTimer.Reset(bo.Miss())
		return
	}
	c.armRTOLocked()
}

// defaultRTO arms a fresh retransmission timer when no RTTEstimator is
// configured; with one configured, its RTO is used even before any sample.
const defaultRTO = 1 * time.Second
