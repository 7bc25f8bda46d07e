package ports

import (
	"time"

	"github.com/soypat/tcpcore"
)

// MemRetransmitQueue is a minimal in-memory RetransmitQueue: a slice of
// QueuedSegment kept in send order. It is adequate for tests and small
// connection counts; a production embedding with many concurrent
// connections would want the ring-buffer-backed packet queue this type is
// grounded on (a single shared byte ring sliced per packet) instead of a
// QueuedSegment-per-entry slice, trading memory locality for simplicity.
type MemRetransmitQueue struct {
	q []tcpcore.QueuedSegment
	now func() time.Time
}

// NewMemRetransmitQueue constructs an empty queue. now is injected so tests
// can control SentAt deterministically; pass time.Now in production.
func NewMemRetransmitQueue(now func() time.Time) *MemRetransmitQueue {
	return &MemRetransmitQueue{now: now}
}

func (m *MemRetransmitQueue) Queue(seg tcpcore.Segment, payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.q = append(m.q, tcpcore.QueuedSegment{Seg: seg, Payload: cp, SentAt: m.now()})
}

func (m *MemRetransmitQueue) Ack(ack tcpcore.Value) (retired int) {
	i := 0
	for i < len(m.q) {
		last := m.q[i].Seg.Last()
		if !tcpcore.LessThan(last, ack) {
			break
		}
		i++
		retired++
	}
	if retired > 0 {
		copy(m.q, m.q[i:])
		m.q = m.q[:len(m.q)-i]
	}
	return retired
}

func (m *MemRetransmitQueue) Pending() []tcpcore.QueuedSegment {
	return m.q
}

func (m *MemRetransmitQueue) Flush() {
	m.q = m.q[:0]
}
