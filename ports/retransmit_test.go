package ports

import (
	"testing"
	"time"

	"github.com/soypat/tcpcore"
)

func TestMemRetransmitQueueAck(t *testing.T) {
	clock := time.Unix(0, 0)
	q := NewMemRetransmitQueue(func() time.Time { return clock })

	q.Queue(tcpcore.Segment{SEQ: 1000, DATALEN: 10}, []byte("0123456789"))
	q.Queue(tcpcore.Segment{SEQ: 1010, DATALEN: 5}, []byte("abcde"))
	if got := len(q.Pending()); got != 2 {
		t.Fatalf("Pending() len = %d, want 2", got)
	}

	retired := q.Ack(1010) // acks the first segment only (up to but not including 1010)
	if retired != 1 {
		t.Fatalf("Ack retired = %d, want 1", retired)
	}
	if got := len(q.Pending()); got != 1 {
		t.Fatalf("Pending() len after Ack = %d, want 1", got)
	}

	retired = q.Ack(1015)
	if retired != 1 {
		t.Fatalf("Ack retired = %d, want 1", retired)
	}
	if got := len(q.Pending()); got != 0 {
		t.Fatalf("Pending() len after full Ack = %d, want 0", got)
	}
}

func TestMemRetransmitQueueFlush(t *testing.T) {
	q := NewMemRetransmitQueue(time.Now)
	q.Queue(tcpcore.Segment{SEQ: 1, DATALEN: 1}, []byte("a"))
	q.Flush()
	if got := len(q.Pending()); got != 0 {
		t.Fatalf("Pending() len after Flush = %d, want 0", got)
	}
}
