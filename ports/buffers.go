package ports

import "github.com/soypat/tcpcore/internal"

// MemWriteQueue is a ring-buffer backed WriteQueue.
type MemWriteQueue struct {
	r internal.Ring
}

// NewMemWriteQueue allocates a write queue backed by a buffer of size n.
func NewMemWriteQueue(n int) *MemWriteQueue {
	return &MemWriteQueue{r: internal.Ring{Buf: make([]byte, n)}}
}

func (w *MemWriteQueue) Write(b []byte) (int, error) { return w.r.Write(b) }
func (w *MemWriteQueue) Buffered() int                { return w.r.Buffered() }

// Peek returns up to n buffered bytes without consuming them. The returned
// slice is a fresh copy and does not alias the internal buffer.
func (w *MemWriteQueue) Peek(n int) []byte {
	if n > w.r.Buffered() {
		n = w.r.Buffered()
	}
	buf := make([]byte, n)
	snapshot := w.r
	read, _ := snapshot.Read(buf)
	return buf[:read]
}

// Advance consumes n bytes previously returned by Peek.
func (w *MemWriteQueue) Advance(n int) {
	discard := make([]byte, n)
	w.r.Read(discard)
}

// MemReadQueue is a ring-buffer backed ReadQueue.
type MemReadQueue struct {
	r internal.Ring
}

// NewMemReadQueue allocates a read queue backed by a buffer of size n.
func NewMemReadQueue(n int) *MemReadQueue {
	return &MemReadQueue{r: internal.Ring{Buf: make([]byte, n)}}
}

func (rq *MemReadQueue) Write(b []byte) (int, error) { return rq.r.Write(b) }
func (rq *MemReadQueue) Read(b []byte) (int, error)  { return rq.r.Read(b) }
func (rq *MemReadQueue) Buffered() int               { return rq.r.Buffered() }
