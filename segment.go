package tcpcore

// Segment represents an inbound TCP segment as seen by the control block: the
// sequence number of its first octet, its length, and the flags it carries.
// Segment carries no payload bytes; the payload itself is the caller's concern
// (see PacketIO), only DATALEN matters to the sequence arithmetic here.
type Segment struct {
	SEQ     Value // sequence number of first octet. If SYN is set this is the ISN, and the first data octet is ISN+1.
	ACK     Value // acknowledgment number. If ACK is set, the next octet the sender of the segment expects to receive.
	DATALEN Size  // number of octets occupied by data (payload), not counting SYN and FIN.
	WND     Size  // segment window.
	Flags   Flags
	MSS     uint16 // MSS option value, 0 if absent. Only meaningful on SYN segments.
}

// LEN returns the length of the segment in octets, including the SYN and FIN flags
// which each occupy one sequence number.
func (seg *Segment) LEN() Size {
	add := Size(seg.Flags>>0) & 1 // FIN bit.
	add += Size(seg.Flags>>1) & 1 // SYN bit.
	return seg.DATALEN + add
}

// Last returns the sequence number of the last octet of the segment.
func (seg *Segment) Last() Value {
	seglen := seg.LEN()
	if seglen == 0 {
		return seg.SEQ
	}
	return Add(seg.SEQ, seglen) - 1
}

// OutSegment is a value-typed builder for a segment to be emitted. Unlike
// Segment, which is a read-only view of data already validated against a
// ControlBlock, OutSegment pairs a Segment with its payload bytes. It has no
// Send method, and neither the dispatcher nor Conn constructs one; its
// Segment and Payload fields match the arguments of PacketIO.SendSegment.
type OutSegment struct {
	Segment
	Payload []byte
}

// WithMSS attaches an MSS option to the builder and returns it for chaining.
func (o OutSegment) WithMSS(mss uint16) OutSegment {
	o.MSS = mss
	return o
}

// WithPayload attaches payload bytes to the builder and returns it for chaining.
// The caller must ensure DATALEN matches len(b).
func (o OutSegment) WithPayload(b []byte) OutSegment {
	o.Payload = b
	o.DATALEN = Size(len(b))
	return o
}
