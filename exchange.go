package tcpcore

import (
	"strconv"
	"unsafe"
)

// StringExchange returns a human readable, RFC9293-styled visualization of a
// segment exchange between two connection states, e.g:
//
//	SynSent     --> <SEQ=300><ACK=91>[SYN,ACK]   --> SynRcvd
//
// invertDir flips the arrow direction, for rendering the reverse leg of an
// exchange.
func StringExchange(seg Segment, a, b State, invertDir bool) string {
	buf := make([]byte, 0, 64)
	buf = appendExchange(buf, seg, a, b, invertDir)
	return unsafe.String(unsafe.SliceData(buf), len(buf))
}

func appendExchange(buf []byte, seg Segment, a, b State, invertDir bool) []byte {
	const emptySpaces = "            "
	buf = buf[len(buf):]
	appendVal := func(buf []byte, name string, v Value) []byte {
		buf = append(buf, '<')
		buf = append(buf, name...)
		buf = append(buf, '=')
		buf = strconv.AppendInt(buf, int64(v), 10)
		buf = append(buf, '>')
		return buf
	}

	dirSep := []byte(" --> ")
	if invertDir {
		dirSep = []byte(" <-- ")
	}
	astr := a.String()
	buf = append(buf, astr...)
	if len(astr) < 11 {
		buf = append(buf, emptySpaces[:11-len(astr)]...)
	}
	buf = append(buf, dirSep...)
	buf = appendVal(buf, "SEQ", seg.SEQ)
	buf = appendVal(buf, "ACK", seg.ACK)
	if seg.DATALEN > 0 {
		buf = appendVal(buf, "DATA", Value(seg.DATALEN))
	}
	buf = append(buf, seg.Flags.String()...)
	if len(buf) < 44 {
		buf = append(buf, emptySpaces[:44-len(buf)]...)
	}
	buf = append(buf, dirSep...)
	buf = append(buf, b.String()...)
	return buf
}
