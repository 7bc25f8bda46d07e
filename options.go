package tcpcore

import "encoding/binary"

// OptionKind identifies a TCP option kind octet, per RFC 9293 section 3.1.
type OptionKind uint8

const (
	OptionKindEndList       OptionKind = 0
	OptionKindNop           OptionKind = 1
	OptionKindMSS           OptionKind = 2
	OptionKindWindowScale   OptionKind = 3
	OptionKindSACKPermitted OptionKind = 4
	OptionKindSACK          OptionKind = 5
	OptionKindTimestamps    OptionKind = 8
)

// IsRecognized reports whether this module's option parser extracts a value
// for this option kind. Every other option is skipped but not rejected,
// per the non-goals around SACK, timestamps, and window scaling.
func (k OptionKind) IsRecognized() bool { return k == OptionKindMSS }

// ForEachOption walks the TCP options area of a segment (the bytes following
// the fixed 20-byte header, up to the data offset), invoking fn for every
// option kind found. Malformed option lengths stop iteration early and
// return false; the caller should treat that as grounds to drop the segment
// per the header-validation step that precedes state-machine processing.
func ForEachOption(opts []byte, fn func(kind OptionKind, data []byte)) (ok bool) {
	for len(opts) > 0 {
		kind := OptionKind(opts[0])
		if kind == OptionKindEndList {
			return true
		}
		if kind == OptionKindNop {
			opts = opts[1:]
			continue
		}
		if len(opts) < 2 {
			return false
		}
		optlen := int(opts[1])
		if optlen < 2 || optlen > len(opts) {
			return false
		}
		fn(kind, opts[2:optlen])
		opts = opts[optlen:]
	}
	return true
}

// AppendMSSOption appends a 4-byte MSS option (kind=2, len=4, value big-endian)
// to buf and returns the extended slice.
func AppendMSSOption(buf []byte, mss uint16) []byte {
	var tmp [4]byte
	tmp[0] = byte(OptionKindMSS)
	tmp[1] = 4
	binary.BigEndian.PutUint16(tmp[2:], mss)
	return append(buf, tmp[:]...)
}

// ParseMSSOption extracts the MSS value carried by data, the payload of a
// single MSS option as yielded by ForEachOption. It returns ok=false if data
// is not exactly 2 bytes long.
func ParseMSSOption(data []byte) (mss uint16, ok bool) {
	if len(data) != 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(data), true
}
