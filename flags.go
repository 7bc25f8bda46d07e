package tcpcore

import "strings"

// Flags is a TCP flags bitmask implementation i.e: SYN, FIN, ACK.
type Flags uint16

const (
	FlagFIN Flags = 1 << iota // FlagFIN - No more data from sender.
	FlagSYN                   // FlagSYN - Synchronize sequence numbers.
	FlagRST                   // FlagRST - Reset the connection.
	FlagPSH                   // FlagPSH - Push function.
	FlagACK                   // FlagACK - Acknowledgment field significant.
	FlagURG                   // FlagURG - Urgent pointer field significant.
	FlagECE                   // FlagECE - ECN-Echo.
	FlagCWR                   // FlagCWR - Congestion Window Reduced.
	FlagNS                    // FlagNS  - Nonce Sum flag (see RFC 3540).

	// The union of SYN and ACK flags is commonly found throughout the specification.
	synack = FlagSYN | FlagACK
	finack = FlagFIN | FlagACK
)

// HasAll checks if mask bits are all set in the receiver flags.
func (flags Flags) HasAll(mask Flags) bool { return flags&mask == mask }

// HasAny checks if one or more mask bits are set in receiver flags.
func (flags Flags) HasAny(mask Flags) bool { return flags&mask != 0 }

// flagNames lists every bit from LSB (FIN) to MSB (NS) by index.
var flagNames = [...]string{"FIN", "SYN", "RST", "PSH", "ACK", "URG", "ECE", "CWR", "NS"}

// String returns a human readable flag string, e.g:
//
//	"[SYN,ACK]"
func (flags Flags) String() string {
	if flags == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	wrote := false
	for i, name := range flagNames {
		if flags&(1<<i) == 0 {
			continue
		}
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(name)
		wrote = true
	}
	b.WriteByte(']')
	return b.String()
}
