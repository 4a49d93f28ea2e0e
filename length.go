// length.go implements the small variable-length fields of RFC 6716 Section 3.2:
// frame length codes, the code 3 frame count byte, and Opus padding lengths.

package opusframe

// MaxFrameSize is the largest compressed frame allowed by RFC 6716 (R2).
// It is also the largest value a two-byte length code can express.
const MaxFrameSize = 1275

// ParseLengthCode decodes a frame length per RFC 6716 Section 3.2.1.
// A first byte below 252 is the length itself; 252-255 combine with a second
// byte as second*4 + first. Returns ErrUnexpectedEOF if a byte is missing.
func ParseLengthCode(data []byte) (length, consumed int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	first := int(data[0])
	if first < 252 {
		return first, 1, nil
	}
	if len(data) < 2 {
		return 0, 0, ErrUnexpectedEOF
	}
	return int(data[1])*4 + first, 2, nil
}

// LengthCodeSize returns the number of bytes AppendLengthCode uses for n.
func LengthCodeSize(n int) int {
	if n < 252 {
		return 1
	}
	return 2
}

// AppendLengthCode appends the RFC 6716 length code for n, which must be in
// 0..MaxFrameSize.
func AppendLengthCode(dst []byte, n int) []byte {
	if n < 252 {
		return append(dst, byte(n))
	}
	first := 252 + n&3
	return append(dst, byte(first), byte((n-first)>>2))
}

// FrameCount is the decoded frame count byte of a code 3 packet.
//
//	 0 1 2 3 4 5 6 7
//	+-+-+-+-+-+-+-+-+
//	|v|p|     M     |
//	+-+-+-+-+-+-+-+-+
type FrameCount struct {
	VBR     bool // v: frame lengths are coded individually
	Padding bool // p: Opus padding follows
	Count   int  // M: 0-63; zero is rejected by the framer
}

const (
	frameCountMaskVBR     = 0x80
	frameCountMaskPadding = 0x40
	frameCountMaskCount   = 0x3F
)

// ParseFrameCount extracts the fields of a code 3 frame count byte.
func ParseFrameCount(b byte) FrameCount {
	return FrameCount{
		VBR:     b&frameCountMaskVBR != 0,
		Padding: b&frameCountMaskPadding != 0,
		Count:   int(b & frameCountMaskCount),
	}
}

// Byte re-encodes the frame count byte. Count is masked to 6 bits.
func (fc FrameCount) Byte() byte {
	b := byte(fc.Count) & frameCountMaskCount
	if fc.VBR {
		b |= frameCountMaskVBR
	}
	if fc.Padding {
		b |= frameCountMaskPadding
	}
	return b
}

// ParsePaddingLength decodes the Opus padding length that follows a code 3
// frame count byte with the p flag set. Each 255 byte adds 254 and continues;
// the first byte below 255 adds its value and ends the sequence.
func ParsePaddingLength(data []byte) (padding, consumed int, err error) {
	for i, b := range data {
		if b < 255 {
			return padding + int(b), i + 1, nil
		}
		padding += 254
	}
	return 0, 0, ErrUnexpectedEOF
}

// AppendPaddingLength appends the shortest encoding of a padding length n >= 0.
func AppendPaddingLength(dst []byte, n int) []byte {
	full, last := n/254, n%254
	if last == 0 && full > 0 {
		// 254 itself is a valid terminator.
		full--
		last = 254
	}
	for ; full > 0; full-- {
		dst = append(dst, 255)
	}
	return append(dst, byte(last))
}
