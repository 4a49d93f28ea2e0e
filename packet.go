// packet.go implements packet frame extraction per RFC 6716 Section 3.2
// and the self-delimiting framing of Appendix B.

package opusframe

import "time"

// MaxPacketDuration is the longest audio duration a packet may carry (R5).
const MaxPacketDuration = 120 * time.Millisecond

// maxPacketSamples is MaxPacketDuration in samples at 48kHz.
const maxPacketSamples = 5760

// MaxFrames is the largest frame count a valid packet can have (48 x 2.5ms).
const MaxFrames = 48

// Packet is an Opus packet split into frames sharing one configuration.
//
// Frames are sub-slices of the buffer the packet was parsed from, capped to
// their own length. A Packet must not be used after that buffer is reused.
type Packet struct {
	Config  Config
	Stereo  bool
	Layout  FrameLayout
	VBR     bool     // code 3 only
	Padding int      // Opus padding bytes skipped (code 3 only)
	Frames  [][]byte // compressed frames, in order
}

// Channels returns the channel count signaled by the TOC byte.
func (p *Packet) Channels() int {
	if p.Stereo {
		return 2
	}
	return 1
}

// Samples returns the number of samples per channel at 48kHz.
func (p *Packet) Samples() int {
	return len(p.Frames) * p.Config.FrameSize.Samples()
}

// Duration returns the audio duration of the packet.
func (p *Packet) Duration() time.Duration {
	return time.Duration(len(p.Frames)) * p.Config.FrameSize.Duration()
}

// layoutDecoder splits data (the packet after its TOC byte) into p.Frames and
// returns the bytes following the packet.
type layoutDecoder func(p *Packet, data []byte, selfDelimited bool) ([]byte, error)

// layoutDecoders is indexed by the 2-bit layout code, so every code resolves.
var layoutDecoders = [4]layoutDecoder{
	LayoutOne:          decodeOne,
	LayoutTwoEqual:     decodeTwoEqual,
	LayoutTwoDifferent: decodeTwoDifferent,
	LayoutArbitrary:    decodeArbitrary,
}

// Parse decodes a packet whose length is known from the transport.
// data must hold exactly one packet.
func Parse(data []byte) (*Packet, error) {
	p := &Packet{Frames: make([][]byte, 0, 2)}
	if _, err := DecodePacket(p, data, false); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseSelfDelimited decodes a self-delimited packet (RFC 6716 Appendix B)
// from the front of data and returns the bytes that follow it.
func ParseSelfDelimited(data []byte) (*Packet, []byte, error) {
	p := &Packet{Frames: make([][]byte, 0, 2)}
	rest, err := DecodePacket(p, data, true)
	if err != nil {
		return nil, nil, err
	}
	return p, rest, nil
}

// DecodePacket decodes the packet at the front of data into p, reusing the
// capacity of p.Frames. With selfDelimited false, data is the whole packet and
// the returned remainder is empty. With selfDelimited true, the packet's own
// length codes delimit it and the remainder holds whatever follows.
// data is never modified. On error p holds no frames.
func DecodePacket(p *Packet, data []byte, selfDelimited bool) (rest []byte, err error) {
	p.Frames = p.Frames[:0]
	if len(data) == 0 {
		return nil, ErrUnexpectedEOF
	}
	toc := ParseTOC(data[0])
	p.Config = toc.Config
	p.Stereo = toc.Stereo
	p.Layout = toc.Layout
	p.VBR = false
	p.Padding = 0

	rest, err = layoutDecoders[toc.Layout](p, data[1:], selfDelimited)
	if err != nil {
		p.Frames = p.Frames[:0]
		return nil, err
	}
	return rest, nil
}

// takeFrame appends the next n bytes of data as a frame.
func (p *Packet) takeFrame(data []byte, n int) ([]byte, error) {
	if n > len(data) {
		return nil, ErrUnexpectedEOF
	}
	if n > MaxFrameSize {
		return nil, ErrOverlongFrame
	}
	p.Frames = append(p.Frames, data[:n:n])
	return data[n:], nil
}

// selfDelimitedLength reads the extra length code of a self-delimited packet.
func selfDelimitedLength(data []byte) (int, []byte, error) {
	n, used, err := ParseLengthCode(data)
	if err != nil {
		return 0, nil, err
	}
	return n, data[used:], nil
}

// decodeOne handles code 0: a single frame.
func decodeOne(p *Packet, data []byte, selfDelimited bool) ([]byte, error) {
	n := len(data)
	if selfDelimited {
		var err error
		if n, data, err = selfDelimitedLength(data); err != nil {
			return nil, err
		}
	}
	return p.takeFrame(data, n)
}

// decodeTwoEqual handles code 1: two frames of the same size.
func decodeTwoEqual(p *Packet, data []byte, selfDelimited bool) ([]byte, error) {
	var n int
	if selfDelimited {
		var err error
		if n, data, err = selfDelimitedLength(data); err != nil {
			return nil, err
		}
	} else {
		if len(data)%2 != 0 {
			return nil, ErrUnevenFrameLengths
		}
		n = len(data) / 2
	}
	data, err := p.takeFrame(data, n)
	if err != nil {
		return nil, err
	}
	return p.takeFrame(data, n)
}

// decodeTwoDifferent handles code 2: two frames, the first length-coded.
func decodeTwoDifferent(p *Packet, data []byte, selfDelimited bool) ([]byte, error) {
	n1, used, err := ParseLengthCode(data)
	if err != nil {
		return nil, err
	}
	data = data[used:]

	var n2 int
	if selfDelimited {
		if n2, data, err = selfDelimitedLength(data); err != nil {
			return nil, err
		}
		if n1 > len(data) {
			return nil, ErrUnexpectedEOF
		}
	} else {
		if n1 > len(data) {
			return nil, ErrFrameOverflow
		}
		n2 = len(data) - n1
	}

	if data, err = p.takeFrame(data, n1); err != nil {
		return nil, err
	}
	return p.takeFrame(data, n2)
}

// decodeArbitrary handles code 3: a frame count byte, optional padding, and
// CBR or VBR frames.
func decodeArbitrary(p *Packet, data []byte, selfDelimited bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrUnexpectedEOF
	}
	fc := ParseFrameCount(data[0])
	data = data[1:]

	// R5 is checked before anything else is read.
	if fc.Count == 0 {
		return nil, ErrZeroFrames
	}
	if fc.Count*p.Config.FrameSize.Samples() > maxPacketSamples {
		return nil, ErrOverlongDuration
	}
	p.VBR = fc.VBR

	if fc.Padding {
		padding, used, err := ParsePaddingLength(data)
		if err != nil {
			return nil, err
		}
		p.Padding = padding
		data = data[used:]
	}

	var err error
	if fc.VBR {
		data, err = decodeVBR(p, data, selfDelimited, fc.Count)
	} else {
		data, err = decodeCBR(p, data, selfDelimited, fc.Count)
	}
	if err != nil {
		return nil, err
	}

	// Skip the padding that trails the frames.
	if p.Padding > len(data) {
		return nil, ErrUnexpectedEOF
	}
	return data[p.Padding:], nil
}

// decodeVBR reads one length code per frame. With implicit framing the last
// frame is not coded and takes whatever precedes the padding.
func decodeVBR(p *Packet, data []byte, selfDelimited bool, count int) ([]byte, error) {
	var lengths [frameCountMaskCount + 1]int

	coded := count - 1
	if selfDelimited {
		coded = count
	}
	for i := 0; i < coded; i++ {
		n, used, err := ParseLengthCode(data)
		if err != nil {
			return nil, err
		}
		lengths[i] = n
		data = data[used:]
	}

	if !selfDelimited {
		last := len(data) - p.Padding
		for i := 0; i < coded; i++ {
			last -= lengths[i]
		}
		if last < 0 {
			return nil, ErrUnexpectedEOF
		}
		lengths[count-1] = last
	}

	var err error
	for i := 0; i < count; i++ {
		if data, err = p.takeFrame(data, lengths[i]); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// decodeCBR gives every frame the same length: coded once when
// self-delimited, otherwise the payload divided by the frame count.
func decodeCBR(p *Packet, data []byte, selfDelimited bool, count int) ([]byte, error) {
	var n int
	if selfDelimited {
		var err error
		if n, data, err = selfDelimitedLength(data); err != nil {
			return nil, err
		}
	} else {
		avail := len(data) - p.Padding
		if avail < 0 {
			return nil, ErrUnexpectedEOF
		}
		if avail%count != 0 {
			return nil, ErrUnevenFrameLengths
		}
		n = avail / count
	}

	var err error
	for i := 0; i < count; i++ {
		if data, err = p.takeFrame(data, n); err != nil {
			return nil, err
		}
	}
	return data, nil
}
