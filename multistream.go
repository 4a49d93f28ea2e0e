// multistream.go splits the multistream packets used by RFC 7845 channel
// mapping families other than 0.

package opusframe

import "fmt"

// ParseMultistream splits a packet holding streams elementary Opus packets.
// Per RFC 7845 Section 5.1.1 the first streams-1 packets use self-delimited
// framing and the last one uses the remaining bytes. dst is reused, including
// the frame capacity of its elements.
func ParseMultistream(data []byte, streams int, dst []Packet) ([]Packet, error) {
	if streams < 1 {
		return dst[:0], ErrInvalidStreamCount
	}
	dst = dst[:0]
	for i := 0; i < streams; i++ {
		if len(dst) < cap(dst) {
			dst = dst[:len(dst)+1]
		} else {
			dst = append(dst, Packet{})
		}
		last := i == streams-1
		rest, err := DecodePacket(&dst[i], data, !last)
		if err != nil {
			return dst[:0], fmt.Errorf("opus: stream %d of %d: %w", i, streams, err)
		}
		data = rest
	}

	samples := dst[0].Samples()
	for i := 1; i < len(dst); i++ {
		if dst[i].Samples() != samples {
			return dst[:0], ErrStreamDurationMismatch
		}
	}
	return dst, nil
}

// AppendMultistream appends a multistream packet built from complete
// elementary packets, converting all but the last to self-delimited framing.
func AppendMultistream(dst []byte, packets [][]byte) ([]byte, error) {
	if len(packets) == 0 {
		return dst, ErrInvalidStreamCount
	}
	var p Packet
	for i, data := range packets {
		if i == len(packets)-1 {
			return append(dst, data...), nil
		}
		if _, err := DecodePacket(&p, data, false); err != nil {
			return dst, fmt.Errorf("opus: stream %d: %w", i, err)
		}
		var err error
		dst, err = AppendPacket(dst, p.Config.Number, p.Stereo, p.Frames, BuildOptions{
			Padding:       p.Padding,
			SelfDelimited: true,
		})
		if err != nil {
			return dst, err
		}
	}
	return dst, nil
}
