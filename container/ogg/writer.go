package ogg

import (
	"fmt"
	"io"
	"math/rand/v2"
)

// WriterConfig configures a Writer.
type WriterConfig struct {
	// Head is the identification header. Required.
	Head *IdHeader

	// Tags is the comment header. A header with vendor "opusframe" and no
	// comments is written when nil.
	Tags *CommentHeader

	// Serial is the bitstream serial number; 0 picks a random one.
	Serial uint32
}

// Writer writes Opus packets to an Ogg container, one packet per page.
// Packets too large for one page are continued on following pages.
type Writer struct {
	w          io.Writer
	serial     uint32
	pageSeq    uint32
	granulePos int64
	buf        []byte
	segs       []byte
	closed     bool
}

// NewWriter creates a family 0 Writer for mono or stereo and writes the
// header pages.
func NewWriter(w io.Writer, sampleRate uint32, channels uint8) (*Writer, error) {
	if channels == 0 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels in mapping family 0", ErrInvalidHeader, channels)
	}
	return NewWriterWithConfig(w, WriterConfig{Head: DefaultIdHeader(sampleRate, channels)})
}

// NewWriterWithConfig creates a Writer and writes the header pages.
func NewWriterWithConfig(w io.Writer, config WriterConfig) (*Writer, error) {
	if config.Head == nil {
		return nil, fmt.Errorf("%w: missing identification header", ErrInvalidHeader)
	}
	if _, err := ParseIdHeader(config.Head.Encode()); err != nil {
		return nil, err
	}
	tags := config.Tags
	if tags == nil {
		tags = &CommentHeader{Vendor: "opusframe"}
	}
	serial := config.Serial
	if serial == 0 {
		serial = rand.Uint32()
	}

	ow := &Writer{w: w, serial: serial}
	if err := ow.writePacket(config.Head.Encode(), PageFlagBOS, 0, false); err != nil {
		return nil, err
	}
	if err := ow.writePacket(tags.Encode(), 0, 0, false); err != nil {
		return nil, err
	}
	return ow, nil
}

// writePacket writes packet as one or more pages. The page that completes
// the packet carries granule; earlier pages carry -1.
func (ow *Writer) writePacket(packet []byte, flags byte, granule int64, eos bool) error {
	ow.segs = AppendSegmentTable(ow.segs[:0], len(packet))
	segs := ow.segs
	for {
		n := min(len(segs), maxSegments)
		size := 0
		for _, s := range segs[:n] {
			size += int(s)
		}

		page := Page{
			Flags:      flags,
			GranulePos: -1,
			Serial:     ow.serial,
			Sequence:   ow.pageSeq,
			Segments:   segs[:n],
			Payload:    packet[:size],
		}
		last := n == len(segs)
		if last {
			page.GranulePos = granule
			if eos {
				page.Flags |= PageFlagEOS
			}
		}

		ow.buf = page.AppendEncode(ow.buf[:0])
		if _, err := ow.w.Write(ow.buf); err != nil {
			return err
		}
		ow.pageSeq++

		if last {
			return nil
		}
		segs = segs[n:]
		packet = packet[size:]
		flags = PageFlagContinuation
	}
}

// WritePacket writes an Opus packet. samples is the number of 48kHz samples
// the packet decodes to.
func (ow *Writer) WritePacket(packet []byte, samples int) error {
	if ow.closed {
		return ErrUnexpectedEOS
	}
	ow.granulePos += int64(samples)
	return ow.writePacket(packet, 0, ow.granulePos, false)
}

// WriteLastPacket writes packet on a page flagged end-of-stream and closes
// the Writer.
func (ow *Writer) WriteLastPacket(packet []byte, samples int) error {
	if ow.closed {
		return ErrUnexpectedEOS
	}
	ow.granulePos += int64(samples)
	ow.closed = true
	return ow.writePacket(packet, 0, ow.granulePos, true)
}

// Close writes an empty EOS page unless the stream is already closed.
func (ow *Writer) Close() error {
	if ow.closed {
		return nil
	}
	ow.closed = true
	page := Page{
		Flags:      PageFlagEOS,
		GranulePos: ow.granulePos,
		Serial:     ow.serial,
		Sequence:   ow.pageSeq,
	}
	ow.buf = page.AppendEncode(ow.buf[:0])
	if _, err := ow.w.Write(ow.buf); err != nil {
		return err
	}
	ow.pageSeq++
	return nil
}

// Serial returns the bitstream serial number.
func (ow *Writer) Serial() uint32 {
	return ow.serial
}

// GranulePos returns the current granule position (samples at 48kHz).
func (ow *Writer) GranulePos() int64 {
	return ow.granulePos
}

// PageCount returns the number of pages written so far.
func (ow *Writer) PageCount() uint32 {
	return ow.pageSeq
}
