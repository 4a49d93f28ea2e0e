// stream.go implements pull-based sample readers over Ogg Opus streams and
// generic packet sources.

package opusframe

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/opusframe/container/ogg"
)

// PacketSource provides Opus packets for streaming decode.
type PacketSource interface {
	// NextPacket returns the next Opus packet.
	// Returns io.EOF when the stream ends.
	// Returns a nil packet for a lost packet.
	NextPacket() ([]byte, error)
}

// SourceReader decodes packets pulled from a PacketSource.
type SourceReader struct {
	src PacketSource
	dec *PacketDecoder
	eof bool
}

// NewSourceReader creates a SourceReader that decodes packets from src into
// channels interleaved output channels.
func NewSourceReader(src PacketSource, dec PayloadDecoder, channels int, opts ...Option) (*SourceReader, error) {
	pd, err := NewPacketDecoder(dec, channels, opts...)
	if err != nil {
		return nil, err
	}
	return &SourceReader{src: src, dec: pd}, nil
}

// Channels returns the number of interleaved output channels.
func (r *SourceReader) Channels() int {
	return r.dec.Channels()
}

// ReadSamples decodes the next packet into pcm and returns the number of
// samples per channel written. It returns 0, io.EOF once the source is
// exhausted. Lost packets are concealed.
func (r *SourceReader) ReadSamples(pcm []int16) (int, error) {
	if r.eof {
		return 0, io.EOF
	}
	packet, err := r.src.NextPacket()
	if errors.Is(err, io.EOF) {
		r.eof = true
		return 0, io.EOF
	}
	if err != nil {
		return 0, err
	}
	return r.dec.Decode(packet, pcm)
}

// StreamReader reads an Ogg Opus stream. It parses both header packets when
// opened and then decodes one audio packet per ReadSamples call.
//
// A StreamReader is a sequential cursor and is not safe for concurrent use.
type StreamReader struct {
	demux *ogg.Demuxer
	head  *ogg.IdHeader
	tags  *ogg.CommentHeader
	dec   *PacketDecoder
	log   *logrus.Entry
	eof   bool
}

// Open reads the identification and comment headers from r and returns a
// StreamReader positioned at the first audio packet. dec may be nil when the
// caller only needs headers or ReadPackets.
func Open(r io.Reader, dec PayloadDecoder, opts ...Option) (*StreamReader, error) {
	o := newOptions(opts)
	demuxOpts := append([]ogg.Option{ogg.WithLogger(o.log)}, o.demux...)

	demux, err := ogg.NewDemuxer(r, demuxOpts...)
	if err != nil {
		return nil, err
	}

	s := &StreamReader{
		demux: demux,
		head:  demux.Head(),
		tags:  demux.Tags(),
		log:   o.log,
	}

	if dec != nil && s.singleStream() {
		s.dec, err = NewPacketDecoder(dec, int(s.head.Channels), opts...)
		if err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"function": "Open",
		"channels": s.head.Channels,
		"family":   s.head.MappingFamily,
		"streams":  s.head.StreamCount,
		"pre_skip": s.head.PreSkip,
		"vendor":   s.tags.Vendor,
	}).Debug("Opened Ogg Opus stream")

	return s, nil
}

func (s *StreamReader) singleStream() bool {
	return s.head.StreamCount == 1 && s.head.Channels >= 1 && s.head.Channels <= 2
}

// NextPacket returns the next raw audio packet, making a StreamReader usable
// as a PacketSource.
func (s *StreamReader) NextPacket() ([]byte, error) {
	if s.eof {
		return nil, io.EOF
	}
	packet, err := s.demux.NextPacket()
	if errors.Is(err, io.EOF) {
		s.eof = true
	}
	return packet, err
}

// ReadSamples decodes the next audio packet into pcm, interleaved with
// Channels() channels, and returns the number of samples per channel. It
// returns 0, io.EOF at the end of the stream. A packet that fails to decode
// is reported as a *PacketError and fails only the current call; the stream
// has already advanced past it.
func (s *StreamReader) ReadSamples(pcm []int16) (int, error) {
	if s.dec == nil {
		if !s.singleStream() {
			return 0, ErrUnsupportedMapping
		}
		return 0, ErrNoPayloadDecoder
	}
	packet, err := s.NextPacket()
	if err != nil {
		return 0, err
	}
	n, err := s.dec.Decode(packet, pcm)
	if err != nil {
		return n, &PacketError{GranulePos: s.demux.GranulePos(), Err: err}
	}
	return n, nil
}

// ReadPackets frames the next audio packet into one Packet per elementary
// stream, reusing dst. Frames alias an internal buffer that is only valid
// until the next read.
func (s *StreamReader) ReadPackets(dst []Packet) ([]Packet, error) {
	packet, err := s.NextPacket()
	if err != nil {
		return dst[:0], err
	}
	return ParseMultistream(packet, int(s.head.StreamCount), dst)
}

// Head returns the identification header.
func (s *StreamReader) Head() *ogg.IdHeader {
	return s.head
}

// Tags returns the comment header.
func (s *StreamReader) Tags() *ogg.CommentHeader {
	return s.tags
}

// PreSkip returns the number of 48kHz samples to discard at the start of
// decoded output.
func (s *StreamReader) PreSkip() uint16 {
	return s.head.PreSkip
}

// SampleRate returns the informational input sample rate, if the header
// declared one. Decoded output is always 48kHz.
func (s *StreamReader) SampleRate() (uint32, bool) {
	return s.head.InputSampleRate()
}

// OutputGain returns the output gain in Q7.8 dB.
func (s *StreamReader) OutputGain() int16 {
	return s.head.OutputGain
}

// Vendor returns the encoder vendor string.
func (s *StreamReader) Vendor() string {
	return s.tags.Vendor
}

// Version returns the encapsulation version split into major and minor
// nibbles.
func (s *StreamReader) Version() (major, minor uint8) {
	return s.head.MajorVersion(), s.head.MinorVersion()
}

// Comments returns a fresh iterator over the user comments.
func (s *StreamReader) Comments() *ogg.Comments {
	return s.tags.Comments()
}

// Channels returns the output channel count declared by the stream.
func (s *StreamReader) Channels() int {
	return int(s.head.Channels)
}

// GranulePos returns the granule position of the page that completed the
// most recently read packet.
func (s *StreamReader) GranulePos() int64 {
	return s.demux.GranulePos()
}
