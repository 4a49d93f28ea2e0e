package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"
)

// Security bounds for the comment header.
const (
	// MaxCommentPacketSize is the largest comment header accepted. Larger
	// headers are rejected as a denial-of-service attempt.
	MaxCommentPacketSize = 125_829_120

	// CommentRetainLimit is the number of user comment bytes kept from a
	// comment header. Entries beyond it fail with ErrCommentsTruncated.
	CommentRetainLimit = 61_440
)

// Opus header constants per RFC 7845.
const (
	// DefaultPreSkip is the standard Opus encoder lookahead at 48kHz.
	DefaultPreSkip = 312

	idMagic      = "OpusHead"
	commentMagic = "OpusTags"

	idHeaderMinSize      = 19
	idHeaderFamilySize   = 21
	commentHeaderMinSize = 16
	magicSize            = 8

	// headerVersion is written by Encode: major 0, minor 1.
	headerVersion = 1
)

// MappingFamily values per RFC 7845 and RFC 8486.
const (
	MappingFamilyRTP        = 0
	MappingFamilyVorbis     = 1
	MappingFamilyAmbisonics = 2
	MappingFamilyProjection = 3
	MappingFamilyDiscrete   = 255
)

// IdHeader is the Opus identification header ("OpusHead").
type IdHeader struct {
	// Version is the encapsulation version; the high nibble is the major
	// version.
	Version uint8

	// Channels is the output channel count.
	Channels uint8

	// PreSkip is the number of 48kHz samples to discard at the start.
	PreSkip uint16

	// SampleRate is the original input sample rate, 0 if unspecified. It is
	// informational only.
	SampleRate uint32

	// OutputGain is the gain to apply in Q7.8 dB.
	OutputGain int16

	// MappingFamily selects the channel mapping.
	MappingFamily uint8

	// StreamCount and CoupledCount describe the multistream layout. For
	// family 0 they are derived from Channels.
	StreamCount  uint8
	CoupledCount uint8

	// ChannelMapping maps output channels to decoded channels (families
	// other than 0 and 3).
	ChannelMapping []byte

	// DemixingMatrix holds family 3 demixing coefficients, S16LE,
	// 2*Channels*(StreamCount+CoupledCount) bytes.
	DemixingMatrix []byte
}

// MajorVersion returns the high nibble of Version.
func (h *IdHeader) MajorVersion() uint8 { return h.Version >> 4 }

// MinorVersion returns the low nibble of Version.
func (h *IdHeader) MinorVersion() uint8 { return h.Version & 0x0F }

// InputSampleRate returns the declared input sample rate, if any.
func (h *IdHeader) InputSampleRate() (uint32, bool) {
	return h.SampleRate, h.SampleRate != 0
}

// ParseIdHeader parses an identification header packet.
func ParseIdHeader(data []byte) (*IdHeader, error) {
	if len(data) < magicSize || string(data[:magicSize]) != idMagic {
		return nil, ErrBadMagic
	}
	if len(data) > magicSize && data[magicSize]>>4 != 0 {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, data[magicSize]>>4, data[magicSize]&0x0F)
	}
	if len(data) < idHeaderMinSize {
		return nil, fmt.Errorf("ogg: identification header is %d bytes: %w", len(data), io.ErrUnexpectedEOF)
	}

	h := &IdHeader{
		Version:       data[8],
		Channels:      data[9],
		PreSkip:       binary.LittleEndian.Uint16(data[10:12]),
		SampleRate:    binary.LittleEndian.Uint32(data[12:16]),
		OutputGain:    int16(binary.LittleEndian.Uint16(data[16:18])),
		MappingFamily: data[18],
	}
	if h.Channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrInvalidHeader)
	}

	if h.MappingFamily == MappingFamilyRTP {
		if h.Channels > 2 {
			return nil, fmt.Errorf("%w: %d channels in mapping family 0", ErrInvalidHeader, h.Channels)
		}
		h.StreamCount = 1
		h.CoupledCount = h.Channels - 1
		return h, nil
	}

	if len(data) < idHeaderFamilySize {
		return nil, fmt.Errorf("ogg: identification header is %d bytes: %w", len(data), io.ErrUnexpectedEOF)
	}
	h.StreamCount = data[19]
	h.CoupledCount = data[20]
	if h.StreamCount == 0 || h.CoupledCount > h.StreamCount {
		return nil, fmt.Errorf("%w: %d streams, %d coupled", ErrInvalidHeader, h.StreamCount, h.CoupledCount)
	}
	decoded := int(h.StreamCount) + int(h.CoupledCount)
	if decoded > 255 {
		return nil, fmt.Errorf("%w: %d decoded channels", ErrInvalidHeader, decoded)
	}

	table := data[idHeaderFamilySize:]
	if h.MappingFamily == MappingFamilyProjection {
		size := 2 * int(h.Channels) * decoded
		if len(table) < size {
			return nil, fmt.Errorf("ogg: demixing matrix is %d bytes: %w", len(table), io.ErrUnexpectedEOF)
		}
		h.DemixingMatrix = bytes.Clone(table[:size])
		return h, nil
	}

	if len(table) < int(h.Channels) {
		return nil, fmt.Errorf("ogg: channel mapping is %d bytes: %w", len(table), io.ErrUnexpectedEOF)
	}
	h.ChannelMapping = bytes.Clone(table[:h.Channels])
	for i, m := range h.ChannelMapping {
		if int(m) >= decoded && m != 255 {
			return nil, fmt.Errorf("%w: channel %d maps to %d", ErrInvalidHeader, i, m)
		}
	}
	return h, nil
}

// AppendEncode appends the encoded identification header to dst.
func (h *IdHeader) AppendEncode(dst []byte) []byte {
	dst = append(dst, idMagic...)
	dst = append(dst, h.Version, h.Channels)
	dst = binary.LittleEndian.AppendUint16(dst, h.PreSkip)
	dst = binary.LittleEndian.AppendUint32(dst, h.SampleRate)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(h.OutputGain))
	dst = append(dst, h.MappingFamily)
	if h.MappingFamily == MappingFamilyRTP {
		return dst
	}
	dst = append(dst, h.StreamCount, h.CoupledCount)
	if h.MappingFamily == MappingFamilyProjection {
		return append(dst, h.DemixingMatrix...)
	}
	return append(dst, h.ChannelMapping...)
}

// Encode serializes the identification header.
func (h *IdHeader) Encode() []byte {
	return h.AppendEncode(nil)
}

// DefaultIdHeader returns a family 0 header for mono or stereo.
func DefaultIdHeader(sampleRate uint32, channels uint8) *IdHeader {
	return &IdHeader{
		Version:       headerVersion,
		Channels:      channels,
		PreSkip:       DefaultPreSkip,
		SampleRate:    sampleRate,
		MappingFamily: MappingFamilyRTP,
		StreamCount:   1,
		CoupledCount:  channels - 1,
	}
}

// CommentHeader is the Opus comment header ("OpusTags"). User comments are
// kept in encoded form and decoded on demand by Comments.
type CommentHeader struct {
	// Vendor identifies the encoder.
	Vendor string

	// Count is the declared number of user comments.
	Count uint32

	// Size is the length of the packet the header was parsed from.
	Size int

	data      []byte
	truncated bool
}

// ParseCommentHeader parses a comment header packet. Packets over
// MaxCommentPacketSize fail with ErrDenialOfService before any field is
// read. Only the first CommentRetainLimit bytes of comment data are kept.
func ParseCommentHeader(data []byte) (*CommentHeader, error) {
	if len(data) > MaxCommentPacketSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDenialOfService, len(data))
	}
	if len(data) < magicSize || string(data[:magicSize]) != commentMagic {
		return nil, ErrBadMagic
	}
	if len(data) < commentHeaderMinSize {
		return nil, fmt.Errorf("ogg: comment header is %d bytes: %w", len(data), io.ErrUnexpectedEOF)
	}

	off := magicSize
	vendorLen := uint64(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if vendorLen+4 > uint64(len(data)-off) {
		return nil, fmt.Errorf("ogg: vendor string of %d bytes: %w", vendorLen, io.ErrUnexpectedEOF)
	}
	vendor := data[off : off+int(vendorLen)]
	off += int(vendorLen)

	h := &CommentHeader{
		Vendor: strings.ToValidUTF8(string(vendor), string(utf8.RuneError)),
		Count:  binary.LittleEndian.Uint32(data[off:]),
		Size:   len(data),
	}
	off += 4

	rest := data[off:]
	h.data = bytes.Clone(rest[:min(len(rest), CommentRetainLimit)])
	h.truncated = len(rest) > CommentRetainLimit
	return h, nil
}

// Add appends a KEY=value user comment. On a truncated header the partial
// entry at the end of the retained data is discarded first.
func (h *CommentHeader) Add(key, value string) {
	if h.truncated {
		n, count := h.complete()
		h.data = h.data[:n]
		h.Count = count
		h.truncated = false
	}
	h.data = binary.LittleEndian.AppendUint32(h.data, uint32(len(key)+1+len(value)))
	h.data = append(h.data, key...)
	h.data = append(h.data, '=')
	h.data = append(h.data, value...)
	h.Count++
}

// AppendEncode appends the encoded comment header to dst. A truncated header
// is encoded with only its complete entries.
func (h *CommentHeader) AppendEncode(dst []byte) []byte {
	data, count := h.data, h.Count
	if h.truncated {
		n, c := h.complete()
		data, count = h.data[:n], c
	}
	dst = append(dst, commentMagic...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(h.Vendor)))
	dst = append(dst, h.Vendor...)
	dst = binary.LittleEndian.AppendUint32(dst, count)
	return append(dst, data...)
}

// complete returns the byte length and number of the retained entries that
// are whole.
func (h *CommentHeader) complete() (int, uint32) {
	off, count := 0, uint32(0)
	for count < h.Count && len(h.data)-off >= 4 {
		n := uint64(binary.LittleEndian.Uint32(h.data[off:]))
		if n > uint64(len(h.data)-off-4) {
			break
		}
		off += 4 + int(n)
		count++
	}
	return off, count
}

// Encode serializes the comment header.
func (h *CommentHeader) Encode() []byte {
	return h.AppendEncode(nil)
}

// Truncated reports whether comment data was discarded when parsing.
func (h *CommentHeader) Truncated() bool {
	return h.truncated
}

// Comments returns an iterator over the user comments.
func (h *CommentHeader) Comments() *Comments {
	return &Comments{data: h.data, remaining: h.Count}
}

// Lookup returns the value of the first comment whose key matches key,
// ignoring case.
func (h *CommentHeader) Lookup(key string) (string, bool) {
	for k, v := range h.Comments().All() {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Comments is a single-pass cursor over encoded user comments. The cursor
// advances by each entry's declared length, so a malformed entry does not
// affect the ones after it.
type Comments struct {
	data      []byte
	remaining uint32
}

// Remaining returns the number of declared entries not yet visited.
func (c *Comments) Remaining() int {
	return int(c.remaining)
}

// Next returns the next comment split at its first '='. It returns io.EOF
// once all declared entries are visited, ErrMalformedComment for an entry
// that is not UTF-8 or has no '=', and ErrCommentsTruncated when the entry
// lies beyond the retained data, which also ends iteration.
func (c *Comments) Next() (key, value string, err error) {
	if c.remaining == 0 {
		return "", "", io.EOF
	}
	c.remaining--

	if len(c.data) < 4 {
		c.remaining, c.data = 0, nil
		return "", "", ErrCommentsTruncated
	}
	n := uint64(binary.LittleEndian.Uint32(c.data))
	if n > uint64(len(c.data)-4) {
		c.remaining, c.data = 0, nil
		return "", "", ErrCommentsTruncated
	}
	entry := c.data[4 : 4+n]
	c.data = c.data[4+n:]

	if !utf8.Valid(entry) {
		return "", "", ErrMalformedComment
	}
	k, v, ok := bytes.Cut(entry, []byte{'='})
	if !ok {
		return "", "", ErrMalformedComment
	}
	return string(k), string(v), nil
}

// All returns a sequence of the remaining well-formed comments. Malformed
// entries are skipped.
func (c *Comments) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for {
			k, v, err := c.Next()
			if errors.Is(err, ErrMalformedComment) {
				continue
			}
			if err != nil {
				return
			}
			if !yield(k, v) {
				return
			}
		}
	}
}
