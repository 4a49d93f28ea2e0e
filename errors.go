// errors.go defines the error taxonomy of the opusframe package.

package opusframe

import (
	"errors"
	"fmt"
)

// MalformedPacketError reports a packet that violates one of the RFC 6716
// Section 3.4 conformance requirements. Its values are comparable sentinels,
// so callers can use errors.Is for a specific rule or errors.As for the family.
type MalformedPacketError uint8

const (
	// ErrUnexpectedEOF indicates the packet ended early (R1, and any other
	// truncation while reading lengths, padding, or frame data).
	ErrUnexpectedEOF MalformedPacketError = iota + 1

	// ErrOverlongFrame indicates a frame longer than MaxFrameSize bytes (R2).
	ErrOverlongFrame

	// ErrUnevenFrameLengths indicates an implicit frame length that cannot be
	// inferred from the payload length (R3, R6).
	ErrUnevenFrameLengths

	// ErrFrameOverflow indicates a code 2 packet whose first frame claims more
	// bytes than the packet holds (R4).
	ErrFrameOverflow

	// ErrZeroFrames indicates a code 3 packet with a frame count of zero (R5).
	ErrZeroFrames

	// ErrOverlongDuration indicates a packet carrying more than 120ms of audio (R5).
	ErrOverlongDuration
)

func (e MalformedPacketError) Error() string {
	switch e {
	case ErrUnexpectedEOF:
		return "opus: packet ended early (R1)"
	case ErrOverlongFrame:
		return "opus: frame exceeds 1275 byte limit (R2)"
	case ErrUnevenFrameLengths:
		return "opus: packet has invalid payload length (R3/R6)"
	case ErrFrameOverflow:
		return "opus: first frame is longer than the packet (R4)"
	case ErrZeroFrames:
		return "opus: packet contains zero frames (R5)"
	case ErrOverlongDuration:
		return "opus: packet duration exceeds 120ms (R5)"
	default:
		return "opus: malformed packet"
	}
}

// Errors returned by the builder, the multistream splitter and the decoding glue.
var (
	// ErrInvalidStreamCount indicates a multistream stream count below 1.
	ErrInvalidStreamCount = errors.New("opus: invalid stream count (must be >= 1)")

	// ErrStreamDurationMismatch indicates the streams of a multistream packet
	// do not cover the same amount of audio (RFC 7845 Section 5.1.1).
	ErrStreamDurationMismatch = errors.New("opus: multistream packet streams differ in duration")

	// ErrInvalidConfig indicates a configuration number outside 0-31.
	ErrInvalidConfig = errors.New("opus: invalid configuration number")

	// ErrInvalidFrameCount indicates a builder call with no frames, or more
	// frames than fit in 120ms.
	ErrInvalidFrameCount = errors.New("opus: invalid frame count")

	// ErrInvalidPadding indicates a negative padding length.
	ErrInvalidPadding = errors.New("opus: invalid padding length")

	// ErrInvalidChannels indicates an unsupported output channel count.
	ErrInvalidChannels = errors.New("opus: invalid channels (must be 1 or 2)")

	// ErrBufferTooSmall indicates the output buffer cannot hold the decoded packet.
	ErrBufferTooSmall = errors.New("opus: output buffer too small")

	// ErrNoPayloadDecoder indicates sample decoding was requested from a
	// reader opened without a PayloadDecoder.
	ErrNoPayloadDecoder = errors.New("opus: no payload decoder configured")

	// ErrNoConcealment indicates a lost packet could not be concealed, either
	// because the payload decoder does not implement Concealer or because no
	// packet has been decoded yet.
	ErrNoConcealment = errors.New("opus: packet loss concealment unavailable")

	// ErrUnsupportedMapping indicates sample decoding of a multistream
	// channel mapping, which requires a multistream-aware payload decoder.
	ErrUnsupportedMapping = errors.New("opus: channel mapping not supported for sample decoding")
)

// PacketError reports an audio packet of a stream that could not be decoded.
// The stream has already advanced past it, so reading may continue.
type PacketError struct {
	// GranulePos is the granule position of the page that completed the
	// packet.
	GranulePos int64
	Err        error
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("opus: packet at granule %d: %v", e.GranulePos, e.Err)
}

func (e *PacketError) Unwrap() error {
	return e.Err
}
