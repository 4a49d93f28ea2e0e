package ogg

import "errors"

// OpusError reports a violation of the Ogg Opus header rules. Each constant is
// its own sentinel, so errors.Is matches a specific kind and errors.As
// extracts the kind from a wrapped error.
type OpusError uint8

const (
	// ErrDenialOfService indicates a comment header larger than
	// MaxCommentPacketSize (or the configured limit).
	ErrDenialOfService OpusError = iota + 1

	// ErrBadPaging indicates a header packet that does not sit alone on its
	// page, or an identification header that does not start the stream.
	ErrBadPaging

	// ErrBadMagic indicates a header packet without its 8-byte signature.
	ErrBadMagic

	// ErrUnsupportedVersion indicates an identification header whose major
	// version nibble is not 0.
	ErrUnsupportedVersion
)

func (e OpusError) Error() string {
	switch e {
	case ErrDenialOfService:
		return "ogg: comment header exceeds size limit"
	case ErrBadPaging:
		return "ogg: header packet not aligned to page boundaries"
	case ErrBadMagic:
		return "ogg: bad header signature"
	case ErrUnsupportedVersion:
		return "ogg: unsupported encapsulation version"
	default:
		return "ogg: unknown error"
	}
}

// Package-level errors for Ogg parsing and encoding.
var (
	// ErrInvalidPage indicates the page structure is malformed.
	// This includes a missing "OggS" capture pattern or a non-zero version.
	ErrInvalidPage = errors.New("ogg: invalid page structure")

	// ErrInvalidHeader indicates a header field outside its valid range,
	// such as zero channels or a channel mapping that names a missing stream.
	ErrInvalidHeader = errors.New("ogg: invalid Opus header")

	// ErrBadCRC indicates the page CRC checksum does not match the computed value.
	ErrBadCRC = errors.New("ogg: CRC mismatch")

	// ErrUnexpectedEOS indicates the stream ended in the middle of a page or
	// packet.
	ErrUnexpectedEOS = errors.New("ogg: unexpected end of stream")

	// ErrPacketTooLarge indicates a packet longer than the reader's limit.
	// The packet's remaining pages have been consumed.
	ErrPacketTooLarge = errors.New("ogg: packet exceeds size limit")

	// ErrMalformedComment indicates a user comment that is not valid UTF-8
	// or has no '=' separator. Iteration may continue past it.
	ErrMalformedComment = errors.New("ogg: malformed user comment")

	// ErrCommentsTruncated indicates comment entries beyond the retained
	// region of an oversized comment header.
	ErrCommentsTruncated = errors.New("ogg: comment data truncated")
)
