// Package opusframe implements the wire-level framing of the Opus audio codec.
//
// It turns a container byte stream into validated Opus packets and splits each
// packet into the frames handed to a SILK/CELT payload decoder. The payload
// decoders themselves are not part of this module; they plug in through the
// PayloadDecoder interface.
//
// # Packet Structure
//
// Each Opus packet starts with a TOC (Table of Contents) byte:
//   - Bits 7-3: Configuration (0-31), see RFC 6716 Table 2
//   - Bit 2: Stereo flag
//   - Bits 1-0: Frame layout code (0-3)
//
// The layout code selects one of four framings (RFC 6716 Section 3.2):
//   - Code 0: one frame
//   - Code 1: two frames of equal compressed size
//   - Code 2: two frames of different compressed size
//   - Code 3: an arbitrary number of frames (CBR or VBR) with optional padding
//
// Use Parse for packets whose length is known from the transport (Ogg, RTP),
// and ParseSelfDelimited for the self-delimiting variant of RFC 6716 Appendix B.
// ParseMultistream splits the multistream packets of RFC 7845 channel mapping
// families 1, 2, 3 and 255.
//
// # Zero Copy
//
// Packet.Frames are sub-slices of the buffer passed to the parser. They are
// only valid while that buffer is; copy them to retain frame data.
//
// # Conformance Errors
//
// Every malformed packet is rejected with a MalformedPacketError naming the
// violated RFC 6716 Section 3.4 rule. Parsing never panics and never reads
// outside the input buffer.
//
// # Ogg Opus Streams
//
// Open reads an Ogg Opus stream (RFC 7845) through the container/ogg demuxer
// and exposes ReadSamples, which frames every packet and forwards each frame
// to a PayloadDecoder.
package opusframe
