// Package ogg demultiplexes Opus audio from the Ogg container.
//
// It covers RFC 3533 (The Ogg Encapsulation Format) and RFC 7845 (Ogg
// Encapsulation for the Opus Audio Codec) in three layers:
//
//   - PageReader reads and verifies pages (capture pattern, version, CRC).
//   - PacketReader joins page segments into packets and reports where each
//     packet sits relative to page and stream boundaries.
//   - Demuxer validates the two Opus header packets and then yields audio
//     packets.
//
// Writer produces Ogg Opus streams, mainly for remuxing and test fixtures.
//
// # Page Structure
//
//	Bytes 0-3:   "OggS" capture pattern
//	Byte 4:      Stream structure version (always 0)
//	Byte 5:      Header type flags (continuation, BOS, EOS)
//	Bytes 6-13:  Granule position
//	Bytes 14-17: Bitstream serial number
//	Bytes 18-21: Page sequence number
//	Bytes 22-25: CRC checksum
//	Byte 26:     Number of segments
//	Bytes 27+:   Segment table, then payload
//
// Packets are laced into segments of up to 255 bytes. A 255 segment
// continues the packet; a shorter one ends it, so a 600-byte packet uses
// [255, 255, 90]. The CRC uses polynomial 0x04C11DB7, not the IEEE
// polynomial of hash/crc32.
//
// # Header Rules
//
// The identification header ("OpusHead") must be the first packet of the
// stream and occupy one page by itself. Only major version 0 is accepted;
// minor versions are ignored. The comment header ("OpusTags") must start a
// page and its last page must end with it. Comment headers larger than
// MaxCommentPacketSize are rejected with ErrDenialOfService before they are
// parsed, and only CommentRetainLimit bytes of user comments are kept.
// Comments are decoded lazily by the Comments cursor.
package ogg
