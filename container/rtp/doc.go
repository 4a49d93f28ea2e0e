// Package rtp extracts Opus packets from RTP streams (RFC 7587).
//
// Each RTP datagram carries exactly one Opus packet with implicit framing.
// Depacketizer tracks the sequence number of a single synchronization source
// and reports how many packets were lost before each one it accepts; Reader
// turns those gaps into nil packets so that a decoder can conceal them.
package rtp
