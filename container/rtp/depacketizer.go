package rtp

import (
	"fmt"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// DefaultMaxGap is the largest sequence gap reported as loss. Larger jumps
// are treated as a stream restart.
const DefaultMaxGap = 100

// Option configures a Depacketizer or Reader.
type Option func(*Depacketizer)

// WithPayloadType accepts only datagrams with payload type pt. By default
// every payload type is accepted.
func WithPayloadType(pt uint8) Option {
	return func(d *Depacketizer) {
		d.payloadType = pt
		d.filterPT = true
	}
}

// WithMaxGap sets the largest sequence gap reported as loss.
func WithMaxGap(n int) Option {
	return func(d *Depacketizer) {
		if n >= 0 {
			d.maxGap = n
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Depacketizer) {
		if log != nil {
			d.log = log
		}
	}
}

// Payload is an Opus packet taken from one RTP datagram.
type Payload struct {
	// Data aliases the datagram passed to Push.
	Data []byte

	// Lost is the number of packets missing immediately before this one.
	Lost int

	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	Marker         bool
}

// Depacketizer validates RTP datagrams of one Opus stream.
// It is not safe for concurrent use.
type Depacketizer struct {
	payloadType uint8
	filterPT    bool
	maxGap      int

	ssrc    uint32
	lastSeq uint16
	started bool

	pkt rtp.Packet
	log *logrus.Entry
}

// NewDepacketizer creates a Depacketizer.
func NewDepacketizer(opts ...Option) *Depacketizer {
	d := &Depacketizer{
		maxGap: DefaultMaxGap,
		log:    logrus.WithField("package", "rtp"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Push parses one datagram. ok is false when the datagram is dropped: a
// foreign payload type, a duplicate or late sequence number, or an empty
// payload. A new SSRC restarts sequence tracking.
func (d *Depacketizer) Push(raw []byte) (p Payload, ok bool, err error) {
	if err := d.pkt.Unmarshal(raw); err != nil {
		return Payload{}, false, fmt.Errorf("rtp: %w", err)
	}
	h := &d.pkt.Header

	if d.filterPT && h.PayloadType != d.payloadType {
		d.log.WithFields(logrus.Fields{
			"function":     "Depacketizer.Push",
			"payload_type": h.PayloadType,
		}).Debug("Dropping datagram of other payload type")
		return Payload{}, false, nil
	}

	if d.started && h.SSRC != d.ssrc {
		d.log.WithFields(logrus.Fields{
			"function": "Depacketizer.Push",
			"old_ssrc": d.ssrc,
			"new_ssrc": h.SSRC,
		}).Info("Synchronization source changed")
		d.started = false
	}

	lost := 0
	if d.started {
		diff := int16(h.SequenceNumber - d.lastSeq)
		if diff <= 0 {
			d.log.WithFields(logrus.Fields{
				"function": "Depacketizer.Push",
				"sequence": h.SequenceNumber,
				"last":     d.lastSeq,
			}).Debug("Dropping duplicate or late datagram")
			return Payload{}, false, nil
		}
		lost = int(diff) - 1
		if lost > d.maxGap {
			d.log.WithFields(logrus.Fields{
				"function": "Depacketizer.Push",
				"gap":      lost,
			}).Warn("Sequence jump too large, resynchronizing")
			lost = 0
		}
	}
	d.ssrc = h.SSRC
	d.lastSeq = h.SequenceNumber
	d.started = true

	if len(d.pkt.Payload) == 0 {
		return Payload{}, false, nil
	}

	return Payload{
		Data:           d.pkt.Payload,
		Lost:           lost,
		SequenceNumber: h.SequenceNumber,
		Timestamp:      h.Timestamp,
		SSRC:           h.SSRC,
		Marker:         h.Marker,
	}, true, nil
}

// Reset forgets the tracked source and sequence number.
func (d *Depacketizer) Reset() {
	d.started = false
}
