package rtp

import (
	"io"

	"github.com/sirupsen/logrus"
)

const maxDatagramSize = 1 << 16

// Reader reads RTP datagrams from r, one per Read call as with a UDP
// connection, and yields the Opus packets they carry. Lost packets are
// returned as nil packets, one per missing sequence number.
type Reader struct {
	r       io.Reader
	d       *Depacketizer
	buf     []byte
	pending int
	held    []byte
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{
		r:   r,
		d:   NewDepacketizer(opts...),
		buf: make([]byte, maxDatagramSize),
	}
}

// NextPacket returns the next Opus packet, or nil for a lost one. The packet
// is valid until the next call. It returns the read error of the underlying
// reader, typically io.EOF, once datagrams run out. Malformed datagrams are
// skipped.
func (r *Reader) NextPacket() ([]byte, error) {
	if r.pending > 0 {
		r.pending--
		return nil, nil
	}
	if r.held != nil {
		p := r.held
		r.held = nil
		return p, nil
	}

	for {
		n, err := r.r.Read(r.buf)
		if n == 0 && err != nil {
			return nil, err
		}

		p, ok, perr := r.d.Push(r.buf[:n])
		if perr != nil {
			r.d.log.WithFields(logrus.Fields{
				"function": "Reader.NextPacket",
				"size":     n,
				"error":    perr.Error(),
			}).Warn("Skipping malformed datagram")
		}
		if !ok {
			if err != nil {
				return nil, err
			}
			continue
		}

		if p.Lost > 0 {
			r.pending = p.Lost - 1
			r.held = p.Data
			return nil, nil
		}
		return p.Data, nil
	}
}
