package ogg

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Packet is one packet reassembled from the pages of a logical bitstream,
// together with its position relative to page boundaries.
type Packet struct {
	// Data holds the packet bytes. It is never nil and is only valid until
	// the next ReadPacket call.
	Data []byte

	// Serial is the bitstream serial number.
	Serial uint32

	// GranulePos is the granule position of the page the packet ends on.
	GranulePos int64

	// FirstInStream is set for the first packet of the logical bitstream
	// when it starts on a BOS page.
	FirstInStream bool

	// FirstInPage is set when the packet starts at the first segment of a
	// page that does not continue an earlier packet.
	FirstInPage bool

	// LastInPage is set when the packet ends with the last segment of its
	// final page.
	LastInPage bool

	// LastInStream is set for the final packet on an EOS page.
	LastInStream bool

	// Pages is the number of pages the packet spans.
	Pages int
}

// PacketReader reassembles packets from the pages of the first logical
// bitstream in r. Pages of other bitstreams are skipped.
type PacketReader struct {
	pages   *PageReader
	page    *Page
	seg     int
	off     int
	serial  uint32
	seq     uint32
	locked  bool
	count   int
	done    bool
	buf     []byte
	maxSize int
	log     *logrus.Entry
}

// NewPacketReader creates a PacketReader over r.
func NewPacketReader(r io.Reader, opts ...Option) *PacketReader {
	c := newConfig(opts)
	return &PacketReader{
		pages:   NewPageReader(r),
		buf:     make([]byte, 0, MaxPageSize),
		maxSize: c.maxPacketSize,
		log:     c.log,
	}
}

// Serial returns the serial number of the bitstream being read. It is only
// meaningful once a packet has been read.
func (r *PacketReader) Serial() uint32 {
	return r.serial
}

// ReadPacket returns the next complete packet. It returns io.EOF after the
// last packet of the bitstream, and an error wrapping ErrUnexpectedEOS when
// the input ends inside a packet. A packet longer than the size limit is
// consumed and reported as ErrPacketTooLarge; reading may continue.
func (r *PacketReader) ReadPacket() (Packet, error) {
	if r.done {
		return Packet{}, io.EOF
	}

	var pkt Packet
	r.buf = r.buf[:0]
	size := 0
	started := false
	oversize := false

	for {
		if r.page == nil || r.seg == len(r.page.Segments) {
			if err := r.nextPage(started); err != nil {
				return Packet{}, err
			}
			if started && !r.page.IsContinuation() {
				r.log.WithFields(logrus.Fields{
					"function": "PacketReader.ReadPacket",
					"sequence": r.page.Sequence,
					"dropped":  size,
				}).Warn("Discarding packet left unfinished by previous page")
				r.buf = r.buf[:0]
				size, started, oversize = 0, false, false
				pkt = Packet{}
			}
			if !started && r.page.IsContinuation() {
				r.skipOrphan()
			}
			if started {
				pkt.Pages++
			}
			if r.seg == len(r.page.Segments) {
				continue
			}
		}

		if !started {
			started = true
			pkt.FirstInPage = r.seg == 0 && !r.page.IsContinuation()
			pkt.FirstInStream = r.count == 0 && r.seg == 0 && r.page.IsBOS()
			pkt.Pages = 1
		}

		for r.seg < len(r.page.Segments) {
			n := int(r.page.Segments[r.seg])
			r.seg++
			if !oversize && size+n > r.maxSize {
				oversize = true
				r.buf = r.buf[:0]
			}
			if !oversize {
				r.buf = append(r.buf, r.page.Payload[r.off:r.off+n]...)
			}
			size += n
			r.off += n

			if n < maxLacing {
				return r.finish(pkt, size, oversize)
			}
		}
	}
}

func (r *PacketReader) finish(pkt Packet, size int, oversize bool) (Packet, error) {
	r.count++
	pkt.Serial = r.serial
	pkt.GranulePos = r.page.GranulePos
	pkt.LastInPage = r.seg == len(r.page.Segments)
	pkt.LastInStream = pkt.LastInPage && r.page.IsEOS()
	if oversize {
		r.log.WithFields(logrus.Fields{
			"function": "PacketReader.ReadPacket",
			"size":     size,
			"limit":    r.maxSize,
		}).Warn("Dropped oversized packet")
		pkt.Data = nil
		return pkt, fmt.Errorf("%w: %d bytes, limit %d", ErrPacketTooLarge, size, r.maxSize)
	}
	pkt.Data = r.buf
	return pkt, nil
}

// skipOrphan drops the leading fragment of a packet whose start was never
// seen.
func (r *PacketReader) skipOrphan() {
	for r.seg < len(r.page.Segments) {
		n := int(r.page.Segments[r.seg])
		r.seg++
		r.off += n
		if n < maxLacing {
			break
		}
	}
	r.log.WithFields(logrus.Fields{
		"function": "PacketReader.skipOrphan",
		"sequence": r.page.Sequence,
		"bytes":    r.off,
	}).Debug("Skipped continuation of unseen packet")
}

// nextPage advances to the next page of the locked bitstream. continuing is
// set when a packet is partially assembled.
func (r *PacketReader) nextPage(continuing bool) error {
	if r.page != nil && r.page.IsEOS() {
		r.done = true
		if continuing {
			return fmt.Errorf("%w: packet continues past EOS page", ErrUnexpectedEOS)
		}
		return io.EOF
	}

	for {
		page, err := r.pages.ReadPage()
		if errors.Is(err, io.EOF) {
			r.done = true
			if continuing {
				return fmt.Errorf("%w: %w", ErrUnexpectedEOS, io.ErrUnexpectedEOF)
			}
			return io.EOF
		}
		if err != nil {
			return err
		}

		if !r.locked {
			r.serial = page.Serial
			r.locked = true
		} else if page.Serial != r.serial {
			r.log.WithFields(logrus.Fields{
				"function": "PacketReader.nextPage",
				"serial":   page.Serial,
			}).Debug("Skipping page of other bitstream")
			continue
		} else if page.Sequence != r.seq+1 {
			r.log.WithFields(logrus.Fields{
				"function": "PacketReader.nextPage",
				"expected": r.seq + 1,
				"sequence": page.Sequence,
			}).Warn("Page sequence gap")
		}

		r.seq = page.Sequence
		r.page = page
		r.seg = 0
		r.off = 0
		return nil
	}
}
