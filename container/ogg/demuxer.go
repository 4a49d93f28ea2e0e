package ogg

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Demuxer reads an Ogg Opus logical bitstream. NewDemuxer consumes the
// identification and comment headers; ReadPacket then yields audio packets.
type Demuxer struct {
	packets *PacketReader
	head    *IdHeader
	tags    *CommentHeader
	granule int64
	log     *logrus.Entry
}

// NewDemuxer reads and validates both Opus header packets from r.
//
// The identification header must be the first packet of the stream and sit
// alone on one page, otherwise ErrBadPaging. The comment header is checked
// against the size limit first (ErrDenialOfService) and must then start a
// page and end on a page boundary (ErrBadPaging).
func NewDemuxer(r io.Reader, opts ...Option) (*Demuxer, error) {
	c := newConfig(opts)
	d := &Demuxer{
		packets: NewPacketReader(r, opts...),
		granule: -1,
		log:     c.log,
	}

	id, err := d.packets.ReadPacket()
	if err != nil {
		return nil, headerErr("identification", err)
	}
	if !id.FirstInStream || !id.FirstInPage || !id.LastInPage || id.Pages != 1 {
		return nil, fmt.Errorf("%w: identification header", ErrBadPaging)
	}
	if d.head, err = ParseIdHeader(id.Data); err != nil {
		return nil, err
	}

	tags, err := d.packets.ReadPacket()
	if errors.Is(err, ErrPacketTooLarge) {
		return nil, fmt.Errorf("%w: %w", ErrDenialOfService, err)
	}
	if err != nil {
		return nil, headerErr("comment", err)
	}
	if len(tags.Data) > c.maxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDenialOfService, len(tags.Data))
	}
	if !tags.FirstInPage || !tags.LastInPage {
		return nil, fmt.Errorf("%w: comment header", ErrBadPaging)
	}
	if d.tags, err = ParseCommentHeader(tags.Data); err != nil {
		return nil, err
	}

	d.log.WithFields(logrus.Fields{
		"function": "NewDemuxer",
		"serial":   d.packets.Serial(),
		"version":  d.head.Version,
		"channels": d.head.Channels,
		"comments": d.tags.Count,
	}).Debug("Parsed Opus headers")

	return d, nil
}

func headerErr(which string, err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("ogg: missing %s header: %w", which, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("ogg: reading %s header: %w", which, err)
}

// Head returns the identification header.
func (d *Demuxer) Head() *IdHeader {
	return d.head
}

// Tags returns the comment header.
func (d *Demuxer) Tags() *CommentHeader {
	return d.tags
}

// ReadPacket returns the next audio packet with its page metadata. It
// returns io.EOF at the end of the stream. Packet data is only valid until
// the next read.
func (d *Demuxer) ReadPacket() (Packet, error) {
	pkt, err := d.packets.ReadPacket()
	if err != nil {
		return pkt, err
	}
	d.granule = pkt.GranulePos
	return pkt, nil
}

// NextPacket returns the next audio packet's bytes. It returns io.EOF at
// the end of the stream.
func (d *Demuxer) NextPacket() ([]byte, error) {
	pkt, err := d.ReadPacket()
	if err != nil {
		return nil, err
	}
	return pkt.Data, nil
}

// GranulePos returns the granule position of the page holding the end of
// the most recent packet, or -1 before the first audio packet.
func (d *Demuxer) GranulePos() int64 {
	return d.granule
}
