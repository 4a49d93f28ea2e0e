// decoder.go connects the framer to an external SILK/CELT payload decoder.

package opusframe

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// PayloadDecoder decodes one compressed frame into interleaved 16-bit PCM at
// 48kHz. channels is the output channel count; pcm has room for at least
// cfg.FrameSize.Samples()*channels values. It returns samples per channel.
type PayloadDecoder interface {
	DecodeFrame(cfg Config, stereo bool, frame []byte, channels int, pcm []int16) (int, error)
}

// Concealer is implemented by payload decoders that can synthesize audio for
// a lost packet. cfg is the configuration of the last decoded packet.
type Concealer interface {
	ConcealFrame(cfg Config, channels int, pcm []int16) (int, error)
}

// PacketDecoder frames whole packets and forwards every frame to a
// PayloadDecoder. It is not safe for concurrent use.
type PacketDecoder struct {
	dec      PayloadDecoder
	channels int
	pkt      Packet
	last     Config
	haveLast bool
	log      *logrus.Entry
}

// NewPacketDecoder creates a PacketDecoder producing channels (1 or 2)
// interleaved output channels.
func NewPacketDecoder(dec PayloadDecoder, channels int, opts ...Option) (*PacketDecoder, error) {
	if dec == nil {
		return nil, ErrNoPayloadDecoder
	}
	if channels < 1 || channels > 2 {
		return nil, ErrInvalidChannels
	}
	o := newOptions(opts)
	return &PacketDecoder{
		dec:      dec,
		channels: channels,
		pkt:      Packet{Frames: make([][]byte, 0, MaxFrames)},
		log:      o.log,
	}, nil
}

// Channels returns the output channel count.
func (d *PacketDecoder) Channels() int {
	return d.channels
}

// Decode frames packet and decodes all of its frames into pcm, returning the
// number of samples per channel written. A nil packet marks a lost packet and
// is concealed by the payload decoder when it implements Concealer.
func (d *PacketDecoder) Decode(packet []byte, pcm []int16) (int, error) {
	if packet == nil {
		return d.conceal(pcm)
	}

	if _, err := DecodePacket(&d.pkt, packet, false); err != nil {
		d.log.WithFields(logrus.Fields{
			"function": "PacketDecoder.Decode",
			"size":     len(packet),
			"error":    err.Error(),
		}).Warn("Rejected malformed packet")
		return 0, err
	}

	samples := d.pkt.Config.FrameSize.Samples()
	if len(pcm) < d.pkt.Samples()*d.channels {
		return 0, ErrBufferTooSmall
	}

	total := 0
	for i, frame := range d.pkt.Frames {
		n, err := d.dec.DecodeFrame(d.pkt.Config, d.pkt.Stereo, frame, d.channels, pcm[total*d.channels:])
		if err != nil {
			return total, fmt.Errorf("opus: frame %d of %d: %w", i, len(d.pkt.Frames), err)
		}
		if n > samples {
			n = samples
		}
		total += n
	}

	d.last = d.pkt.Config
	d.haveLast = true

	d.log.WithFields(logrus.Fields{
		"function": "PacketDecoder.Decode",
		"config":   d.pkt.Config.Number,
		"layout":   d.pkt.Layout.String(),
		"frames":   len(d.pkt.Frames),
		"samples":  total,
	}).Debug("Decoded packet")

	return total, nil
}

func (d *PacketDecoder) conceal(pcm []int16) (int, error) {
	c, ok := d.dec.(Concealer)
	if !ok || !d.haveLast {
		return 0, ErrNoConcealment
	}
	if len(pcm) < d.last.FrameSize.Samples()*d.channels {
		return 0, ErrBufferTooSmall
	}
	n, err := c.ConcealFrame(d.last, d.channels, pcm)
	if err != nil {
		return 0, fmt.Errorf("opus: conceal: %w", err)
	}
	d.log.WithFields(logrus.Fields{
		"function": "PacketDecoder.conceal",
		"samples":  n,
	}).Debug("Concealed lost packet")
	return n, nil
}
