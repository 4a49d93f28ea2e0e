// Package pionopus decodes SILK-only Opus frames with the pure Go decoder
// from github.com/pion/opus.
//
// The pion decoder produces 48kHz output only for mono wideband SILK frames of
// 20ms (configuration 9). Other modes and bandwidths are rejected with
// ErrUnsupportedMode, other frame durations with ErrUnsupportedFrameSize and
// stereo frames with ErrUnsupportedStereo. Callers that need more must supply
// another opusframe.PayloadDecoder.
package pionopus

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/opusframe"
	"github.com/thesyncim/opusframe/types"
)

var (
	// ErrUnsupportedMode indicates a Hybrid or CELT frame.
	ErrUnsupportedMode = errors.New("pionopus: only wideband SILK frames are supported")

	// ErrUnsupportedFrameSize indicates a frame duration other than 20ms.
	ErrUnsupportedFrameSize = errors.New("pionopus: only 20ms frames are supported")

	// ErrUnsupportedStereo indicates a frame coded in stereo.
	ErrUnsupportedStereo = errors.New("pionopus: stereo frames are not supported")
)

// frameSamples is the sample count of a 20ms frame at 48kHz.
const frameSamples = 960

// frameDecoder is the subset of *opus.Decoder used here.
type frameDecoder interface {
	Decode(in, out []byte) (opus.Bandwidth, bool, error)
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger for diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Decoder) {
		if log != nil {
			d.log = log
		}
	}
}

// Decoder implements opusframe.PayloadDecoder and opusframe.Concealer.
// It is not safe for concurrent use.
type Decoder struct {
	dec frameDecoder
	pkt []byte
	out []byte
	log *logrus.Entry
}

// New creates a Decoder.
func New(opts ...Option) *Decoder {
	dec := opus.NewDecoder()
	return newDecoder(&dec, opts...)
}

func newDecoder(dec frameDecoder, opts ...Option) *Decoder {
	d := &Decoder{
		dec: dec,
		pkt: make([]byte, 0, 1+opusframe.MaxFrameSize),
		out: make([]byte, 2*frameSamples),
		log: logrus.WithField("package", "pionopus"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFrame decodes one frame into pcm as 48kHz samples interleaved over
// channels. A mono frame is duplicated into both channels of stereo output.
func (d *Decoder) DecodeFrame(cfg opusframe.Config, stereo bool, frame []byte, channels int, pcm []int16) (int, error) {
	if cfg.Mode != types.ModeSILK || cfg.Bandwidth != types.BandwidthWideband {
		return 0, fmt.Errorf("%w: config %v", ErrUnsupportedMode, cfg)
	}
	if cfg.FrameSize != types.FrameSize20ms {
		return 0, fmt.Errorf("%w: config %v", ErrUnsupportedFrameSize, cfg)
	}
	if stereo {
		return 0, ErrUnsupportedStereo
	}
	n, err := checkOutput(cfg, channels, pcm)
	if err != nil {
		return 0, err
	}

	// The pion decoder takes whole packets, so the frame is rewrapped as a
	// single-frame packet.
	d.pkt = append(d.pkt[:0], opusframe.GenerateTOC(cfg.Number, false, opusframe.LayoutOne))
	d.pkt = append(d.pkt, frame...)

	out := d.out[:2*n]
	clear(d.out)
	bw, _, err := d.dec.Decode(d.pkt, d.out)
	if err != nil {
		d.log.WithFields(logrus.Fields{
			"function": "Decoder.DecodeFrame",
			"config":   cfg.Number,
			"size":     len(frame),
			"error":    err.Error(),
		}).Warn("SILK decode failed")
		return 0, fmt.Errorf("pionopus: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"function":  "Decoder.DecodeFrame",
		"bandwidth": bw.String(),
		"samples":   n,
	}).Debug("Decoded SILK frame")

	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(out[2*i:]))
		for c := 0; c < channels; c++ {
			pcm[i*channels+c] = s
		}
	}
	return n, nil
}

// ConcealFrame fills one frame duration with silence.
func (d *Decoder) ConcealFrame(cfg opusframe.Config, channels int, pcm []int16) (int, error) {
	n, err := checkOutput(cfg, channels, pcm)
	if err != nil {
		return 0, err
	}
	clear(pcm[:n*channels])
	return n, nil
}

func checkOutput(cfg opusframe.Config, channels int, pcm []int16) (int, error) {
	if channels != 1 && channels != 2 {
		return 0, opusframe.ErrInvalidChannels
	}
	n := cfg.FrameSize.Samples()
	if len(pcm) < n*channels {
		return 0, opusframe.ErrBufferTooSmall
	}
	return n, nil
}
