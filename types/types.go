// Package types defines the closed enumerations shared by the opusframe packages.
// It exists so that container and payload packages can name codec parameters
// without importing the framer.
package types

import "time"

// Mode represents the Opus coding mode.
type Mode uint8

const (
	ModeSILK   Mode = iota // SILK-only mode (configs 0-11)
	ModeHybrid             // Hybrid SILK+CELT (configs 12-15)
	ModeCELT               // CELT-only mode (configs 16-31)
)

func (m Mode) String() string {
	switch m {
	case ModeSILK:
		return "SILK"
	case ModeHybrid:
		return "Hybrid"
	case ModeCELT:
		return "CELT"
	default:
		return "Mode(?)"
	}
}

// Bandwidth represents the audio bandwidth.
type Bandwidth uint8

const (
	BandwidthNarrowband    Bandwidth = iota // 4kHz audio, 8kHz sample rate
	BandwidthMediumband                     // 6kHz audio, 12kHz sample rate
	BandwidthWideband                       // 8kHz audio, 16kHz sample rate
	BandwidthSuperwideband                  // 12kHz audio, 24kHz sample rate
	BandwidthFullband                       // 20kHz audio, 48kHz sample rate
)

func (b Bandwidth) String() string {
	switch b {
	case BandwidthNarrowband:
		return "NB"
	case BandwidthMediumband:
		return "MB"
	case BandwidthWideband:
		return "WB"
	case BandwidthSuperwideband:
		return "SWB"
	case BandwidthFullband:
		return "FB"
	default:
		return "Bandwidth(?)"
	}
}

// SampleRate returns the effective sample rate of the bandwidth in Hz.
func (b Bandwidth) SampleRate() int {
	switch b {
	case BandwidthNarrowband:
		return 8000
	case BandwidthMediumband:
		return 12000
	case BandwidthWideband:
		return 16000
	case BandwidthSuperwideband:
		return 24000
	default:
		return 48000
	}
}

// FrameSize is the duration of every frame in a packet.
type FrameSize uint8

const (
	FrameSize2_5ms FrameSize = iota // 120 samples at 48kHz
	FrameSize5ms                    // 240 samples
	FrameSize10ms                   // 480 samples
	FrameSize20ms                   // 960 samples
	FrameSize40ms                   // 1920 samples
	FrameSize60ms                   // 2880 samples
)

var frameSizeSamples = [...]int{120, 240, 480, 960, 1920, 2880}

// Samples returns the frame length in samples per channel at 48kHz.
func (f FrameSize) Samples() int {
	if int(f) >= len(frameSizeSamples) {
		return 0
	}
	return frameSizeSamples[f]
}

// Duration returns the frame length as a time.Duration.
func (f FrameSize) Duration() time.Duration {
	// 48 samples per millisecond.
	return time.Duration(f.Samples()) * time.Millisecond / 48
}

func (f FrameSize) String() string {
	switch f {
	case FrameSize2_5ms:
		return "2.5ms"
	case FrameSize5ms:
		return "5ms"
	case FrameSize10ms:
		return "10ms"
	case FrameSize20ms:
		return "20ms"
	case FrameSize40ms:
		return "40ms"
	case FrameSize60ms:
		return "60ms"
	default:
		return "FrameSize(?)"
	}
}
