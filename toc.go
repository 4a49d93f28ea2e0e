// toc.go implements TOC byte parsing per RFC 6716 Section 3.1.

package opusframe

import (
	"fmt"

	"github.com/thesyncim/opusframe/types"
)

// Mode is an alias for types.Mode representing the Opus coding mode.
type Mode = types.Mode

// Bandwidth is an alias for types.Bandwidth representing the audio bandwidth.
type Bandwidth = types.Bandwidth

// FrameSize is an alias for types.FrameSize representing the frame duration.
type FrameSize = types.FrameSize

// Re-export mode constants for convenience.
const (
	ModeSILK   = types.ModeSILK   // SILK-only mode (configs 0-11)
	ModeHybrid = types.ModeHybrid // Hybrid SILK+CELT (configs 12-15)
	ModeCELT   = types.ModeCELT   // CELT-only mode (configs 16-31)
)

// Re-export bandwidth constants for convenience.
const (
	BandwidthNarrowband    = types.BandwidthNarrowband    // 4kHz audio, 8kHz sample rate
	BandwidthMediumband    = types.BandwidthMediumband    // 6kHz audio, 12kHz sample rate
	BandwidthWideband      = types.BandwidthWideband      // 8kHz audio, 16kHz sample rate
	BandwidthSuperwideband = types.BandwidthSuperwideband // 12kHz audio, 24kHz sample rate
	BandwidthFullband      = types.BandwidthFullband      // 20kHz audio, 48kHz sample rate
)

// Re-export frame size constants for convenience.
const (
	FrameSize2_5ms = types.FrameSize2_5ms
	FrameSize5ms   = types.FrameSize5ms
	FrameSize10ms  = types.FrameSize10ms
	FrameSize20ms  = types.FrameSize20ms
	FrameSize40ms  = types.FrameSize40ms
	FrameSize60ms  = types.FrameSize60ms
)

// FrameLayout is the 2-bit frame count code of the TOC byte.
type FrameLayout uint8

const (
	LayoutOne          FrameLayout = iota // code 0: 1 frame
	LayoutTwoEqual                        // code 1: 2 frames, equal compressed size
	LayoutTwoDifferent                    // code 2: 2 frames, different compressed size
	LayoutArbitrary                       // code 3: arbitrary number of frames
)

func (l FrameLayout) String() string {
	switch l {
	case LayoutOne:
		return "one"
	case LayoutTwoEqual:
		return "two-equal"
	case LayoutTwoDifferent:
		return "two-different"
	case LayoutArbitrary:
		return "arbitrary"
	default:
		return fmt.Sprintf("FrameLayout(%d)", uint8(l))
	}
}

// Config is the decoded configuration number of a TOC byte.
type Config struct {
	Number    uint8 // Configuration 0-31
	Mode      Mode
	Bandwidth Bandwidth
	FrameSize FrameSize
}

func (c Config) String() string {
	return fmt.Sprintf("%d (%v %v %v)", c.Number, c.Mode, c.Bandwidth, c.FrameSize)
}

// TOC represents the parsed Table of Contents byte from an Opus packet.
type TOC struct {
	Config Config
	Stereo bool
	Layout FrameLayout
}

// TOC bit fields.
const (
	tocMaskConfig = 0xF8
	tocMaskStereo = 0x04
	tocMaskLayout = 0x03
	tocShiftCfg   = 3
)

// configTable maps configuration numbers 0-31 to their properties.
// It mirrors RFC 6716 Section 3.1 Table 2 and is the only place the mapping lives.
var configTable = [32]Config{
	// SILK-only NB: configs 0-3 (10/20/40/60ms)
	{0, ModeSILK, BandwidthNarrowband, FrameSize10ms},
	{1, ModeSILK, BandwidthNarrowband, FrameSize20ms},
	{2, ModeSILK, BandwidthNarrowband, FrameSize40ms},
	{3, ModeSILK, BandwidthNarrowband, FrameSize60ms},
	// SILK-only MB: configs 4-7
	{4, ModeSILK, BandwidthMediumband, FrameSize10ms},
	{5, ModeSILK, BandwidthMediumband, FrameSize20ms},
	{6, ModeSILK, BandwidthMediumband, FrameSize40ms},
	{7, ModeSILK, BandwidthMediumband, FrameSize60ms},
	// SILK-only WB: configs 8-11
	{8, ModeSILK, BandwidthWideband, FrameSize10ms},
	{9, ModeSILK, BandwidthWideband, FrameSize20ms},
	{10, ModeSILK, BandwidthWideband, FrameSize40ms},
	{11, ModeSILK, BandwidthWideband, FrameSize60ms},
	// Hybrid SWB: configs 12-13 (10/20ms)
	{12, ModeHybrid, BandwidthSuperwideband, FrameSize10ms},
	{13, ModeHybrid, BandwidthSuperwideband, FrameSize20ms},
	// Hybrid FB: configs 14-15
	{14, ModeHybrid, BandwidthFullband, FrameSize10ms},
	{15, ModeHybrid, BandwidthFullband, FrameSize20ms},
	// CELT NB: configs 16-19 (2.5/5/10/20ms)
	{16, ModeCELT, BandwidthNarrowband, FrameSize2_5ms},
	{17, ModeCELT, BandwidthNarrowband, FrameSize5ms},
	{18, ModeCELT, BandwidthNarrowband, FrameSize10ms},
	{19, ModeCELT, BandwidthNarrowband, FrameSize20ms},
	// CELT WB: configs 20-23
	{20, ModeCELT, BandwidthWideband, FrameSize2_5ms},
	{21, ModeCELT, BandwidthWideband, FrameSize5ms},
	{22, ModeCELT, BandwidthWideband, FrameSize10ms},
	{23, ModeCELT, BandwidthWideband, FrameSize20ms},
	// CELT SWB: configs 24-27
	{24, ModeCELT, BandwidthSuperwideband, FrameSize2_5ms},
	{25, ModeCELT, BandwidthSuperwideband, FrameSize5ms},
	{26, ModeCELT, BandwidthSuperwideband, FrameSize10ms},
	{27, ModeCELT, BandwidthSuperwideband, FrameSize20ms},
	// CELT FB: configs 28-31
	{28, ModeCELT, BandwidthFullband, FrameSize2_5ms},
	{29, ModeCELT, BandwidthFullband, FrameSize5ms},
	{30, ModeCELT, BandwidthFullband, FrameSize10ms},
	{31, ModeCELT, BandwidthFullband, FrameSize20ms},
}

// ParseTOC parses a TOC byte. Every byte value maps to a TOC.
func ParseTOC(b byte) TOC {
	return TOC{
		Config: configTable[(b&tocMaskConfig)>>tocShiftCfg],
		Stereo: b&tocMaskStereo != 0,
		Layout: FrameLayout(b & tocMaskLayout),
	}
}

// ConfigByNumber returns the configuration for a number in 0-31.
func ConfigByNumber(n uint8) (Config, bool) {
	if n >= uint8(len(configTable)) {
		return Config{}, false
	}
	return configTable[n], true
}

// ConfigFromParams returns the configuration number for the given mode,
// bandwidth, and frame size. ok is false if RFC 6716 defines no such combination.
func ConfigFromParams(mode Mode, bandwidth Bandwidth, frameSize FrameSize) (n uint8, ok bool) {
	for _, c := range configTable {
		if c.Mode == mode && c.Bandwidth == bandwidth && c.FrameSize == frameSize {
			return c.Number, true
		}
	}
	return 0, false
}

// GenerateTOC creates a TOC byte. Out-of-range config and layout values are masked.
func GenerateTOC(config uint8, stereo bool, layout FrameLayout) byte {
	toc := (config << tocShiftCfg) & tocMaskConfig
	if stereo {
		toc |= tocMaskStereo
	}
	return toc | byte(layout)&tocMaskLayout
}

// Byte re-encodes the TOC.
func (t TOC) Byte() byte {
	return GenerateTOC(t.Config.Number, t.Stereo, t.Layout)
}
