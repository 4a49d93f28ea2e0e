// builder.go assembles Opus packets from frames, the inverse of the framer.

package opusframe

// BuildOptions controls AppendPacket.
type BuildOptions struct {
	// Padding is the number of Opus padding bytes to append. Any non-zero
	// value forces a code 3 packet.
	Padding int

	// SelfDelimited selects the RFC 6716 Appendix B framing.
	SelfDelimited bool
}

// AppendPacket appends a packet carrying frames to dst using the most compact
// layout: code 0 for one frame, code 1 or 2 for two frames, code 3 (CBR when
// all frames are equal, VBR otherwise) for more frames or when padding is set.
func AppendPacket(dst []byte, config uint8, stereo bool, frames [][]byte, opts BuildOptions) ([]byte, error) {
	cfg, ok := ConfigByNumber(config)
	if !ok {
		return dst, ErrInvalidConfig
	}
	count := len(frames)
	if count == 0 || count*cfg.FrameSize.Samples() > maxPacketSamples {
		return dst, ErrInvalidFrameCount
	}
	if opts.Padding < 0 {
		return dst, ErrInvalidPadding
	}
	equal := true
	for _, f := range frames {
		if len(f) > MaxFrameSize {
			return dst, ErrOverlongFrame
		}
		if len(f) != len(frames[0]) {
			equal = false
		}
	}

	layout := LayoutArbitrary
	if opts.Padding == 0 {
		switch {
		case count == 1:
			layout = LayoutOne
		case count == 2 && equal:
			layout = LayoutTwoEqual
		case count == 2:
			layout = LayoutTwoDifferent
		}
	}

	dst = append(dst, GenerateTOC(config, stereo, layout))
	switch layout {
	case LayoutOne, LayoutTwoEqual:
		if opts.SelfDelimited {
			dst = AppendLengthCode(dst, len(frames[0]))
		}
	case LayoutTwoDifferent:
		dst = AppendLengthCode(dst, len(frames[0]))
		if opts.SelfDelimited {
			dst = AppendLengthCode(dst, len(frames[1]))
		}
	case LayoutArbitrary:
		fc := FrameCount{VBR: !equal, Padding: opts.Padding > 0, Count: count}
		dst = append(dst, fc.Byte())
		if fc.Padding {
			dst = AppendPaddingLength(dst, opts.Padding)
		}
		switch {
		case fc.VBR:
			coded := count - 1
			if opts.SelfDelimited {
				coded = count
			}
			for _, f := range frames[:coded] {
				dst = AppendLengthCode(dst, len(f))
			}
		case opts.SelfDelimited:
			dst = AppendLengthCode(dst, len(frames[0]))
		}
	}

	for _, f := range frames {
		dst = append(dst, f...)
	}
	for i := 0; i < opts.Padding; i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}
