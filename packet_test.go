package opusframe

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(start byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

func TestParse_SingleFrame(t *testing.T) {
	data := append([]byte{0x00}, seq(1, 9)...)

	p, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, ModeSILK, p.Config.Mode)
	assert.Equal(t, BandwidthNarrowband, p.Config.Bandwidth)
	assert.Equal(t, FrameSize10ms, p.Config.FrameSize)
	assert.False(t, p.Stereo)
	assert.Equal(t, LayoutOne, p.Layout)
	require.Len(t, p.Frames, 1)
	assert.Equal(t, data[1:], p.Frames[0])
	assert.Equal(t, 480, p.Samples())
	assert.Equal(t, 10*time.Millisecond, p.Duration())
	assert.Equal(t, 1, p.Channels())
}

func TestParse_ZeroCopy(t *testing.T) {
	data := []byte{0x01, 1, 2, 3, 4}

	p, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, p.Frames, 2)
	assert.Same(t, &data[1], &p.Frames[0][0])
	assert.Same(t, &data[3], &p.Frames[1][0])
	assert.Equal(t, 2, cap(p.Frames[0]), "frames are capacity-clipped")
}

func TestParse_Layouts(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		frames  [][]byte
		vbr     bool
		padding int
	}{
		{"code0 empty frame", []byte{0xF8}, [][]byte{{}}, false, 0},
		{"code1", []byte{0xF9, 1, 2, 3, 4}, [][]byte{{1, 2}, {3, 4}}, false, 0},
		{"code1 empty", []byte{0xF9}, [][]byte{{}, {}}, false, 0},
		{"code2", []byte{0xFA, 1, 9, 8, 7}, [][]byte{{9}, {8, 7}}, false, 0},
		{"code2 empty second", []byte{0xFA, 2, 9, 8}, [][]byte{{9, 8}, {}}, false, 0},
		{"code3 cbr", []byte{0xFB, 0x03, 1, 2, 3}, [][]byte{{1}, {2}, {3}}, false, 0},
		{"code3 vbr", []byte{0xFB, 0x83, 1, 2, 7, 8, 9, 5, 6}, [][]byte{{7}, {8, 9}, {5, 6}}, true, 0},
		{"code3 cbr padded", []byte{0xFB, 0x42, 2, 1, 2, 0, 0}, [][]byte{{1}, {2}}, false, 2},
		{"code3 vbr padded", []byte{0xFB, 0xC2, 1, 1, 5, 6, 7, 0}, [][]byte{{5}, {6, 7}}, true, 1},
		{"code3 one frame", []byte{0xFB, 0x01, 4, 5}, [][]byte{{4, 5}}, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.data)
			require.NoError(t, err)
			require.Len(t, p.Frames, len(tc.frames))
			for i := range tc.frames {
				assert.Equal(t, tc.frames[i], p.Frames[i], "frame %d", i)
			}
			assert.Equal(t, tc.vbr, p.VBR)
			assert.Equal(t, tc.padding, p.Padding)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	long := make([]byte, 1276)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrUnexpectedEOF},
		{"code0 overlong", append([]byte{0xF8}, long...), ErrOverlongFrame},
		{"code1 odd", []byte{0xF9, 1, 2, 3}, ErrUnevenFrameLengths},
		{"code1 overlong", append([]byte{0xF9}, make([]byte, 2*1276)...), ErrOverlongFrame},
		{"code2 no length", []byte{0xFA}, ErrUnexpectedEOF},
		{"code2 truncated length", []byte{0xFA, 252}, ErrUnexpectedEOF},
		{"code2 overflow", []byte{0xFA, 5, 1, 2}, ErrFrameOverflow},
		{"code2 second overlong", append([]byte{0xFA, 0}, long...), ErrOverlongFrame},
		{"code3 no count", []byte{0xFB}, ErrUnexpectedEOF},
		{"code3 zero frames", []byte{0xFB, 0x00}, ErrZeroFrames},
		{"code3 zero frames padded", []byte{0xFB, 0x40, 255}, ErrZeroFrames},
		{"code3 overlong duration", []byte{0xFB, 0x07, 1, 2, 3, 4, 5, 6, 7}, ErrOverlongDuration},
		{"code3 overlong before padding", []byte{0xFB, 0x47, 255, 255}, ErrOverlongDuration},
		{"code3 padding unterminated", []byte{0xFB, 0x41, 255, 255}, ErrUnexpectedEOF},
		{"code3 padding exceeds packet", []byte{0xFB, 0x41, 10, 1}, ErrUnexpectedEOF},
		{"code3 cbr uneven", []byte{0xFB, 0x02, 1, 2, 3}, ErrUnevenFrameLengths},
		{"code3 vbr lengths exceed", []byte{0xFB, 0x82, 9, 1, 2}, ErrUnexpectedEOF},
		{"code3 vbr missing length", []byte{0xFB, 0x83, 1}, ErrUnexpectedEOF},
		{"code3 vbr padding eats last", []byte{0xFB, 0xC2, 5, 1, 1, 2}, ErrUnexpectedEOF},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.data)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, p)

			var mpe MalformedPacketError
			assert.True(t, errors.As(err, &mpe))
		})
	}
}

func TestParse_FrameLengthBoundary(t *testing.T) {
	for _, n := range []int{0, 1, 1274, 1275, 1276, 1500} {
		_, err := Parse(append([]byte{0xF8}, make([]byte, n)...))
		if n > MaxFrameSize {
			assert.ErrorIs(t, err, ErrOverlongFrame, "n=%d", n)
		} else {
			assert.NoError(t, err, "n=%d", n)
		}
	}
}

func TestParse_DurationBoundary(t *testing.T) {
	tests := []struct {
		toc    byte
		frames int
		ok     bool
	}{
		{0x83, 48, true},  // 48 x 2.5ms
		{0x83, 49, false}, // 122.5ms
		{0x1B, 2, true},   // 2 x 60ms
		{0x1B, 3, false},
		{0xFB, 6, true}, // 6 x 20ms
		{0xFB, 7, false},
		{0x13, 3, true}, // 3 x 40ms
		{0x13, 4, false},
	}

	for _, tc := range tests {
		data := []byte{tc.toc, byte(tc.frames)}
		data = append(data, make([]byte, tc.frames)...)
		p, err := Parse(data)
		if tc.ok {
			require.NoError(t, err, "toc=%#02x frames=%d", tc.toc, tc.frames)
			assert.LessOrEqual(t, p.Duration(), MaxPacketDuration)
		} else {
			assert.ErrorIs(t, err, ErrOverlongDuration, "toc=%#02x frames=%d", tc.toc, tc.frames)
		}
	}
}

func TestParseSelfDelimited(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		frames [][]byte
		rest   []byte
	}{
		{"code0", []byte{0xF8, 2, 1, 2, 0xEE}, [][]byte{{1, 2}}, []byte{0xEE}},
		{"code1", []byte{0xF9, 1, 1, 2, 0xEE, 0xEF}, [][]byte{{1}, {2}}, []byte{0xEE, 0xEF}},
		{"code2", []byte{0xFA, 1, 2, 1, 2, 3}, [][]byte{{1}, {2, 3}}, []byte{}},
		{"code3 cbr", []byte{0xFB, 0x02, 1, 1, 2, 0xEE}, [][]byte{{1}, {2}}, []byte{0xEE}},
		{"code3 vbr", []byte{0xFB, 0x82, 1, 2, 1, 2, 3, 0xEE}, [][]byte{{1}, {2, 3}}, []byte{0xEE}},
		{"code3 padded", []byte{0xFB, 0x41, 1, 1, 9, 0, 0xEE}, [][]byte{{9}}, []byte{0xEE}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, rest, err := ParseSelfDelimited(tc.data)
			require.NoError(t, err)
			require.Len(t, p.Frames, len(tc.frames))
			for i := range tc.frames {
				assert.Equal(t, tc.frames[i], p.Frames[i])
			}
			assert.Equal(t, tc.rest, rest)
		})
	}
}

func TestParseSelfDelimited_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"code0 no length", []byte{0xF8}, ErrUnexpectedEOF},
		{"code0 short", []byte{0xF8, 5, 1}, ErrUnexpectedEOF},
		{"code1 short", []byte{0xF9, 2, 1, 2, 3}, ErrUnexpectedEOF},
		{"code2 first exceeds", []byte{0xFA, 9, 1, 1}, ErrUnexpectedEOF},
		{"code3 cbr short", []byte{0xFB, 0x03, 2, 1, 2, 3}, ErrUnexpectedEOF},
		{"code3 length past end", []byte{0xFB, 0x01, 255, 255}, ErrUnexpectedEOF},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseSelfDelimited(tc.data)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// A single VBR frame has no length code with implicit framing and exactly
// one with self-delimited framing.
func TestVBRSingleFrameBoundary(t *testing.T) {
	implicit := []byte{0xFB, 0x81, 7, 8, 9}
	p, err := Parse(implicit)
	require.NoError(t, err)
	require.Len(t, p.Frames, 1)
	assert.Equal(t, []byte{7, 8, 9}, p.Frames[0])

	delimited := []byte{0xFB, 0x81, 2, 7, 8, 9}
	p, rest, err := ParseSelfDelimited(delimited)
	require.NoError(t, err)
	require.Len(t, p.Frames, 1)
	assert.Equal(t, []byte{7, 8}, p.Frames[0])
	assert.Equal(t, []byte{9}, rest)

	// With padding the inferred frame stops at the padding region.
	padded := []byte{0xFB, 0xC1, 1, 7, 8, 0}
	p, err = Parse(padded)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8}, p.Frames[0])
	assert.Equal(t, 1, p.Padding)

	// An empty self-delimited VBR frame still consumes its length code.
	p, rest, err = ParseSelfDelimited([]byte{0xFB, 0x81, 0, 0xAA})
	require.NoError(t, err)
	assert.Empty(t, p.Frames[0])
	assert.Equal(t, []byte{0xAA}, rest)
}

func TestDecodePacket_ReusesFrames(t *testing.T) {
	var p Packet
	_, err := DecodePacket(&p, []byte{0xFB, 0x03, 1, 2, 3}, false)
	require.NoError(t, err)
	require.Len(t, p.Frames, 3)
	frames := p.Frames[:cap(p.Frames)]

	_, err = DecodePacket(&p, []byte{0xF8, 9}, false)
	require.NoError(t, err)
	require.Len(t, p.Frames, 1)
	assert.Same(t, &frames[0], &p.Frames[0])
	assert.False(t, p.VBR)
	assert.Zero(t, p.Padding)

	_, err = DecodePacket(&p, []byte{0xF9, 1}, false)
	require.Error(t, err)
	assert.Empty(t, p.Frames)
}

func TestParse_DoesNotModifyInput(t *testing.T) {
	data := []byte{0xFB, 0xC3, 3, 1, 2, 1, 2, 3, 4, 0, 0, 0}
	orig := bytes.Clone(data)
	_, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, orig, data)
}
