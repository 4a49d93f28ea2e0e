package opusframe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDecoder fills each frame's samples with the frame's first byte.
type fakeDecoder struct {
	calls  []Config
	stereo []bool
	err    error
}

func (d *fakeDecoder) DecodeFrame(cfg Config, stereo bool, frame []byte, channels int, pcm []int16) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.calls = append(d.calls, cfg)
	d.stereo = append(d.stereo, stereo)
	n := cfg.FrameSize.Samples()
	var v int16
	if len(frame) > 0 {
		v = int16(frame[0])
	}
	for i := range n * channels {
		pcm[i] = v
	}
	return n, nil
}

type concealingDecoder struct {
	fakeDecoder
	concealed []Config
}

func (d *concealingDecoder) ConcealFrame(cfg Config, channels int, pcm []int16) (int, error) {
	d.concealed = append(d.concealed, cfg)
	n := cfg.FrameSize.Samples()
	clear(pcm[:n*channels])
	return n, nil
}

func TestNewPacketDecoder_Errors(t *testing.T) {
	_, err := NewPacketDecoder(nil, 1)
	assert.ErrorIs(t, err, ErrNoPayloadDecoder)

	for _, ch := range []int{0, 3} {
		_, err := NewPacketDecoder(&fakeDecoder{}, ch)
		assert.ErrorIs(t, err, ErrInvalidChannels)
	}
}

func TestPacketDecoder_Decode(t *testing.T) {
	fd := &fakeDecoder{}
	d, err := NewPacketDecoder(fd, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Channels())

	// Code 3 CBR: three 10ms CELT frames.
	pcm := make([]int16, 3*480*2)
	n, err := d.Decode([]byte{0xF7, 0x03, 1, 2, 3}, pcm)
	require.NoError(t, err)
	assert.Equal(t, 1440, n)
	require.Len(t, fd.calls, 3)
	assert.Equal(t, uint8(30), fd.calls[0].Number)
	assert.Equal(t, []bool{true, true, true}, fd.stereo)

	assert.Equal(t, int16(1), pcm[0])
	assert.Equal(t, int16(2), pcm[480*2])
	assert.Equal(t, int16(3), pcm[2*480*2+1])
}

func TestPacketDecoder_Malformed(t *testing.T) {
	fd := &fakeDecoder{}
	d, err := NewPacketDecoder(fd, 1)
	require.NoError(t, err)

	pcm := make([]int16, 5760)
	_, err = d.Decode([]byte{0xFB, 0x00}, pcm)
	assert.ErrorIs(t, err, ErrZeroFrames)
	assert.Empty(t, fd.calls)

	// The decoder stays usable.
	n, err := d.Decode([]byte{0xF8, 7}, pcm)
	require.NoError(t, err)
	assert.Equal(t, 960, n)
}

func TestPacketDecoder_BufferTooSmall(t *testing.T) {
	d, err := NewPacketDecoder(&fakeDecoder{}, 2)
	require.NoError(t, err)

	_, err = d.Decode([]byte{0xF8, 7}, make([]int16, 960))
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestPacketDecoder_PayloadError(t *testing.T) {
	boom := errors.New("boom")
	d, err := NewPacketDecoder(&fakeDecoder{err: boom}, 1)
	require.NoError(t, err)

	_, err = d.Decode([]byte{0xF8, 7}, make([]int16, 960))
	assert.ErrorIs(t, err, boom)
}

func TestPacketDecoder_Conceal(t *testing.T) {
	cd := &concealingDecoder{}
	d, err := NewPacketDecoder(cd, 1)
	require.NoError(t, err)

	pcm := make([]int16, 5760)
	_, err = d.Decode(nil, pcm)
	assert.ErrorIs(t, err, ErrNoConcealment, "nothing decoded yet")

	_, err = d.Decode([]byte{0x08, 1}, pcm)
	require.NoError(t, err)

	n, err := d.Decode(nil, pcm)
	require.NoError(t, err)
	assert.Equal(t, 960, n)
	require.Len(t, cd.concealed, 1)
	assert.Equal(t, uint8(1), cd.concealed[0].Number)
}

func TestPacketDecoder_NoConcealer(t *testing.T) {
	d, err := NewPacketDecoder(&fakeDecoder{}, 1)
	require.NoError(t, err)

	pcm := make([]int16, 960)
	_, err = d.Decode([]byte{0xF8, 1}, pcm)
	require.NoError(t, err)

	_, err = d.Decode(nil, pcm)
	assert.ErrorIs(t, err, ErrNoConcealment)
}
