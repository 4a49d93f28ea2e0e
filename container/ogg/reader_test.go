package ogg

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageOf builds a page holding complete packets, optionally preceded by a
// continued fragment.
func pageOf(seq uint32, flags byte, granule int64, packets ...[]byte) Page {
	p := Page{Flags: flags, GranulePos: granule, Serial: 1, Sequence: seq}
	for _, pkt := range packets {
		p.Segments = AppendSegmentTable(p.Segments, len(pkt))
		p.Payload = append(p.Payload, pkt...)
	}
	return p
}

func encodePages(pages ...Page) []byte {
	var out []byte
	for i := range pages {
		out = pages[i].AppendEncode(out)
	}
	return out
}

func TestPacketReader_Flags(t *testing.T) {
	a, b, c := []byte("first"), []byte("second"), []byte("third")
	stream := encodePages(
		pageOf(0, PageFlagBOS, 0, a),
		pageOf(1, 0, 960, b, c),
		pageOf(2, PageFlagEOS, 1920, []byte{}),
	)

	r := NewPacketReader(bytes.NewReader(stream))

	tests := []struct {
		data                                             []byte
		firstInStream, firstInPage, lastInPage, lastInSt bool
		granule                                          int64
	}{
		{a, true, true, true, false, 0},
		{b, false, true, false, false, 960},
		{c, false, false, true, false, 960},
		{[]byte{}, false, true, true, true, 1920},
	}

	for i, tc := range tests {
		pkt, err := r.ReadPacket()
		require.NoError(t, err, "packet %d", i)
		assert.Equal(t, tc.data, pkt.Data, "packet %d", i)
		assert.NotNil(t, pkt.Data)
		assert.Equal(t, tc.firstInStream, pkt.FirstInStream, "packet %d", i)
		assert.Equal(t, tc.firstInPage, pkt.FirstInPage, "packet %d", i)
		assert.Equal(t, tc.lastInPage, pkt.LastInPage, "packet %d", i)
		assert.Equal(t, tc.lastInSt, pkt.LastInStream, "packet %d", i)
		assert.Equal(t, tc.granule, pkt.GranulePos, "packet %d", i)
		assert.Equal(t, 1, pkt.Pages)
		assert.Equal(t, uint32(1), pkt.Serial)
	}

	_, err := r.ReadPacket()
	assert.Equal(t, io.EOF, err)
	_, err = r.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func TestPacketReader_SpansPages(t *testing.T) {
	big := bytes.Repeat([]byte{0x5A}, 255*300+17)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, 48000, 1)
	require.NoError(t, err)
	require.NoError(t, w.WritePacket(big, 960))
	require.NoError(t, w.WritePacket([]byte{1, 2, 3}, 960))
	require.NoError(t, w.Close())

	r := NewPacketReader(&buf)
	for range 2 {
		_, err := r.ReadPacket()
		require.NoError(t, err)
	}

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, big, pkt.Data)
	assert.Equal(t, 2, pkt.Pages)
	assert.True(t, pkt.FirstInPage)
	assert.True(t, pkt.LastInPage)
	assert.Equal(t, int64(960), pkt.GranulePos)

	pkt, err = r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, pkt.Data)

	_, err = r.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func TestPacketReader_SkipsOrphanContinuation(t *testing.T) {
	orphan := Page{
		Flags:    PageFlagContinuation,
		Serial:   1,
		Sequence: 5,
		Segments: []byte{4, 2},
		Payload:  []byte{9, 9, 9, 9, 'o', 'k'},
	}
	r := NewPacketReader(bytes.NewReader(encodePages(orphan)))

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), pkt.Data)
	assert.False(t, pkt.FirstInPage)
	assert.True(t, pkt.LastInPage)
}

func TestPacketReader_DropsUnfinishedPacket(t *testing.T) {
	open := Page{Serial: 1, Sequence: 0, Segments: []byte{255}, Payload: make([]byte, 255)}
	fresh := pageOf(1, 0, 0, []byte("next"))

	r := NewPacketReader(bytes.NewReader(encodePages(open, fresh)))
	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("next"), pkt.Data)
	assert.True(t, pkt.FirstInPage)
}

func TestPacketReader_SkipsOtherSerials(t *testing.T) {
	other := pageOf(0, PageFlagBOS, 0, []byte("video"))
	other.Serial = 2
	stream := encodePages(pageOf(0, PageFlagBOS, 0, []byte("audio")), other, pageOf(1, 0, 0, []byte("more")))

	r := NewPacketReader(bytes.NewReader(stream))
	for _, want := range []string{"audio", "more"} {
		pkt, err := r.ReadPacket()
		require.NoError(t, err)
		assert.Equal(t, want, string(pkt.Data))
	}
	assert.Equal(t, uint32(1), r.Serial())
}

func TestPacketReader_TruncatedPacket(t *testing.T) {
	open := Page{Serial: 1, Segments: []byte{255}, Payload: make([]byte, 255)}
	r := NewPacketReader(bytes.NewReader(encodePages(open)))

	_, err := r.ReadPacket()
	require.ErrorIs(t, err, ErrUnexpectedEOS)
	_, err = r.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func TestPacketReader_ContinuesPastEOS(t *testing.T) {
	open := Page{Flags: PageFlagEOS, Serial: 1, Segments: []byte{255}, Payload: make([]byte, 255)}
	r := NewPacketReader(bytes.NewReader(encodePages(open)))

	_, err := r.ReadPacket()
	assert.ErrorIs(t, err, ErrUnexpectedEOS)
}

func TestPacketReader_MaxPacketSize(t *testing.T) {
	stream := encodePages(
		pageOf(0, PageFlagBOS, 0, make([]byte, 600)),
		pageOf(1, 0, 0, []byte("small")),
	)

	r := NewPacketReader(bytes.NewReader(stream), WithMaxPacketSize(512))
	pkt, err := r.ReadPacket()
	require.ErrorIs(t, err, ErrPacketTooLarge)
	assert.Nil(t, pkt.Data)

	pkt, err = r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, "small", string(pkt.Data))
}
