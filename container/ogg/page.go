package ogg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Page header flag constants.
const (
	// PageFlagContinuation indicates this page contains data from a packet
	// that began on a previous page.
	PageFlagContinuation = 0x01

	// PageFlagBOS (Beginning of Stream) indicates this is the first page
	// of a logical bitstream.
	PageFlagBOS = 0x02

	// PageFlagEOS (End of Stream) indicates this is the last page of a
	// logical bitstream.
	PageFlagEOS = 0x04
)

const (
	pageHeaderSize = 27
	maxSegments    = 255
	maxLacing      = 255

	// MaxPageSize is the largest possible encoded page.
	MaxPageSize = pageHeaderSize + maxSegments + maxSegments*maxLacing

	capturePattern = "OggS"
)

// Page represents a single Ogg page.
type Page struct {
	// Flags holds the header type flags (continuation, BOS, EOS).
	Flags byte

	// GranulePos is the granule position after the last packet completed on
	// this page, or -1 when no packet completes here. For Opus this counts
	// 48kHz samples.
	GranulePos int64

	// Serial identifies the logical bitstream.
	Serial uint32

	// Sequence is the page sequence number within the bitstream.
	Sequence uint32

	// Segments is the lacing table. A value of 255 continues the current
	// packet; a smaller value ends it.
	Segments []byte

	// Payload is the concatenated segment data.
	Payload []byte
}

// IsBOS reports whether this is the first page of a logical bitstream.
func (p *Page) IsBOS() bool {
	return p.Flags&PageFlagBOS != 0
}

// IsEOS reports whether this is the last page of a logical bitstream.
func (p *Page) IsEOS() bool {
	return p.Flags&PageFlagEOS != 0
}

// IsContinuation reports whether the page starts with the tail of a packet
// from the previous page.
func (p *Page) IsContinuation() bool {
	return p.Flags&PageFlagContinuation != 0
}

// AppendSegmentTable appends the lacing values of a complete packet of n
// bytes. A multiple of 255 gets a terminating zero-length segment.
func AppendSegmentTable(dst []byte, n int) []byte {
	for ; n >= maxLacing; n -= maxLacing {
		dst = append(dst, maxLacing)
	}
	return append(dst, byte(n))
}

// PacketLengths returns the lengths of the packets that end on this page,
// including a leading continued fragment. A trailing unterminated fragment
// is not counted.
func (p *Page) PacketLengths() []int {
	var lengths []int
	n := 0
	for _, seg := range p.Segments {
		n += int(seg)
		if seg < maxLacing {
			lengths = append(lengths, n)
			n = 0
		}
	}
	return lengths
}

// AppendEncode appends the encoded page, with its CRC, to dst.
func (p *Page) AppendEncode(dst []byte) []byte {
	start := len(dst)
	dst = append(dst, capturePattern...)
	dst = append(dst, 0, p.Flags)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(p.GranulePos))
	dst = binary.LittleEndian.AppendUint32(dst, p.Serial)
	dst = binary.LittleEndian.AppendUint32(dst, p.Sequence)
	dst = append(dst, 0, 0, 0, 0, byte(len(p.Segments)))
	dst = append(dst, p.Segments...)
	header := dst[start:]
	dst = append(dst, p.Payload...)

	crc := pageChecksum(header, p.Payload)
	binary.LittleEndian.PutUint32(dst[start+22:start+26], crc)
	return dst
}

// Encode serializes the page.
func (p *Page) Encode() []byte {
	return p.AppendEncode(make([]byte, 0, pageHeaderSize+len(p.Segments)+len(p.Payload)))
}

// ParsePage parses one page from the start of data and returns it along
// with the number of bytes consumed. The page's slices alias data.
func ParsePage(data []byte) (*Page, int, error) {
	if len(data) < pageHeaderSize {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnexpectedEOS, io.ErrUnexpectedEOF)
	}
	p := &Page{}
	nsegs, err := p.parseHeader(data[:pageHeaderSize])
	if err != nil {
		return nil, 0, err
	}
	headerLen := pageHeaderSize + nsegs
	if len(data) < headerLen {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnexpectedEOS, io.ErrUnexpectedEOF)
	}
	p.Segments = data[pageHeaderSize:headerLen:headerLen]

	total := headerLen + p.payloadLen()
	if len(data) < total {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnexpectedEOS, io.ErrUnexpectedEOF)
	}
	p.Payload = data[headerLen:total:total]

	if pageChecksum(data[:headerLen], p.Payload) != binary.LittleEndian.Uint32(data[22:26]) {
		return nil, 0, ErrBadCRC
	}
	return p, total, nil
}

func (p *Page) parseHeader(h []byte) (int, error) {
	if string(h[:4]) != capturePattern {
		return 0, fmt.Errorf("%w: missing capture pattern", ErrInvalidPage)
	}
	if h[4] != 0 {
		return 0, fmt.Errorf("%w: stream structure version %d", ErrInvalidPage, h[4])
	}
	p.Flags = h[5]
	p.GranulePos = int64(binary.LittleEndian.Uint64(h[6:14]))
	p.Serial = binary.LittleEndian.Uint32(h[14:18])
	p.Sequence = binary.LittleEndian.Uint32(h[18:22])
	return int(h[26]), nil
}

func (p *Page) payloadLen() int {
	n := 0
	for _, seg := range p.Segments {
		n += int(seg)
	}
	return n
}

// PageReader reads consecutive pages from an io.Reader. It reuses one buffer,
// so a returned page is only valid until the next call to ReadPage.
type PageReader struct {
	r    io.Reader
	buf  []byte
	page Page
}

// NewPageReader creates a PageReader over r.
func NewPageReader(r io.Reader) *PageReader {
	return &PageReader{r: r, buf: make([]byte, MaxPageSize)}
}

// ReadPage reads and verifies the next page. It returns io.EOF when r ends
// on a page boundary and an error wrapping ErrUnexpectedEOS when it ends
// inside a page.
func (pr *PageReader) ReadPage() (*Page, error) {
	h := pr.buf[:pageHeaderSize]
	if _, err := io.ReadFull(pr.r, h); err != nil {
		return nil, truncated(err)
	}
	p := &pr.page
	nsegs, err := p.parseHeader(h)
	if err != nil {
		return nil, err
	}

	headerLen := pageHeaderSize + nsegs
	if _, err := io.ReadFull(pr.r, pr.buf[pageHeaderSize:headerLen]); err != nil {
		return nil, truncated(eofInside(err))
	}
	p.Segments = pr.buf[pageHeaderSize:headerLen:headerLen]

	total := headerLen + p.payloadLen()
	if _, err := io.ReadFull(pr.r, pr.buf[headerLen:total]); err != nil {
		return nil, truncated(eofInside(err))
	}
	p.Payload = pr.buf[headerLen:total:total]

	if pageChecksum(pr.buf[:headerLen], p.Payload) != binary.LittleEndian.Uint32(pr.buf[22:26]) {
		return nil, fmt.Errorf("%w: page %d of stream %08x", ErrBadCRC, p.Sequence, p.Serial)
	}
	return p, nil
}

func eofInside(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func truncated(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrUnexpectedEOS, err)
	}
	return err
}
