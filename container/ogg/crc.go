package ogg

// Ogg CRC-32: polynomial 0x04C11DB7, no reflection, zero initial value and no
// final XOR. This is not the IEEE CRC-32 of hash/crc32.

const crcPoly = uint32(0x04C11DB7)

var crcTable = makeCRCTable()

func makeCRCTable() *[256]uint32 {
	var t [256]uint32
	for i := range t {
		crc := uint32(i) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

var zeroCRC [4]byte

// pageChecksum computes the checksum of an encoded page as if its CRC field
// (bytes 22-25) were zero. header is the 27-byte header plus segment table.
func pageChecksum(header, payload []byte) uint32 {
	crc := crcUpdate(0, header[:22])
	crc = crcUpdate(crc, zeroCRC[:])
	crc = crcUpdate(crc, header[26:])
	return crcUpdate(crc, payload)
}
