package prem

// BackRef copies Length bytes starting Offset bytes back from the current
// end of the output. Offset is always negative in a well-formed stream.
type BackRef struct {
	Offset int16
	Length uint16
}

// Start resolves the reference against an output of length n using 16-bit
// wraparound arithmetic. The result is valid only if it is less than n.
func (b BackRef) Start(n int) uint16 {
	return uint16(int16(n) + b.Offset)
}

func makeOffset(hi, lo uint8) int16 {
	return int16(uint16(hi)<<8 | uint16(lo))
}

// readBigRef decodes a reference whose high offset byte is a variable length
// code. The shortest codes select the two nearest 256-byte pages.
func (d *Decoder) readBigRef(offsetL uint8) BackRef {
	offsetH := 0xFE | d.bits(1)
	if !d.flag() {
		tmp := uint8(2)
		for i := 0; i < 3; i++ {
			if d.flag() {
				break
			}
			offsetH = offsetH<<1 | d.bits(1)
			tmp <<= 1
		}
		offsetH = ^(tmp - offsetH) + 1
	}

	return BackRef{
		Offset: makeOffset(offsetH, offsetL),
		Length: d.readLength(),
	}
}

// readSmallRef decodes a two byte copy with a 3-bit page selector.
func (d *Decoder) readSmallRef(offsetL uint8) BackRef {
	offsetH := (0xF8 | d.bits(3)) - 1
	return BackRef{
		Offset: makeOffset(offsetH, offsetL),
		Length: 2,
	}
}

// readLength decodes the copy length of a big reference:
//
//	1, 01, 001, 0001     3..6
//	00001 b              7..8
//	000001 + byte        17..272
//	000000 bbb           9..16
func (d *Decoder) readLength() uint16 {
	for i := uint16(0); i < 4; i++ {
		if d.flag() {
			return 3 + i
		}
	}

	switch {
	case d.flag():
		return 7 + uint16(d.bits(1))
	case d.flag():
		return uint16(d.readByte()) + 0x11
	default:
		return uint16(d.bits(3)+0x09) & 0x00FF
	}
}
