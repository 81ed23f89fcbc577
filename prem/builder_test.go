package prem

import "encoding/binary"

// streamBuilder writes compressed streams for tests. Command bits go into
// 16-bit word slots; the next slot is reserved right after the 16th bit of
// the previous one, which is where the decoder refills.
type streamBuilder struct {
	buf   []byte
	word  uint16
	count int
	slot  int
}

func newStreamBuilder() *streamBuilder {
	b := &streamBuilder{}
	b.reserve()
	return b
}

func (b *streamBuilder) reserve() {
	b.slot = len(b.buf)
	b.buf = append(b.buf, 0, 0)
	b.word, b.count = 0, 0
}

func (b *streamBuilder) flush() {
	binary.LittleEndian.PutUint16(b.buf[b.slot:], b.word)
}

func (b *streamBuilder) bit(v uint8) *streamBuilder {
	b.word |= uint16(v&1) << b.count
	b.count++
	if b.count == 16 {
		b.flush()
		b.reserve()
	}
	return b
}

func (b *streamBuilder) bitSeq(seq ...uint8) *streamBuilder {
	for _, v := range seq {
		b.bit(v)
	}
	return b
}

// bits writes the low n bits of v, most significant first.
func (b *streamBuilder) bits(v uint8, n int) *streamBuilder {
	for i := n - 1; i >= 0; i-- {
		b.bit(v >> i)
	}
	return b
}

func (b *streamBuilder) raw(v byte) *streamBuilder {
	b.buf = append(b.buf, v)
	return b
}

func (b *streamBuilder) literal(v byte) *streamBuilder {
	return b.bit(1).raw(v)
}

func (b *streamBuilder) literals(vs []byte) *streamBuilder {
	for _, v := range vs {
		b.literal(v)
	}
	return b
}

func (b *streamBuilder) eof() *streamBuilder {
	return b.bit(0).bit(0).raw(0xFF).bit(0)
}

// shortRef is the fixed two byte copy from page 0xFF.
func (b *streamBuilder) shortRef(offsetL byte) *streamBuilder {
	return b.bit(0).bit(0).raw(offsetL).bit(0)
}

func (b *streamBuilder) smallRef(offsetL byte, page uint8) *streamBuilder {
	return b.bit(0).bit(0).raw(offsetL).bit(1).bits(page, 3)
}

// bigRef takes the high offset byte code verbatim.
func (b *streamBuilder) bigRef(offsetL byte, hiCode []uint8, length uint16) *streamBuilder {
	b.bit(0).bit(1).raw(offsetL).bitSeq(hiCode...)
	return b.length(length)
}

// nearRef is a big reference with offset -distance, 1 <= distance <= 256.
func (b *streamBuilder) nearRef(distance int, length uint16) *streamBuilder {
	return b.bigRef(byte(-distance), []uint8{1, 1}, length)
}

func (b *streamBuilder) length(n uint16) *streamBuilder {
	switch {
	case n >= 3 && n <= 6:
		for i := uint16(3); i < n; i++ {
			b.bit(0)
		}
		return b.bit(1)
	case n == 7 || n == 8:
		return b.bitSeq(0, 0, 0, 0, 1).bit(uint8(n - 7))
	case n >= 9 && n <= 16:
		return b.bitSeq(0, 0, 0, 0, 0, 0).bits(uint8(n-9), 3)
	case n >= 17 && n <= 272:
		return b.bitSeq(0, 0, 0, 0, 0, 1).raw(byte(n - 17))
	}
	panic("length out of range")
}

func (b *streamBuilder) bytes() []byte {
	b.flush()
	return b.buf
}
