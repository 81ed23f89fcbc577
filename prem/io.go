package prem

import (
	"io"
	"math/bits"

	"github.com/icza/bitio"
)

// input is the byte-level view of the compressed stream. Data bytes use the
// sticky TryReadByte path; command words are read separately so a failed
// refill can be reported lazily by the command word itself.
type input struct {
	r *bitio.CountReader // invariant: always byte aligned
}

func newInput(r io.Reader) *input {
	return &input{r: bitio.NewCountReader(r)}
}

func (in *input) tryReadByte() byte {
	return in.r.TryReadByte()
}

// readWord reads a little-endian 16-bit command word.
func (in *input) readWord() (uint16, error) {
	if in.r.TryError != nil {
		return 0, in.err()
	}
	off := in.offset()
	v, err := in.r.ReadBits(16)
	if err != nil {
		return 0, truncated(err, "reading command word", off)
	}
	return bits.ReverseBytes16(uint16(v)), nil
}

func (in *input) err() error {
	if in.r.TryError == nil {
		return nil
	}
	return truncated(in.r.TryError, "reading data byte", in.offset())
}

// offset is the number of input bytes consumed so far.
func (in *input) offset() int64 {
	return in.r.BitsCount / 8
}
