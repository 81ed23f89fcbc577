package prem

import (
	"bytes"
	"io"
)

// MaxOutputSize is the largest resource the game can load.
const MaxOutputSize = 0xFFFF

// Stats describes a finished (or failed) decompression.
type Stats struct {
	Consumed int64 // compressed bytes taken by the decoder
	Literals int
	BackRefs int
	Copied   int // bytes produced by back-references
}

// Decompress reads a compressed resource from r and returns its contents.
func Decompress(r io.Reader) ([]byte, error) {
	out, _, err := DecompressWithStats(r)
	return out, err
}

// DecompressBytes is Decompress for an in-memory resource.
func DecompressBytes(data []byte) ([]byte, error) {
	return Decompress(bytes.NewReader(data))
}

// DecompressWithStats is Decompress, additionally reporting what the stream
// was made of. Stats are filled in as far as decoding got, even on error.
func DecompressWithStats(r io.Reader) (out []byte, stats Stats, err error) {
	d, err := NewDecoder(r)
	if err != nil {
		return nil, stats, err
	}
	defer func() { stats.Consumed = d.InputOffset() }()

	out = make([]byte, 0, 1<<12)
	for {
		tok, err := d.Next()
		if err != nil {
			return nil, stats, err
		}

		switch tok.Kind {
		case KindEndOfFile:
			return out, stats, nil
		case KindLiteral:
			out = append(out, tok.Value)
			stats.Literals++
		case KindBackRef:
			start := tok.Ref.Start(len(out))
			if int(start) >= len(out) {
				return nil, stats, &InvalidAddressError{
					Len:    len(out),
					Offset: tok.Ref.Offset,
					Start:  start,
				}
			}

			// the source may overlap what this copy appends, so go byte by byte
			for i := int(start); i < int(start)+int(tok.Ref.Length); i++ {
				out = append(out, out[i])
			}
			stats.BackRefs++
			stats.Copied += int(tok.Ref.Length)
		}

		if len(out) > MaxOutputSize {
			return nil, stats, ErrOutputSizeOverflow
		}
	}
}
