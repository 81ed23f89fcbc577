package prem

import (
	"fmt"
	"io"
)

// TokenKind tells which field of a Token is meaningful.
type TokenKind uint8

const (
	KindLiteral TokenKind = iota
	KindBackRef
	KindEndOfFile
)

func (k TokenKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindBackRef:
		return "backref"
	case KindEndOfFile:
		return "eof"
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// Token is one decoded unit of the compressed stream.
type Token struct {
	Kind  TokenKind
	Value byte    // KindLiteral
	Ref   BackRef // KindBackRef
}

// Decoder splits a compressed stream into tokens. It does not resolve
// back-references; see Decompress for that.
type Decoder struct {
	in   *input
	cmds commandWord
	err  error
	done bool
}

// NewDecoder reads the first command word from r.
// Reads from r are buffered unless r is already an io.ByteReader, so the
// decoder may consume bytes past the terminator.
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{in: newInput(r)}
	d.cmds.fill(d.in)
	if d.cmds.err != nil {
		return nil, d.cmds.err
	}
	return d, nil
}

// Next decodes the next token. Once KindEndOfFile has been returned every
// further call returns it again; once an error has been returned every
// further call returns the same error.
func (d *Decoder) Next() (Token, error) {
	if d.done {
		return Token{Kind: KindEndOfFile}, nil
	}
	tok := d.next()
	if err := d.error(); err != nil {
		return Token{}, err
	}
	if tok.Kind == KindEndOfFile {
		d.done = true
	}
	return tok, nil
}

// InputOffset returns the number of compressed bytes consumed so far.
func (d *Decoder) InputOffset() int64 {
	return d.in.offset()
}

func (d *Decoder) next() Token {
	if d.flag() {
		return Token{Kind: KindLiteral, Value: d.readByte()}
	}

	isBigRef := d.flag()
	offsetL := d.readByte()

	switch {
	case isBigRef:
		return Token{Kind: KindBackRef, Ref: d.readBigRef(offsetL)}
	case d.flag():
		return Token{Kind: KindBackRef, Ref: d.readSmallRef(offsetL)}
	case offsetL == 0xFF:
		return Token{Kind: KindEndOfFile}
	default:
		return Token{Kind: KindBackRef, Ref: BackRef{Offset: makeOffset(0xFF, offsetL), Length: 2}}
	}
}

func (d *Decoder) error() error {
	if d.err != nil {
		return d.err
	}
	if err := d.in.err(); err != nil {
		d.err = err
	}
	return d.err
}

// bits reads n command bits, first bit most significant. After any failure
// it returns zeroes without touching the input.
func (d *Decoder) bits(n int) uint8 {
	var v uint8
	for i := 0; i < n; i++ {
		if d.error() != nil {
			return 0
		}
		bit, err := d.cmds.shift(d.in)
		if err != nil {
			d.err = err
			return 0
		}
		v = v<<1 | bit
	}
	return v
}

func (d *Decoder) flag() bool {
	return d.bits(1) == 0x01
}

func (d *Decoder) readByte() uint8 {
	if d.error() != nil {
		return 0
	}
	return d.in.tryReadByte()
}
