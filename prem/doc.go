/*
Package prem decodes the compressed resources of Prehistorik Man.

A stream starts with a 16-bit little-endian command word. Command bits are
taken from it least significant first and a new word is read from the
stream as soon as the previous one is used up, so command words and data
bytes are interleaved exactly in decoding order.

	1 byte                    literal
	0 1 lo <page> <length>    big reference, length 3..272
	0 0 lo 1 ppp              small reference, page 0xF7..0xFE, length 2
	0 0 lo 0                  short reference, page 0xFF, length 2
	0 0 0xFF 0                end of stream

References copy from the output produced so far, one byte at a time, so a
reference may overlap the bytes it is producing. Output is limited to
MaxOutputSize bytes.

	out, err := prem.Decompress(r)
	if err != nil {
		return err
	}
*/
package prem
