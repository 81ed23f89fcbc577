package prem

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrTruncated is returned when the input ends before the terminator.
	ErrTruncated = errors.New("compressed stream is truncated")
	// ErrOutputSizeOverflow is returned when the output grows past MaxOutputSize.
	ErrOutputSizeOverflow = fmt.Errorf("output overflowed maximum size of %d bytes", MaxOutputSize)
)

// InvalidAddressError reports a back-reference that points at or past the
// end of the output produced so far.
type InvalidAddressError struct {
	Len    int // output length when the reference was resolved
	Offset int16
	Start  uint16
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address (len %d, offset %d, start %d)", e.Len, e.Offset, e.Start)
}

// truncated maps end-of-input conditions to ErrTruncated; anything else the
// reader returned is passed through as is.
func truncated(err error, what string, off int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s at input offset %d", ErrTruncated, what, off)
	}
	return err
}
