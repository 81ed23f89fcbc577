package prem

// commandWord holds the command bits still unread from the current 16-bit
// word. Bits are consumed least significant first.
type commandWord struct {
	data  uint16
	count int
	err   error // failed refill, surfaced when the next bit is requested
}

func (c *commandWord) fill(in *input) {
	c.data, c.err = in.readWord()
	if c.err != nil {
		c.count = 0
		return
	}
	c.count = 16
}

// shift takes the next bit. The word is refilled as soon as it runs empty,
// before the caller sees the bit, so that a refill lands between the data
// bytes exactly where the encoder put it.
func (c *commandWord) shift(in *input) (uint8, error) {
	if c.count == 0 {
		return 0, c.err
	}
	bit := uint8(c.data & 0x01)
	c.data >>= 1
	c.count--
	if c.count == 0 {
		c.fill(in)
	}
	return bit, nil
}
