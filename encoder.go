package bytehuff

import (
	"bytes"
	"io"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Encoder replaces each byte written to it with its Huffman code and packs the
// codes, first bit most significant, into the underlying writer.  Close pads
// the final partial byte, if any, with zero bits.
type Encoder struct {
	bw     *bitio.Writer
	codes  *CodeTable
	offset int64
	bits   uint64
	err    error
	closed bool
}

// NewEncoder returns an Encoder that writes to w using the given codes.
func NewEncoder(w io.Writer, codes *CodeTable) *Encoder {
	assert.Assertf(codes != nil, "codes is nil")
	return &Encoder{
		bw:    bitio.NewWriter(w),
		codes: codes,
	}
}

// Write encodes p.  On an uncoded byte it returns the number of bytes encoded
// before it and an *UnknownSymbolError; the Encoder is unusable afterward.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.closed {
		return 0, errors.New("write to closed Encoder")
	}
	for index, symbol := range p {
		hc, found := e.codes.Lookup(symbol)
		if !found {
			e.err = &UnknownSymbolError{Symbol: symbol, Offset: e.offset}
			return index, e.err
		}
		if err := e.writeCode(hc); err != nil {
			e.err = errors.WithStack(err)
			return index, e.err
		}
		e.offset++
	}
	return len(p), nil
}

func (e *Encoder) writeCode(hc Code) error {
	for w := 0; w < codeWords; w++ {
		bits, size := hc.chunk(w)
		if size == 0 {
			break
		}
		if err := e.bw.WriteBits(bits, size); err != nil {
			return err
		}
		e.bits += uint64(size)
	}
	return nil
}

// Bits is the number of code bits written so far, not counting padding.
func (e *Encoder) Bits() uint64 {
	return e.bits
}

// Close flushes the final partial byte, padded with zero bits.  It does not
// close the underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if err := e.bw.Close(); err != nil && e.err == nil {
		e.err = errors.WithStack(err)
	}
	return e.err
}

var _ io.WriteCloser = (*Encoder)(nil)

// Encode packs the codes for every byte of data.  The result is exactly
// ceil(bits/8) bytes long, where bits is the sum of the code lengths.
func Encode(data []byte, codes *CodeTable) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data))
	e := NewEncoder(&buf, codes)
	if _, err := e.Write(data); err != nil {
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
