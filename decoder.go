package bytehuff

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Decoder reads a packed Huffman bitstream and yields the original bytes.
//
// Bits are consumed most significant first.  Each bit descends the tree from
// the current node, 0 to the left and 1 to the right; reaching a leaf emits
// its byte and returns to the root.
//
// A Decoder knows how many symbols to expect, which for NewDecoder is the
// tree's root frequency.  After the last symbol it requires the rest of the
// final byte to be zero padding and the stream to end.
type Decoder struct {
	br        *bitio.Reader
	tree      *Tree
	total     uint64
	remaining uint64
	consumed  uint64
	err       error
}

// NewDecoder returns a Decoder that reads from r and decodes Total() symbols
// of t.
func NewDecoder(r io.Reader, t *Tree) *Decoder {
	return NewDecoderN(r, t, t.Total())
}

// NewDecoderN returns a Decoder that reads from r and decodes exactly n
// symbols of t.
func NewDecoderN(r io.Reader, t *Tree, n uint64) *Decoder {
	d := &Decoder{
		br:        bitio.NewReader(r),
		tree:      t,
		total:     n,
		remaining: n,
	}
	if err := t.Validate(); err != nil {
		d.err = err
	} else if t == nil && n != 0 {
		d.err = errors.Wrapf(ErrEmptyInput, "cannot decode %d symbols", n)
	}
	return d
}

// Read fills p with decoded bytes.  It returns io.EOF once every expected
// symbol has been decoded and the end of the stream has been verified.
func (d *Decoder) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n := 0
	for n < len(p) && d.remaining != 0 {
		symbol, err := d.next()
		if err != nil {
			d.err = err
			return n, err
		}
		p[n] = symbol
		n++
	}
	if d.remaining == 0 {
		if err := d.finish(); err != nil {
			d.err = err
			return n, err
		}
		d.err = io.EOF
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n, nil
}

// Bits is the number of bits consumed so far, not counting padding.
func (d *Decoder) Bits() uint64 {
	return d.consumed
}

func (d *Decoder) next() (byte, error) {
	id := d.tree.root
	for {
		bit, err := d.br.ReadBool()
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, errors.Wrapf(ErrCorruptStream, "stream ends after %d bits with %d of %d symbols still to decode", d.consumed, d.remaining, d.total)
		}
		if err != nil {
			return 0, errors.WithStack(err)
		}

		child, ok := d.tree.child(id, bit)
		if !ok {
			return 0, errors.Wrapf(ErrCorruptStream, "bit %d: node %d has no child for a %d bit", d.consumed, id, bitValue(bit))
		}
		d.consumed++
		id = child

		if n := &d.tree.nodes[id]; n.kind == Leaf {
			d.remaining--
			return n.symbol, nil
		}
	}
}

// finish verifies that only zero padding remains in the final byte and that
// no bytes follow it.
func (d *Decoder) finish() error {
	if pad := (8 - d.consumed%8) % 8; pad != 0 {
		bits, err := d.br.ReadBits(uint8(pad))
		if err != nil {
			return errors.WithStack(err)
		}
		if bits != 0 {
			return errors.Wrapf(ErrCorruptStream, "%d padding bits after bit %d are not zero", pad, d.consumed)
		}
	}

	_, err := d.br.ReadByte()
	switch {
	case err == io.EOF:
		return nil
	case err != nil:
		return errors.WithStack(err)
	case d.tree == nil:
		return errors.Wrap(ErrEmptyInput, "stream has data but the tree has no symbols")
	default:
		return errors.Wrapf(ErrCorruptStream, "data continues past the last of %d symbols", d.total)
	}
}

var _ io.Reader = (*Decoder)(nil)

// Decode reconstructs the Total() bytes that t encodes from the packed
// bitstream data.
func Decode(data []byte, t *Tree) ([]byte, error) {
	return DecodeN(data, t, t.Total())
}

// DecodeN reconstructs exactly n bytes from the packed bitstream data.
func DecodeN(data []byte, t *Tree, n uint64) ([]byte, error) {
	d := NewDecoderN(bytes.NewReader(data), t, n)
	if d.err != nil {
		return nil, d.err
	}

	// Every code is at least one bit long.
	if max := uint64(len(data)) * 8; n > max {
		return nil, errors.Wrapf(ErrCorruptStream, "%d bytes cannot hold %d symbols", len(data), n)
	}

	out := make([]byte, 0, n)
	for d.remaining != 0 {
		symbol, err := d.next()
		if err != nil {
			return nil, err
		}
		out = append(out, symbol)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func bitValue(bit bool) int {
	if bit {
		return 1
	}
	return 0
}
