package bytehuff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chronos-tachyon/assert"
	"github.com/pkg/errors"
)

const codeWords = (MaxCodeSize + 64) / 64

// Code represents a sequence of bits: the path from the root of a Tree to one
// of its leaves, where 0 means "left" and 1 means "right".
type Code struct {
	// Size holds the number of valid bits.
	Size byte

	// Bits holds the actual values of the bits.  The least significant bit
	// of Bits[0] is the first bit, i.e. the edge leaving the root.  Bits
	// past Size are always zero.
	Bits [codeWords]uint64
}

// MakeCode is a convenience function that constructs a Code of at most 64
// bits.  The least significant bit of bits is the first bit.
func MakeCode(size byte, bits uint64) Code {
	assert.Assertf(size <= 64, "size %d > 64", size)
	if size < 64 {
		bits &= (uint64(1) << size) - 1
	}
	var hc Code
	hc.Size = size
	hc.Bits[0] = bits
	return hc
}

// ParseCode parses a string of '0' and '1' characters into a Code.
func ParseCode(str string) (Code, error) {
	if len(str) > MaxCodeSize {
		return Code{}, errors.Errorf("code %q is too long: %d bits, max %d", str, len(str), MaxCodeSize)
	}
	var hc Code
	for index := 0; index < len(str); index++ {
		switch str[index] {
		case '0':
			hc = hc.Append(false)
		case '1':
			hc = hc.Append(true)
		default:
			return Code{}, errors.Errorf("invalid character %q at index %d of code %q", str[index], index, str)
		}
	}
	return hc, nil
}

// Bit returns the i'th bit of this Code, counting from the root.
func (hc Code) Bit(i int) bool {
	assert.Assertf(i >= 0 && i < int(hc.Size), "bit index %d out of range [0, %d)", i, hc.Size)
	return (hc.Bits[i>>6]>>(uint(i)&63))&1 != 0
}

// Append returns the Code that is one bit longer than hc, ending in bit.
func (hc Code) Append(bit bool) Code {
	assert.Assertf(hc.Size < MaxCodeSize, "code size %d would exceed %d", hc.Size, MaxCodeSize)
	if bit {
		hc.Bits[hc.Size>>6] |= uint64(1) << (hc.Size & 63)
	}
	hc.Size++
	return hc
}

// HasPrefix returns true iff the first prefix.Size bits of hc equal prefix.
func (hc Code) HasPrefix(prefix Code) bool {
	if prefix.Size > hc.Size {
		return false
	}
	full := int(prefix.Size >> 6)
	for w := 0; w < full; w++ {
		if hc.Bits[w] != prefix.Bits[w] {
			return false
		}
	}
	if rest := prefix.Size & 63; rest != 0 {
		mask := (uint64(1) << rest) - 1
		if hc.Bits[full]&mask != prefix.Bits[full] {
			return false
		}
	}
	return true
}

// Bitstring returns the bits of this Code as a string of '0' and '1'
// characters, first bit first.
func (hc Code) Bitstring() string {
	var sb strings.Builder
	sb.Grow(int(hc.Size))
	for i := 0; i < int(hc.Size); i++ {
		if hc.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// String returns the string representation of this Code.
func (hc Code) String() string {
	return strconv.Quote(hc.Bitstring())
}

// MarshalText renders the Code as its bit string.
func (hc Code) MarshalText() ([]byte, error) {
	return []byte(hc.Bitstring()), nil
}

// UnmarshalText parses a bit string produced by MarshalText.
func (hc *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*hc = parsed
	return nil
}

// chunk returns the w'th group of up to 64 bits, ordered so that the first
// bit is the most significant, together with the group's bit count.  This is
// the order that bitio.Writer.WriteBits expects.
func (hc Code) chunk(w int) (uint64, byte) {
	size := int(hc.Size) - w*64
	if size > 64 {
		size = 64
	}
	if size <= 0 {
		return 0, 0
	}
	return reverse64(byte(size), hc.Bits[w]), byte(size)
}

var _ fmt.Stringer = Code{}
