package bytehuff

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput is returned when data must be decoded against the tree of
	// an empty input, which has no symbols at all.
	ErrEmptyInput = errors.New("empty input: tree has no symbols")

	// ErrUnknownSymbol is returned when encoding a byte that has no code.
	ErrUnknownSymbol = errors.New("symbol has no Huffman code")

	// ErrCorruptTree is returned when a Tree violates its structural
	// invariants.
	ErrCorruptTree = errors.New("corrupt Huffman tree")

	// ErrCorruptStream is returned when a bitstream does not decode cleanly
	// against its tree: it ends early, selects a missing child, has nonzero
	// padding, or continues past the last symbol.
	ErrCorruptStream = errors.New("corrupt Huffman bitstream")
)

// UnknownSymbolError reports the byte, and its offset in the input, that had
// no code during encoding.  It matches ErrUnknownSymbol under errors.Is.
type UnknownSymbolError struct {
	Symbol byte
	Offset int64
}

// Error fulfills the error interface.
func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d", ErrUnknownSymbol, SymbolLabel(e.Symbol), e.Offset)
}

// Is returns true for ErrUnknownSymbol.
func (e *UnknownSymbolError) Is(target error) bool {
	return target == ErrUnknownSymbol
}

var _ error = (*UnknownSymbolError)(nil)
