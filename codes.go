package bytehuff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// CodeTable maps each byte value present in a Tree to its Code.  Absent byte
// values have no code.
type CodeTable struct {
	codes [NumSymbols]Code
	count int
}

// CodeEntry is one (byte value, code) pair of a CodeTable.
type CodeEntry struct {
	Symbol byte `json:"symbol"`
	Code   Code `json:"code"`
}

func (ct *CodeTable) set(symbol byte, hc Code) {
	if ct.codes[symbol].Size == 0 {
		ct.count++
	}
	ct.codes[symbol] = hc
}

// Lookup returns the code for symbol, and whether symbol has one.
func (ct *CodeTable) Lookup(symbol byte) (Code, bool) {
	hc := ct.codes[symbol]
	return hc, hc.Size != 0
}

// Len is the number of byte values with a code.
func (ct *CodeTable) Len() int {
	return ct.count
}

// Entries lists the table's (byte value, code) pairs in ascending byte order.
func (ct *CodeTable) Entries() []CodeEntry {
	out := make([]CodeEntry, 0, ct.count)
	for symbol := 0; symbol < NumSymbols; symbol++ {
		if hc := ct.codes[symbol]; hc.Size != 0 {
			out = append(out, CodeEntry{Symbol: byte(symbol), Code: hc})
		}
	}
	return out
}

// MinSize is the bit length of the shortest code, or 0 for an empty table.
func (ct *CodeTable) MinSize() byte {
	var min byte
	for _, entry := range ct.Entries() {
		if min == 0 || entry.Code.Size < min {
			min = entry.Code.Size
		}
	}
	return min
}

// MaxSize is the bit length of the longest code, or 0 for an empty table.
func (ct *CodeTable) MaxSize() byte {
	var max byte
	for _, entry := range ct.Entries() {
		if entry.Code.Size > max {
			max = entry.Code.Size
		}
	}
	return max
}

// EncodedBits is the exact number of bits Encode produces for an input with
// the given frequencies, before padding.  Symbols of ft that have no code are
// not counted.
func (ct *CodeTable) EncodedBits(ft *FrequencyTable) uint64 {
	var bits uint64
	for _, entry := range ft.Entries() {
		bits = saturatingAdd(bits, entry.Count*uint64(ct.codes[entry.Symbol].Size))
	}
	return bits
}

// Dump writes a programmer-readable debugging dump of the table to the given
// writer.  Codes are listed shortest first, then in lexical order.
func (ct *CodeTable) Dump(w io.Writer) (int64, error) {
	entries := byCode(ct.Entries())
	sort.Stable(entries)

	var buf bytes.Buffer
	buf.WriteString("CodeTable{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", ct.MinSize())
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", ct.MaxSize())
	for _, entry := range entries {
		fmt.Fprintf(&buf, "\tLookup(%s) = %s\n", SymbolLabel(entry.Symbol), entry.Code)
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// String returns a short description of the table.
func (ct *CodeTable) String() string {
	return fmt.Sprintf("(code table with %d symbols, with coded lengths of %d .. %d bits)", ct.count, ct.MinSize(), ct.MaxSize())
}

// MarshalJSON renders the table as its Entries.
func (ct *CodeTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.Entries())
}

var (
	_ fmt.Stringer   = (*CodeTable)(nil)
	_ json.Marshaler = (*CodeTable)(nil)
)

// type byCode {{{

type byCode []CodeEntry

func (list byCode) Len() int {
	return len(list)
}

func (list byCode) Swap(i, j int) {
	list[i], list[j] = list[j], list[i]
}

func (list byCode) Less(i, j int) bool {
	a, b := list[i].Code, list[j].Code
	if a.Size != b.Size {
		return a.Size < b.Size
	}
	return a.Bitstring() < b.Bitstring()
}

var _ sort.Interface = byCode(nil)

// }}}
