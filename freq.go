package bytehuff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// FrequencyTable counts the occurrences of each byte value in some input.
// Byte values that never occur are absent from the table.
//
// A FrequencyTable is immutable once constructed.
type FrequencyTable struct {
	counts   [NumSymbols]uint64
	total    uint64
	distinct int
}

// FrequencyEntry is one (byte value, count) pair of a FrequencyTable.
type FrequencyEntry struct {
	Symbol byte   `json:"symbol"`
	Count  uint64 `json:"count"`
}

// CountFrequencies builds the FrequencyTable for data.  An empty input yields
// an empty table.
func CountFrequencies(data []byte) *FrequencyTable {
	ft := new(FrequencyTable)
	ft.add(data)
	return ft
}

// CountReader builds the FrequencyTable for everything that can be read from
// r before io.EOF.
func CountReader(r io.Reader) (*FrequencyTable, error) {
	ft := new(FrequencyTable)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		ft.add(buf[:n])
		if err == io.EOF {
			return ft, nil
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
}

// NewFrequencyTable constructs a FrequencyTable from explicit counts.  Entries
// with a count of 0 are dropped.  The total saturates at math.MaxUint64.
func NewFrequencyTable(counts map[byte]uint64) *FrequencyTable {
	ft := new(FrequencyTable)
	for symbol, count := range counts {
		if count == 0 {
			continue
		}
		ft.counts[symbol] = count
		ft.distinct++
		ft.total = saturatingAdd(ft.total, count)
	}
	return ft
}

func (ft *FrequencyTable) add(data []byte) {
	for _, ch := range data {
		if ft.counts[ch] == 0 {
			ft.distinct++
		}
		ft.counts[ch]++
	}
	ft.total += uint64(len(data))
}

// Count returns the number of occurrences of symbol, and whether symbol is
// present in the table at all.
func (ft *FrequencyTable) Count(symbol byte) (uint64, bool) {
	count := ft.counts[symbol]
	return count, count != 0
}

// Len is the number of distinct byte values in the table.
func (ft *FrequencyTable) Len() int {
	return ft.distinct
}

// Total is the sum of all counts, i.e. the length of the counted input.
func (ft *FrequencyTable) Total() uint64 {
	return ft.total
}

// Entries lists the table's (byte value, count) pairs in ascending byte order.
func (ft *FrequencyTable) Entries() []FrequencyEntry {
	out := make([]FrequencyEntry, 0, ft.distinct)
	for symbol := 0; symbol < NumSymbols; symbol++ {
		if count := ft.counts[symbol]; count != 0 {
			out = append(out, FrequencyEntry{Symbol: byte(symbol), Count: count})
		}
	}
	return out
}

// Dump writes a programmer-readable debugging dump of the table to the given
// writer.
func (ft *FrequencyTable) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("FrequencyTable{\n")
	fmt.Fprintf(&buf, "\tLen() = %d\n", ft.distinct)
	fmt.Fprintf(&buf, "\tTotal() = %d\n", ft.total)
	for _, entry := range ft.Entries() {
		fmt.Fprintf(&buf, "\tCount(%s) = %d\n", SymbolLabel(entry.Symbol), entry.Count)
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// String returns a short description of the table.
func (ft *FrequencyTable) String() string {
	return fmt.Sprintf("(frequency table with %d symbols, %d total)", ft.distinct, ft.total)
}

// MarshalJSON renders the table as its Entries.
func (ft *FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Entries())
}

// UnmarshalJSON parses the output of MarshalJSON.
func (ft *FrequencyTable) UnmarshalJSON(raw []byte) error {
	var entries []FrequencyEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return err
	}
	counts := make(map[byte]uint64, len(entries))
	for _, entry := range entries {
		if _, dupe := counts[entry.Symbol]; dupe {
			return errors.Errorf("duplicate frequency entry for %s", SymbolLabel(entry.Symbol))
		}
		counts[entry.Symbol] = entry.Count
	}
	*ft = *NewFrequencyTable(counts)
	return nil
}

// SymbolLabel renders a byte for display: printable ASCII as itself, anything
// else as "(0xNN)".
func SymbolLabel(symbol byte) string {
	if isPrintable(symbol) {
		return string(rune(symbol))
	}
	return fmt.Sprintf("(0x%02X)", symbol)
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}

var (
	_ fmt.Stringer     = (*FrequencyTable)(nil)
	_ json.Marshaler   = (*FrequencyTable)(nil)
	_ json.Unmarshaler = (*FrequencyTable)(nil)
)
