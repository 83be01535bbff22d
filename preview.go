package bytehuff

import (
	"encoding/hex"
	"strings"
)

// ReadablePrefix returns up to n of the first printable ASCII bytes of data,
// skipping everything else.
func ReadablePrefix(data []byte, n int) []byte {
	out := make([]byte, 0, n)
	for _, ch := range data {
		if len(out) >= n {
			break
		}
		if isPrintable(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// HexLines formats data as upper-case hex pairs separated by spaces, perLine
// bytes to a line.
func HexLines(data []byte, perLine int) []string {
	if perLine <= 0 {
		perLine = 16
	}
	lines := make([]string, 0, (len(data)+perLine-1)/perLine)
	for start := 0; start < len(data); start += perLine {
		end := start + perLine
		if end > len(data) {
			end = len(data)
		}
		pairs := make([]string, 0, end-start)
		for _, ch := range data[start:end] {
			pairs = append(pairs, strings.ToUpper(hex.EncodeToString([]byte{ch})))
		}
		lines = append(lines, strings.Join(pairs, " "))
	}
	return lines
}
