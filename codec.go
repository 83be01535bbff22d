package bytehuff

import (
	"fmt"
	"io"
)

// Result holds every artifact of one compression: the packed bytes, the tree
// needed to decode them, and the intermediate tables.
//
// The packed bytes do not describe their own code.  Keep Tree to decompress,
// or use package container for a self-contained format.
type Result struct {
	Compressed  []byte
	Tree        *Tree
	Codes       *CodeTable
	Frequencies *FrequencyTable
}

// Compress counts data, builds its Huffman tree, and packs it.
//
// Empty input yields empty output and a nil Tree.
func Compress(data []byte) (*Result, error) {
	ft := CountFrequencies(data)
	t := Build(ft)
	codes := t.Codes()
	compressed, err := Encode(data, codes)
	if err != nil {
		return nil, err
	}
	return &Result{
		Compressed:  compressed,
		Tree:        t,
		Codes:       codes,
		Frequencies: ft,
	}, nil
}

// Decompress reverses Compress, given the Tree it returned.
func Decompress(compressed []byte, t *Tree) ([]byte, error) {
	return Decode(compressed, t)
}

// Stats summarizes the size of one compression.
type Stats struct {
	OriginalBytes   uint64
	CompressedBytes uint64
	EncodedBits     uint64
	PaddingBits     uint64
}

// Stats computes size statistics for this Result.
func (res *Result) Stats() Stats {
	return ComputeStats(res.Frequencies, res.Codes)
}

// ComputeStats predicts the size statistics of encoding an input with the
// given frequencies using the given codes.
func ComputeStats(ft *FrequencyTable, codes *CodeTable) Stats {
	bits := codes.EncodedBits(ft)
	compressed := bytesForBits(bits)
	return Stats{
		OriginalBytes:   ft.Total(),
		CompressedBytes: compressed,
		EncodedBits:     bits,
		PaddingBits:     compressed*8 - bits,
	}
}

// Ratio is CompressedBytes / OriginalBytes, or 0 for an empty input.
func (s Stats) Ratio() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.OriginalBytes)
}

// BitsPerSymbol is the average code length.
func (s Stats) BitsPerSymbol() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.EncodedBits) / float64(s.OriginalBytes)
}

// WriteTo writes a human-readable summary.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"original:    %d bytes\ncompressed:  %d bytes (%.2f%%)\ncode bits:   %d (%.3f bits/byte)\npadding:     %d bits\n",
		s.OriginalBytes,
		s.CompressedBytes, 100*s.Ratio(),
		s.EncodedBits, s.BitsPerSymbol(),
		s.PaddingBits)
	return int64(n), err
}

var _ io.WriterTo = Stats{}
