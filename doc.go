// Package bytehuff implements Huffman coding over byte values.
//
// Compress counts an input, builds a Huffman tree by repeatedly merging the
// two least frequent nodes, and packs each byte's code into a bitstream.
// Decompress walks the same tree bit by bit to recover the input.  The tree,
// code table, and frequency table are all exposed for inspection.
//
// The bitstream alone does not describe its code; see package container for
// a self-contained format.
//
// References:
//
//     <https://en.wikipedia.org/wiki/Huffman_coding>
//
package bytehuff
