package container

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/chronos-tachyon/bytehuff"
)

// Magic starts every container.
const Magic = "BHUF"

// Version is the only container version this package reads and writes.
const Version = 1

var (
	// ErrBadMagic is returned when the input does not start with Magic.
	ErrBadMagic = errors.New("not a bytehuff container")

	// ErrBadVersion is returned for containers of an unknown version.
	ErrBadVersion = errors.New("unsupported bytehuff container version")

	// ErrChecksum is returned when the decoded bytes do not hash to the
	// checksum stored in the header.
	ErrChecksum = errors.New("bytehuff container checksum mismatch")
)

// Header is the self-describing part of a container.  The frequency table is
// enough to rebuild the exact tree the payload was encoded with, and its
// Total() is the decoded length.
type Header struct {
	Frequencies *bytehuff.FrequencyTable

	// Checksum is the xxhash64 of the original bytes.
	Checksum uint64
}

// appendFrequencies appends the canonical encoding of ft: a uvarint entry
// count, then (symbol, uvarint count) pairs in ascending symbol order.
func appendFrequencies(dst []byte, ft *bytehuff.FrequencyTable) []byte {
	entries := ft.Entries()
	dst = binary.AppendUvarint(dst, uint64(len(entries)))
	for _, entry := range entries {
		dst = append(dst, entry.Symbol)
		dst = binary.AppendUvarint(dst, entry.Count)
	}
	return dst
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 16+2*h.Frequencies.Len())
	out = append(out, Magic...)
	out = append(out, Version)
	out = appendFrequencies(out, h.Frequencies)
	out = binary.LittleEndian.AppendUint64(out, h.Checksum)
	return out, nil
}

// Fingerprint identifies the code described by this header: two headers
// with equal fingerprints rebuild the same tree.
func (h *Header) Fingerprint() uint64 {
	return xxhash.Sum64(appendFrequencies(nil, h.Frequencies))
}

// readHeader parses a header from br, leaving br positioned at the start of
// the payload.
func readHeader(br *bufio.Reader) (*Header, error) {
	var magic [len(Magic)]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, truncated(err, "magic")
	}
	if string(magic[:]) != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "got %q", magic[:])
	}

	version, err := br.ReadByte()
	if err != nil {
		return nil, truncated(err, "version")
	}
	if version != Version {
		return nil, errors.Wrapf(ErrBadVersion, "got %d, want %d", version, Version)
	}

	numEntries, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, truncated(err, "entry count")
	}
	if numEntries > bytehuff.NumSymbols {
		return nil, errors.Wrapf(bytehuff.ErrCorruptStream, "header lists %d symbols, max %d", numEntries, bytehuff.NumSymbols)
	}

	counts := make(map[byte]uint64, numEntries)
	last := -1
	for index := uint64(0); index < numEntries; index++ {
		symbol, err := br.ReadByte()
		if err != nil {
			return nil, truncated(err, "entry symbol")
		}
		if int(symbol) <= last {
			return nil, errors.Wrapf(bytehuff.ErrCorruptStream, "header entry %d: symbol %s out of order", index, bytehuff.SymbolLabel(symbol))
		}
		last = int(symbol)

		count, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, truncated(err, "entry count")
		}
		if count == 0 {
			return nil, errors.Wrapf(bytehuff.ErrCorruptStream, "header entry %d: symbol %s has count 0", index, bytehuff.SymbolLabel(symbol))
		}
		counts[symbol] = count
	}

	var sum [8]byte
	if _, err := io.ReadFull(br, sum[:]); err != nil {
		return nil, truncated(err, "checksum")
	}

	return &Header{
		Frequencies: bytehuff.NewFrequencyTable(counts),
		Checksum:    binary.LittleEndian.Uint64(sum[:]),
	}, nil
}

func truncated(err error, field string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(bytehuff.ErrCorruptStream, "container header truncated in %s", field)
	}
	return errors.WithStack(err)
}
