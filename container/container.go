// Package container wraps a bytehuff bitstream in a self-describing format.
//
// A container is laid out as follows, integers little endian:
//
//     "BHUF"                  magic
//     0x01                    version
//     uvarint N               number of distinct symbols
//     N × (byte, uvarint)     (symbol, count), ascending by symbol
//     uint64                  xxhash64 of the original bytes
//     ...                     packed Huffman bitstream to end of input
//
// The reader rebuilds the tree from the counts, so the decoded length is the
// sum of the counts and no end marker is needed.
//
package container

import (
	"bufio"
	"bytes"
	"io"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/chronos-tachyon/bytehuff"
)

// Pack compresses data into a container.
func Pack(data []byte) ([]byte, error) {
	res, err := bytehuff.Compress(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := WriteResult(&buf, res, xxhash.Sum64(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unpack decompresses a container produced by Pack or WriteStream.
func Unpack(blob []byte) ([]byte, error) {
	var u Unpacker
	return u.Unpack(blob)
}

// WriteResult writes res as a container.  checksum must be the xxhash64 of
// the bytes that res was compressed from.
func WriteResult(w io.Writer, res *bytehuff.Result, checksum uint64) (int64, error) {
	h := Header{Frequencies: res.Frequencies, Checksum: checksum}
	raw, _ := h.MarshalBinary()
	n1, err := w.Write(raw)
	if err != nil {
		return int64(n1), errors.WithStack(err)
	}
	n2, err := w.Write(res.Compressed)
	if err != nil {
		return int64(n1 + n2), errors.WithStack(err)
	}
	return int64(n1 + n2), nil
}

// WriteStream compresses everything in r into a container written to w, and
// returns the tree it used.  It makes two passes over r, one to count and one
// to encode, seeking back to the starting offset in between.
func WriteStream(w io.Writer, r io.ReadSeeker) (*bytehuff.Tree, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	digest := xxhash.New()
	ft, err := bytehuff.CountReader(io.TeeReader(r, digest))
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}

	t := bytehuff.Build(ft)
	codes := t.Codes()

	bw := bufio.NewWriter(w)
	h := Header{Frequencies: ft, Checksum: digest.Sum64()}
	raw, _ := h.MarshalBinary()
	if _, err := bw.Write(raw); err != nil {
		return nil, errors.WithStack(err)
	}

	e := bytehuff.NewEncoder(bw, codes)
	if _, err := io.CopyN(e, r, int64(ft.Total())); err != nil {
		if err == io.EOF {
			err = errors.Errorf("input shrank between passes: expected %d bytes", ft.Total())
		}
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.WithStack(err)
	}
	return t, nil
}

// Option configures an Unpacker.
type Option func(*Config)

// Config holds configuration for an Unpacker.
type Config struct {
	// CacheSize is the number of rebuilt trees to keep, keyed by header
	// fingerprint.  0 disables the cache.
	CacheSize int
}

// WithCacheSize sets the number of trees an Unpacker keeps for reuse.
func WithCacheSize(n int) Option {
	return func(c *Config) {
		c.CacheSize = n
	}
}

// Unpacker decodes containers.  The zero value is ready to use and keeps no
// cache.  An Unpacker is safe for concurrent use.
type Unpacker struct {
	cache *lru.Cache[uint64, *bytehuff.Tree]
}

// NewUnpacker creates an Unpacker with the given options.
func NewUnpacker(opts ...Option) (*Unpacker, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.CacheSize < 0 {
		return nil, errors.Errorf("cache size %d is negative", cfg.CacheSize)
	}
	u := &Unpacker{}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[uint64, *bytehuff.Tree](cfg.CacheSize)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		u.cache = cache
	}
	return u, nil
}

// Unpack decompresses a container held in memory.
func (u *Unpacker) Unpack(blob []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := u.ReadStream(&buf, bytes.NewReader(blob)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadHeader parses the header at the start of r and returns it with the tree
// it describes.  The returned reader is positioned at the payload.
func (u *Unpacker) ReadHeader(r io.Reader) (*Header, *bytehuff.Tree, io.Reader, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, nil, nil, err
	}
	return h, u.tree(h), br, nil
}

// ReadStream decodes the container in r, writing the original bytes to w, and
// returns the tree the container described.
func (u *Unpacker) ReadStream(w io.Writer, r io.Reader) (*bytehuff.Tree, error) {
	h, t, payload, err := u.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	digest := xxhash.New()
	d := bytehuff.NewDecoder(payload, t)
	if _, err := io.Copy(io.MultiWriter(w, digest), d); err != nil {
		return nil, err
	}
	if sum := digest.Sum64(); sum != h.Checksum {
		return nil, errors.Wrapf(ErrChecksum, "got %016x, want %016x", sum, h.Checksum)
	}
	return t, nil
}

// CacheLen is the number of trees currently cached.
func (u *Unpacker) CacheLen() int {
	if u.cache == nil {
		return 0
	}
	return u.cache.Len()
}

func (u *Unpacker) tree(h *Header) *bytehuff.Tree {
	if u.cache == nil {
		return bytehuff.Build(h.Frequencies)
	}
	key := h.Fingerprint()
	if t, found := u.cache.Get(key); found {
		return t
	}
	t := bytehuff.Build(h.Frequencies)
	u.cache.Add(key, t)
	return t
}
