// Command huffpack compresses and decompresses files with byte-level Huffman
// coding, and shows the tables behind the result.
//
// Usage:
//
//     huffpack [flags] FILE
//
// Without -d, FILE is compressed into FILE.bhuf.  With -d, FILE must be a
// container and is decompressed into FILE minus its .bhuf suffix (or
// FILE.out).
//
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/chronos-tachyon/bytehuff"
	"github.com/chronos-tachyon/bytehuff/container"
)

const suffix = ".bhuf"

type options struct {
	decompress bool
	output     string
	stats      bool
	freq       bool
	codes      bool
	tree       bool
	hexBytes   int
	preview    int
	input      string
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("huffpack: ")

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err)
	}
	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("%+v", err)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("huffpack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.decompress, "d", false, "decompress instead of compress")
	fs.StringVar(&opts.output, "o", "", "output path (default derived from the input path)")
	fs.BoolVar(&opts.stats, "stats", false, "print size statistics")
	fs.BoolVar(&opts.freq, "freq", false, "print the frequency table")
	fs.BoolVar(&opts.codes, "codes", false, "print the code table")
	fs.BoolVar(&opts.tree, "tree", false, "print the tree nodes")
	fs.IntVar(&opts.hexBytes, "hex", 0, "print the first N bytes of the compressed file as hex")
	fs.IntVar(&opts.preview, "preview", 0, "print the first N readable characters of the original")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.Errorf("expected exactly one input file, got %d", fs.NArg())
	}
	opts.input = fs.Arg(0)
	if opts.output == "" {
		opts.output = defaultOutput(opts.input, opts.decompress)
	}
	return opts, nil
}

func defaultOutput(input string, decompress bool) string {
	if !decompress {
		return input + suffix
	}
	if trimmed := strings.TrimSuffix(input, suffix); trimmed != input {
		return trimmed
	}
	return input + ".out"
}

func run(opts options, stdout io.Writer) error {
	var (
		tree       *bytehuff.Tree
		original   string
		compressed string
		err        error
	)
	if opts.decompress {
		tree, err = decompressFile(opts.input, opts.output)
		original, compressed = opts.output, opts.input
	} else {
		tree, err = compressFile(opts.input, opts.output)
		original, compressed = opts.input, opts.output
	}
	if err != nil {
		return err
	}
	log.Printf("%s -> %s", opts.input, opts.output)
	return report(stdout, opts, tree, original, compressed)
}

func compressFile(input, output string) (*bytehuff.Tree, error) {
	in, err := os.Open(input)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tree, err := container.WriteStream(out, in)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = errors.WithStack(closeErr)
	}
	if err != nil {
		_ = os.Remove(output)
		return nil, errors.Wrapf(err, "compress %s", input)
	}
	return tree, nil
}

func decompressFile(input, output string) (*bytehuff.Tree, error) {
	in, err := os.Open(input)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	bw := bufio.NewWriter(out)
	var u container.Unpacker
	tree, err := u.ReadStream(bw, in)
	if err == nil {
		err = errors.WithStack(bw.Flush())
	}
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = errors.WithStack(closeErr)
	}
	if err != nil {
		_ = os.Remove(output)
		return nil, errors.Wrapf(err, "decompress %s", input)
	}
	return tree, nil
}

func report(w io.Writer, opts options, tree *bytehuff.Tree, original, compressed string) error {
	if opts.stats {
		stats := bytehuff.ComputeStats(tree.Frequencies(), tree.Codes())
		if _, err := stats.WriteTo(w); err != nil {
			return errors.WithStack(err)
		}
	}
	if opts.freq {
		for _, entry := range tree.Frequencies().Entries() {
			fmt.Fprintf(w, "%s\t%d\n", bytehuff.SymbolLabel(entry.Symbol), entry.Count)
		}
	}
	if opts.codes {
		for _, entry := range tree.Codes().Entries() {
			fmt.Fprintf(w, "%s\t%s\n", bytehuff.SymbolLabel(entry.Symbol), entry.Code.Bitstring())
		}
	}
	if opts.tree {
		if _, err := tree.Dump(w); err != nil {
			return errors.WithStack(err)
		}
	}
	if opts.preview > 0 {
		head, err := readHead(original, 64*1024)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", bytehuff.ReadablePrefix(head, opts.preview))
	}
	if opts.hexBytes > 0 {
		head, err := readHead(compressed, opts.hexBytes)
		if err != nil {
			return err
		}
		for _, line := range bytehuff.HexLines(head, 16) {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	buf := make([]byte, n)
	got, err := io.ReadFull(f, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return buf[:got], errors.WithStack(err)
}
