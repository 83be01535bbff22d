package bytehuff

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tree := Build(NewFrequencyTable(map[byte]uint64{'a': 5, 'b': 9, 'c': 12, 'd': 13, 'e': 16, 'f': 45}))

	expectDump := strings.Join([]string{
		"CodeTable{\n",
		"\tMinSize() = 1\n",
		"\tMaxSize() = 4\n",
		"\tLookup(f) = \"0\"\n",
		"\tLookup(c) = \"100\"\n",
		"\tLookup(d) = \"101\"\n",
		"\tLookup(e) = \"111\"\n",
		"\tLookup(a) = \"1100\"\n",
		"\tLookup(b) = \"1101\"\n",
		"}\n",
	}, "")

	var buf strings.Builder
	_, _ = tree.Codes().Dump(&buf)
	actualDump := buf.String()

	if expectDump != actualDump {
		t.Errorf("wrong output:\n\texpect: %s\n\tactual: %s", expectDump, actualDump)
	}

	expectString := "(code table with 6 symbols, with coded lengths of 1 .. 4 bits)"
	actualString := tree.Codes().String()
	if expectString != actualString {
		t.Errorf("wrong output:\n\texpect: %s\n\tactual: %s", expectString, actualString)
	}

	require.NoError(t, tree.Validate())
	require.Equal(t, 11, tree.Len())
	require.Equal(t, uint64(100), tree.Total())
}

func TestBuild_MergeOrder(t *testing.T) {
	tree := Build(CountFrequencies([]byte("aaabbc")))

	expectDump := strings.Join([]string{
		"Tree{\n",
		"\tRoot() = 4\n",
		"\tTotal() = 6\n",
		"\tNode(0) = leaf a freq=3 parent=4\n",
		"\tNode(1) = leaf b freq=2 parent=3\n",
		"\tNode(2) = leaf c freq=1 parent=3\n",
		"\tNode(3) = internal freq=3 left=2 right=1 parent=4\n",
		"\tNode(4) = internal freq=6 left=0 right=3 parent=-1\n",
		"}\n",
	}, "")

	var buf strings.Builder
	_, _ = tree.Dump(&buf)
	actualDump := buf.String()

	if expectDump != actualDump {
		t.Errorf("wrong output:\n\texpect: %s\n\tactual: %s", expectDump, actualDump)
	}

	type testRow struct {
		symbol byte
		code   string
	}

	testData := [...]testRow{
		{symbol: 'a', code: "0"},
		{symbol: 'b', code: "11"},
		{symbol: 'c', code: "10"},
	}
	for _, row := range testData {
		t.Run(string(rune(row.symbol)), func(t *testing.T) {
			hc, found := tree.Codes().Lookup(row.symbol)
			if !found {
				t.Fatalf("no code for %q", row.symbol)
			}
			if actual := hc.Bitstring(); row.code != actual {
				t.Errorf("wrong code:\n\texpect: %s\n\tactual: %s", row.code, actual)
			}
		})
	}

	require.Equal(t, []NodeID{4, 3, 1}, tree.Path('b'))
	require.Equal(t, []NodeID{4, 0}, tree.Path('a'))
	require.Nil(t, tree.Path('z'))
}

func TestBuild_Empty(t *testing.T) {
	tree := Build(CountFrequencies(nil))
	require.Nil(t, tree)
	require.Equal(t, InvalidNode, tree.Root())
	require.Equal(t, 0, tree.Len())
	require.Equal(t, uint64(0), tree.Total())
	require.Equal(t, 0, tree.Codes().Len())
	require.Equal(t, 0, tree.Frequencies().Len())
	require.NoError(t, tree.Validate())
	require.Equal(t, "(empty Huffman tree)", tree.String())

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	require.Equal(t, "null", string(raw))
}

func TestBuild_SingleSymbol(t *testing.T) {
	tree := Build(CountFrequencies([]byte("AAAA")))
	require.NotNil(t, tree)
	require.Equal(t, 1, tree.Len())

	root := tree.Node(tree.Root())
	require.Equal(t, Leaf, root.Kind)
	require.Equal(t, byte('A'), root.Symbol)
	require.Equal(t, uint64(4), root.Freq)
	require.Equal(t, InvalidNode, root.Parent)

	hc, found := tree.Codes().Lookup('A')
	require.True(t, found)
	require.Equal(t, "0", hc.Bitstring())
	require.Equal(t, []NodeID{0}, tree.Path('A'))
}

func TestBuild_TwoSymbols(t *testing.T) {
	tree := Build(CountFrequencies([]byte("ABAB")))
	root := tree.Node(tree.Root())
	require.Equal(t, Internal, root.Kind)
	require.Equal(t, byte('A'), tree.Node(root.Left).Symbol)
	require.Equal(t, byte('B'), tree.Node(root.Right).Symbol)

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	require.Equal(t,
		`{"freq":4,"left":{"freq":2,"symbol":65,"code":"0"},"right":{"freq":2,"symbol":66,"code":"1"}}`,
		string(raw))
}

func TestBuild_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		alphabet := 1 + rng.Intn(NumSymbols)
		data := make([]byte, 1+rng.Intn(4096))
		for i := range data {
			// Skew the distribution so code lengths vary.
			data[i] = byte(rng.Intn(1 + rng.Intn(alphabet)))
		}

		ft := CountFrequencies(data)
		tree := Build(ft)
		require.NoError(t, tree.Validate())

		// Frequency conservation.
		var leafSum uint64
		var leaves int
		tree.Walk(func(n Node, depth int) {
			if n.Kind == Leaf {
				leafSum += n.Freq
				leaves++
				hc, found := tree.Codes().Lookup(n.Symbol)
				require.True(t, found)
				if tree.Len() > 1 {
					require.Equal(t, depth, int(hc.Size))
				}
			}
		})
		require.Equal(t, uint64(len(data)), leafSum)
		require.Equal(t, uint64(len(data)), tree.Total())
		require.Equal(t, ft.Len(), leaves)
		require.Equal(t, 2*ft.Len()-1, tree.Len())

		// Prefix-free codes.
		entries := tree.Codes().Entries()
		require.Len(t, entries, ft.Len())
		for i := range entries {
			require.NotZero(t, entries[i].Code.Size)
			for j := range entries {
				if i != j && entries[i].Code.HasPrefix(entries[j].Code) {
					t.Fatalf("%s is a prefix of %s", entries[j].Code, entries[i].Code)
				}
			}
		}

		// Determinism.
		require.Equal(t, entries, Build(ft).Codes().Entries())
	}
}

func TestBuild_LongCodes(t *testing.T) {
	// Fibonacci counts produce a maximally unbalanced tree.
	counts := make(map[byte]uint64)
	a, b := uint64(1), uint64(1)
	for symbol := 0; symbol < 80; symbol++ {
		counts[byte(symbol)] = a
		a, b = b, a+b
	}
	tree := Build(NewFrequencyTable(counts))
	require.NoError(t, tree.Validate())
	require.Equal(t, byte(79), tree.Codes().MaxSize())
	require.Equal(t, byte(1), tree.Codes().MinSize())

	data := []byte{0, 1, 79, 0, 40, 1, 1, 2, 78}
	packed, err := Encode(data, tree.Codes())
	require.NoError(t, err)
	unpacked, err := DecodeN(packed, tree, uint64(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, unpacked)
}

func TestTree_Validate(t *testing.T) {
	corrupt := func(fn func(tree *Tree)) error {
		tree := Build(CountFrequencies([]byte("aaabbc")))
		fn(tree)
		return tree.Validate()
	}

	require.NoError(t, corrupt(func(*Tree) {}))
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.nodes[3].left = InvalidNode }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.nodes[3].right = 2 }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.nodes[1].parent = 4 }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.nodes[4].freq = 7 }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.nodes[0].left = 1 }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.nodes[2].symbol = 'a' }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.root = 3; tree.nodes[3].parent = InvalidNode }), ErrCorruptTree)
	require.ErrorIs(t, corrupt(func(tree *Tree) { tree.root = 9 }), ErrCorruptTree)
}
