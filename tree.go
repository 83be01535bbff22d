package bytehuff

import (
	"bytes"
	"container/heap"
	"encoding/json"
	"fmt"
	"io"

	"github.com/chronos-tachyon/assert"
	"github.com/pkg/errors"
)

// Tree is a Huffman code tree over byte values.
//
// Nodes live in a single arena owned by the Tree and refer to each other by
// NodeID.  Children are reached from their parent; the parent link is a plain
// index kept for path tracing and never implies ownership.
//
// A nil *Tree is the tree of an empty input: it has no root and no codes.
type Tree struct {
	nodes  []node
	root   NodeID
	leaves [NumSymbols]NodeID
	freqs  *FrequencyTable
	codes  *CodeTable
}

type node struct {
	kind   NodeKind
	symbol byte
	freq   uint64
	left   NodeID
	right  NodeID
	parent NodeID
}

// Node is a read-only view of one node of a Tree.
type Node struct {
	ID   NodeID
	Kind NodeKind

	// Symbol is the byte value of a Leaf.  It is 0 for Internal nodes.
	Symbol byte

	// Freq is the leaf's count, or the sum of both children's Freq.
	Freq uint64

	// Left and Right are InvalidNode for a Leaf.
	Left  NodeID
	Right NodeID

	// Parent is InvalidNode for the root.
	Parent NodeID
}

// Build constructs the Huffman tree for the given frequencies.
//
// The two nodes of smallest frequency are merged repeatedly until one node
// remains.  Ties are broken by NodeID, which means leaves in ascending byte
// order come before any merged node, and merged nodes in the order they were
// created.  The first node extracted becomes the left (0) child.
//
// Build returns nil if ft is empty.  If ft has exactly one symbol, the tree is
// a single leaf and that symbol is assigned the code "0".
//
func Build(ft *FrequencyTable) *Tree {
	if ft == nil || ft.Len() == 0 {
		return nil
	}

	numLeaves := ft.Len()
	t := &Tree{
		nodes: make([]node, 0, 2*numLeaves-1),
		root:  InvalidNode,
		freqs: ft,
	}
	for index := range t.leaves {
		t.leaves[index] = InvalidNode
	}

	// Step 1: one leaf per present symbol, seeded into a minheap.

	h := nodeHeap{tree: t, list: make([]NodeID, 0, numLeaves)}
	for _, entry := range ft.Entries() {
		id := t.push(node{
			kind:   Leaf,
			symbol: entry.Symbol,
			freq:   entry.Count,
			left:   InvalidNode,
			right:  InvalidNode,
			parent: InvalidNode,
		})
		t.leaves[entry.Symbol] = id
		h.list = append(h.list, id)
	}
	h.Init()

	// Step 2: pop two, merge, push the merged node back.

	for h.Len() > 1 {
		a := heap.Pop(&h).(NodeID)
		b := heap.Pop(&h).(NodeID)
		id := t.push(node{
			kind:   Internal,
			freq:   saturatingAdd(t.nodes[a].freq, t.nodes[b].freq),
			left:   a,
			right:  b,
			parent: InvalidNode,
		})
		t.nodes[a].parent = id
		t.nodes[b].parent = id
		heap.Push(&h, id)
	}
	t.root = heap.Pop(&h).(NodeID)

	// Step 3: walk the tree to assign codes.

	t.codes = t.assignCodes()
	return t
}

func (t *Tree) push(n node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return id
}

// assignCodes walks the tree with an explicit stack, recording the path to
// each leaf.
//
// We use stackItem.x to keep track of where we are in the tree walk:
//   x=0 → We just arrived at stackItem for the first time
//   x=1 → We have already processed the left child
//   x=2 → We have already processed both children
//
func (t *Tree) assignCodes() *CodeTable {
	ct := new(CodeTable)

	root := t.nodes[t.root]
	if root.kind == Leaf {
		ct.set(root.symbol, MakeCode(1, 0))
		return ct
	}

	type stackItem struct {
		id   NodeID
		code Code
		x    byte
	}

	stack := make([]stackItem, 0, 16)
	stack = append(stack, stackItem{id: t.root})
	for len(stack) != 0 {
		top := &stack[len(stack)-1]
		x := top.x
		top.x++

		var child NodeID
		var code Code
		switch x {
		case 0:
			child, code = t.nodes[top.id].left, top.code.Append(false)
		case 1:
			child, code = t.nodes[top.id].right, top.code.Append(true)
		default:
			stack = stack[:len(stack)-1]
			continue
		}

		if n := t.nodes[child]; n.kind == Leaf {
			ct.set(n.symbol, code)
		} else {
			stack = append(stack, stackItem{id: child, code: code})
		}
	}
	return ct
}

// Root returns the ID of the root node, or InvalidNode for an empty tree.
func (t *Tree) Root() NodeID {
	if t == nil {
		return InvalidNode
	}
	return t.root
}

// Len is the number of nodes in the tree: 2n-1 for n distinct symbols.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Total is the root's frequency, i.e. the number of symbols the tree was
// built to encode.
func (t *Tree) Total() uint64 {
	if t == nil {
		return 0
	}
	return t.nodes[t.root].freq
}

// Node returns a view of the node with the given ID.
func (t *Tree) Node(id NodeID) Node {
	assert.Assertf(id >= 0 && int(id) < t.Len(), "NodeID %d out of range [0, %d)", id, t.Len())
	n := t.nodes[id]
	return Node{
		ID:     id,
		Kind:   n.kind,
		Symbol: n.symbol,
		Freq:   n.freq,
		Left:   n.left,
		Right:  n.right,
		Parent: n.parent,
	}
}

// Leaf returns the ID of the leaf holding symbol.
func (t *Tree) Leaf(symbol byte) (NodeID, bool) {
	if t == nil {
		return InvalidNode, false
	}
	id := t.leaves[symbol]
	return id, id != InvalidNode
}

// Path returns the nodes from the root down to the leaf holding symbol,
// inclusive, by following parent links upward.  It returns nil if symbol is
// not in the tree.
func (t *Tree) Path(symbol byte) []NodeID {
	id, found := t.Leaf(symbol)
	if !found {
		return nil
	}
	var path []NodeID
	for ; id != InvalidNode; id = t.nodes[id].parent {
		path = append(path, id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk visits every node in pre-order (node, left subtree, right subtree),
// passing each node's depth below the root.
func (t *Tree) Walk(fn func(n Node, depth int)) {
	if t == nil {
		return
	}

	type stackItem struct {
		id    NodeID
		depth int
	}

	stack := []stackItem{{t.root, 0}}
	for len(stack) != 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.Node(item.id)
		fn(n, item.depth)
		if n.Kind == Internal {
			stack = append(stack, stackItem{n.Right, item.depth + 1}, stackItem{n.Left, item.depth + 1})
		}
	}
}

// Frequencies returns the table this tree was built from.
func (t *Tree) Frequencies() *FrequencyTable {
	if t == nil {
		return new(FrequencyTable)
	}
	return t.freqs
}

// Codes returns the code assigned to each leaf.
func (t *Tree) Codes() *CodeTable {
	if t == nil {
		return new(CodeTable)
	}
	return t.codes
}

// child descends one edge from id: left for a 0 bit, right for a 1 bit.  A
// single-leaf tree treats its root as its own left child, since its only
// code is "0".
func (t *Tree) child(id NodeID, bit bool) (NodeID, bool) {
	n := &t.nodes[id]
	if n.kind == Leaf {
		if id == t.root && !bit {
			return id, true
		}
		return InvalidNode, false
	}
	if bit {
		return n.right, true
	}
	return n.left, true
}

// Validate checks the structural invariants of the tree: every node is
// reached exactly once from the root, internal nodes have exactly two
// children whose parent link points back, frequencies add up, and each
// symbol appears in at most one leaf.  It returns an error wrapping
// ErrCorruptTree on the first violation.
func (t *Tree) Validate() error {
	if t == nil {
		return nil
	}
	numNodes := NodeID(len(t.nodes))
	inRange := func(id NodeID) bool {
		return id >= 0 && id < numNodes
	}

	if !inRange(t.root) {
		return errors.Wrapf(ErrCorruptTree, "root %d out of range [0, %d)", t.root, numNodes)
	}
	if p := t.nodes[t.root].parent; p != InvalidNode {
		return errors.Wrapf(ErrCorruptTree, "root %d has parent %d", t.root, p)
	}

	seen := make([]bool, numNodes)
	var seenSymbol [NumSymbols]bool
	stack := []NodeID{t.root}
	for len(stack) != 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return errors.Wrapf(ErrCorruptTree, "node %d is reachable more than once", id)
		}
		seen[id] = true

		n := t.nodes[id]
		switch n.kind {
		case Leaf:
			if n.left != InvalidNode || n.right != InvalidNode {
				return errors.Wrapf(ErrCorruptTree, "leaf %d has children", id)
			}
			if seenSymbol[n.symbol] {
				return errors.Wrapf(ErrCorruptTree, "symbol %s appears in more than one leaf", SymbolLabel(n.symbol))
			}
			seenSymbol[n.symbol] = true
			if t.leaves[n.symbol] != id {
				return errors.Wrapf(ErrCorruptTree, "leaf index for %s is %d, expected %d", SymbolLabel(n.symbol), t.leaves[n.symbol], id)
			}

		case Internal:
			if !inRange(n.left) || !inRange(n.right) {
				return errors.Wrapf(ErrCorruptTree, "internal node %d is missing a child", id)
			}
			if n.left == n.right {
				return errors.Wrapf(ErrCorruptTree, "internal node %d has the same node %d on both sides", id, n.left)
			}
			for _, c := range [2]NodeID{n.left, n.right} {
				if p := t.nodes[c].parent; p != id {
					return errors.Wrapf(ErrCorruptTree, "node %d has parent %d, expected %d", c, p, id)
				}
			}
			if sum := saturatingAdd(t.nodes[n.left].freq, t.nodes[n.right].freq); sum != n.freq {
				return errors.Wrapf(ErrCorruptTree, "internal node %d has frequency %d, children sum to %d", id, n.freq, sum)
			}
			stack = append(stack, n.left, n.right)

		default:
			return errors.Wrapf(ErrCorruptTree, "node %d has invalid kind %d", id, n.kind)
		}
	}

	for id, ok := range seen {
		if !ok {
			return errors.Wrapf(ErrCorruptTree, "node %d is unreachable from the root", id)
		}
	}
	return nil
}

// Dump writes a programmer-readable debugging dump of the tree's nodes to the
// given writer.
func (t *Tree) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Tree{\n")
	fmt.Fprintf(&buf, "\tRoot() = %d\n", t.Root())
	fmt.Fprintf(&buf, "\tTotal() = %d\n", t.Total())
	for id := NodeID(0); id < NodeID(t.Len()); id++ {
		n := t.Node(id)
		switch n.Kind {
		case Leaf:
			fmt.Fprintf(&buf, "\tNode(%d) = leaf %s freq=%d parent=%d\n", id, SymbolLabel(n.Symbol), n.Freq, n.Parent)
		case Internal:
			fmt.Fprintf(&buf, "\tNode(%d) = internal freq=%d left=%d right=%d parent=%d\n", id, n.Freq, n.Left, n.Right, n.Parent)
		}
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// String returns a short description of the tree.
func (t *Tree) String() string {
	if t == nil {
		return "(empty Huffman tree)"
	}
	return fmt.Sprintf("(Huffman tree with %d symbols, %d nodes, encoding %d bytes)", t.freqs.Len(), len(t.nodes), t.Total())
}

type jsonNode struct {
	Freq   uint64    `json:"freq"`
	Symbol *byte     `json:"symbol,omitempty"`
	Code   *Code     `json:"code,omitempty"`
	Left   *jsonNode `json:"left,omitempty"`
	Right  *jsonNode `json:"right,omitempty"`
}

// MarshalJSON renders the tree as nested objects, the form a drawing layer
// wants.  Leaves carry their symbol and code.  An empty tree is null.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}

	var build func(id NodeID) *jsonNode
	build = func(id NodeID) *jsonNode {
		n := t.nodes[id]
		out := &jsonNode{Freq: n.freq}
		if n.kind == Leaf {
			symbol := n.symbol
			code, _ := t.codes.Lookup(symbol)
			out.Symbol = &symbol
			out.Code = &code
			return out
		}
		out.Left = build(n.left)
		out.Right = build(n.right)
		return out
	}
	return json.Marshal(build(t.root))
}

var (
	_ fmt.Stringer   = (*Tree)(nil)
	_ json.Marshaler = (*Tree)(nil)
)

// type nodeHeap {{{

type nodeHeap struct {
	tree *Tree
	list []NodeID
}

func (h *nodeHeap) Init() {
	heap.Init(h)
}

func (h *nodeHeap) Len() int {
	return len(h.list)
}

func (h *nodeHeap) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.list[i], h.list[j]
	af, bf := h.tree.nodes[a].freq, h.tree.nodes[b].freq
	if af != bf {
		return af < bf
	}
	return a < b
}

func (h *nodeHeap) Push(x interface{}) {
	h.list = append(h.list, x.(NodeID))
}

func (h *nodeHeap) Pop() interface{} {
	last := uint(len(h.list)) - 1
	x := h.list[last]
	h.list = h.list[:last]
	return x
}

var _ heap.Interface = (*nodeHeap)(nil)

// }}}
