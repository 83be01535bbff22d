package bytehuff

// NumSymbols is the size of the alphabet: one symbol per byte value.
const NumSymbols = 256

// MaxCodeSize is the longest code a tree over NumSymbols leaves can assign.
const MaxCodeSize = NumSymbols - 1

// NodeID identifies a node within a Tree.  IDs are dense: leaves come first,
// in ascending byte order, followed by internal nodes in merge order.
type NodeID int32

// InvalidNode is returned by some functions to clearly indicate that no node
// is being returned, e.g. the parent of the root.
const InvalidNode = NodeID(-1)

// NodeKind distinguishes leaves from internal nodes.
type NodeKind byte

const (
	// Leaf nodes carry one byte value and have no children.
	Leaf NodeKind = iota

	// Internal nodes carry no byte value and have exactly two children.
	Internal
)

// String returns "leaf" or "internal".
func (k NodeKind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Internal:
		return "internal"
	default:
		return "invalid"
	}
}
