package tree

import "fmt"

// NoParent is the parent index of a root, and of any vertex whose parent
// has not been added yet.
const NoParent = -1

// Kind distinguishes the three vertex variants.
type Kind uint8

const (
	RootVertex Kind = iota
	InternalVertex
	LeafVertex
)

func (k Kind) String() string {
	switch k {
	case RootVertex:
		return "root"
	case InternalVertex:
		return "internal"
	case LeafVertex:
		return "leaf"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Label is the set of leaf label representations supported by GenTree.
type Label interface {
	int | string
}

// Vertex is a single entry of a tree arena. Roots and internal vertices
// have exactly two children; leaves have a label. Every vertex except the
// root has a parent.
type Vertex[L Label] struct {
	kind     Kind
	index    int
	parent   int
	children [2]int
	label    L
	length   BranchLength
}

// NewRoot returns a root vertex.
func NewRoot[L Label](index int, children [2]int, length BranchLength) Vertex[L] {
	return Vertex[L]{
		kind:     RootVertex,
		index:    index,
		parent:   NoParent,
		children: children,
		length:   length,
	}
}

// NewInternal returns an internal vertex.
func NewInternal[L Label](index, parent int, children [2]int, length BranchLength) Vertex[L] {
	return Vertex[L]{
		kind:     InternalVertex,
		index:    index,
		parent:   parent,
		children: children,
		length:   length,
	}
}

// NewLeaf returns a leaf vertex.
func NewLeaf[L Label](index, parent int, label L, length BranchLength) Vertex[L] {
	return Vertex[L]{
		kind:     LeafVertex,
		index:    index,
		parent:   parent,
		children: [2]int{NoParent, NoParent},
		label:    label,
		length:   length,
	}
}

func (v *Vertex[L]) Index() int {
	return v.index
}

func (v *Vertex[L]) Kind() Kind {
	return v.kind
}

func (v *Vertex[L]) IsRoot() bool {
	return v.kind == RootVertex
}

func (v *Vertex[L]) IsInternal() bool {
	return v.kind == InternalVertex
}

func (v *Vertex[L]) IsLeaf() bool {
	return v.kind == LeafVertex
}

// Parent returns the parent index. ok is false for the root and for a
// vertex whose parent has not been added yet.
func (v *Vertex[L]) Parent() (parent int, ok bool) {
	if v.kind == RootVertex || v.parent == NoParent {
		return NoParent, false
	}
	return v.parent, true
}

// Children returns the two child indices. ok is false for leaves.
func (v *Vertex[L]) Children() (children [2]int, ok bool) {
	if v.kind == LeafVertex {
		return [2]int{NoParent, NoParent}, false
	}
	return v.children, true
}

// Label returns the leaf label. ok is false for non-leaves.
func (v *Vertex[L]) Label() (label L, ok bool) {
	if v.kind != LeafVertex {
		return label, false
	}
	return v.label, true
}

func (v *Vertex[L]) BranchLength() BranchLength {
	return v.length
}

func (v *Vertex[L]) setParent(parent int) {
	if v.kind == RootVertex {
		panic(fmt.Sprintf("tree: cannot set parent of root vertex %d", v.index))
	}
	v.parent = parent
}

func (v *Vertex[L]) String() string {
	switch v.kind {
	case LeafVertex:
		return fmt.Sprintf("Leaf{index: %d, parent: %d, label: %v, length: %s}",
			v.index, v.parent, v.label, v.length)
	case InternalVertex:
		return fmt.Sprintf("Internal{index: %d, parent: %d, children: %v, length: %s}",
			v.index, v.parent, v.children, v.length)
	}
	return fmt.Sprintf("Root{index: %d, children: %v, length: %s}",
		v.index, v.children, v.length)
}
