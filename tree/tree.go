package tree

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// UltrametricEpsilon is the tolerance used by IsUltrametric when comparing
// root-to-leaf path lengths.
const UltrametricEpsilon = 1e-7

// GenTree is a rooted binary tree stored as an arena of vertices. Vertices
// are appended bottom up and never removed; a tree with n leaves holds
// exactly 2n-1 vertices once its root has been added.
type GenTree[L Label] struct {
	vertices    []Vertex[L]
	root        int
	name        string
	named       bool
	leaves      int
	annotations *Annotations
}

// CompactTree is a tree whose leaves hold indices into a shared LabelMap.
type CompactTree = GenTree[int]

// SimpleTree is a tree whose leaves hold their label strings.
type SimpleTree = GenTree[string]

// NewGenTree returns an empty tree with room for numLeaves leaves. It panics
// if numLeaves is not positive.
func NewGenTree[L Label](numLeaves int) *GenTree[L] {
	if numLeaves <= 0 {
		panic(fmt.Sprintf("tree: number of leaves must be positive, got %d", numLeaves))
	}
	return &GenTree[L]{
		vertices: make([]Vertex[L], 0, 2*numLeaves-1),
		root:     NoParent,
	}
}

func NewCompactTree(numLeaves int) *CompactTree {
	return NewGenTree[int](numLeaves)
}

func NewSimpleTree(numLeaves int) *SimpleTree {
	return NewGenTree[string](numLeaves)
}

// AddLeaf appends a leaf whose parent is not yet known and returns its
// index.
func (t *GenTree[L]) AddLeaf(length BranchLength, label L) int {
	i := len(t.vertices)
	t.vertices = append(t.vertices, NewLeaf(i, NoParent, label, length))
	t.leaves++
	return i
}

// AddInternal appends an internal vertex over two existing vertices and
// sets their parent to the new vertex.
func (t *GenTree[L]) AddInternal(children [2]int, length BranchLength) int {
	i := len(t.vertices)
	t.vertices = append(t.vertices, NewInternal[L](i, NoParent, children, length))
	t.adopt(i, children)
	return i
}

// AddRoot appends the root over two existing vertices.
func (t *GenTree[L]) AddRoot(children [2]int, length BranchLength) int {
	i := len(t.vertices)
	t.vertices = append(t.vertices, NewRoot[L](i, children, length))
	t.adopt(i, children)
	t.root = i
	return i
}

func (t *GenTree[L]) adopt(parent int, children [2]int) {
	t.vertices[children[0]].setParent(parent)
	t.vertices[children[1]].setParent(parent)
}

// Name returns the tree name, if one was set.
func (t *GenTree[L]) Name() (string, bool) {
	return t.name, t.named
}

func (t *GenTree[L]) SetName(name string) {
	t.name, t.named = name, true
}

// Len returns the number of vertices.
func (t *GenTree[L]) Len() int {
	return len(t.vertices)
}

// NumLeaves returns the number of leaves added so far.
func (t *GenTree[L]) NumLeaves() int {
	return t.leaves
}

// NumInternal returns the number of non-leaf vertices, including the root.
func (t *GenTree[L]) NumInternal() int {
	return len(t.vertices) - t.leaves
}

// RootIndex returns the index of the root, or NoParent if no root has been
// added.
func (t *GenTree[L]) RootIndex() int {
	return t.root
}

// Root returns the root vertex. It panics if no root has been added.
func (t *GenTree[L]) Root() *Vertex[L] {
	if t.root == NoParent {
		panic("tree: root has not been added")
	}
	return &t.vertices[t.root]
}

// Vertex returns the vertex at index i. It panics if i is out of range.
func (t *GenTree[L]) Vertex(i int) *Vertex[L] {
	return &t.vertices[i]
}

// Leaves returns the indices of all leaves in arena order.
func (t *GenTree[L]) Leaves() []int {
	leaves := make([]int, 0, t.leaves)
	for i := range t.vertices {
		if t.vertices[i].kind == LeafVertex {
			leaves = append(leaves, i)
		}
	}
	return leaves
}

// Annotations returns the per-vertex annotations, or nil if none were
// recorded.
func (t *GenTree[L]) Annotations() *Annotations {
	return t.annotations
}

// Annotate records an annotation value for vertex v.
func (t *GenTree[L]) Annotate(key string, v int, value AnnotationValue) {
	if t.annotations == nil {
		t.annotations = NewAnnotations(cap(t.vertices))
	}
	t.annotations.Set(key, v, value)
}

// IsValid checks the structural invariants of the arena: a single root,
// indices matching positions, consistent parent/child references, leaf
// labels in range and the binary tree identity leaves = ceil(vertices/2).
// Integer labels must index one of the tree's own leaves. It never modifies
// the tree.
func (t *GenTree[L]) IsValid() bool {
	return t.IsValidFor(t.leaves)
}

// IsValidFor is IsValid with integer labels checked against a label
// universe of numLabels entries, such as a LabelMap shared by many trees.
func (t *GenTree[L]) IsValidFor(numLabels int) bool {
	n := len(t.vertices)
	if t.root < 0 || t.root >= n || t.vertices[t.root].kind != RootVertex {
		return false
	}

	leaves := 0
	for i := range t.vertices {
		v := &t.vertices[i]
		if v.index != i {
			return false
		}
		switch v.kind {
		case RootVertex:
			if i != t.root || !t.validChildren(v) {
				return false
			}
		case InternalVertex:
			if !t.validParent(v) || !t.validChildren(v) {
				return false
			}
		case LeafVertex:
			if !t.validParent(v) || !validLabel(v.label, numLabels) {
				return false
			}
			leaves++
		default:
			return false
		}
	}
	return leaves == (n+1)/2
}

func (t *GenTree[L]) validChildren(v *Vertex[L]) bool {
	for _, c := range v.children {
		if c < 0 || c >= len(t.vertices) || t.vertices[c].parent != v.index {
			return false
		}
	}
	return v.children[0] != v.children[1]
}

func (t *GenTree[L]) validParent(v *Vertex[L]) bool {
	p := v.parent
	if p < 0 || p >= len(t.vertices) || t.vertices[p].kind == LeafVertex {
		return false
	}
	cs := t.vertices[p].children
	return cs[0] == v.index || cs[1] == v.index
}

// validLabel checks integer labels against the label universe. String
// labels must be non-empty.
func validLabel[L Label](label L, numLabels int) bool {
	switch l := any(label).(type) {
	case int:
		return l >= 0 && l < numLabels
	case string:
		return l != ""
	}
	return false
}

// HeightOf returns the distance from v down to a leaf, following the first
// child at every step. The result is only meaningful for ultrametric trees;
// callers should check IsUltrametric first. Absent lengths count as zero.
func (t *GenTree[L]) HeightOf(v int) float64 {
	h := 0.0
	for cur := &t.vertices[v]; cur.kind != LeafVertex; {
		cur = &t.vertices[cur.children[0]]
		h += cur.length.Float()
	}
	return h
}

// Height returns HeightOf the root. The same precondition applies.
func (t *GenTree[L]) Height() float64 {
	return t.HeightOf(t.Root().index)
}

// HasBranchLengths reports whether every non-root vertex has a branch
// length.
func (t *GenTree[L]) HasBranchLengths() bool {
	for i := range t.vertices {
		if t.vertices[i].kind != RootVertex && !t.vertices[i].length.ok {
			return false
		}
	}
	return true
}

// IsUltrametric reports whether all root-to-leaf path lengths agree to
// within UltrametricEpsilon. Trees with a missing non-root branch length
// are never ultrametric.
func (t *GenTree[L]) IsUltrametric() bool {
	if t.root == NoParent || !t.HasBranchLengths() {
		return false
	}
	heights := make([]float64, len(t.vertices))
	it := t.PostOrder()
	for i, ok := it.Next(); ok; i, ok = it.Next() {
		v := &t.vertices[i]
		if v.kind == LeafVertex {
			continue
		}
		l, r := v.children[0], v.children[1]
		hl := heights[l] + t.vertices[l].length.v
		hr := heights[r] + t.vertices[r].length.v
		if math.Abs(hl-hr) > UltrametricEpsilon {
			return false
		}
		heights[i] = hl
	}
	return true
}

// TotalBranchLength sums all branch lengths. The root's own branch length
// is only counted if includeRoot is true.
func (t *GenTree[L]) TotalBranchLength(includeRoot bool) float64 {
	sum := 0.0
	for i := range t.vertices {
		if t.vertices[i].kind == RootVertex && !includeRoot {
			continue
		}
		sum += t.vertices[i].length.Float()
	}
	return sum
}

// String converts a tree to a string, with whitespace indenting to indicate
// depth.
func (t *GenTree[L]) String() string {
	buf := new(bytes.Buffer)
	pf := func(format string, v ...interface{}) {
		fmt.Fprintf(buf, format, v...)
	}
	if name, ok := t.Name(); ok {
		pf("tree %s\n", name)
	}
	if t.root == NoParent {
		return buf.String()
	}

	type entry struct{ v, depth int }
	stack := []entry{{t.root, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v := &t.vertices[e.v]
		name, length := "N/A", ""
		if label, ok := v.Label(); ok {
			name = fmt.Sprint(label)
		}
		if l, ok := v.length.Value(); ok {
			length = fmt.Sprintf(" (%f)", l)
		}
		pf("%s%s%s\n", strings.Repeat("  ", e.depth), name, length)
		if cs, ok := v.Children(); ok {
			stack = append(stack, entry{cs[1], e.depth + 1}, entry{cs[0], e.depth + 1})
		}
	}
	return buf.String()
}
