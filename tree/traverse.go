package tree

// Order selects a traversal order.
type Order int

const (
	OrderPost Order = iota
	OrderPre
)

// Iter walks the vertex indices of a tree without recursion. Each call to
// GenTree.PostOrder or GenTree.PreOrder returns a fresh iterator starting at
// the root.
type Iter[L Label] struct {
	t     *GenTree[L]
	order Order
	stack []frame
}

type frame struct {
	v        int
	expanded bool
}

// PostOrder returns an iterator that yields every vertex after both of its
// children.
func (t *GenTree[L]) PostOrder() *Iter[L] {
	return t.Walk(OrderPost)
}

// PreOrder returns an iterator that yields every vertex before its
// children, left child first.
func (t *GenTree[L]) PreOrder() *Iter[L] {
	return t.Walk(OrderPre)
}

// Walk returns an iterator in the given order.
func (t *GenTree[L]) Walk(order Order) *Iter[L] {
	it := &Iter[L]{t: t, order: order}
	if t.root != NoParent {
		it.stack = make([]frame, 1, 32)
		it.stack[0] = frame{v: t.root}
	}
	return it
}

// Next returns the next vertex index. ok is false once every vertex has been
// visited.
func (it *Iter[L]) Next() (v int, ok bool) {
	for len(it.stack) > 0 {
		f := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		vert := &it.t.vertices[f.v]

		if vert.kind == LeafVertex {
			return f.v, true
		}
		cs := vert.children
		if it.order == OrderPre {
			it.stack = append(it.stack, frame{v: cs[1]}, frame{v: cs[0]})
			return f.v, true
		}
		if f.expanded {
			return f.v, true
		}
		it.stack = append(it.stack,
			frame{v: f.v, expanded: true}, frame{v: cs[1]}, frame{v: cs[0]})
	}
	return NoParent, false
}

// Collect drains the iterator into a slice.
func (it *Iter[L]) Collect() []int {
	out := make([]int, 0, len(it.t.vertices))
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		out = append(out, v)
	}
	return out
}
