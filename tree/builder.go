package tree

// Builder assembles trees of type T whose leaves hold label references of
// type L. Readers drive a Builder without knowing anything about T.
//
// NewStorage is called once before any tree is read. For every tree, InitNext
// is called first, then vertices are added bottom up, and FinishTree returns
// the tree and resets the builder. FinishTree reports false if no tree was
// started.
type Builder[L any, T any] interface {
	NewStorage(capacity int) LabelStorage[L]
	InitNext(numLeaves int)
	AddLeaf(length BranchLength, label L) int
	AddInternal(children [2]int, length BranchLength) int
	AddRoot(children [2]int, length BranchLength) int
	SetName(name string)
	AddAnnotation(key string, v int, value AnnotationValue)
	FinishTree() (T, bool)
}

// arena implements the tree assembling part of Builder for GenTree.
type arena[L Label] struct {
	cur *GenTree[L]
}

// InitNext starts a new tree. A non-positive leaf count is treated as a
// single leaf; the arena grows as needed.
func (b *arena[L]) InitNext(numLeaves int) {
	if numLeaves < 1 {
		numLeaves = 1
	}
	b.cur = NewGenTree[L](numLeaves)
}

func (b *arena[L]) AddLeaf(length BranchLength, label L) int {
	return b.tree().AddLeaf(length, label)
}

func (b *arena[L]) AddInternal(children [2]int, length BranchLength) int {
	return b.tree().AddInternal(children, length)
}

func (b *arena[L]) AddRoot(children [2]int, length BranchLength) int {
	return b.tree().AddRoot(children, length)
}

func (b *arena[L]) SetName(name string) {
	b.tree().SetName(name)
}

func (b *arena[L]) AddAnnotation(key string, v int, value AnnotationValue) {
	b.tree().Annotate(key, v, value)
}

func (b *arena[L]) FinishTree() (*GenTree[L], bool) {
	t := b.cur
	b.cur = nil
	return t, t != nil
}

func (b *arena[L]) tree() *GenTree[L] {
	if b.cur == nil {
		panic("tree: builder used before InitNext")
	}
	return b.cur
}

// CompactBuilder builds CompactTrees whose leaves index a LabelMap shared by
// all trees from the same source.
type CompactBuilder struct {
	arena[int]
}

func NewCompactBuilder() *CompactBuilder {
	return &CompactBuilder{}
}

func (b *CompactBuilder) NewStorage(capacity int) LabelStorage[int] {
	return NewLabelMap(capacity)
}

// SimpleBuilder builds SimpleTrees whose leaves hold their own labels.
type SimpleBuilder struct {
	arena[string]
}

func NewSimpleBuilder() *SimpleBuilder {
	return &SimpleBuilder{}
}

func (b *SimpleBuilder) NewStorage(capacity int) LabelStorage[string] {
	return NewSimpleLabels(capacity)
}

var (
	_ Builder[int, *CompactTree]   = (*CompactBuilder)(nil)
	_ Builder[string, *SimpleTree] = (*SimpleBuilder)(nil)
)
