package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taxa() *LabelMap {
	return NewLabelMapFrom([]string{"Apteryx", "Bubo", "Corvus", "Dromaius"})
}

func TestLabelMap(t *testing.T) {
	m := NewLabelMap(2)
	assert.Equal(t, 0, m.StoreAndRef("x"))
	assert.Equal(t, 1, m.StoreAndRef("y"))
	assert.Equal(t, 0, m.StoreAndRef("x"))
	assert.Equal(t, 2, m.NumLabels())

	i, ok := m.CheckAndRef("y")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = m.CheckAndRef("z")
	assert.False(t, ok)
	assert.Equal(t, 2, m.NumLabels(), "CheckAndRef must not store")

	l, ok := m.Label(1)
	assert.True(t, ok)
	assert.Equal(t, "y", l)
	_, ok = m.Label(2)
	assert.False(t, ok)
	assert.Equal(t, 1, m.IndexToRef(1))
	assert.True(t, m.Contains("x"))

	if diff := cmp.Diff([]string{"x", "y"}, m.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "{0: x, 1: y}", m.String())
}

func TestSortedLabels(t *testing.T) {
	m := NewLabelMapFrom([]string{"c", "a", "b", "a"})
	assert.Equal(t, 3, m.NumLabels())
	assert.Equal(t, []string{"a", "b", "c"}, m.SortedLabels())
	assert.Equal(t, []string{"c", "a", "b"}, m.Labels())
}

func TestSimpleLabels(t *testing.T) {
	s := NewSimpleLabels(0)
	assert.Equal(t, "Pukeko", s.StoreAndRef("Pukeko"))
	assert.Equal(t, "Pukeko", s.StoreAndRef("Pukeko"))
	assert.Equal(t, 1, s.NumLabels())
	_, ok := s.CheckAndRef("Takahe")
	assert.False(t, ok)
	assert.Equal(t, "Pukeko", s.IndexToRef(0))
}

func TestConsistent(t *testing.T) {
	m := taxa()
	good := map[string]string{"1": "Apteryx", "2": "Bubo", "3": "Corvus", "4": "Dromaius"}
	assert.True(t, m.ConsistentWith(good))

	short := map[string]string{"1": "Apteryx", "2": "Bubo"}
	assert.False(t, m.ConsistentWith(short))

	unknown := map[string]string{"1": "Apteryx", "2": "Bubo", "3": "Corvus", "4": "Emu"}
	assert.False(t, Consistent[int](m, unknown))
}

func TestVerbatimResolver(t *testing.T) {
	r := NewVerbatimResolver[int](NewLabelMap(0))
	assert.Equal(t, ResolveVerbatim, r.Kind())
	a, err := r.Resolve("A")
	require.NoError(t, err)
	b, _ := r.Resolve("B")
	again, _ := r.Resolve("A")
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, a, again)
	assert.Equal(t, 2, r.Storage().NumLabels())
}

func TestTableResolverPrecedence(t *testing.T) {
	m := taxa()
	// "2" is a key, so it must win over the integer path (which would give
	// Bubo). "Corvus" is a key, so it must win over the verbatim path.
	translation := map[string]string{
		"2":        "Dromaius",
		"Corvus":   "Apteryx",
		"b":        "Bubo",
		"lastword": "Corvus",
	}
	r, err := NewTableResolver[int](translation, m)
	require.NoError(t, err)
	assert.Equal(t, ResolveTable, r.Kind())

	tests := []struct {
		token string
		want  int
	}{
		{"2", 3},
		{"Corvus", 0},
		{"b", 1},
		{"1", 0},
		{"3", 2},
		{"Dromaius", 3},
		{"Bubo", 1},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}

	_, err = r.Resolve("5")
	assert.Error(t, err)
	_, err = r.Resolve("0")
	assert.Error(t, err)
	_, err = r.Resolve("Emu")
	assert.Error(t, err)
	assert.Equal(t, 4, m.NumLabels(), "table resolution must not store labels")
}

func TestTableResolverUnknownLabel(t *testing.T) {
	_, err := NewTableResolver[int](map[string]string{"a": "Emu"}, taxa())
	assert.Error(t, err)
}

func TestArrayResolver(t *testing.T) {
	translation := map[string]string{"1": "Dromaius", "2": "Corvus", "3": "Bubo", "4": "Apteryx"}
	require.True(t, AllIntegerKeys(translation))
	r, err := NewArrayResolver[int](translation, taxa())
	require.NoError(t, err)
	assert.Equal(t, ResolveArray, r.Kind())

	got, err := r.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	got, _ = r.Resolve("4")
	assert.Equal(t, 0, got)

	for _, bad := range []string{"0", "5", "Apteryx", "-1", "+1"} {
		_, err := r.Resolve(bad)
		assert.Error(t, err, bad)
	}
}

func TestArrayResolverConstruction(t *testing.T) {
	tests := []struct {
		name        string
		translation map[string]string
	}{
		{"out of range", map[string]string{"1": "Apteryx", "2": "Bubo", "3": "Corvus", "5": "Dromaius"}},
		{"zero", map[string]string{"0": "Apteryx", "1": "Bubo", "2": "Corvus", "3": "Dromaius"}},
		{"missing", map[string]string{"1": "Apteryx", "2": "Bubo", "3": "Corvus"}},
		{"not integer", map[string]string{"1": "Apteryx", "2": "Bubo", "3": "Corvus", "x": "Dromaius"}},
		{"unknown label", map[string]string{"1": "Apteryx", "2": "Bubo", "3": "Corvus", "4": "Emu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArrayResolver[int](tt.translation, taxa())
			assert.Error(t, err)
		})
	}
	assert.False(t, AllIntegerKeys(map[string]string{"1": "a", "b": "b"}))
}

func TestSimpleResolver(t *testing.T) {
	s := NewSimpleLabels(2)
	s.StoreAndRef("Kea")
	s.StoreAndRef("Kaka")
	r, err := NewTableResolver[string](map[string]string{"k1": "Kea", "k2": "Kaka"}, s)
	require.NoError(t, err)
	got, err := r.Resolve("k2")
	require.NoError(t, err)
	assert.Equal(t, "Kaka", got)
	got, _ = r.Resolve("1")
	assert.Equal(t, "Kea", got)
}

func TestBuilders(t *testing.T) {
	b := NewCompactBuilder()
	_, ok := b.FinishTree()
	assert.False(t, ok)
	assert.Panics(t, func() { b.AddLeaf(NoBranchLength, 0) })

	storage := b.NewStorage(3)
	b.InitNext(3)
	b.SetName("first")
	x := b.AddLeaf(NewBranchLength(1), storage.StoreAndRef("x"))
	y := b.AddLeaf(NewBranchLength(1), storage.StoreAndRef("y"))
	xy := b.AddInternal([2]int{x, y}, NewBranchLength(1))
	z := b.AddLeaf(NewBranchLength(2), storage.StoreAndRef("z"))
	root := b.AddRoot([2]int{xy, z}, NoBranchLength)
	b.AddAnnotation("posterior", root, FloatValue(0.9))

	tr, ok := b.FinishTree()
	require.True(t, ok)
	assert.True(t, tr.IsValid())
	name, _ := tr.Name()
	assert.Equal(t, "first", name)
	v, ok := tr.Annotations().Get("posterior", root)
	require.True(t, ok)
	assert.Equal(t, 0.9, v.Float)

	_, ok = b.FinishTree()
	assert.False(t, ok, "FinishTree resets the builder")

	sb := NewSimpleBuilder()
	ss := sb.NewStorage(2)
	sb.InitNext(0)
	l := sb.AddLeaf(NoBranchLength, ss.StoreAndRef("left"))
	r := sb.AddLeaf(NoBranchLength, ss.StoreAndRef("right"))
	sb.AddRoot([2]int{l, r}, NoBranchLength)
	st, ok := sb.FinishTree()
	require.True(t, ok)
	assert.True(t, st.IsValid())
	label, _ := st.Vertex(1).Label()
	assert.Equal(t, "right", label)
}
