package newick

import (
	"io"

	"github.com/TuftsBCB/treeio/scan"
	"github.com/TuftsBCB/treeio/tree"
)

// Reader corresponds to the state necessary to read trees from Newick
// formatted input. Trees are returned as SimpleTrees, so each one owns its
// label strings.
type Reader struct {
	it *Iterator[string, *tree.SimpleTree]
}

// NewReader returns a reader ready for reading trees from `r`. Input is
// streamed: only a window of it is held in memory.
func NewReader(r io.Reader, opts ...Option) *Reader {
	s := scan.NewParser(scan.NewBufferedSource(r, scan.DefaultBufferSize))
	return &Reader{NewSimpleParser(opts...).Iter(s)}
}

// ReadAll returns all of the Newick trees in the source input. The first
// error that occurs is returned with no trees. The error is never `io.EOF`.
func (r *Reader) ReadAll() ([]*tree.SimpleTree, error) {
	trees := make([]*tree.SimpleTree, 0)
	for {
		t, err := r.ReadTree()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}

// ReadTree reads a single tree from the source input. If the end of the
// input is reached, then a nil tree is returned with `io.EOF` as the error.
func (r *Reader) ReadTree() (*tree.SimpleTree, error) {
	return r.it.Next()
}

// ParseString parses the single tree in s.
func ParseString(s string, opts ...Option) (*tree.SimpleTree, error) {
	return NewSimpleParser(opts...).Parse(scan.NewParserString(s))
}

// ParseCompact parses every tree in data into CompactTrees that share the
// returned label map.
func ParseCompact(data []byte, opts ...Option) ([]*tree.CompactTree, *tree.LabelMap, error) {
	p := NewCompactParser(opts...)
	trees, err := p.ParseAll(scan.NewParserBytes(data))
	if err != nil {
		return nil, nil, err
	}
	return trees, p.Labels().(*tree.LabelMap), nil
}

// ReadFile reads every tree in the Newick file at path. The whole file is
// loaded into memory first.
func ReadFile(path string, opts ...Option) ([]*tree.CompactTree, *tree.LabelMap, error) {
	src, err := scan.ReadMemorySource(path)
	if err != nil {
		return nil, nil, err
	}
	p := NewCompactParser(opts...)
	trees, err := p.ParseAll(scan.NewParser(src))
	if err != nil {
		return nil, nil, err
	}
	return trees, p.Labels().(*tree.LabelMap), nil
}
