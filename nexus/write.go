package nexus

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/TuftsBCB/treeio/newick"
	"github.com/TuftsBCB/treeio/tree"
)

// A Writer writes CompactTrees and their shared taxon map as a NEXUS file
// with a TAXA block and a TREES block. Leaves are written as 1-based keys of
// a TRANSLATE table.
//
// Trees are not validated.
type Writer struct {
	// When set, vertex annotations are written as [&key=value] blocks.
	Annotations bool

	labels *tree.LabelMap
	buf    *bufio.Writer
}

// NewWriter creates a NEXUS writer for trees whose leaves index labels.
func NewWriter(w io.Writer, labels *tree.LabelMap) *Writer {
	return &Writer{
		labels: labels,
		buf:    bufio.NewWriter(w),
	}
}

// WriteAll writes a complete NEXUS file holding trees, and calls Flush.
// Unnamed trees are written as tree_<i>, counting from zero.
func (w *Writer) WriteAll(trees []*tree.CompactTree) error {
	var err error
	pf := func(format string, v ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w.buf, format, v...)
		}
	}

	labels := w.labels.Labels()
	pf("%s\n", header)
	pf("%s taxa;\n", blockBegin)
	pf("\t%s %s=%d;\n", dimensions, ntax, len(labels))
	pf("\t%s", taxlabels)
	for _, l := range labels {
		pf(" %s", newick.EscapeLabel(l))
	}
	pf(";\n%s\n", blockEnd)

	pf("%s trees;\n", blockBegin)
	pf("\t%s\n", translate)
	for i, l := range labels {
		sep := ","
		if i == len(labels)-1 {
			sep = ";"
		}
		pf("\t\t%d %s%s\n", i+1, newick.EscapeLabel(l), sep)
	}
	for i, t := range trees {
		name, ok := t.Name()
		if !ok {
			name = fmt.Sprintf("tree_%d", i)
		}
		pf("\t%s %s = %s\n", treeCmd, newick.EscapeLabel(name), w.format(t))
	}
	pf("%s\n", blockEnd)
	if err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *Writer) format(t *tree.CompactTree) string {
	if w.Annotations {
		return newick.FormatAnnotated(t, oneIndexed)
	}
	return newick.Format(t, oneIndexed)
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// WriteFile writes trees and labels as a NEXUS file at path.
func WriteFile(path string, trees []*tree.CompactTree, labels *tree.LabelMap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := NewWriter(f, labels).WriteAll(trees); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func oneIndexed(i int) string {
	return fmt.Sprint(i + 1)
}
