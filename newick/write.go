package newick

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TuftsBCB/treeio/tree"
)

// Style selects how leaf labels of a CompactTree are written.
type Style int

const (
	// The label text from the LabelMap, escaped.
	StyleLabel Style = iota

	// The label index as stored.
	StyleZeroIndexed

	// The label index plus one, as used in NEXUS TRANSLATE tables.
	StyleOneIndexed
)

func (s Style) String() string {
	switch s {
	case StyleLabel:
		return "label"
	case StyleZeroIndexed:
		return "zero"
	case StyleOneIndexed:
		return "one"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle is the inverse of Style.String.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "label":
		return StyleLabel, nil
	case "zero":
		return StyleZeroIndexed, nil
	case "one":
		return StyleOneIndexed, nil
	}
	return 0, fmt.Errorf("Unknown label style '%s' (want label, zero or one).", s)
}

// Format returns t in Newick format, terminated by ';'. The label function
// renders each leaf label and must return text that is already escaped. The
// root's branch length is never written.
//
// No validation is done: t must satisfy tree.GenTree.IsValid.
func Format[L tree.Label](t *tree.GenTree[L], label func(L) string) string {
	var b strings.Builder
	b.Grow(16 * t.Len())
	writeVertex(&b, t, t.RootIndex(), label, false)
	b.WriteByte(';')
	return b.String()
}

// FormatAnnotated is Format with each vertex's annotations written as a
// [&key=value,...] block.
func FormatAnnotated[L tree.Label](t *tree.GenTree[L], label func(L) string) string {
	var b strings.Builder
	b.Grow(32 * t.Len())
	writeVertex(&b, t, t.RootIndex(), label, true)
	b.WriteByte(';')
	return b.String()
}

// FormatSimple returns t in Newick format with escaped labels.
func FormatSimple(t *tree.SimpleTree) string {
	return Format(t, EscapeLabel)
}

// FormatCompact returns t in Newick format with leaf labels written in the
// given style. labels may be nil unless style is StyleLabel.
func FormatCompact(t *tree.CompactTree, labels *tree.LabelMap, style Style) (string, error) {
	render, err := compactLabeler(labels, style)
	if err != nil {
		return "", err
	}
	var missing error
	out := Format(t, func(i int) string {
		s, err := render(i)
		if err != nil && missing == nil {
			missing = err
		}
		return s
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

func compactLabeler(labels *tree.LabelMap, style Style) (func(int) (string, error), error) {
	switch style {
	case StyleLabel:
		if labels == nil {
			return nil, fmt.Errorf("A label map is required to write labels.")
		}
		escaped := make([]string, labels.NumLabels())
		for i, l := range labels.Labels() {
			escaped[i] = EscapeLabel(l)
		}
		return func(i int) (string, error) {
			if i < 0 || i >= len(escaped) {
				return "", fmt.Errorf("Label index %d is not in the label map.", i)
			}
			return escaped[i], nil
		}, nil
	case StyleZeroIndexed:
		return func(i int) (string, error) { return strconv.Itoa(i), nil }, nil
	case StyleOneIndexed:
		return func(i int) (string, error) { return strconv.Itoa(i + 1), nil }, nil
	}
	return nil, fmt.Errorf("Unknown label style %d.", int(style))
}

func writeVertex[L tree.Label](
	b *strings.Builder, t *tree.GenTree[L], v int, label func(L) string, annotated bool,
) {
	vert := t.Vertex(v)
	if l, ok := vert.Label(); ok {
		b.WriteString(label(l))
	} else {
		cs, _ := vert.Children()
		b.WriteByte('(')
		writeVertex(b, t, cs[0], label, annotated)
		b.WriteByte(',')
		writeVertex(b, t, cs[1], label, annotated)
		b.WriteByte(')')
	}
	if annotated {
		writeAnnotations(b, t.Annotations(), v)
	}
	if length, ok := vert.BranchLength().Value(); ok && !vert.IsRoot() {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(length, 'f', -1, 64))
	}
}

func writeAnnotations(b *strings.Builder, as *tree.Annotations, v int) {
	if as == nil {
		return
	}
	first := true
	for _, key := range as.Keys() {
		value, ok := as.Get(key, v)
		if !ok {
			continue
		}
		if first {
			b.WriteString("[&")
			first = false
		} else {
			b.WriteByte(',')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value.String())
	}
	if !first {
		b.WriteByte(']')
	}
}

// Writer writes CompactTrees in Newick format, one per line.
type Writer struct {
	// How leaf labels are written. Defaults to StyleLabel.
	Style Style

	// The label map leaves refer to. Required for StyleLabel.
	Labels *tree.LabelMap

	// When set, vertex annotations are written as [&key=value] blocks.
	Annotations bool

	buf     *bufio.Writer
	labeler func(int) (string, error)
}

// NewWriter returns a writer to w. Remember to call Flush.
func NewWriter(w io.Writer, labels *tree.LabelMap) *Writer {
	return &Writer{
		Style:  StyleLabel,
		Labels: labels,
		buf:    bufio.NewWriter(w),
	}
}

// Write writes a single tree followed by a newline.
func (w *Writer) Write(t *tree.CompactTree) error {
	if w.labeler == nil {
		labeler, err := compactLabeler(w.Labels, w.Style)
		if err != nil {
			return err
		}
		w.labeler = labeler
	}
	var missing error
	render := func(i int) string {
		s, err := w.labeler(i)
		if err != nil && missing == nil {
			missing = err
		}
		return s
	}
	var s string
	if w.Annotations {
		s = FormatAnnotated(t, render)
	} else {
		s = Format(t, render)
	}
	if missing != nil {
		return missing
	}
	if _, err := w.buf.WriteString(s); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}

// WriteAll writes every tree and flushes.
func (w *Writer) WriteAll(trees []*tree.CompactTree) error {
	for _, t := range trees {
		if err := w.Write(t); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (w *Writer) Flush() error {
	return w.buf.Flush()
}
