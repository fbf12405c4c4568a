package tree

import (
	"fmt"
	"sort"
	"strings"
)

// LabelStorage stores taxon labels and hands out references of type R that
// leaves hold.
//
// StoreAndRef always succeeds and deduplicates. CheckAndRef never modifies
// the storage. IndexToRef maps the zero based position of a stored label to
// its reference.
type LabelStorage[R any] interface {
	StoreAndRef(label string) R
	CheckAndRef(label string) (R, bool)
	IndexToRef(i int) R
	NumLabels() int
}

// LabelMap interns label strings as small integer indices, in insertion
// order. One LabelMap is typically shared by every tree read from a file.
type LabelMap struct {
	index  map[string]int
	labels []string
}

// NewLabelMap returns an empty map with room for capacity labels.
func NewLabelMap(capacity int) *LabelMap {
	if capacity < 0 {
		capacity = 0
	}
	return &LabelMap{
		index:  make(map[string]int, capacity),
		labels: make([]string, 0, capacity),
	}
}

// NewLabelMapFrom returns a map holding labels in order. Duplicates are
// stored once.
func NewLabelMapFrom(labels []string) *LabelMap {
	m := NewLabelMap(len(labels))
	for _, l := range labels {
		m.StoreAndRef(l)
	}
	return m
}

func (m *LabelMap) StoreAndRef(label string) int {
	if i, ok := m.index[label]; ok {
		return i
	}
	i := len(m.labels)
	m.labels = append(m.labels, label)
	m.index[label] = i
	return i
}

func (m *LabelMap) CheckAndRef(label string) (int, bool) {
	i, ok := m.index[label]
	return i, ok
}

func (m *LabelMap) IndexToRef(i int) int {
	return i
}

func (m *LabelMap) NumLabels() int {
	return len(m.labels)
}

// Label returns the label stored at index i.
func (m *LabelMap) Label(i int) (string, bool) {
	if !m.IsValidIndex(i) {
		return "", false
	}
	return m.labels[i], true
}

// IsValidIndex reports whether i refers to a stored label.
func (m *LabelMap) IsValidIndex(i int) bool {
	return i >= 0 && i < len(m.labels)
}

// Contains reports whether label is stored.
func (m *LabelMap) Contains(label string) bool {
	_, ok := m.index[label]
	return ok
}

// Labels returns a copy of the labels in index order.
func (m *LabelMap) Labels() []string {
	return append([]string(nil), m.labels...)
}

// SortedLabels returns a sorted copy of the labels.
func (m *LabelMap) SortedLabels() []string {
	ls := m.Labels()
	sort.Strings(ls)
	return ls
}

// ConsistentWith reports whether translation is a bijection onto the stored
// labels: it has one entry per label and every value is a stored label.
func (m *LabelMap) ConsistentWith(translation map[string]string) bool {
	return Consistent[int](m, translation)
}

func (m *LabelMap) String() string {
	parts := make([]string, len(m.labels))
	for i, l := range m.labels {
		parts[i] = fmt.Sprintf("%d: %s", i, l)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SimpleLabels is a LabelStorage whose references are the label strings
// themselves. It suits trees that stand on their own.
type SimpleLabels struct {
	index  map[string]int
	labels []string
}

func NewSimpleLabels(capacity int) *SimpleLabels {
	if capacity < 0 {
		capacity = 0
	}
	return &SimpleLabels{
		index:  make(map[string]int, capacity),
		labels: make([]string, 0, capacity),
	}
}

func (s *SimpleLabels) StoreAndRef(label string) string {
	if _, ok := s.index[label]; !ok {
		s.index[label] = len(s.labels)
		s.labels = append(s.labels, label)
	}
	return label
}

func (s *SimpleLabels) CheckAndRef(label string) (string, bool) {
	_, ok := s.index[label]
	return label, ok
}

// IndexToRef panics if i is out of range.
func (s *SimpleLabels) IndexToRef(i int) string {
	return s.labels[i]
}

func (s *SimpleLabels) NumLabels() int {
	return len(s.labels)
}

// Labels returns a copy of the labels in insertion order.
func (s *SimpleLabels) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Consistent reports whether translation has one entry per label in s and
// every value is a label stored in s.
func Consistent[R any](s LabelStorage[R], translation map[string]string) bool {
	if len(translation) != s.NumLabels() {
		return false
	}
	for _, label := range translation {
		if _, ok := s.CheckAndRef(label); !ok {
			return false
		}
	}
	return true
}
