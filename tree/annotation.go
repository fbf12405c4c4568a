package tree

import (
	"fmt"
	"sort"
	"strconv"
)

// AnnotationKind is the type of an annotation value.
type AnnotationKind uint8

const (
	AnnotationNone AnnotationKind = iota
	AnnotationInt
	AnnotationFloat
	AnnotationString
)

// AnnotationValue is a single typed value from a [&key=value] block. The
// zero value is an absent value.
type AnnotationValue struct {
	Kind  AnnotationKind
	Int   int64
	Float float64
	Str   string
}

func IntValue(v int64) AnnotationValue {
	return AnnotationValue{Kind: AnnotationInt, Int: v}
}

func FloatValue(v float64) AnnotationValue {
	return AnnotationValue{Kind: AnnotationFloat, Float: v}
}

func StringValue(v string) AnnotationValue {
	return AnnotationValue{Kind: AnnotationString, Str: v}
}

// ParseAnnotationValue classifies s as an integer, then a float, and
// otherwise keeps it as a string.
func ParseAnnotationValue(s string) AnnotationValue {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(s)
}

// Present reports whether the value was set.
func (a AnnotationValue) Present() bool {
	return a.Kind != AnnotationNone
}

func (a AnnotationValue) String() string {
	switch a.Kind {
	case AnnotationInt:
		return strconv.FormatInt(a.Int, 10)
	case AnnotationFloat:
		return strconv.FormatFloat(a.Float, 'g', -1, 64)
	case AnnotationString:
		return a.Str
	}
	return ""
}

// Annotations maps annotation keys to per-vertex values, indexed in
// parallel with a tree's arena.
type Annotations struct {
	numVertices int
	cols        map[string][]AnnotationValue
}

// NewAnnotations returns an empty annotation set sized for numVertices
// vertices. Columns grow if a larger index is set.
func NewAnnotations(numVertices int) *Annotations {
	return &Annotations{
		numVertices: numVertices,
		cols:        make(map[string][]AnnotationValue),
	}
}

// Set records value for vertex v under key.
func (as *Annotations) Set(key string, v int, value AnnotationValue) {
	if v < 0 {
		panic(fmt.Sprintf("tree: negative vertex index %d", v))
	}
	if v >= as.numVertices {
		as.numVertices = v + 1
	}
	col := as.cols[key]
	if len(col) <= v {
		n := as.numVertices
		if cap(col) >= n {
			col = col[:n]
		} else {
			grown := make([]AnnotationValue, n)
			copy(grown, col)
			col = grown
		}
	}
	col[v] = value
	as.cols[key] = col
}

// Get returns the value recorded for vertex v under key.
func (as *Annotations) Get(key string, v int) (AnnotationValue, bool) {
	col := as.cols[key]
	if v < 0 || v >= len(col) || !col[v].Present() {
		return AnnotationValue{}, false
	}
	return col[v], true
}

// Column returns the values for key, one per vertex. Vertices without a
// value hold the zero AnnotationValue. The slice is shared and must not be
// modified.
func (as *Annotations) Column(key string) ([]AnnotationValue, bool) {
	col, ok := as.cols[key]
	return col, ok
}

// Keys returns all annotation keys in sorted order.
func (as *Annotations) Keys() []string {
	keys := make([]string, 0, len(as.cols))
	for k := range as.cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (as *Annotations) Len() int {
	return len(as.cols)
}
