package tree

import (
	"fmt"
	"strconv"
)

// ResolverKind is the resolution strategy of a Resolver.
type ResolverKind int

const (
	// Tip tokens are taxon labels and go straight into the storage.
	ResolveVerbatim ResolverKind = iota

	// Tip tokens are looked up in a TRANSLATE table, then tried as a 1-based
	// taxon index, then as a literal taxon label.
	ResolveTable

	// Every TRANSLATE key is an integer 1..n; tip tokens must be integers.
	ResolveArray
)

func (k ResolverKind) String() string {
	switch k {
	case ResolveVerbatim:
		return "verbatim"
	case ResolveTable:
		return "table"
	case ResolveArray:
		return "array"
	}
	return fmt.Sprintf("ResolverKind(%d)", int(k))
}

// Resolver maps the tip tokens of Newick strings to label references. It
// owns the LabelStorage it resolves against.
type Resolver[R any] struct {
	kind    ResolverKind
	storage LabelStorage[R]
	table   map[string]R
	array   []R
}

// NewVerbatimResolver returns a resolver that stores every token it sees.
func NewVerbatimResolver[R any](storage LabelStorage[R]) *Resolver[R] {
	return &Resolver[R]{kind: ResolveVerbatim, storage: storage}
}

// NewTableResolver returns a resolver for a TRANSLATE table with arbitrary
// keys. Every value in translation must already be stored.
func NewTableResolver[R any](translation map[string]string, storage LabelStorage[R]) (*Resolver[R], error) {
	table := make(map[string]R, len(translation))
	for key, label := range translation {
		ref, ok := storage.CheckAndRef(label)
		if !ok {
			return nil, fmt.Errorf("Translation of '%s' to unknown label '%s'.", key, label)
		}
		table[key] = ref
	}
	return &Resolver[R]{kind: ResolveTable, storage: storage, table: table}, nil
}

// NewArrayResolver returns a resolver for a TRANSLATE table whose keys are
// exactly the integers 1 through the number of stored labels.
func NewArrayResolver[R any](translation map[string]string, storage LabelStorage[R]) (*Resolver[R], error) {
	n := storage.NumLabels()
	array := make([]R, n)
	filled := make([]bool, n)
	for key, label := range translation {
		i, ok := parseIndex(key)
		if !ok {
			return nil, fmt.Errorf("TRANSLATE key '%s' is not a valid integer.", key)
		}
		if i < 1 || i > n {
			return nil, fmt.Errorf("TRANSLATE index %d out of bounds (valid range: 1-%d).", i, n)
		}
		ref, ok := storage.CheckAndRef(label)
		if !ok {
			return nil, fmt.Errorf("Translation of '%s' to unknown label '%s'.", key, label)
		}
		array[i-1] = ref
		filled[i-1] = true
	}
	for i, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("Missing translation for index %d.", i+1)
		}
	}
	return &Resolver[R]{kind: ResolveArray, storage: storage, array: array}, nil
}

// AllIntegerKeys reports whether every key of translation parses as a
// non-negative integer.
func AllIntegerKeys(translation map[string]string) bool {
	for key := range translation {
		if _, ok := parseIndex(key); !ok {
			return false
		}
	}
	return true
}

func (r *Resolver[R]) Kind() ResolverKind {
	return r.kind
}

// Storage returns the label storage owned by the resolver.
func (r *Resolver[R]) Storage() LabelStorage[R] {
	return r.storage
}

// Resolve maps a tip token to a label reference.
func (r *Resolver[R]) Resolve(token string) (R, error) {
	var zero R
	switch r.kind {
	case ResolveVerbatim:
		return r.storage.StoreAndRef(token), nil
	case ResolveTable:
		if ref, ok := r.table[token]; ok {
			return ref, nil
		}
		if i, ok := parseIndex(token); ok {
			n := r.storage.NumLabels()
			if i < 1 || i > n {
				return zero, fmt.Errorf("Label index %d out of bounds (1-based indexing, max %d).", i, n)
			}
			return r.storage.IndexToRef(i - 1), nil
		}
		if ref, ok := r.storage.CheckAndRef(token); ok {
			return ref, nil
		}
		return zero, fmt.Errorf("No taxon or TRANSLATE entry for '%s'.", token)
	case ResolveArray:
		i, ok := parseIndex(token)
		if !ok {
			return zero, fmt.Errorf("Integer label expected, got '%s'.", token)
		}
		if i < 1 || i > len(r.array) {
			return zero, fmt.Errorf("Label index %d out of bounds (valid range: 1-%d).", i, len(r.array))
		}
		return r.array[i-1], nil
	}
	panic(fmt.Sprintf("tree: unknown resolver kind %d", r.kind))
}

// parseIndex parses an unsigned decimal integer. Signs are not accepted.
func parseIndex(s string) (int, bool) {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil || u > uint64(^uint(0)>>1) {
		return 0, false
	}
	return int(u), true
}
