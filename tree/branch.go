package tree

import (
	"fmt"
	"math"
	"strconv"
)

// BranchLength is an optional, validated edge length. The zero value means
// that no length was given.
type BranchLength struct {
	v  float64
	ok bool
}

// NoBranchLength is the absent branch length.
var NoBranchLength = BranchLength{}

// NewBranchLength returns a present branch length. It panics if l is
// negative, NaN or infinite; readers must reject such input before calling
// it.
func NewBranchLength(l float64) BranchLength {
	if !ValidBranchLength(l) {
		panic(fmt.Sprintf("tree: invalid branch length %v", l))
	}
	return BranchLength{v: l, ok: true}
}

// ValidBranchLength reports whether l may be used as a branch length.
func ValidBranchLength(l float64) bool {
	return l >= 0 && !math.IsInf(l, 1) && !math.IsNaN(l)
}

// Value returns the length and whether one is present.
func (b BranchLength) Value() (float64, bool) {
	return b.v, b.ok
}

// Present reports whether a length was given.
func (b BranchLength) Present() bool {
	return b.ok
}

// Float returns the length, or 0 if absent.
func (b BranchLength) Float() float64 {
	return b.v
}

// String formats the length in its shortest decimal form, or returns the
// empty string if absent.
func (b BranchLength) String() string {
	if !b.ok {
		return ""
	}
	return strconv.FormatFloat(b.v, 'f', -1, 64)
}
