package nexus

import (
	"fmt"
	"math"
)

// DefaultAutoThreshold is the file size at and above which the Automatic
// read strategy streams a file instead of loading it into memory.
const DefaultAutoThreshold = 100 * 1000 * 1000

// Burn-in sizes at or above these are large enough that counting trees in
// a separate pass is cheaper than parsing and discarding them.
const (
	significantBurninCount    = 100
	significantBurninFraction = 0.05
)

// Burnin is the number of leading trees to discard, given either as an
// absolute count or as a fraction of the trees available. The zero value
// discards nothing.
type Burnin struct {
	count    int
	fraction float64
	isFrac   bool
}

// BurninCount discards the first n trees. Negative values are treated as
// zero.
func BurninCount(n int) Burnin {
	if n < 0 {
		n = 0
	}
	return Burnin{count: n}
}

// BurninFraction discards the first floor(p*T) of T trees. p is clamped to
// [0, 1]; NaN counts as zero. A fraction of 1 discards every tree.
func BurninFraction(p float64) Burnin {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	return Burnin{fraction: min(p, 1), isFrac: true}
}

// Count returns the number of trees to discard out of total.
func (b Burnin) Count(total int) int {
	if b.isFrac {
		return int(math.Floor(float64(total) * b.fraction))
	}
	return b.count
}

// Significant reports whether the burn-in is large enough to count trees
// before parsing them in eager mode.
func (b Burnin) Significant() bool {
	if b.isFrac {
		return b.fraction >= significantBurninFraction
	}
	return b.count >= significantBurninCount
}

func (b Burnin) String() string {
	if b.isFrac {
		return fmt.Sprintf("%g%%", 100*b.fraction)
	}
	return fmt.Sprintf("%d trees", b.count)
}

// Mode is how trees are materialized.
type Mode int

const (
	// Parse every retained tree up front and keep it in memory.
	ModeEager Mode = iota

	// Parse one tree per call to Next.
	ModeLazy
)

func (m Mode) String() string {
	if m == ModeLazy {
		return "lazy"
	}
	return "eager"
}

// ReadStrategy is how a file is read by Open.
type ReadStrategy int

const (
	// Choose InMemory or Buffered by file size.
	Automatic ReadStrategy = iota

	// Load the whole file into memory.
	InMemory

	// Stream the file through a buffered reader.
	Buffered
)

func (s ReadStrategy) String() string {
	switch s {
	case InMemory:
		return "memory"
	case Buffered:
		return "buffered"
	}
	return "auto"
}

// ParseReadStrategy is the inverse of ReadStrategy.String.
func ParseReadStrategy(s string) (ReadStrategy, error) {
	switch s {
	case "auto", "":
		return Automatic, nil
	case "memory":
		return InMemory, nil
	case "buffered":
		return Buffered, nil
	}
	return 0, fmt.Errorf("Unknown read strategy '%s' (want auto, memory or buffered).", s)
}

// Option configures a Parser.
type Option func(*config)

type config struct {
	mode          Mode
	burnin        Burnin
	skipFirst     bool
	annotations   bool
	strategy      ReadStrategy
	autoThreshold int64
}

func newConfig(opts []Option) config {
	c := config{autoThreshold: DefaultAutoThreshold}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Eager parses all retained trees when the parser is created. This is the
// default.
func Eager() Option {
	return func(c *config) { c.mode = ModeEager }
}

// Lazy parses trees one at a time as Next is called.
func Lazy() Option {
	return func(c *config) { c.mode = ModeLazy }
}

// WithMode selects ModeEager or ModeLazy at run time.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithBurnin discards leading trees. If skip-first is also set, the first
// tree is dropped before the burn-in is computed on the rest.
func WithBurnin(b Burnin) Option {
	return func(c *config) { c.burnin = b }
}

// WithSkipFirst drops the very first tree, such as the starting tree some
// samplers write before the first sample.
func WithSkipFirst(skip bool) Option {
	return func(c *config) { c.skipFirst = skip }
}

// WithAnnotations records [&key=value,...] blocks on tree vertices instead
// of skipping them as comments.
func WithAnnotations(on bool) Option {
	return func(c *config) { c.annotations = on }
}

// WithReadStrategy overrides how Open reads the file.
func WithReadStrategy(s ReadStrategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithAutoThreshold sets the file size in bytes at which the Automatic
// read strategy switches to Buffered.
func WithAutoThreshold(bytes int64) Option {
	return func(c *config) { c.autoThreshold = bytes }
}
