package newick

import (
	"io"
	"strconv"

	"github.com/TuftsBCB/treeio/scan"
	"github.com/TuftsBCB/treeio/tree"
)

// DefaultNumLeaves is the leaf count assumed for the first tree when none is
// given up front.
const DefaultNumLeaves = 10

// LabelDelimiters are the bytes that end an unquoted label.
const LabelDelimiters = "([,:; \n\t\r)]"

// Option configures a Parser.
type Option func(*options)

type options struct {
	numLeaves   int
	known       bool
	annotations bool
}

// WithNumLeaves tells the parser how many leaves every tree has, so that the
// first tree is allocated at the right size.
func WithNumLeaves(n int) Option {
	return func(o *options) {
		o.numLeaves = n
		o.known = true
	}
}

// WithAnnotations controls whether [&key=value,...] blocks are recorded as
// annotations. When off (the default) they are skipped like any comment.
func WithAnnotations(on bool) Option {
	return func(o *options) {
		o.annotations = on
	}
}

// Parser reads Newick trees from a scan.Parser, building them with a
// tree.Builder and resolving leaf labels with a tree.Resolver.
//
// If the number of leaves is not given, it is counted while reading the
// first tree and assumed for every later tree.
type Parser[L any, T any] struct {
	builder     tree.Builder[L, T]
	resolver    *tree.Resolver[L]
	numLeaves   int
	known       bool
	annotations bool
}

type annotation struct {
	key   string
	value tree.AnnotationValue
}

// NewParser returns a parser driving b. Labels are resolved verbatim into a
// fresh storage from b until SetResolver is called.
func NewParser[L any, T any](b tree.Builder[L, T], opts ...Option) *Parser[L, T] {
	o := options{numLeaves: DefaultNumLeaves}
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser[L, T]{
		builder:     b,
		resolver:    tree.NewVerbatimResolver(b.NewStorage(o.numLeaves)),
		numLeaves:   o.numLeaves,
		known:       o.known,
		annotations: o.annotations,
	}
}

// NewCompactParser returns a parser producing CompactTrees that share one
// LabelMap.
func NewCompactParser(opts ...Option) *Parser[int, *tree.CompactTree] {
	return NewParser[int, *tree.CompactTree](tree.NewCompactBuilder(), opts...)
}

// NewSimpleParser returns a parser producing self-contained SimpleTrees.
func NewSimpleParser(opts ...Option) *Parser[string, *tree.SimpleTree] {
	return NewParser[string, *tree.SimpleTree](tree.NewSimpleBuilder(), opts...)
}

// SetResolver replaces the label resolver (and with it the label storage).
func (p *Parser[L, T]) SetResolver(r *tree.Resolver[L]) {
	p.resolver = r
}

// SetNumLeaves fixes the number of leaves expected in every tree.
func (p *Parser[L, T]) SetNumLeaves(n int) {
	p.numLeaves, p.known = n, true
}

func (p *Parser[L, T]) SetAnnotations(on bool) {
	p.annotations = on
}

func (p *Parser[L, T]) Resolver() *tree.Resolver[L] {
	return p.resolver
}

// Labels returns the label storage that leaves refer to.
func (p *Parser[L, T]) Labels() tree.LabelStorage[L] {
	return p.resolver.Storage()
}

// NumLeaves returns the expected number of leaves per tree and whether it is
// known yet.
func (p *Parser[L, T]) NumLeaves() (int, bool) {
	return p.numLeaves, p.known
}

// Parse reads a single tree, up to and including its terminating ';'.
func (p *Parser[L, T]) Parse(s *scan.Parser) (T, error) {
	return p.parse(s, "", false)
}

// ParseNamed is Parse for a tree that has a name, such as one from a NEXUS
// TREES block.
func (p *Parser[L, T]) ParseNamed(s *scan.Parser, name string) (T, error) {
	return p.parse(s, name, true)
}

// ParseAll reads trees until the end of input. The first error that occurs
// is returned with no trees.
func (p *Parser[L, T]) ParseAll(s *scan.Parser) ([]T, error) {
	trees := make([]T, 0)
	for {
		if err := s.SkipCommentAndWhitespace(); err != nil {
			return nil, err
		}
		if s.EOF() {
			return trees, nil
		}
		t, err := p.Parse(s)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
}

// Iter returns an iterator reading one tree per call to Next.
func (p *Parser[L, T]) Iter(s *scan.Parser) *Iterator[L, T] {
	return &Iterator[L, T]{p: p, s: s}
}

func (p *Parser[L, T]) parse(s *scan.Parser, name string, named bool) (T, error) {
	var zero T

	p.builder.InitNext(p.numLeaves)
	if named {
		p.builder.SetName(name)
	}
	guess := p.numLeaves
	if !p.known {
		p.numLeaves = 0
	}
	if err := p.parseRoot(s); err != nil {
		p.builder.FinishTree()
		if !p.known {
			p.numLeaves = guess
		}
		return zero, err
	}
	p.known = true
	t, _ := p.builder.FinishTree()
	return t, nil
}

func (p *Parser[L, T]) parseRoot(s *scan.Parser) error {
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return err
	}
	children, err := p.parseChildren(s)
	if err != nil {
		return err
	}
	annots, err := p.parseAnnotations(s)
	if err != nil {
		return err
	}
	length, err := p.parseBranchLength(s)
	if err != nil {
		return err
	}
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return err
	}
	if !s.ConsumeIf(';') {
		return expected(s, "';' at end of tree")
	}
	root := p.builder.AddRoot(children, length)
	p.annotate(root, annots)
	return nil
}

func (p *Parser[L, T]) parseVertex(s *scan.Parser) (int, error) {
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return 0, err
	}
	if s.PeekIs('(') {
		return p.parseInternal(s)
	}
	return p.parseLeaf(s)
}

func (p *Parser[L, T]) parseInternal(s *scan.Parser) (int, error) {
	children, err := p.parseChildren(s)
	if err != nil {
		return 0, err
	}
	annots, err := p.parseAnnotations(s)
	if err != nil {
		return 0, err
	}
	length, err := p.parseBranchLength(s)
	if err != nil {
		return 0, err
	}
	v := p.builder.AddInternal(children, length)
	p.annotate(v, annots)
	return v, nil
}

func (p *Parser[L, T]) parseChildren(s *scan.Parser) ([2]int, error) {
	var children [2]int
	if !s.ConsumeIf('(') {
		return children, expected(s, "'(' before children")
	}
	left, err := p.parseVertex(s)
	if err != nil {
		return children, err
	}
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return children, err
	}
	if !s.ConsumeIf(',') {
		return children, expected(s, "',' between children")
	}
	right, err := p.parseVertex(s)
	if err != nil {
		return children, err
	}
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return children, err
	}
	if !s.ConsumeIf(')') {
		return children, expected(s, "')' after children")
	}
	children[0], children[1] = left, right
	return children, nil
}

func (p *Parser[L, T]) parseLeaf(s *scan.Parser) (int, error) {
	token, err := s.ParseLabel(LabelDelimiters)
	if err != nil {
		return 0, err
	}
	label, err := p.resolver.Resolve(token)
	if err != nil {
		return 0, s.Errorf(scan.KindUnresolvedLabel, "%s", err)
	}
	annots, err := p.parseAnnotations(s)
	if err != nil {
		return 0, err
	}
	length, err := p.parseBranchLength(s)
	if err != nil {
		return 0, err
	}
	if !p.known {
		p.numLeaves++
	}
	v := p.builder.AddLeaf(length, label)
	p.annotate(v, annots)
	return v, nil
}

func (p *Parser[L, T]) parseBranchLength(s *scan.Parser) (tree.BranchLength, error) {
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return tree.NoBranchLength, err
	}
	if !s.ConsumeIf(':') {
		return tree.NoBranchLength, nil
	}
	if err := s.SkipCommentAndWhitespace(); err != nil {
		return tree.NoBranchLength, err
	}

	var buf [32]byte
	num := buf[:0]
	for {
		b, ok := s.Peek()
		if !ok || !isNumberByte(b) {
			break
		}
		num = append(num, b)
		s.Next()
	}
	l, err := strconv.ParseFloat(string(num), 64)
	if err != nil {
		return tree.NoBranchLength, s.Errorf(scan.KindInvalidNewick,
			"Invalid branch length: %s", num)
	}
	if !tree.ValidBranchLength(l) {
		return tree.NoBranchLength, s.Errorf(scan.KindInvalidNewick,
			"Branch length must be finite and non-negative: %s", num)
	}
	return tree.NewBranchLength(l), nil
}

// parseAnnotations reads a [&key=value,...] block if annotations are
// enabled and one starts at the cursor. Values in braces may contain commas.
func (p *Parser[L, T]) parseAnnotations(s *scan.Parser) ([]annotation, error) {
	if !p.annotations || !s.ConsumeIfWord("[&") {
		return nil, nil
	}
	var annots []annotation
	for {
		key := s.ParseUnquotedLabel("=,]")
		if len(key) == 0 {
			return nil, s.Errorf(scan.KindInvalidNewick, "Empty annotation key")
		}
		if !s.ConsumeIf('=') {
			return nil, expected(s, "'=' after annotation key")
		}
		var value string
		if s.PeekIs('{') {
			v, ok := readBraced(s)
			if !ok {
				return nil, s.Errorf(scan.KindUnexpectedEOF, "")
			}
			value = v
		} else {
			value = s.ParseUnquotedLabel(",]")
		}
		if len(value) == 0 {
			return nil, s.Errorf(scan.KindInvalidNewick,
				"Empty annotation value for key '%s'", key)
		}
		annots = append(annots, annotation{key, tree.ParseAnnotationValue(value)})
		if !s.ConsumeIf(',') {
			break
		}
	}
	if !s.ConsumeIf(']') {
		return nil, expected(s, "']' at end of annotation block")
	}
	return annots, nil
}

func (p *Parser[L, T]) annotate(v int, annots []annotation) {
	for _, a := range annots {
		p.builder.AddAnnotation(a.key, v, a.value)
	}
}

// Iterator reads trees one at a time from a shared cursor.
type Iterator[L any, T any] struct {
	p   *Parser[L, T]
	s   *scan.Parser
	err error
}

// Next reads the next tree. At the end of input it returns io.EOF. After any
// error, every later call returns the same error.
func (it *Iterator[L, T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}
	if err := it.s.SkipCommentAndWhitespace(); err != nil {
		it.err = err
		return zero, err
	}
	if it.s.EOF() {
		it.err = io.EOF
		return zero, io.EOF
	}
	t, err := it.p.Parse(it.s)
	if err != nil {
		it.err = err
		return zero, err
	}
	return t, nil
}

// Parser returns the parser behind the iterator, so that its label storage
// stays reachable once iteration is done.
func (it *Iterator[L, T]) Parser() *Parser[L, T] {
	return it.p
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '-' || b == '+' || b == 'e' || b == 'E'
}

// expected reports that what was wanted is missing at the cursor.
func expected(s *scan.Parser, what string) error {
	b, ok := s.Peek()
	if !ok {
		return s.Errorf(scan.KindUnexpectedEOF, "Expected %s", what)
	}
	return s.Errorf(scan.KindInvalidNewick, "Expected %s but found '%c'", what, b)
}

// readBraced consumes a {...} value, nested braces included.
func readBraced(s *scan.Parser) (string, bool) {
	buf := make([]byte, 0, 32)
	depth := 0
	for {
		b, ok := s.Next()
		if !ok {
			return "", false
		}
		buf = append(buf, b)
		switch b {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(buf), true
			}
		}
	}
}
