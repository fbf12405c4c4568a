package nexus

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/TuftsBCB/treeio/newick"
	"github.com/TuftsBCB/treeio/scan"
	"github.com/TuftsBCB/treeio/tree"
)

// logger is looked up per call: the backend may be set after init.
func logger() commonlog.Logger {
	return commonlog.GetLogger("treeio.nexus")
}

// Parser reads the trees of a single NEXUS file. The header, TAXA block and
// TRANSLATE table are read when the parser is created; in eager mode all
// retained trees are parsed then as well.
//
// It is NOT safe to use a Parser from multiple goroutines.
type Parser[L any, T any] struct {
	s      *scan.Parser
	newick *newick.Parser[L, T]
	cfg    config

	numLeaves  int
	numTotal   int
	numTrees   int
	start      int
	pos        int
	trees      []T
	startByte  int
	translated bool
}

// NewParser reads the header, TAXA block and the start of the TREES block
// from src and returns a parser positioned at the first retained tree.
// Trees are assembled by b.
//
// Lazy mode and two-pass counting move the cursor backwards, so src must
// support SetPosition. A BufferedSource must wrap an io.Seeker for that.
func NewParser[L any, T any](src scan.Source, b tree.Builder[L, T], opts ...Option) (*Parser[L, T], error) {
	p := &Parser[L, T]{
		s:      scan.NewParser(src),
		newick: newick.NewParser(b),
		cfg:    newConfig(opts),
	}
	p.newick.SetAnnotations(p.cfg.annotations)
	if err := p.init(b); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser[L, T]) init(b tree.Builder[L, T]) error {
	if err := p.parseHeader(); err != nil {
		return err
	}
	if err := p.skipUntilBlock(BlockTaxa); err != nil {
		return err
	}
	storage, err := p.parseTaxa(b)
	if err != nil {
		return err
	}
	if err := p.skipUntilBlock(BlockTrees); err != nil {
		return err
	}
	translation, err := p.parseTranslate()
	if err != nil {
		return err
	}
	resolver, err := p.chooseResolver(storage, translation)
	if err != nil {
		return err
	}
	logger().Debugf("%d taxa, %s resolver", p.numLeaves, resolver.Kind())

	p.newick.SetNumLeaves(p.numLeaves)
	p.newick.SetResolver(resolver)
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return err
	}

	if p.cfg.mode == ModeLazy || p.cfg.burnin.Significant() {
		return p.initTwoPass()
	}
	return p.initOnePass()
}

// initTwoPass counts the trees without parsing them, skips the discarded
// prefix and then either parses the rest (eager) or remembers where it
// starts (lazy).
func (p *Parser[L, T]) initTwoPass() error {
	total, err := p.countTrees()
	if err != nil {
		return err
	}
	p.configure(total)
	logger().Debugf("two-pass %s read: %d trees, skipping %d", p.cfg.mode, total, p.start)

	for i := 0; i < min(p.start, total); i++ {
		if _, err := p.skipTree(); err != nil {
			return err
		}
	}
	if p.cfg.mode == ModeLazy {
		p.startByte = p.s.Position()
		return nil
	}
	p.trees = make([]T, 0, p.numTrees)
	return p.parseTrees(&p.trees)
}

// initOnePass parses every tree and then drops the discarded prefix.
func (p *Parser[L, T]) initOnePass() error {
	all := make([]T, 0)
	if err := p.parseTrees(&all); err != nil {
		return err
	}
	p.configure(len(all))
	logger().Debugf("one-pass eager read: %d trees, discarding %d", len(all), p.start)
	p.trees = all[min(p.start, len(all)):]
	return nil
}

// configure computes the retained window out of total trees.
func (p *Parser[L, T]) configure(total int) {
	skip := 0
	if p.cfg.skipFirst && total > 0 {
		skip = 1
	}
	skip += p.cfg.burnin.Count(total - skip)

	p.numTotal = total
	p.numTrees = max(total-skip, 0)
	p.start = skip
	p.pos = skip
}

func (p *Parser[L, T]) chooseResolver(
	storage tree.LabelStorage[L], translation map[string]string,
) (*tree.Resolver[L], error) {
	if translation == nil {
		return tree.NewVerbatimResolver(storage), nil
	}
	p.translated = true
	if len(translation) != storage.NumLabels() || !tree.Consistent(storage, translation) {
		return nil, p.s.Errorf(scan.KindInvalidTranslateCommand,
			"Table has %d entries that do not match the %d taxa.",
			len(translation), storage.NumLabels())
	}

	var r *tree.Resolver[L]
	var err error
	if tree.AllIntegerKeys(translation) {
		r, err = tree.NewArrayResolver(translation, storage)
	} else {
		r, err = tree.NewTableResolver(translation, storage)
	}
	if err != nil {
		return nil, p.s.Errorf(scan.KindInvalidTranslateCommand, "%s", err)
	}
	return r, nil
}

// Next returns the next retained tree, or io.EOF after the last one. In
// eager mode the stored tree is returned; in lazy mode a new tree is parsed.
func (p *Parser[L, T]) Next() (T, error) {
	var zero T
	if p.pos >= p.start+p.numTrees {
		return zero, io.EOF
	}
	if p.cfg.mode == ModeEager {
		t := p.trees[p.pos-p.start]
		p.pos++
		return t, nil
	}
	t, ok, err := p.parseTree()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, p.s.Errorf(scan.KindUnexpectedEOF, "TREES block ended early")
	}
	p.pos++
	return t, nil
}

// Reset moves back to the first retained tree. In lazy mode this seeks the
// input.
func (p *Parser[L, T]) Reset() error {
	p.pos = p.start
	if p.cfg.mode == ModeLazy {
		return p.s.SetPosition(p.startByte)
	}
	return nil
}

// Trees returns the retained trees in eager mode, and nil in lazy mode. The
// slice is shared with the parser.
func (p *Parser[L, T]) Trees() []T {
	return p.trees
}

// Results returns every retained tree along with the label storage, parsing
// them first in lazy mode.
func (p *Parser[L, T]) Results() ([]T, tree.LabelStorage[L], error) {
	if p.cfg.mode == ModeEager {
		return p.trees, p.Labels(), nil
	}
	if err := p.Reset(); err != nil {
		return nil, nil, err
	}
	trees := make([]T, 0, p.numTrees)
	for {
		t, err := p.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, err
		}
		trees = append(trees, t)
	}
	return trees, p.Labels(), nil
}

// Labels returns the taxon storage built from the TAXA block.
func (p *Parser[L, T]) Labels() tree.LabelStorage[L] {
	return p.newick.Labels()
}

// NumLeaves returns the NTAX value of the TAXA block.
func (p *Parser[L, T]) NumLeaves() int {
	return p.numLeaves
}

// NumTrees returns the number of retained trees.
func (p *Parser[L, T]) NumTrees() int {
	return p.numTrees
}

// NumTotalTrees returns the number of trees in the TREES block, discarded
// ones included.
func (p *Parser[L, T]) NumTotalTrees() int {
	return p.numTotal
}

func (p *Parser[L, T]) Mode() Mode {
	return p.cfg.mode
}

// Translated reports whether the TREES block had a TRANSLATE table.
func (p *Parser[L, T]) Translated() bool {
	return p.translated
}

// Close releases the input if it holds a file.
func (p *Parser[L, T]) Close() error {
	return p.s.Close()
}

func (p *Parser[L, T]) parseHeader() error {
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return err
	}
	if !p.s.ConsumeIfWord(header) {
		return p.s.Errorf(scan.KindMissingNexusHeader, "")
	}
	return nil
}

// skipUntilBlock consumes blocks until the header of a target block has
// been consumed.
func (p *Parser[L, T]) skipUntilBlock(target Block) error {
	for {
		if err := p.s.SkipCommentAndWhitespace(); err != nil {
			return err
		}
		if p.s.EOF() {
			return p.s.Errorf(scan.KindUnexpectedEOF, "No %s block found", target)
		}
		block, err := p.nextBlock()
		if err != nil {
			return err
		}
		if block == target {
			return nil
		}
		if err := p.skipToBlockEnd(); err != nil {
			return err
		}
	}
}

// nextBlock consumes a "Begin <name>;" line.
func (p *Parser[L, T]) nextBlock() (Block, error) {
	if !p.s.ConsumeIfWord(blockBegin) {
		return BlockUnknown, p.s.Errorf(scan.KindInvalidFormatting,
			"Expected 'BEGIN' at start of block.")
	}
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return BlockUnknown, err
	}
	name := p.s.ParseUnquotedLabel(";")
	if !p.s.ConsumeIf(';') {
		return BlockUnknown, p.s.Errorf(scan.KindUnexpectedEOF, "")
	}
	if len(name) == 0 {
		return BlockUnknown, p.s.Errorf(scan.KindInvalidBlockName, "Empty block name.")
	}
	return ParseBlock(name), nil
}

func (p *Parser[L, T]) skipToBlockEnd() error {
	if !p.s.ConsumeUntilWord(blockEnd, scan.Inclusive) {
		return p.s.Errorf(scan.KindUnexpectedEOF, "")
	}
	return nil
}

// parseTaxa reads "Dimensions ntax=<n>;" and "Taxlabels <label>*;" and
// skips the rest of the TAXA block.
func (p *Parser[L, T]) parseTaxa(b tree.Builder[L, T]) (tree.LabelStorage[L], error) {
	if err := p.parseNtax(); err != nil {
		return nil, err
	}

	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return nil, err
	}
	if !p.s.ConsumeIfWord(taxlabels) {
		return nil, p.s.Errorf(scan.KindInvalidTaxaBlock, "Expected 'TAXLABELS' in TAXA block.")
	}
	storage := b.NewStorage(p.numLeaves)
	count := 0
	for {
		if err := p.s.SkipCommentAndWhitespace(); err != nil {
			return nil, err
		}
		if p.s.ConsumeIf(';') {
			break
		}
		if p.s.EOF() {
			return nil, p.s.Errorf(scan.KindUnexpectedEOF, "")
		}
		label, err := p.s.ParseLabel(LabelDelimiters)
		if err != nil {
			return nil, err
		}
		if len(label) > 0 {
			storage.StoreAndRef(label)
			count++
		} else if !p.s.PeekIs(';') {
			// A stray delimiter such as ','.
			p.s.Next()
		}
	}
	if count != p.numLeaves {
		return nil, p.s.Errorf(scan.KindInvalidTaxaBlock,
			"Number of parsed labels (%d) did not match ntax value (%d).", count, p.numLeaves)
	}
	if storage.NumLabels() != p.numLeaves {
		return nil, p.s.Errorf(scan.KindInvalidTaxaBlock,
			"TAXLABELS lists %d distinct labels for %d taxa.", storage.NumLabels(), p.numLeaves)
	}
	return storage, p.skipToBlockEnd()
}

func (p *Parser[L, T]) parseNtax() error {
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return err
	}
	if !p.s.ConsumeIfWord(dimensions) {
		return p.s.Errorf(scan.KindInvalidTaxaBlock, "Expected 'DIMENSIONS' in TAXA block.")
	}
	p.s.SkipWhitespace()
	if !p.s.ConsumeIfWord(ntax) {
		return p.s.Errorf(scan.KindInvalidTaxaBlock, "Expected 'NTAX' in TAXA block.")
	}
	p.s.SkipWhitespace()
	if !p.s.ConsumeIf('=') {
		return p.s.Errorf(scan.KindInvalidTaxaBlock, "Expected '=' in TAXA block.")
	}
	p.s.SkipWhitespace()
	text := p.s.ParseUnquotedLabel(";")
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return p.s.Errorf(scan.KindInvalidTaxaBlock, "Cannot parse 'ntax' value: %s", text)
	}
	if !p.s.ConsumeIf(';') {
		return p.s.Errorf(scan.KindUnexpectedEOF, "")
	}
	p.numLeaves = n
	return nil
}

// parseTranslate reads an optional "Translate <key> <label>, ...;" command.
// It returns nil if there is none, which is only allowed if the first tree
// command follows.
func (p *Parser[L, T]) parseTranslate() (map[string]string, error) {
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return nil, err
	}
	if !p.s.ConsumeIfWord(translate) {
		if p.s.PeekIsWord(treeCmd) {
			return nil, nil
		}
		return nil, p.s.Errorf(scan.KindInvalidTreesBlock,
			"Expected 'TRANSLATE' or first 'TREE' in TREES block.")
	}

	translation := make(map[string]string, p.numLeaves)
	for {
		key, err := p.s.ParseLabel(LabelDelimiters)
		if err != nil {
			return nil, err
		}
		if len(key) == 0 {
			return nil, p.translateError()
		}
		before := p.s.Position()
		p.s.SkipWhitespace()
		if p.s.Position() == before {
			return nil, p.s.Errorf(scan.KindInvalidTreesBlock,
				"Expected whitespace in between key and label.")
		}
		label, err := p.s.ParseLabel(LabelDelimiters)
		if err != nil {
			return nil, err
		}
		if len(label) == 0 {
			return nil, p.translateError()
		}
		if _, dup := translation[key]; dup {
			return nil, p.s.Errorf(scan.KindInvalidTranslateCommand,
				"Duplicate key '%s'.", key)
		}
		translation[key] = label

		if err := p.s.SkipCommentAndWhitespace(); err != nil {
			return nil, err
		}
		if p.s.ConsumeIf(',') {
			continue
		}
		if p.s.ConsumeIf(';') {
			return translation, nil
		}
		return nil, p.translateError()
	}
}

func (p *Parser[L, T]) translateError() error {
	b, ok := p.s.Peek()
	if !ok {
		return p.s.Errorf(scan.KindUnexpectedEOF, "")
	}
	return p.s.Errorf(scan.KindInvalidTreesBlock, "Unexpected char '%c' in TRANSLATE.", b)
}

// parseTrees parses tree commands until the end of the TREES block.
func (p *Parser[L, T]) parseTrees(trees *[]T) error {
	for {
		t, ok, err := p.parseTree()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		*trees = append(*trees, t)
	}
}

// parseTree parses one "tree <name> = <newick>" command. It reports false at
// the end of the TREES block.
func (p *Parser[L, T]) parseTree() (T, bool, error) {
	var zero T
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return zero, false, err
	}
	if p.s.PeekIsWord(blockEnd) {
		return zero, false, nil
	}
	if !p.s.ConsumeIfWord(treeCmd) {
		return zero, false, p.expectedTree()
	}
	name, err := p.s.ParseLabel(LabelDelimiters + "=")
	if err != nil {
		return zero, false, err
	}
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return zero, false, err
	}
	if !p.s.ConsumeIf('=') {
		return zero, false, p.s.Errorf(scan.KindInvalidTreesBlock,
			"Expected '=' after tree name in tree command.")
	}
	// A rooting comment such as [&R] may follow.
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return zero, false, err
	}
	t, err := p.newick.ParseNamed(p.s, name)
	if err != nil {
		return zero, false, err
	}
	return t, true, nil
}

// skipTree moves past one tree command without parsing its Newick string.
// It reports false at the end of the TREES block.
func (p *Parser[L, T]) skipTree() (bool, error) {
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return false, err
	}
	if p.s.PeekIsWord(blockEnd) {
		return false, nil
	}
	if !p.s.ConsumeIfWord(treeCmd) {
		return false, p.expectedTree()
	}
	if !p.s.ConsumeUntil('=', scan.Inclusive) {
		return false, p.s.Errorf(scan.KindInvalidTreesBlock, "Expected '=' in tree command.")
	}
	if err := p.s.SkipCommentAndWhitespace(); err != nil {
		return false, err
	}
	if !p.s.ConsumeUntil(';', scan.Inclusive) {
		return false, p.s.Errorf(scan.KindUnexpectedEOF, "")
	}
	return true, nil
}

// countTrees counts the remaining tree commands and moves back to where
// it started.
func (p *Parser[L, T]) countTrees() (int, error) {
	saved := p.s.Position()
	count := 0
	for {
		more, err := p.skipTree()
		if err != nil {
			return 0, err
		}
		if !more {
			break
		}
		count++
	}
	if err := p.s.SetPosition(saved); err != nil {
		return 0, fmt.Errorf("Could not rewind to the first tree: %w", err)
	}
	return count, nil
}

func (p *Parser[L, T]) expectedTree() error {
	if p.s.EOF() {
		return p.s.Errorf(scan.KindUnexpectedEOF, "")
	}
	return p.s.Errorf(scan.KindInvalidTreesBlock, "Expected 'TREE' in tree command.")
}
