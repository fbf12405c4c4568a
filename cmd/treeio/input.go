package main

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/tliron/commonlog"

	"github.com/TuftsBCB/treeio/newick"
	"github.com/TuftsBCB/treeio/nexus"
	"github.com/TuftsBCB/treeio/tree"
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("treeio")
}

// input is an open tree file. Trees are returned one at a time by Next so
// that lazy NEXUS parsing does not hold every tree at once.
type input struct {
	Path   string
	Format string
	Size   int64
	Labels *tree.LabelMap

	// Trees in the file before and after burn-in.
	Total    int
	Retained int

	next  func() (*tree.CompactTree, error)
	close func() error
}

// openInput opens path according to cfg. Burn-in and skip-first apply to
// Newick files too.
func openInput(path string, cfg *Config) (*input, error) {
	format, err := cfg.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	logger().Infof("reading %s as %s (%s)", path, format, humanize.Bytes(uint64(info.Size())))

	in := &input{Path: path, Format: format, Size: info.Size()}
	if format == FormatNexus {
		err = in.openNexus(cfg)
	} else {
		err = in.openNewick(cfg)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (in *input) openNexus(cfg *Config) error {
	opts, err := cfg.NexusOptions()
	if err != nil {
		return err
	}
	p, err := nexus.OpenCompact(in.Path, opts...)
	if err != nil {
		return err
	}
	in.Labels = p.Labels().(*tree.LabelMap)
	in.Total = p.NumTotalTrees()
	in.Retained = p.NumTrees()
	in.next = p.Next
	in.close = p.Close
	return nil
}

func (in *input) openNewick(cfg *Config) error {
	trees, labels, err := newick.ReadFile(in.Path, cfg.NewickOptions()...)
	if err != nil {
		return err
	}
	in.Labels = labels
	in.Total = len(trees)

	skip := 0
	if cfg.SkipFirst && len(trees) > 0 {
		skip = 1
	}
	skip += cfg.burnin().Count(len(trees) - skip)
	trees = trees[min(skip, len(trees)):]
	in.Retained = len(trees)

	i := 0
	in.next = func() (*tree.CompactTree, error) {
		if i >= len(trees) {
			return nil, io.EOF
		}
		i++
		return trees[i-1], nil
	}
	in.close = func() error { return nil }
	return nil
}

// Next returns the next retained tree, or io.EOF.
func (in *input) Next() (*tree.CompactTree, error) {
	return in.next()
}

// All drains the remaining trees.
func (in *input) All() ([]*tree.CompactTree, error) {
	trees := make([]*tree.CompactTree, 0, in.Retained)
	for {
		t, err := in.Next()
		if err == io.EOF {
			return trees, nil
		} else if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
}

func (in *input) Close() error {
	return in.close()
}
