package nexus

import (
	"os"

	"github.com/dustin/go-humanize"

	"github.com/TuftsBCB/treeio/scan"
	"github.com/TuftsBCB/treeio/tree"
)

// Open reads the NEXUS file at path with trees assembled by b. The file is
// loaded into memory or streamed according to WithReadStrategy. The caller
// must call Close when done.
func Open[L any, T any](path string, b tree.Builder[L, T], opts ...Option) (*Parser[L, T], error) {
	cfg := newConfig(opts)
	src, err := openSource(path, cfg)
	if err != nil {
		return nil, err
	}
	p, err := NewParser(src, b, opts...)
	if err != nil {
		if c, ok := src.(*scan.BufferedSource); ok {
			c.Close()
		}
		return nil, err
	}
	return p, nil
}

// OpenCompact is Open with CompactTrees sharing one LabelMap.
func OpenCompact(path string, opts ...Option) (*Parser[int, *tree.CompactTree], error) {
	return Open[int, *tree.CompactTree](path, tree.NewCompactBuilder(), opts...)
}

// OpenSimple is Open with SimpleTrees that hold their own labels.
func OpenSimple(path string, opts ...Option) (*Parser[string, *tree.SimpleTree], error) {
	return Open[string, *tree.SimpleTree](path, tree.NewSimpleBuilder(), opts...)
}

// ReadFile reads every tree of the NEXUS file at path eagerly and returns
// them with the taxon map.
func ReadFile(path string, opts ...Option) ([]*tree.CompactTree, *tree.LabelMap, error) {
	p, err := OpenCompact(path, append(opts, Eager())...)
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()

	trees, labels, err := p.Results()
	if err != nil {
		return nil, nil, err
	}
	return trees, labels.(*tree.LabelMap), nil
}

func openSource(path string, cfg config) (scan.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, scan.NewIOError(err)
	}
	strategy := cfg.strategy
	if strategy == Automatic {
		strategy = InMemory
		if info.Size() >= cfg.autoThreshold {
			strategy = Buffered
		}
	}
	logger().Debugf("reading %s (%s) with %s strategy",
		path, humanize.Bytes(uint64(info.Size())), strategy)

	if strategy == Buffered {
		return scan.OpenBuffered(path)
	}
	return scan.ReadMemorySource(path)
}
