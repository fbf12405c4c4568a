package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/TuftsBCB/treeio/tree"
)

var statsFlags struct {
	output string
}

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Summarize the trees of a file",
	Long: `Print one line per retained tree: its name, leaf and vertex counts,
whether it is structurally valid and ultrametric, its height and its total
branch length.

Examples:
  # Text report after a 25% burn-in
  treeio stats --burnin-fraction 0.25 run.trees

  # Machine readable report
  treeio stats --output yaml trees.nwk`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsFlags.output, "output", "o", OutputText, "report format: text, yaml")
}

// TreeStats describes one tree.
type TreeStats struct {
	Name        string  `yaml:"name"`
	Leaves      int     `yaml:"leaves"`
	Vertices    int     `yaml:"vertices"`
	Valid       bool    `yaml:"valid"`
	Ultrametric bool    `yaml:"ultrametric"`
	Height      float64 `yaml:"height,omitempty"`
	Length      float64 `yaml:"total_length"`
}

// Report describes a file.
type Report struct {
	File     string      `yaml:"file"`
	Format   string      `yaml:"format"`
	Size     string      `yaml:"size"`
	Taxa     int         `yaml:"taxa"`
	Total    int         `yaml:"total_trees"`
	Retained int         `yaml:"retained_trees"`
	Trees    []TreeStats `yaml:"trees"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = statsFlags.output
		if err := Validate(cfg); err != nil {
			return err
		}
	}

	in, err := openInput(args[0], cfg)
	if err != nil {
		return err
	}
	defer in.Close()

	report, err := buildReport(in)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, cfg.Output)
}

func buildReport(in *input) (*Report, error) {
	r := &Report{
		File:     in.Path,
		Format:   in.Format,
		Size:     humanize.Bytes(uint64(in.Size)),
		Taxa:     in.Labels.NumLabels(),
		Total:    in.Total,
		Retained: in.Retained,
	}
	for i := 0; ; i++ {
		t, err := in.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		r.Trees = append(r.Trees, treeStats(t, i, r.Taxa))
	}
	return r, nil
}

func treeStats(t *tree.CompactTree, i, numLabels int) TreeStats {
	name, ok := t.Name()
	if !ok {
		name = fmt.Sprintf("tree_%d", i)
	}
	s := TreeStats{
		Name:        name,
		Leaves:      t.NumLeaves(),
		Vertices:    t.Len(),
		Valid:       t.IsValidFor(numLabels),
		Ultrametric: t.IsUltrametric(),
		Length:      t.TotalBranchLength(false),
	}
	if s.Ultrametric {
		s.Height = t.Height()
	}
	return s
}

func writeReport(w io.Writer, r *Report, format string) error {
	if format == OutputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	var err error
	pf := func(format string, v ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, v...)
		}
	}
	pf("%s: %s, %s, %d taxa, %d of %d trees\n",
		r.File, r.Format, r.Size, r.Taxa, r.Retained, r.Total)
	for _, s := range r.Trees {
		height := "-"
		if s.Ultrametric {
			height = fmt.Sprintf("%g", s.Height)
		}
		pf("%s\tleaves=%d\tvertices=%d\tvalid=%t\tultrametric=%t\theight=%s\tlength=%g\n",
			s.Name, s.Leaves, s.Vertices, s.Valid, s.Ultrametric, height, s.Length)
	}
	return err
}
