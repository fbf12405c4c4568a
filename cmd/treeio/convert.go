package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/treeio/newick"
	"github.com/TuftsBCB/treeio/nexus"
)

var convertFlags struct {
	to    string
	style string
	out   string
}

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Rewrite the trees of a file as Newick or NEXUS",
	Long: `Write the retained trees of FILE in another format.

NEXUS output has a TAXA block and a TREES block whose TRANSLATE table maps
1-based keys to the taxa. Newick output writes one tree per line with
leaves written according to --style: taxon names (label), or the 0-based
(zero) or 1-based (one) taxon index.

Examples:
  # NEXUS to Newick, dropping the first 1000 trees
  treeio convert --burnin 1000 --to newick run.trees

  # Newick to NEXUS into a file
  treeio convert --to nexus --out trees.nex trees.nwk`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertFlags.to, "to", FormatNewick, "output format: newick, nexus")
	convertCmd.Flags().StringVar(&convertFlags.style, "style", "label", "Newick leaf style: label, zero, one")
	convertCmd.Flags().StringVar(&convertFlags.out, "out", "", "output file (default stdout)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("style") {
		cfg.Style = convertFlags.style
	}
	style, err := newick.ParseStyle(cfg.Style)
	if err != nil {
		return err
	}
	if convertFlags.to != FormatNewick && convertFlags.to != FormatNexus {
		return fmt.Errorf("Unknown output format '%s' (want newick or nexus).", convertFlags.to)
	}

	in, err := openInput(args[0], cfg)
	if err != nil {
		return err
	}
	defer in.Close()

	var w io.Writer = cmd.OutOrStdout()
	if convertFlags.out != "" {
		f, err := os.Create(convertFlags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := convert(w, in, convertFlags.to, style, cfg.Annotations); err != nil {
		return err
	}
	logger().Infof("wrote %d trees as %s", in.Retained, convertFlags.to)
	return nil
}

// convert writes every remaining tree of in to w.
func convert(w io.Writer, in *input, to string, style newick.Style, annotations bool) error {
	if to == FormatNexus {
		trees, err := in.All()
		if err != nil {
			return err
		}
		nw := nexus.NewWriter(w, in.Labels)
		nw.Annotations = annotations
		return nw.WriteAll(trees)
	}

	nw := newick.NewWriter(w, in.Labels)
	nw.Style = style
	nw.Annotations = annotations
	for {
		t, err := in.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if err := nw.Write(t); err != nil {
			return err
		}
	}
	return nw.Flush()
}
