package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check that every tree of a file is a valid binary tree",
	Long: `Parse FILE and check every retained tree: one root, two children per
internal vertex, consistent parent links and leaf labels that name a taxon.
The command fails if the file cannot be parsed or any tree is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	in, err := openInput(args[0], cfg)
	if err != nil {
		return err
	}
	defer in.Close()
	return validate(cmd.OutOrStdout(), in)
}

// validate reports each invalid tree to w and fails if there was any.
func validate(w io.Writer, in *input) error {
	numLabels := in.Labels.NumLabels()
	checked, invalid := 0, 0
	for {
		t, err := in.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if !t.IsValidFor(numLabels) {
			name, ok := t.Name()
			if !ok {
				name = fmt.Sprintf("tree_%d", checked)
			}
			fmt.Fprintf(w, "%s: invalid\n", name)
			invalid++
		}
		checked++
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d trees are invalid", invalid, checked)
	}
	fmt.Fprintf(w, "%s: %d trees OK\n", in.Path, checked)
	return nil
}
