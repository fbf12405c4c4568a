package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	cfgFile   string
	verbosity int

	// Values of the shared input flags. They only override the
	// configuration file when set on the command line.
	flagValues Config
)

var rootCmd = &cobra.Command{
	Use:   "treeio",
	Short: "Read, convert and check Newick and NEXUS tree files",
	Long: `treeio reads phylogenetic trees from Newick and NEXUS files.

NEXUS files are read through their TAXA and TREES blocks; a TRANSLATE table
is honoured when present. Leading trees can be discarded with --burnin,
--burnin-fraction and --skip-first. Large files can be streamed with --lazy
and --read-strategy buffered.

Options may also be given in a YAML file passed with --config; flags on the
command line take precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commonlog.Configure(verbosity, nil)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")
	pf.CountVarP(&verbosity, "verbose", "v", "log verbosity (repeat for more)")

	pf.StringVar(&flagValues.Format, "format", FormatAuto, "input format: auto, newick, nexus")
	pf.IntVar(&flagValues.Burnin, "burnin", 0, "number of leading trees to discard")
	pf.Float64Var(&flagValues.BurninFraction, "burnin-fraction", 0, "fraction of leading trees to discard, in [0, 1]")
	pf.BoolVar(&flagValues.SkipFirst, "skip-first", false, "discard the first tree before burn-in")
	pf.BoolVar(&flagValues.Lazy, "lazy", false, "parse NEXUS trees one at a time instead of up front")
	pf.BoolVar(&flagValues.Annotations, "annotations", false, "keep [&key=value] vertex annotations")
	pf.StringVar(&flagValues.ReadStrategy, "read-strategy", "auto", "NEXUS input: auto, memory, buffered")
	pf.StringVar(&flagValues.AutoThreshold, "auto-threshold", DefaultAutoThreshold, "file size at which auto streams the input")
}

// loadConfig returns the configuration file (or the defaults) with every
// flag set on the command line applied on top.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	var cfg *Config
	if cfgFile != "" {
		c, err := LoadConfig(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = &Config{}
		ApplyDefaults(cfg)
	}

	if cmd != nil {
		fs := cmd.Flags()
		if fs.Changed("format") {
			cfg.Format = flagValues.Format
		}
		if fs.Changed("burnin") {
			cfg.Burnin = flagValues.Burnin
		}
		if fs.Changed("burnin-fraction") {
			cfg.BurninFraction = flagValues.BurninFraction
		}
		if fs.Changed("skip-first") {
			cfg.SkipFirst = flagValues.SkipFirst
		}
		if fs.Changed("lazy") {
			cfg.Lazy = flagValues.Lazy
		}
		if fs.Changed("annotations") {
			cfg.Annotations = flagValues.Annotations
		}
		if fs.Changed("read-strategy") {
			cfg.ReadStrategy = flagValues.ReadStrategy
		}
		if fs.Changed("auto-threshold") {
			cfg.AutoThreshold = flagValues.AutoThreshold
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}
