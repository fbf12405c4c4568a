package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/TuftsBCB/treeio/newick"
	"github.com/TuftsBCB/treeio/nexus"
)

// Input formats.
const (
	FormatAuto   = "auto"
	FormatNewick = "newick"
	FormatNexus  = "nexus"
)

// Report formats of the stats command.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// DefaultAutoThreshold is nexus.DefaultAutoThreshold in human form.
const DefaultAutoThreshold = "100 MB"

// Config holds the options shared by every command.
type Config struct {
	// Input format. "auto" picks NEXUS for .nex, .nexus, .trees and .t
	// files, and for any file starting with #NEXUS.
	Format string `yaml:"format"`

	Burnin         int     `yaml:"burnin"`
	BurninFraction float64 `yaml:"burnin_fraction"`
	SkipFirst      bool    `yaml:"skip_first"`

	Lazy        bool `yaml:"lazy"`
	Annotations bool `yaml:"annotations"`

	ReadStrategy  string `yaml:"read_strategy"`
	AutoThreshold string `yaml:"auto_threshold"`

	// Label style for Newick output: label, zero or one.
	Style string `yaml:"style"`

	// Report format of the stats command: text or yaml.
	Output string `yaml:"output"`
}

// LoadConfig reads a YAML configuration file, applies defaults and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills every empty field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = FormatAuto
	}
	if cfg.ReadStrategy == "" {
		cfg.ReadStrategy = nexus.Automatic.String()
	}
	if cfg.AutoThreshold == "" {
		cfg.AutoThreshold = DefaultAutoThreshold
	}
	if cfg.Style == "" {
		cfg.Style = newick.StyleLabel.String()
	}
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
}

// Validate checks that every field holds a usable value.
func Validate(cfg *Config) error {
	var errs []error
	switch cfg.Format {
	case FormatAuto, FormatNewick, FormatNexus:
	default:
		errs = append(errs, fmt.Errorf("format: unknown format %q", cfg.Format))
	}
	if cfg.Burnin < 0 {
		errs = append(errs, fmt.Errorf("burnin: must not be negative, got %d", cfg.Burnin))
	}
	if cfg.BurninFraction < 0 || cfg.BurninFraction > 1 {
		errs = append(errs, fmt.Errorf("burnin_fraction: must be in [0, 1], got %g", cfg.BurninFraction))
	}
	if cfg.Burnin > 0 && cfg.BurninFraction > 0 {
		errs = append(errs, errors.New("burnin and burnin_fraction are mutually exclusive"))
	}
	if _, err := nexus.ParseReadStrategy(cfg.ReadStrategy); err != nil {
		errs = append(errs, fmt.Errorf("read_strategy: %w", err))
	}
	if _, err := humanize.ParseBytes(cfg.AutoThreshold); err != nil {
		errs = append(errs, fmt.Errorf("auto_threshold: %w", err))
	}
	if _, err := newick.ParseStyle(cfg.Style); err != nil {
		errs = append(errs, fmt.Errorf("style: %w", err))
	}
	switch cfg.Output {
	case OutputText, OutputYAML:
	default:
		errs = append(errs, fmt.Errorf("output: unknown report format %q", cfg.Output))
	}
	return errors.Join(errs...)
}

// burnin converts the burn-in fields. Validate must have passed.
func (cfg *Config) burnin() nexus.Burnin {
	if cfg.BurninFraction > 0 {
		return nexus.BurninFraction(cfg.BurninFraction)
	}
	return nexus.BurninCount(cfg.Burnin)
}

// NexusOptions converts cfg into options for nexus.Open.
func (cfg *Config) NexusOptions() ([]nexus.Option, error) {
	strategy, err := nexus.ParseReadStrategy(cfg.ReadStrategy)
	if err != nil {
		return nil, err
	}
	threshold, err := humanize.ParseBytes(cfg.AutoThreshold)
	if err != nil {
		return nil, err
	}
	mode := nexus.ModeEager
	if cfg.Lazy {
		mode = nexus.ModeLazy
	}
	return []nexus.Option{
		nexus.WithMode(mode),
		nexus.WithBurnin(cfg.burnin()),
		nexus.WithSkipFirst(cfg.SkipFirst),
		nexus.WithAnnotations(cfg.Annotations),
		nexus.WithReadStrategy(strategy),
		nexus.WithAutoThreshold(int64(threshold)),
	}, nil
}

// NewickOptions converts cfg into options for the Newick parser.
func (cfg *Config) NewickOptions() []newick.Option {
	return []newick.Option{newick.WithAnnotations(cfg.Annotations)}
}

// DetectFormat resolves the "auto" format for the file at path.
func (cfg *Config) DetectFormat(path string) (string, error) {
	if cfg.Format != FormatAuto {
		return cfg.Format, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nex", ".nexus", ".nxs", ".trees", ".t":
		return FormatNexus, nil
	case ".nwk", ".newick", ".tre", ".tree":
		return FormatNewick, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, 6)
	n, _ := io.ReadFull(f, head)
	if strings.EqualFold(string(head[:n]), "#NEXUS") {
		return FormatNexus, nil
	}
	return FormatNewick, nil
}
