package core

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// HCL parsing structs

type hclConfig struct {
	Verbose    int    `hcl:"verbose,optional"`
	Foreground *bool  `hcl:"foreground,optional"`
	Tag        string `hcl:"tag,optional"`
}

// LoadConfig loads the HCL configuration file and returns a Configuration struct
func LoadConfig(filename string) (*Configuration, error) {
	var hclCfg hclConfig

	err := hclsimple.DecodeFile(filename, nil, &hclCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HCL config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.ConfigPath = filename
	cfg.Verbose = hclCfg.Verbose
	cfg.Tag = hclCfg.Tag
	if hclCfg.Foreground != nil {
		cfg.Foreground = *hclCfg.Foreground
	}

	return cfg, nil
}

// LoadConfigOrDefault loads filename when it exists and falls back to
// DefaultConfig otherwise. Parse errors are still reported.
func LoadConfigOrDefault(filename string) (*Configuration, error) {
	if filename == "" || !ConfigExists(filename) {
		return DefaultConfig(), nil
	}

	return LoadConfig(filename)
}
