// Package config holds the analysis tunables shared by the pipeline stages.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete analysis configuration.
type Config struct {
	Analysis AnalysisSettings `hcl:"analysis,block"`
	Style    StyleSettings    `hcl:"style,block"`
}

// AnalysisSettings tunes reconciliation and identity resolution.
type AnalysisSettings struct {
	// Epsilon bounds float comparisons on chip amounts.
	Epsilon float64 `hcl:"epsilon,optional"`
	// MaxCandidateDistance is the Levenshtein cutoff for reporting
	// similar-but-unmerged identity pairs.
	MaxCandidateDistance int `hcl:"max_candidate_distance,optional"`
}

// StyleSettings holds the cutoffs for play-style classification.
type StyleSettings struct {
	MinSampleHands int     `hcl:"min_sample_hands,optional"`
	TightVPIP      float64 `hcl:"tight_vpip,optional"`
	AggressiveAF   float64 `hcl:"aggressive_af,optional"`
	AggressivePFR  float64 `hcl:"aggressive_pfr,optional"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisSettings{
			Epsilon:              0.01,
			MaxCandidateDistance: 2,
		},
		Style: StyleSettings{
			MinSampleHands: 30,
			TightVPIP:      25.0,
			AggressiveAF:   1.5,
			AggressivePFR:  15.0,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist or omits values.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Analysis.Epsilon == 0 {
		config.Analysis.Epsilon = defaults.Analysis.Epsilon
	}
	if config.Analysis.MaxCandidateDistance == 0 {
		config.Analysis.MaxCandidateDistance = defaults.Analysis.MaxCandidateDistance
	}
	if config.Style.MinSampleHands == 0 {
		config.Style.MinSampleHands = defaults.Style.MinSampleHands
	}
	if config.Style.TightVPIP == 0 {
		config.Style.TightVPIP = defaults.Style.TightVPIP
	}
	if config.Style.AggressiveAF == 0 {
		config.Style.AggressiveAF = defaults.Style.AggressiveAF
	}
	if config.Style.AggressivePFR == 0 {
		config.Style.AggressivePFR = defaults.Style.AggressivePFR
	}

	return &config, nil
}
