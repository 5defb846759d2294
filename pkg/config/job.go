// pkg/config/job.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JobFile is an optional YAML job definition selected with the -job flag.
// Credentials stay in the environment; the job file describes what to run.
type JobFile struct {
	Source JobSource `yaml:"source"`
	Passes []string  `yaml:"passes"`
	Output JobOutput `yaml:"output"`
	Audit  JobAudit  `yaml:"audit"`
}

// JobSource selects the tabular input for a run
type JobSource struct {
	Kind   string `yaml:"kind"`
	Path   string `yaml:"path"`
	Sheet  string `yaml:"sheet"`
	Schema string `yaml:"schema"`
	Table  string `yaml:"table"`
}

// JobOutput selects the cleaned-output sink for a run
type JobOutput struct {
	Kind   string `yaml:"kind"`
	Path   string `yaml:"path"`
	Schema string `yaml:"schema"`
	Table  string `yaml:"table"`
}

// JobAudit controls audit-trail persistence for a run
type JobAudit struct {
	Enabled bool   `yaml:"enabled"`
	Table   string `yaml:"table"`
}

// LoadJobFile parses a YAML job definition
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var job JobFile
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}

	return &job, nil
}

// Apply overlays the job definition onto an environment-derived config.
// Only fields the job file actually sets are overridden; the pass list is
// read separately by the caller because it configures the pipeline, not
// the environment.
func (j *JobFile) Apply(cfg *Config) {
	if j.Source.Kind != "" {
		cfg.Source.Kind = j.Source.Kind
	}
	if j.Source.Path != "" {
		cfg.Source.Path = j.Source.Path
	}
	if j.Source.Sheet != "" {
		cfg.Source.Sheet = j.Source.Sheet
	}
	if j.Source.Schema != "" {
		cfg.Source.Schema = j.Source.Schema
	}
	if j.Source.Table != "" {
		cfg.Source.Table = j.Source.Table
	}

	if j.Output.Kind != "" {
		cfg.Output.Kind = j.Output.Kind
	}
	if j.Output.Path != "" {
		cfg.Output.Path = j.Output.Path
	}
	if j.Output.Schema != "" {
		cfg.Output.Schema = j.Output.Schema
	}
	if j.Output.Table != "" {
		cfg.Output.Table = j.Output.Table
	}

	if j.Audit.Enabled {
		cfg.AuditEnabled = true
	}
	if j.Audit.Table != "" {
		cfg.AuditTable = j.Audit.Table
	}
}
