// Package config loads and validates the tool's run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shivam221098/bigquery/internal/staging"
)

// Destination kinds.
const (
	DestCSV      = "csv"
	DestBigQuery = "bigquery"
)

// Staging choices.
const (
	ChoiceMemory = "memory"
	ChoiceDisk   = "disk"
)

// Upload write modes.
const (
	UploadAppend  = "append"
	UploadReplace = "replace"
)

// defaultSubmitInterval paces pooled submissions to keep concurrent batches
// from bursting against warehouse load-job quotas.
const defaultSubmitInterval = 2 * time.Second

// Config is the run configuration, read from configuration.json (or a YAML
// equivalent) next to the binary.
type Config struct {
	InDir          string `json:"in_dir" yaml:"in_dir"`
	OutDir         string `json:"out_dir" yaml:"out_dir"`
	ConversionType string `json:"conversion_type" yaml:"conversion_type"`
	Choice         string `json:"choice" yaml:"choice"`

	BQUploadType string `json:"bg_upload_type" yaml:"bg_upload_type"`
	BQProjectID  string `json:"bg_project_id" yaml:"bg_project_id"`
	BQDataSet    string `json:"bg_data_set" yaml:"bg_data_set"`
	// BQTableName, when set, is a fixed destination table shared by every
	// batch. Uploads into it always append.
	BQTableName string `json:"bg_table_name" yaml:"bg_table_name"`

	SubmitIntervalSecs int `json:"submit_interval_secs" yaml:"submit_interval_secs"`
}

// Load reads and validates a configuration file. The format follows the
// file extension: .yaml/.yml parse as YAML, anything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every enum field holds a supported value.
func (c *Config) Validate() error {
	if c.InDir == "" {
		return fmt.Errorf("in_dir must be set")
	}
	switch strings.ToLower(c.ConversionType) {
	case DestCSV:
		if c.OutDir == "" {
			return fmt.Errorf("out_dir must be set for csv conversion")
		}
	case DestBigQuery:
		if c.BQProjectID == "" || c.BQDataSet == "" {
			return fmt.Errorf("bg_project_id and bg_data_set must be set for bigquery conversion")
		}
		switch strings.ToLower(c.BQUploadType) {
		case UploadAppend, UploadReplace:
		default:
			return fmt.Errorf("unknown bg_upload_type %q", c.BQUploadType)
		}
	default:
		return fmt.Errorf("unknown conversion_type %q", c.ConversionType)
	}
	switch strings.ToLower(c.Choice) {
	case ChoiceMemory, ChoiceDisk:
	default:
		return fmt.Errorf("unknown choice %q", c.Choice)
	}
	return nil
}

// ToWarehouse reports whether batches upload to BigQuery instead of
// writing CSV files.
func (c *Config) ToWarehouse() bool {
	return strings.ToLower(c.ConversionType) == DestBigQuery
}

// StagingMode maps the configured choice to a staging store mode.
func (c *Config) StagingMode() staging.Mode {
	if strings.ToLower(c.Choice) == ChoiceDisk {
		return staging.ModeFile
	}
	return staging.ModeMemory
}

// SubmitInterval returns the pooled-mode submission pacing interval.
func (c *Config) SubmitInterval() time.Duration {
	if c.SubmitIntervalSecs > 0 {
		return time.Duration(c.SubmitIntervalSecs) * time.Second
	}
	return defaultSubmitInterval
}
