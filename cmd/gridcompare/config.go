package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/gridcompare/pkg/ingest"
	"github.com/ruslano69/gridcompare/pkg/report"
	"github.com/ruslano69/gridcompare/pkg/resultlog"
	"github.com/ruslano69/gridcompare/pkg/retry"
	"github.com/ruslano69/gridcompare/pkg/xlsx"
)

// Config represents the main configuration structure
type Config struct {
	Compare   CompareConfig    `yaml:"compare"`
	Sources   SourcesConfig    `yaml:"sources,omitempty"`
	Output    OutputConfig     `yaml:"output"`
	Normalize NormalizeConfig  `yaml:"normalize,omitempty"`
	ResultLog resultlog.Config `yaml:"result_log,omitempty"`
	Log       LogConfig        `yaml:"log"`
}

// CompareConfig contains comparison settings
type CompareConfig struct {
	KeyField      string            `yaml:"key_field"`
	KeyTriplet    *bool             `yaml:"key_triplet,omitempty"` // default: true
	RequireFields bool              `yaml:"require_fields"`        // refuse key-only grids
	Sheets        report.SheetNames `yaml:"sheets,omitempty"`
}

// SourcesConfig names both tables
type SourcesConfig struct {
	Original SourceConfig `yaml:"original,omitempty"`
	Export   SourceConfig `yaml:"export,omitempty"`
}

// SourceConfig describes one table source
type SourceConfig struct {
	Location  string `yaml:"location,omitempty"`  // file path or database URL
	Sheet     string `yaml:"sheet,omitempty"`     // xlsx worksheet
	Table     string `yaml:"table,omitempty"`     // database table
	Query     string `yaml:"query,omitempty"`     // database query
	Delimiter string `yaml:"delimiter,omitempty"` // csv delimiter
}

// OutputConfig contains workbook settings
type OutputConfig struct {
	Path         string  `yaml:"path"` // file or directory
	ColumnWidth  float64 `yaml:"column_width"`
	FreezeHeader *bool   `yaml:"freeze_header,omitempty"` // default: true
}

// NormalizeConfig for value normalization before comparison
type NormalizeConfig struct {
	Rules []ingest.Rule `yaml:"rules,omitempty"`
}

// LogConfig for logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to YAML file
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig is used when no config file exists
func DefaultConfig() *Config {
	return &Config{
		Compare: CompareConfig{Sheets: report.DefaultSheetNames()},
		Output:  OutputConfig{Path: ".", ColumnWidth: xlsx.DefaultOptions().ColumnWidth},
		Log:     LogConfig{Level: "info"},
	}
}

// CreateSampleConfig creates a sample configuration
func CreateSampleConfig() *Config {
	keyTriplet := true
	freeze := true

	config := DefaultConfig()
	config.Compare.KeyField = "id"
	config.Compare.KeyTriplet = &keyTriplet
	config.Sources = SourcesConfig{
		Original: SourceConfig{Location: "original.csv"},
		Export:   SourceConfig{Location: "sqlite://export.db", Table: "customers"},
	}
	config.Output.FreezeHeader = &freeze
	config.Normalize.Rules = []ingest.Rule{
		{Field: ingest.AllFields, Strategy: ingest.NormalizeTrim},
		{Field: "email", Strategy: ingest.NormalizeEmail},
	}
	config.ResultLog = resultlog.Config{
		Enabled: false,
		Address: "localhost:6379",
		Name:    "gridcompare",
		TTL:     86400,
		Retry:   retry.Enable(3, 500*time.Millisecond),
	}
	return config
}

// ApplyFlags overrides config values with flags given on the command line
func (c *Config) ApplyFlags(f *Flags) {
	if *f.Original != "" {
		c.Sources.Original.Location = *f.Original
	}
	if *f.Export != "" {
		c.Sources.Export.Location = *f.Export
	}
	if *f.OriginalSheet != "" {
		c.Sources.Original.Sheet = *f.OriginalSheet
	}
	if *f.ExportSheet != "" {
		c.Sources.Export.Sheet = *f.ExportSheet
	}
	if *f.OriginalQuery != "" {
		c.Sources.Original.Query = *f.OriginalQuery
	}
	if *f.ExportQuery != "" {
		c.Sources.Export.Query = *f.ExportQuery
	}
	if *f.Delimiter != "" {
		c.Sources.Original.Delimiter = *f.Delimiter
		c.Sources.Export.Delimiter = *f.Delimiter
	}
	if *f.Key != "" {
		c.Compare.KeyField = *f.Key
	}
	if f.IsSet("no-key-triplet") {
		keyTriplet := !*f.NoKeyTriplet
		c.Compare.KeyTriplet = &keyTriplet
	}
	if f.IsSet("require-fields") {
		c.Compare.RequireFields = *f.RequireFields
	}
	if *f.Normalize != "" {
		for _, s := range strings.Split(*f.Normalize, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			c.Normalize.Rules = append(c.Normalize.Rules, ingest.Rule{
				Field:    ingest.AllFields,
				Strategy: ingest.NormalizeRule(s),
			})
		}
	}
	if *f.Output != "" {
		c.Output.Path = *f.Output
	}
	if *f.ColumnWidth > 0 {
		c.Output.ColumnWidth = *f.ColumnWidth
	}
	if *f.LogLevel != "" {
		c.Log.Level = *f.LogLevel
	}
	if f.IsSet("log-json") {
		c.Log.JSON = *f.LogJSON
	}
}

// ReportOptions builds report options; the key triplet is on unless disabled
func (c *Config) ReportOptions() report.Options {
	opts := report.DefaultOptions()
	if c.Compare.KeyTriplet != nil {
		opts.KeyTriplet = *c.Compare.KeyTriplet
	}
	if c.Compare.Sheets != (report.SheetNames{}) {
		opts.Sheets = c.Compare.Sheets
	}
	return opts
}

// WriterOptions builds workbook writer options
func (c *Config) WriterOptions() xlsx.Options {
	opts := xlsx.DefaultOptions()
	if c.Output.ColumnWidth > 0 {
		opts.ColumnWidth = c.Output.ColumnWidth
	}
	if c.Output.FreezeHeader != nil {
		opts.FreezeHeader = *c.Output.FreezeHeader
	}
	return opts
}

// IngestOptions builds reader options for one source
func (s SourceConfig) IngestOptions(norm *ingest.Normalizer) (ingest.Options, error) {
	opts := ingest.Options{
		Sheet:      s.Sheet,
		Table:      s.Table,
		Query:      s.Query,
		Normalizer: norm,
	}
	switch s.Delimiter {
	case "":
	case `\t`, "tab":
		opts.Comma = '\t'
	default:
		r := []rune(s.Delimiter)
		if len(r) != 1 {
			return opts, fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
		}
		opts.Comma = r[0]
	}
	return opts, nil
}
