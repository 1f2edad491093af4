// CLAUDE:SUMMARY Configuration struct, defaults and YAML loading for the document importer.
package docimport

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/blockdoc/idgen"
	"github.com/hazyhaar/blockdoc/pdftext"
)

// Config configures the importer.
type Config struct {
	// MaxFileSize is the largest upload accepted, in bytes (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// PDFEngine selects the PDF text decoder: "ledongthuc" (default) or "pdfcpu".
	PDFEngine string `json:"pdf_engine" yaml:"pdf_engine"`

	// Sanitize runs decoded HTML through the safety policy before
	// conversion (default: true).
	Sanitize *bool `json:"sanitize,omitempty" yaml:"sanitize"`

	// IDPrefix prefixes generated block IDs (default: "imp-").
	IDPrefix string `json:"id_prefix" yaml:"id_prefix"`

	// Root confines paths received through MCP tools to one directory.
	// Empty means no restriction.
	Root string `json:"root,omitempty" yaml:"root"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.PDFEngine == "" {
		c.PDFEngine = pdftext.EngineLedongthuc
	}
	if c.Sanitize == nil {
		on := true
		c.Sanitize = &on
	}
	if c.IDPrefix == "" {
		c.IDPrefix = idgen.ImportPrefix
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks a configuration after defaults are applied.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("max_file_size must be positive"))
	}
	if _, err := pdftext.New(c.PDFEngine); err != nil {
		errs = append(errs, fmt.Errorf("pdf_engine: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config file, applies defaults and validates.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
