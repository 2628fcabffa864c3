package formatting

import (
	"fmt"

	"racectl/internal/collector"
	"racectl/internal/deployment"
	"racectl/internal/history"
	"racectl/internal/status"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

func (f *YAMLFormatter) FormatReport(title string, r *status.Report) error {
	return f.FormatData(r)
}

func (f *YAMLFormatter) FormatSnapshot(s *collector.Snapshot) error {
	return f.FormatData(viewOf(s))
}

func (f *YAMLFormatter) FormatListings(kind string, listings []deployment.Listing) error {
	if listings == nil {
		listings = []deployment.Listing{}
	}
	return f.FormatData(listings)
}

func (f *YAMLFormatter) FormatHistory(entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	return f.FormatData(entries)
}

// FormatData writes data as a YAML document.
func (f *YAMLFormatter) FormatData(data interface{}) error {
	enc := yaml.NewEncoder(f.options.out())
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	return enc.Close()
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}
