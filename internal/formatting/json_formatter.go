package formatting

import (
	"encoding/json"
	"fmt"

	"racectl/internal/collector"
	"racectl/internal/deployment"
	"racectl/internal/history"
	"racectl/internal/status"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

func (f *JSONFormatter) FormatReport(title string, r *status.Report) error {
	return f.FormatData(r)
}

func (f *JSONFormatter) FormatSnapshot(s *collector.Snapshot) error {
	return f.FormatData(viewOf(s))
}

func (f *JSONFormatter) FormatListings(kind string, listings []deployment.Listing) error {
	if listings == nil {
		listings = []deployment.Listing{}
	}
	return f.FormatData(listings)
}

func (f *JSONFormatter) FormatHistory(entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	return f.FormatData(entries)
}

// FormatData writes data as JSON, compact in quiet mode.
func (f *JSONFormatter) FormatData(data interface{}) error {
	out, err := f.marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.options.out(), out)
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

func (f *JSONFormatter) marshal(data interface{}) (string, error) {
	var (
		b   []byte
		err error
	)
	if f.options.Quiet {
		b, err = json.Marshal(data)
	} else {
		b, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	return string(b), nil
}
