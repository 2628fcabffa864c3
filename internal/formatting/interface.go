// Package formatting renders status reports, record listings and operation
// history as tables, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"os"

	"racectl/internal/collector"
	"racectl/internal/deployment"
	"racectl/internal/history"
	"racectl/internal/status"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the accepted output formats.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (OutputFormat, error) {
	for _, f := range Formats {
		if f == s {
			return OutputFormat(s), nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (valid: table, json, yaml)", s)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output
	// MaxDepth limits how deep report trees are rendered as tables; zero
	// shows every level.
	MaxDepth int
	// Out defaults to stdout.
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Formatter renders racectl data in one output format.
type Formatter interface {
	FormatReport(title string, r *status.Report) error
	FormatSnapshot(s *collector.Snapshot) error
	FormatListings(kind string, listings []deployment.Listing) error
	FormatHistory(entries []history.Entry) error

	// Generic data formatting
	FormatData(data interface{}) error

	// Configuration
	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

// factory implements the Factory interface
type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}

// snapshotView is the structured form of a snapshot.
type snapshotView struct {
	Deployment       string                             `json:"deployment" yaml:"deployment"`
	State            status.DeploymentState             `json:"state" yaml:"state"`
	EnvironmentState status.EnvironmentState            `json:"environmentState" yaml:"environmentState"`
	CollectedAt      string                             `json:"collectedAt,omitempty" yaml:"collectedAt,omitempty"`
	Environment      *status.Report                     `json:"environment,omitempty" yaml:"environment,omitempty"`
	Containers       *status.Report                     `json:"containers,omitempty" yaml:"containers,omitempty"`
	Nodes            *status.Report                     `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Services         *status.Report                     `json:"services,omitempty" yaml:"services,omitempty"`
	Facets           map[collector.Facet]*status.Report `json:"facets,omitempty" yaml:"facets,omitempty"`
}

func viewOf(s *collector.Snapshot) snapshotView {
	v := snapshotView{
		Deployment:       s.Deployment,
		State:            s.State,
		EnvironmentState: s.EnvironmentState,
		Environment:      s.Environment,
		Containers:       s.Containers,
		Nodes:            s.Nodes,
		Services:         s.Services,
		Facets:           s.Facets,
	}
	if !s.CollectedAt.IsZero() {
		v.CollectedAt = s.CollectedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}
