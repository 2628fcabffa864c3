package formatting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"racectl/internal/collector"
	"racectl/internal/deployment"
	"racectl/internal/history"
	"racectl/internal/status"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatReport renders a report tree with one row per node, children
// indented under their parent.
func (f *TableFormatter) FormatReport(title string, r *status.Report) error {
	if r == nil {
		f.formatEmptyMessage(fmt.Sprintf("No %s reported", title))
		return nil
	}
	t := f.createTable()
	if !f.options.Quiet && title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(f.header("COMPONENT", "STATUS", "REASON"))

	_ = r.Walk(func(path []string, node *status.Report) error {
		if f.options.MaxDepth > 0 && len(path) > f.options.MaxDepth {
			return nil
		}
		name := title
		if len(path) > 0 {
			name = strings.Repeat("  ", len(path)-1) + path[len(path)-1]
		}
		t.AppendRow(table.Row{name, f.status(node.Status), truncate(node.Reason, 60)})
		return nil
	})

	t.Render()
	return nil
}

// FormatSnapshot renders a deployment summary followed by every tree.
func (f *TableFormatter) FormatSnapshot(s *collector.Snapshot) error {
	out := f.options.out()
	if !f.options.Quiet {
		fmt.Fprintf(out, "%s %s: %s (environment %s)\n",
			f.accent("Deployment"), s.Deployment, f.colorState(string(s.State)), s.EnvironmentState)
		if !s.CollectedAt.IsZero() {
			fmt.Fprintf(out, "%s %s\n", f.accent("Collected:"), s.CollectedAt.Format(time.RFC3339))
		}
		fmt.Fprintln(out)
	}

	for _, tree := range []struct {
		title  string
		report *status.Report
	}{
		{"environment", s.Environment},
		{"containers", s.Containers},
		{"nodes", s.Nodes},
		{"services", s.Services},
	} {
		if tree.report == nil {
			continue
		}
		if err := f.FormatReport(tree.title, tree.report); err != nil {
			return err
		}
	}

	if len(s.Facets) == 0 {
		return nil
	}
	t := f.createTable()
	if !f.options.Quiet {
		t.SetTitle("node facets")
	}
	t.AppendHeader(f.header("FACET", "STATUS"))
	facets := make([]string, 0, len(s.Facets))
	for facet := range s.Facets {
		facets = append(facets, string(facet))
	}
	sort.Strings(facets)
	for _, facet := range facets {
		t.AppendRow(table.Row{facet, f.status(s.Facets[collector.Facet(facet)].Status)})
	}
	t.Render()
	return nil
}

// FormatListings renders environment or deployment records.
func (f *TableFormatter) FormatListings(kind string, listings []deployment.Listing) error {
	if len(listings) == 0 {
		f.formatEmptyMessage(fmt.Sprintf("No %ss found", kind))
		return nil
	}
	withEnv := false
	for _, l := range listings {
		if l.Environment != "" {
			withEnv = true
		}
	}

	t := f.createTable()
	if withEnv {
		t.AppendHeader(f.header("NAME", "ENVIRONMENT", "VERSION", "COMPATIBLE"))
	} else {
		t.AppendHeader(f.header("NAME", "VERSION", "COMPATIBLE"))
	}
	for _, l := range listings {
		compatible := "yes"
		if !l.Compatible {
			compatible = f.colorize(text.Colors{text.FgRed}, "no")
		}
		if withEnv {
			t.AppendRow(table.Row{l.Name, l.Environment, l.RacectlVersion, compatible})
		} else {
			t.AppendRow(table.Row{l.Name, l.RacectlVersion, compatible})
		}
	}
	t.Render()
	f.formatTotal(len(listings), kind+"s")
	return nil
}

// FormatHistory renders operations newest first.
func (f *TableFormatter) FormatHistory(entries []history.Entry) error {
	if len(entries) == 0 {
		f.formatEmptyMessage("No operations recorded")
		return nil
	}
	t := f.createTable()
	t.AppendHeader(f.header("OPERATION", "DEPLOYMENT", "ACTION", "OUTCOME", "STARTED", "DURATION", "ERROR"))
	for _, e := range entries {
		action := e.Action
		if e.Force {
			action += " (forced)"
		}
		outcome := e.Outcome
		if e.Outcome == history.OutcomeFailure {
			outcome = f.colorize(text.Colors{text.FgRed}, outcome)
		} else {
			outcome = f.colorize(text.Colors{text.FgGreen}, outcome)
		}
		t.AppendRow(table.Row{
			truncate(e.ID, 8),
			e.Deployment,
			action,
			outcome,
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Duration().Round(time.Second).String(),
			truncate(firstLine(e.Error), 50),
		})
	}
	t.Render()
	f.formatTotal(len(entries), "operations")
	return nil
}

// FormatData formats generic data as key/value rows
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}:
		return f.formatObjectData(d)
	case map[string]string:
		obj := make(map[string]interface{}, len(d))
		for k, v := range d {
			obj[k] = v
		}
		return f.formatObjectData(obj)
	case string:
		fmt.Fprintln(f.options.out(), d)
	default:
		fmt.Fprintf(f.options.out(), "%v\n", d)
	}
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.out())
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, n := range names {
		row[i] = f.colorize(text.Colors{text.FgHiCyan}, n)
	}
	return row
}

func (f *TableFormatter) colorize(c text.Colors, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) accent(s string) string {
	return f.colorize(text.Colors{text.FgHiBlue}, s)
}

func (f *TableFormatter) status(v status.Value) string {
	s := "UNKNOWN"
	if v != nil {
		s = v.String()
	}
	return f.colorize(statusColor(v), s)
}

func (f *TableFormatter) colorState(s string) string {
	switch s {
	case string(status.DeploymentUp):
		return f.colorize(text.Colors{text.FgGreen}, s)
	case string(status.DeploymentError):
		return f.colorize(text.Colors{text.FgRed, text.Bold}, s)
	case string(status.DeploymentDown):
		return s
	default:
		return f.colorize(text.Colors{text.FgYellow}, s)
	}
}

// formatEmptyMessage prints empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) {
	fmt.Fprintln(f.options.out(), f.colorize(text.Colors{text.FgYellow}, message))
}

func (f *TableFormatter) formatTotal(n int, what string) {
	if f.options.Quiet {
		return
	}
	fmt.Fprintf(f.options.out(), "%s %d %s\n", f.accent("Total:"), n, what)
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	t := f.createTable()
	t.AppendHeader(f.header("KEY", "VALUE"))

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		t.AppendRow(table.Row{key, truncate(fmt.Sprintf("%v", data[key]), 100)})
	}

	t.Render()
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
