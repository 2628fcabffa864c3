package formatting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"racectl/internal/collector"
	"racectl/internal/deployment"
	"racectl/internal/history"
	"racectl/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testReport() *status.Report {
	return status.Aggregate(status.ErrorDominant, map[string]*status.Report{
		"linux-x86_64": status.Aggregate(status.ErrorDominant, map[string]*status.Report{
			"host-0": status.Aggregate(status.ErrorDominant, map[string]*status.Report{
				"race-client-00001": status.Leaf(status.ComponentReady, "Up 2 minutes"),
				"race-server-00001": status.Leaf(status.ComponentError, "Exited (1)"),
			}),
		}),
	})
}

func testSnapshot() *collector.Snapshot {
	return &collector.Snapshot{
		Deployment:       "alpha",
		State:            status.DeploymentError,
		EnvironmentState: status.EnvironmentProvisioned,
		Containers:       testReport(),
		Nodes: status.Aggregate(status.RunningMajority, map[string]*status.Report{
			"race-client-00001": status.Leaf(status.DaemonRunning, ""),
		}),
		Facets: map[collector.Facet]*status.Report{
			collector.FacetRace: status.Aggregate(status.RunningMajority, map[string]*status.Report{
				"race-client-00001": status.Leaf(status.RaceStopped, ""),
			}),
		},
		CollectedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func render(t *testing.T, format OutputFormat, quiet bool, fn func(Formatter) error) string {
	t.Helper()
	var buf bytes.Buffer
	f := NewFactory().CreateFormatter(Options{Format: format, Quiet: quiet, Out: &buf})
	require.NoError(t, fn(f))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	for _, s := range Formats {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(s), f)
	}
	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestFactory(t *testing.T) {
	factory := NewFactory()
	assert.IsType(t, &TableFormatter{}, factory.CreateFormatter(Options{}))
	assert.IsType(t, &JSONFormatter{}, factory.CreateFormatter(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, factory.CreateFormatter(Options{Format: FormatYAML}))

	f := factory.CreateFormatter(Options{Format: FormatJSON})
	f.SetOptions(Options{Format: FormatJSON, Quiet: true})
	assert.True(t, f.GetOptions().Quiet)
}

func TestTableFormatter_Report(t *testing.T) {
	out := render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatReport("containers", testReport())
	})

	assert.Contains(t, out, "COMPONENT")
	assert.Contains(t, out, "containers")
	assert.Contains(t, out, "linux-x86_64")
	assert.Contains(t, out, "race-server-00001")
	assert.Contains(t, out, "Exited (1)")
	assert.Contains(t, out, "ERROR")
	assert.NotContains(t, out, "\x1b[", "no color unless enabled")

	var buf bytes.Buffer
	f := NewTableFormatter(Options{MaxDepth: 1, Out: &buf})
	require.NoError(t, f.FormatReport("containers", testReport()))
	assert.Contains(t, buf.String(), "linux-x86_64")
	assert.NotContains(t, buf.String(), "host-0")

	buf.Reset()
	require.NoError(t, f.FormatReport("services", nil))
	assert.Contains(t, buf.String(), "No services reported")
}

func TestTableFormatter_Snapshot(t *testing.T) {
	out := render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatSnapshot(testSnapshot())
	})
	assert.Contains(t, out, "Deployment alpha: ERROR (environment PROVISIONED)")
	assert.Contains(t, out, "2024-05-01T12:00:00Z")
	assert.Contains(t, out, "nodes")
	assert.Contains(t, out, "FACET")
	assert.Contains(t, out, "ALL_DOWN")
	assert.NotContains(t, out, "services", "absent trees are skipped")

	quiet := render(t, FormatTable, true, func(f Formatter) error {
		return f.FormatSnapshot(testSnapshot())
	})
	assert.NotContains(t, quiet, "Deployment alpha")
}

func TestTableFormatter_Listings(t *testing.T) {
	listings := []deployment.Listing{
		{Name: "alpha", Environment: "laptop", RacectlVersion: "1.2.0", Compatible: true},
		{Name: "beta", Environment: "prod", RacectlVersion: "0.9.0", Compatible: false},
	}
	out := render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatListings("deployment", listings)
	})
	assert.Contains(t, out, "ENVIRONMENT")
	assert.Contains(t, out, "laptop")
	assert.Contains(t, out, "no")
	assert.Contains(t, out, "Total: 2 deployments")

	out = render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatListings("environment", []deployment.Listing{{Name: "laptop", RacectlVersion: "1.2.0", Compatible: true}})
	})
	assert.NotContains(t, out, "ENVIRONMENT")

	out = render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatListings("environment", nil)
	})
	assert.Equal(t, "No environments found\n", out)
}

func TestTableFormatter_History(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []history.Entry{{
		ID:         "0b9e3f0c-8d7e-4f00-a000-000000000000",
		Deployment: "alpha",
		Action:     "up",
		Force:      true,
		Outcome:    history.OutcomeFailure,
		Error:      "up of deployment alpha failed\nmore detail",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
	}}
	out := render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatHistory(entries)
	})
	assert.Contains(t, out, "0b9e3...")
	assert.Contains(t, out, "up (forced)")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "up of deployment alpha failed")
	assert.NotContains(t, out, "more detail")

	out = render(t, FormatTable, false, func(f Formatter) error { return f.FormatHistory(nil) })
	assert.Equal(t, "No operations recorded\n", out)
}

func TestTableFormatter_Data(t *testing.T) {
	out := render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatData(map[string]string{"version": "1.2.3", "commit": "abc"})
	})
	assert.Less(t, strings.Index(out, "commit"), strings.Index(out, "version"), "keys are sorted")

	out = render(t, FormatTable, false, func(f Formatter) error { return f.FormatData("plain") })
	assert.Equal(t, "plain\n", out)
}

func TestJSONFormatter(t *testing.T) {
	out := render(t, FormatJSON, false, func(f Formatter) error {
		return f.FormatSnapshot(testSnapshot())
	})

	var decoded struct {
		Deployment string `json:"deployment"`
		State      string `json:"state"`
		Containers struct {
			Status   string `json:"status"`
			Children map[string]json.RawMessage
		} `json:"containers"`
		Facets map[string]struct {
			Status string `json:"status"`
		} `json:"facets"`
		Services json.RawMessage `json:"services"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "alpha", decoded.Deployment)
	assert.Equal(t, "ERROR", decoded.State)
	assert.Equal(t, "ERROR", decoded.Containers.Status)
	assert.Contains(t, decoded.Containers.Children, "linux-x86_64")
	assert.Equal(t, "ALL_DOWN", decoded.Facets["race"].Status)
	assert.Nil(t, decoded.Services)

	quiet := render(t, FormatJSON, true, func(f Formatter) error {
		return f.FormatListings("deployment", nil)
	})
	assert.Equal(t, "[]\n", quiet)

	err := NewJSONFormatter(Options{Out: &bytes.Buffer{}}).FormatData(make(chan int))
	assert.ErrorContains(t, err, "failed to format JSON")
}

func TestYAMLFormatter(t *testing.T) {
	out := render(t, FormatYAML, false, func(f Formatter) error {
		return f.FormatReport("containers", testReport())
	})

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "ERROR", decoded["status"])
	assert.Contains(t, out, "reason: Exited (1)")

	out = render(t, FormatYAML, false, func(f Formatter) error { return f.FormatHistory(nil) })
	assert.Equal(t, "[]\n", out)
}
