package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		wantCategory string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:         "negative timeout",
			mutate:       func(c *Config) { c.Timeouts.Configs = -1 },
			wantCategory: "timeouts",
		},
		{
			name:         "missing runner command",
			mutate:       func(c *Config) { delete(c.Runner.Commands, ActionDown) },
			wantCategory: "runner",
		},
		{
			name:         "broken runner template",
			mutate:       func(c *Config) { c.Runner.Commands[ActionUp] = "run {{ .deployment" },
			wantCategory: "runner",
		},
		{
			name:         "unknown template function",
			mutate:       func(c *Config) { c.Runner.Commands[ActionUp] = "run {{ nosuchfunc .x }}" },
			wantCategory: "runner",
		},
		{
			name:         "malformed aws region",
			mutate:       func(c *Config) { c.AWS.Region = "us east 1" },
			wantCategory: "aws",
		},
		{
			name:         "duplicate service",
			mutate:       func(c *Config) { c.Services = []string{"redis", "redis"} },
			wantCategory: "services",
		},
		{
			name:         "service with spaces",
			mutate:       func(c *Config) { c.Services = []string{"file server"} },
			wantCategory: "services",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)

			errs := cfg.Validate("/tmp/config.yaml")
			if tt.wantCategory == "" {
				assert.False(t, errs.HasErrors(), errs.Report())
				return
			}
			assert.Len(t, errs.InSection(tt.wantCategory), 1)
			assert.Len(t, errs.Items, 1)
			assert.True(t, strings.HasPrefix(errs.Error(), "config.yaml: ["+tt.wantCategory+"]"), errs.Error())
		})
	}
}

func TestValidateEntityName(t *testing.T) {
	assert.NoError(t, ValidateEntityName("deployment-1", "deployment"))
	assert.Error(t, ValidateEntityName("", "deployment"))
	assert.Error(t, ValidateEntityName("a b", "deployment"))
	assert.Error(t, ValidateEntityName("a/b", "deployment"))

	err := FormatValidationError("deployment", "x", ValidateEntityName("", "deployment"))
	assert.EqualError(t, err, "validation failed for deployment 'x': field 'name': is required for deployment")
	assert.NoError(t, FormatValidationError("deployment", "x", nil))
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("provider", "aws", []string{"local", "aws"}))
	assert.EqualError(t, ValidateOneOf("provider", "gcp", []string{"local", "aws"}),
		"field 'provider': must be one of: local, aws")
}
