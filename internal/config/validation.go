package config

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, entityType string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateEntityName validates that an entity name follows proper conventions
func ValidateEntityName(name, entityType string) error {
	if err := ValidateRequired("name", name, entityType); err != nil {
		return err
	}

	if len(name) > 100 {
		return ValidationError{Field: "name", Value: name, Message: "must not exceed 100 characters"}
	}

	if strings.ContainsAny(name, " /\\:") {
		return ValidationError{
			Field:   "name",
			Value:   name,
			Message: "cannot contain spaces or path separators",
		}
	}

	return nil
}

// FormatValidationError creates a consistent validation error message
func FormatValidationError(entityType, entityName string, err error) error {
	if err == nil {
		return nil
	}

	if entityName != "" {
		return fmt.Errorf("validation failed for %s '%s': %w", entityType, entityName, err)
	}
	return fmt.Errorf("validation failed for %s: %w", entityType, err)
}

// Validate checks every section of c and collects all problems. filePath is
// only used to label them.
func (c Config) Validate(filePath string) *Problems {
	errs := &Problems{File: filePath}
	add := errs.add

	if c.PollInterval <= 0 {
		add("polling", fmt.Sprintf("pollInterval must be positive, got %s", c.PollInterval))
	}
	if c.MaxParallel < 1 {
		add("polling", fmt.Sprintf("maxParallel must be at least 1, got %d", c.MaxParallel))
	}

	for _, timeout := range []struct {
		name string
		d    time.Duration
	}{
		{"up", c.Timeouts.Up},
		{"down", c.Timeouts.Down},
		{"configs", c.Timeouts.Configs},
		{"action", c.Timeouts.Action},
	} {
		if timeout.d <= 0 {
			add("timeouts", fmt.Sprintf("timeouts.%s must be positive, got %s", timeout.name, timeout.d))
		}
	}

	for _, action := range []string{ActionUp, ActionDown, ActionPushConfigs, ActionPublishConfigs} {
		tmpl, ok := c.Runner.Commands[action]
		if !ok || strings.TrimSpace(tmpl) == "" {
			add("runner", fmt.Sprintf("runner.commands.%s is not set", action),
				"remove the runner.commands section to use the default playbook commands")
			continue
		}
		if _, err := template.New(action).Funcs(sprig.TxtFuncMap()).Parse(tmpl); err != nil {
			add("runner", fmt.Sprintf("runner.commands.%s is not a valid template: %v", action, err))
		}
	}

	if c.Docker.Port < 1 || c.Docker.Port > 65535 {
		add("docker", fmt.Sprintf("docker.port %d is out of range", c.Docker.Port))
	}
	if strings.ContainsAny(c.AWS.Region, " \t") {
		add("aws", fmt.Sprintf("aws.region %q is not a region name", c.AWS.Region),
			"leave aws.region empty to use the region of the aws profile")
	}

	seen := make(map[string]bool)
	for _, svc := range c.Services {
		if err := ValidateEntityName(svc, "service"); err != nil {
			add("services", err.Error())
		}
		if seen[svc] {
			add("services", fmt.Sprintf("service %q is listed twice", svc))
		}
		seen[svc] = true
	}

	return errs
}
