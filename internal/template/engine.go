// Package template renders remote action command lines from Go text
// templates with the sprig function library.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders command templates
type Engine struct {
	funcs template.FuncMap
}

// New creates a new template engine
func New() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// Render executes text against data. Referencing a key missing from data is
// an error rather than an empty string, so a typo in a command template
// cannot silently drop an argument.
func (e *Engine) Render(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}
