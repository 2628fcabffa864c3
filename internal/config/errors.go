package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is matched by Load and Delete of a missing entity.
var ErrNotFound = errors.New("entity not found")

// Problem is one invalid setting of a configuration file.
type Problem struct {
	Section     string   `json:"section"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s", p.Section, p.Message)
}

// Problems is every invalid setting found in one configuration file. It is
// returned as an error by LoadConfig.
type Problems struct {
	File  string    `json:"file"`
	Items []Problem `json:"problems"`
}

func (p *Problems) add(section, message string, suggestions ...string) {
	p.Items = append(p.Items, Problem{Section: section, Message: message, Suggestions: suggestions})
}

// HasErrors reports whether any problem was found.
func (p *Problems) HasErrors() bool {
	return len(p.Items) > 0
}

// InSection returns the problems of one configuration section.
func (p *Problems) InSection(section string) []Problem {
	var out []Problem
	for _, item := range p.Items {
		if item.Section == section {
			out = append(out, item)
		}
	}
	return out
}

func (p *Problems) Error() string {
	name := filepath.Base(p.File)
	switch len(p.Items) {
	case 0:
		return name + ": no configuration problems"
	case 1:
		return fmt.Sprintf("%s: %s", name, p.Items[0])
	default:
		return fmt.Sprintf("%s: %s (and %d more problems)", name, p.Items[0], len(p.Items)-1)
	}
}

// Report lists every problem with its suggestions, one per line.
func (p *Problems) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invalid configuration in %s:\n", p.File)
	for _, item := range p.Items {
		fmt.Fprintf(&b, "  - %s\n", item)
		for _, s := range item.Suggestions {
			fmt.Fprintf(&b, "      hint: %s\n", s)
		}
	}
	return b.String()
}
