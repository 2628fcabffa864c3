package formatting

import (
	"encoding/json"
	"fmt"
	"strings"

	"racectl/internal/status"

	"github.com/jedib0t/go-pretty/v6/text"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It falls back to fmt.Sprintf when the value cannot be marshaled.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// statusColor picks the display color of a status value.
func statusColor(v status.Value) text.Colors {
	if v == nil {
		return text.Colors{text.FgHiBlack}
	}
	switch v.Level() {
	case status.LevelUp:
		return text.Colors{text.FgGreen}
	case status.LevelDown:
		return text.Colors{text.FgHiBlack}
	}
	s := v.String()
	if strings.Contains(s, "ERROR") || strings.Contains(s, "FAILED") || strings.Contains(s, "UNHEALTHY") {
		return text.Colors{text.FgRed, text.Bold}
	}
	return text.Colors{text.FgYellow}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
