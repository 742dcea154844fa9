package util

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID generates a new random identifier
func NewID() string {
	return uuid.NewString()
}

// NewCompactID generates a new random identifier without dashes
func NewCompactID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// FormatTime renders a timestamp for human-facing messages
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// ToBool coerces loosely-typed record store values into a boolean
func ToBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(val) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return false
	}
}
