package audit

import "strings"

// RedactionMarker is the fixed replacement for sensitive values. Redaction is
// irreversible; the original value is gone before the entry is stored.
const RedactionMarker = "[REDACTED]"

// sensitiveMarkers flags a field as secret-bearing when its name contains one
// of these, case-insensitive, at any nesting depth.
var sensitiveMarkers = []string{
	"credential",
	"password",
	"secret",
	"token",
	"key",
	"auth",
}

// isSensitiveField reports whether a field name matches a sensitivity marker.
func isSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Redact walks an arbitrarily nested JSON-like value and replaces the value
// of every sensitive-named field with the redaction marker, recursing through
// maps and slices. The input is not mutated; a redacted copy is returned.
func Redact(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for name, nested := range v {
			if isSensitiveField(name) {
				out[name] = RedactionMarker
				continue
			}
			out[name] = Redact(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = Redact(item)
		}
		return out
	default:
		return value
	}
}

// RedactDetails redacts a details map, preserving nil.
func RedactDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	return Redact(details).(map[string]interface{})
}
