package cache

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9:_-]`)

// Key derives one deterministic cache key from a namespace and an ordered
// list of parameter parts. Structured parts are serialized with ordinary
// JSON stringification (struct field order as declared, no semantic
// canonicalization), all parts are joined with ":", and any character
// outside [a-zA-Z0-9:_-] is replaced with "_".
func Key(namespace string, parts ...any) string {
	segments := make([]string, 0, len(parts)+1)
	if namespace != "" {
		segments = append(segments, namespace)
	}
	for _, part := range parts {
		segments = append(segments, stringify(part))
	}
	return keySanitizer.ReplaceAllString(strings.Join(segments, ":"), "_")
}

func stringify(part any) string {
	switch v := part.(type) {
	case nil:
		return "null"
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
