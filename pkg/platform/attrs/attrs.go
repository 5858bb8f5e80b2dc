// Package attrs reads values out of slog-style alternating key/value lists.
package attrs

import "fmt"

// ExtractString returns the value following key in a key/value list, or ""
// when the key is absent. Non-string values are formatted with %v.
func ExtractString(kv []any, key string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || k != key {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		case nil:
			return ""
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// FirstString returns the first non-empty value among keys.
func FirstString(kv []any, keys ...string) string {
	for _, key := range keys {
		if v := ExtractString(kv, key); v != "" {
			return v
		}
	}
	return ""
}
