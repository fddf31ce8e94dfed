// Package attrs reads values back out of slog-style key/value slices
// ([key1, value1, key2, value2, ...]) so one attribute list can feed both a
// log line and a typed audit event.
package attrs

// ExtractString returns the string stored under key, or "" when the key is
// missing or holds another type.
func ExtractString(attrs []any, key string) string {
	if v, ok := lookup(attrs, key).(string); ok {
		return v
	}
	return ""
}

// ExtractInt returns the integer stored under key, or 0 when the key is
// missing or holds a non-integer.
func ExtractInt(attrs []any, key string) int {
	switch v := lookup(attrs, key).(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

func lookup(attrs []any, key string) any {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			return attrs[i+1]
		}
	}
	return nil
}
