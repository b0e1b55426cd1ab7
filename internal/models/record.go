package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is shown for empty record values
const Placeholder = "-"

// Record is a catalog entity as returned by the backend.
// Numbers are kept as json.Number so ids and counts print without exponent.
type Record map[string]any

// ID returns the record id as a path-safe string
func (r Record) ID() string {
	return r.Raw("id")
}

// Raw returns the value for key as a string, or "" when missing or null
func (r Record) Raw(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// Text returns the display value for key, Placeholder when empty
func (r Record) Text(key string) string {
	if s := r.Raw(key); strings.TrimSpace(s) != "" {
		return s
	}
	return Placeholder
}

// Bool reports whether key holds a truthy value
func (r Record) Bool(key string) bool {
	switch t := r[key].(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case json.Number:
		n, err := t.Int64()
		return err == nil && n != 0
	}
	return false
}

// Int64 returns the integer value for key, or false when absent or not numeric
func (r Record) Int64(key string) (int64, bool) {
	switch t := r[key].(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
