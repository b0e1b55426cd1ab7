// Package models - JSON column type
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores a flat object in a jsonb (PostgreSQL) or json (MySQL) column
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonb: cannot scan %T", value)
	}

	if len(raw) == 0 {
		*j = make(JSONB)
		return nil
	}

	result := make(JSONB)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// FromStrings converts flat form values into a JSONB payload
func FromStrings(values map[string]string) JSONB {
	out := make(JSONB, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
