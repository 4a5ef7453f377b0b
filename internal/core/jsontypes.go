// AngelaMos | 2026
// jsontypes.go

package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is an opaque key-value document stored in a JSONB column. The
// shape is deliberately unvalidated; callers merge and read keys as-is.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan JSONMap: unsupported type %T", src)
	}

	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}

	return json.Unmarshal(data, m)
}

// Merge overlays src onto m, returning the result. Nil maps are treated as
// empty so merge is total.
func (m JSONMap) Merge(src JSONMap) JSONMap {
	out := JSONMap{}
	for k, v := range m {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// StringSlice is a JSONB-backed string array (image URLs, feature names).
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(src any) error {
	if src == nil {
		*s = StringSlice{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan StringSlice: unsupported type %T", src)
	}

	if len(data) == 0 {
		*s = StringSlice{}
		return nil
	}

	return json.Unmarshal(data, s)
}
