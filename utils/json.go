package utils

import (
	json "github.com/goccy/go-json"
)

// MarshalJSON encodes v for cache payloads
func MarshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// UnmarshalJSON decodes a cache payload into v
func UnmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
