// Package jsonx contains helpers for working with open-ended JSON payloads,
// the loosely typed content and metadata maps carried by broker messages.
package jsonx

import json "github.com/goccy/go-json"

// ToDynamic converts an arbitrary Go value into a dynamic JSON object
// represented as a map[string]any, by round-tripping it through JSON.
// It fails if the value does not serialize to a JSON object.
func ToDynamic(val any) (map[string]any, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Merge combines base and extra into a new map. Keys from extra win when both
// maps carry the same key (last-write-wins). Neither input is modified, and a
// non-nil map is always returned.
func Merge(base, extra map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
