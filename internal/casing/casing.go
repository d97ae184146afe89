// Package casing converts object keys between snake_case and camelCase,
// recursively and without mutating its input. It is the bridge between
// snake_cased storage/transport payloads and camelCased API responses.
package casing

import (
	"time"

	"github.com/iancoleman/strcase"
)

// CamelKeys returns a copy of node with every mapping key converted to
// lowerCamelCase. Values, ordering inside sequences, and non-container leaves
// are untouched.
func CamelKeys(node any) any {
	return transformKeys(node, strcase.ToLowerCamel)
}

// SnakeKeys returns a copy of node with every mapping key converted to
// snake_case.
func SnakeKeys(node any) any {
	return transformKeys(node, strcase.ToSnake)
}

// transformKeys walks the same closed set of node kinds as the tree codec:
// sequences, mappings, temporals, scalars.
func transformKeys(node any, convert func(string) string) any {
	switch v := node.(type) {
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = transformKeys(elem, convert)
		}
		return out

	case map[string]any:
		if len(v) == 0 {
			return v
		}
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[convert(key)] = transformKeys(value, convert)
		}
		return out

	case time.Time:
		return v

	default:
		return node
	}
}
