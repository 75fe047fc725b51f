// Package flatten turns an arbitrary JSON document into a single flat record
// whose keys are the leaf paths of the document.
package flatten

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Separator joins object field names and array indices in a leaf path.
const Separator = "_"

// Record maps a leaf path to its scalar value (string, float64, bool or nil).
type Record map[string]any

// Flatten walks doc and records every scalar leaf under its joined path.
// Empty objects and arrays contribute no entries. A scalar root is recorded
// under the empty key.
func Flatten(doc any) Record {
	out := Record{}
	walk(doc, "", out)
	return out
}

func walk(value any, prefix string, out Record) {
	switch typed := value.(type) {
	case map[string]any:
		for field, child := range typed {
			walk(child, prefix+field+Separator, out)
		}
	case []any:
		for index, child := range typed {
			walk(child, prefix+strconv.Itoa(index)+Separator, out)
		}
	default:
		out[trimSeparator(prefix)] = value
	}
}

func trimSeparator(path string) string {
	if len(path) < len(Separator) {
		return path
	}
	return path[:len(path)-len(Separator)]
}

// Decode parses raw JSON into the generic value shape Flatten expects.
func Decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty JSON document")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode JSON document: %w", err)
	}
	return doc, nil
}

// FlattenJSON decodes raw and flattens the result.
func FlattenJSON(raw []byte) (Record, error) {
	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Flatten(doc), nil
}
