package oversea

import (
	"encoding/json"
	"strconv"
)

// Flatten walks a document in pre-order and returns its scalar leaves as
// (path, text) records. Object children extend the path with ".key", array
// elements with "[index]". Null values are skipped; every other scalar is
// emitted with its text form. The output order is the traversal order and is
// the contract for "exactly one output per input" downstream.
func Flatten(doc *Document) []Leaf {
	var leaves []Leaf
	flattenValue(doc, "", &leaves)
	return leaves
}

func flattenValue(v any, path string, out *[]Leaf) {
	switch val := v.(type) {
	case nil:
		return
	case *Document:
		for _, key := range val.keys {
			flattenValue(val.values[key], joinPath(path, key), out)
		}
	case map[string]any:
		for _, key := range sortedKeys(val) {
			flattenValue(val[key], joinPath(path, key), out)
		}
	case []any:
		for i, elem := range val {
			flattenValue(elem, path+"["+strconv.Itoa(i)+"]", out)
		}
	default:
		if path == "" {
			return
		}
		*out = append(*out, Leaf{Path: path, Text: stringifyScalar(val)})
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// stringifyScalar renders a scalar leaf as text. Numbers keep their source
// representation via json.Number.
func stringifyScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
