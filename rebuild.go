package oversea

import "strconv"

// Rebuild deep-copies the document and re-walks it with the same path
// construction as Flatten, replacing every scalar whose path resolved as
// translated with its final text. NotNeeded and Missed leaves keep their
// original, typed values, so numbers and booleans survive a run where
// nothing was translated. Paths that no longer match the structure are
// ignored.
func Rebuild(doc *Document, resolved []ResolvedLeaf) *Document {
	lookup := make(map[string]string, len(resolved))
	for _, r := range resolved {
		if r.Status != StatusTranslated {
			continue
		}
		lookup[r.Path] = r.Text
	}
	clone := doc.Clone()
	rebuildValue(clone, "", lookup)
	return clone
}

// rebuildValue returns the (possibly replaced) value at path. Containers are
// mutated in place; only scalars are ever substituted.
func rebuildValue(v any, path string, lookup map[string]string) any {
	switch val := v.(type) {
	case nil:
		return nil
	case *Document:
		for _, key := range val.keys {
			val.values[key] = rebuildValue(val.values[key], joinPath(path, key), lookup)
		}
		return val
	case map[string]any:
		for _, key := range sortedKeys(val) {
			val[key] = rebuildValue(val[key], joinPath(path, key), lookup)
		}
		return val
	case []any:
		for i := range val {
			val[i] = rebuildValue(val[i], path+"["+strconv.Itoa(i)+"]", lookup)
		}
		return val
	default:
		if text, ok := lookup[path]; ok {
			return text
		}
		return val
	}
}
