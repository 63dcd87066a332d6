package docstore

import "strings"

// copyFields deep-copies a field map so callers can never alias stored
// state. Values other than maps and slices are copied by assignment.
func copyFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyFields(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = copyValue(elem)
		}
		return out
	default:
		return val
	}
}

// applyPatch applies patch fields to a document body in place. Keys may use
// dotted paths to address nested maps; intermediate maps are created as
// needed, and a non-map intermediate value is replaced. FieldDelete values
// remove the addressed field.
func applyPatch(body, fields map[string]any) {
	for key, value := range fields {
		parts := strings.Split(key, ".")
		target := body
		for _, part := range parts[:len(parts)-1] {
			next, ok := target[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				target[part] = next
			}
			target = next
		}
		leaf := parts[len(parts)-1]
		if IsFieldDelete(value) {
			delete(target, leaf)
			continue
		}
		target[leaf] = copyValue(value)
	}
}

// childID returns the final path segment when path addresses a document
// directly inside collection, and ok=false otherwise.
func childID(collection, path string) (string, bool) {
	rest, found := strings.CutPrefix(path, collection+"/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
