package docstore

import (
	"fmt"
	"sort"
	"strings"
)

// sortAndPage orders a collection's documents and cuts one page out of
// them. Both adapters reduce List to this helper, so ordering and cursor
// semantics are identical regardless of how the documents are physically
// stored.
func sortAndPage(docs []Document, opts ListOptions) (Page, error) {
	sort.Slice(docs, func(i, j int) bool {
		if opts.OrderBy != "" {
			cmp := compareValues(docs[i].Fields[opts.OrderBy], docs[j].Fields[opts.OrderBy])
			if cmp != 0 {
				if opts.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		// Path tie-break keeps listings deterministic.
		return docs[i].Path < docs[j].Path
	})

	if opts.After != nil && opts.OrderBy != "" {
		filtered := docs[:0]
		for _, doc := range docs {
			if compareValues(doc.Fields[opts.OrderBy], opts.After) > 0 {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}

	start := 0
	if opts.StartAfter != "" {
		found := false
		for i, doc := range docs {
			if doc.Path == opts.StartAfter {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return Page{}, fmt.Errorf("cursor %q: %w", opts.StartAfter, ErrInvalidCursor)
		}
	}

	end := len(docs)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	page := Page{Documents: docs[start:end]}
	if end < len(docs) && end > start {
		page.NextCursor = docs[end-1].Path
	}
	return page, nil
}

// compareValues orders two field values. Values of different types order by
// type name so mixed-type fields still sort deterministically; a missing
// (nil) value sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs)
	}

	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
