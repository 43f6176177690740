// Package compare implements the type-dispatched value comparator that
// scores automated extraction output against ground truth.
package compare

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant of a JSON-like value. Dispatch in Compare is
// always on the kind of the ground-truth side.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
	KindOther
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "other"
	}
}

// KindOf classifies a decoded JSON value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindList
	case map[string]any:
		return KindMap
	default:
		return KindOther
	}
}

// asNumber extracts a numeric value. Numeric strings parse, matching the
// leniency extraction output needs (models emit "42" as often as 42).
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asList coerces a value to a list. Nil becomes empty; a scalar becomes a
// single-element list so a bare value still compares against a list field.
func asList(v any) []any {
	switch l := v.(type) {
	case nil:
		return nil
	case []any:
		return l
	default:
		return []any{v}
	}
}

// asMap coerces a value to a mapping. Anything that is not a mapping
// becomes empty, so a scalar against an object truth scores as all-missing
// rather than aborting the run.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

// truthy reports whether a value counts as "present" for boolean
// comparison: nil, false, empty string, zero and empty containers do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if n, ok := asNumber(v); ok {
			return n != 0
		}
		return true
	}
}

// isEmpty reports whether an automated value satisfies a null truth:
// nothing extracted, empty string, or empty list.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// stringify renders any value as its comparison text. Scalars take their
// plain textual form; lists and maps take canonical JSON (sorted keys) so
// structurally equal values always stringify identically.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 64)
	case json.Number:
		return s.String()
	case []any:
		parts := make([]string, len(s))
		for i, e := range s {
			parts[i] = stringify(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]any:
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ":" + stringify(s[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		if n, ok := asNumber(v); ok {
			return strconv.FormatFloat(n, 'g', -1, 64)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// normalize returns the comparison text for a value, lower-cased with
// whitespace collapsed when fuzzy matching is enabled.
func normalize(v any, fuzzy bool) string {
	s := stringify(v)
	if !fuzzy {
		return s
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
