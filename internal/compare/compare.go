package compare

import (
	"math"
	"reflect"

	apperrors "github.com/paperval/paperval/internal/pkg/errors"
)

var errNegativeTolerance = apperrors.New(apperrors.CodeValidation, "numeric_tolerance must be non-negative")

// mismatch is the count for a value that is simultaneously a wrong output and
// a missed correct one. Everything except booleans, nulls and lists scores
// a mismatch this way.
var mismatch = Count{FP: 1, FN: 1}

// Compare scores an automated value against ground truth. The ground-truth
// side defines the expected shape; a mismatched automated type is a scoring
// outcome, never an error, so one malformed record cannot abort a corpus.
func Compare(automated, truth any, cfg Config) Count {
	switch KindOf(truth) {
	case KindBool:
		return compareBool(automated, truth.(bool))

	case KindNumber:
		t, _ := asNumber(truth)
		if a, ok := asNumber(automated); ok && math.Abs(a-t) <= cfg.NumericTolerance {
			return Count{TP: 1}
		}
		return mismatch

	case KindString:
		if normalize(automated, cfg.FuzzyStrings) == normalize(truth, cfg.FuzzyStrings) {
			return Count{TP: 1}
		}
		return mismatch

	case KindNull:
		// Nothing was expected: an empty automated side is correct, and
		// anything else is a spurious extraction with nothing missed.
		if isEmpty(automated) {
			return Count{TP: 1}
		}
		return Count{FP: 1}

	case KindList:
		return CompareList(asList(automated), truth.([]any), cfg)

	case KindMap:
		return compareMap(asMap(automated), truth.(map[string]any), cfg)

	default:
		if reflect.DeepEqual(automated, truth) {
			return Count{TP: 1}
		}
		return mismatch
	}
}

func compareBool(automated any, truth bool) Count {
	extracted := truthy(automated)
	switch {
	case extracted == truth && truth:
		return Count{TP: 1}
	case extracted == truth:
		return Count{TN: 1}
	case extracted:
		return Count{FP: 1}
	default:
		return Count{FN: 1}
	}
}

// CompareList scores two lists. Positional mode zips index-wise and charges
// the length surplus/deficit; set mode collapses duplicates and scores the
// intersection and both differences.
func CompareList(automated, truth []any, cfg Config) Count {
	if cfg.ListOrderMatters {
		var c Count
		for i := 0; i < len(automated) && i < len(truth); i++ {
			if normalize(automated[i], cfg.FuzzyStrings) == normalize(truth[i], cfg.FuzzyStrings) {
				c.TP++
			}
		}
		if d := len(automated) - len(truth); d > 0 {
			c.FP += d
		}
		if d := len(truth) - len(automated); d > 0 {
			c.FN += d
		}
		return c
	}

	autoSet := normalizeSet(automated, cfg.FuzzyStrings)
	truthSet := normalizeSet(truth, cfg.FuzzyStrings)

	var c Count
	for v := range autoSet {
		if truthSet[v] {
			c.TP++
		} else {
			c.FP++
		}
	}
	for v := range truthSet {
		if !autoSet[v] {
			c.FN++
		}
	}
	return c
}

func normalizeSet(values []any, fuzzy bool) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[normalize(v, fuzzy)] = true
	}
	return set
}

// compareMap recurses over the union of keys on both sides. A key missing
// from one side compares as null there, so omissions and spurious fields
// both get counted.
func compareMap(automated, truth map[string]any, cfg Config) Count {
	var c Count
	seen := make(map[string]bool, len(truth))

	for field, truthVal := range truth {
		seen[field] = true
		c = c.Add(Compare(automated[field], truthVal, cfg))
	}
	for field, autoVal := range automated {
		if !seen[field] {
			c = c.Add(Compare(autoVal, nil, cfg))
		}
	}
	return c
}
