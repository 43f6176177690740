package compare

import (
	"testing"
)

func TestCompareBoolean(t *testing.T) {
	tests := []struct {
		name      string
		automated any
		truth     bool
		want      Count
	}{
		{"both true", true, true, Count{TP: 1}},
		{"both false", false, false, Count{TN: 1}},
		{"spurious true", true, false, Count{FP: 1}},
		{"missed true", false, true, Count{FN: 1}},
		{"missing vs true", nil, true, Count{FN: 1}},
		{"missing vs false", nil, false, Count{TN: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.automated, tt.truth, Config{})
			if got != tt.want {
				t.Errorf("Compare(%v, %v) = %+v, want %+v", tt.automated, tt.truth, got, tt.want)
			}
		})
	}
}

func TestCompareNumericTolerance(t *testing.T) {
	cfg := Config{NumericTolerance: 0.5}

	if got := Compare(5.3, 5.0, cfg); got != (Count{TP: 1}) {
		t.Errorf("within tolerance: got %+v", got)
	}
	if got := Compare(6.0, 5.0, cfg); got != (Count{FP: 1, FN: 1}) {
		t.Errorf("outside tolerance: got %+v", got)
	}
}

func TestCompareNumericExact(t *testing.T) {
	if got := Compare(3.0, 3.0, Config{}); got != (Count{TP: 1}) {
		t.Errorf("exact match: got %+v", got)
	}
	if got := Compare(3.0000001, 3.0, Config{}); got != (Count{FP: 1, FN: 1}) {
		t.Errorf("zero tolerance means exact: got %+v", got)
	}
	// Numeric strings parse before comparison.
	if got := Compare("42", 42.0, Config{}); got != (Count{TP: 1}) {
		t.Errorf("numeric string: got %+v", got)
	}
	if got := Compare("n/a", 42.0, Config{}); got != (Count{FP: 1, FN: 1}) {
		t.Errorf("non-numeric automated: got %+v", got)
	}
}

func TestCompareString(t *testing.T) {
	tests := []struct {
		name      string
		automated any
		truth     string
		cfg       Config
		want      Count
	}{
		{"exact", "Apis mellifera", "Apis mellifera", Config{}, Count{TP: 1}},
		{"case mismatch strict", "apis", "Apis", Config{}, Count{FP: 1, FN: 1}},
		{"case mismatch fuzzy", "apis", "Apis", Config{FuzzyStrings: true}, Count{TP: 1}},
		{"whitespace fuzzy", "  apis   mellifera ", "Apis Mellifera", Config{FuzzyStrings: true}, Count{TP: 1}},
		{"number coerced to text", 3.0, "3", Config{}, Count{TP: 1}},
		{"missing", nil, "Apis", Config{}, Count{FP: 1, FN: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.automated, tt.truth, tt.cfg)
			if got != tt.want {
				t.Errorf("Compare(%v, %q) = %+v, want %+v", tt.automated, tt.truth, got, tt.want)
			}
		})
	}
}

func TestCompareNullTruth(t *testing.T) {
	tests := []struct {
		name      string
		automated any
		want      Count
	}{
		{"nil", nil, Count{TP: 1}},
		{"empty string", "", Count{TP: 1}},
		{"empty list", []any{}, Count{TP: 1}},
		{"spurious value", "extra", Count{FP: 1}},
		{"spurious list", []any{"x"}, Count{FP: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.automated, nil, Config{})
			if got != tt.want {
				t.Errorf("Compare(%v, nil) = %+v, want %+v", tt.automated, got, tt.want)
			}
		})
	}
}

func TestCompareListAsSet(t *testing.T) {
	cfg := Config{}

	got := Compare([]any{"a", "b"}, []any{"b", "a"}, cfg)
	if got != (Count{TP: 2}) {
		t.Errorf("order-insensitive match: got %+v", got)
	}

	// Duplicates collapse to one comparison unit.
	got = Compare([]any{"a", "a", "b"}, []any{"a", "b"}, cfg)
	if got != (Count{TP: 2}) {
		t.Errorf("duplicates should collapse: got %+v", got)
	}

	got = Compare([]any{"a", "c"}, []any{"a", "b"}, cfg)
	if got != (Count{TP: 1, FP: 1, FN: 1}) {
		t.Errorf("partial overlap: got %+v", got)
	}
}

func TestCompareListPositional(t *testing.T) {
	cfg := Config{ListOrderMatters: true}

	// Index 0 matches; index 1 mismatches without charge; surplus index 2
	// is one false positive. Nothing is missed since automated is longer.
	got := Compare([]any{"a", "b", "c"}, []any{"a", "x"}, cfg)
	if got != (Count{TP: 1, FP: 1}) {
		t.Errorf("surplus automated: got %+v", got)
	}

	got = Compare([]any{"a"}, []any{"a", "b", "c"}, cfg)
	if got != (Count{TP: 1, FN: 2}) {
		t.Errorf("deficit automated: got %+v", got)
	}
}

func TestCompareListCoercion(t *testing.T) {
	// A bare scalar against a list truth compares as a one-element list.
	got := Compare("a", []any{"a", "b"}, Config{})
	if got != (Count{TP: 1, FN: 1}) {
		t.Errorf("scalar vs list: got %+v", got)
	}

	got = Compare(nil, []any{"a"}, Config{})
	if got != (Count{FN: 1}) {
		t.Errorf("nil vs list: got %+v", got)
	}
}

func TestCompareNested(t *testing.T) {
	truth := map[string]any{"species": "Apis", "count": 3.0}
	automated := map[string]any{"species": "apis", "count": 3.0}

	got := Compare(automated, truth, Config{})
	if got != (Count{TP: 1, FP: 1, FN: 1}) {
		t.Errorf("nested strict: got %+v", got)
	}

	got = Compare(automated, truth, Config{FuzzyStrings: true})
	if got != (Count{TP: 2}) {
		t.Errorf("nested fuzzy: got %+v", got)
	}
}

func TestCompareNestedUnionOfKeys(t *testing.T) {
	truth := map[string]any{"a": "x"}
	automated := map[string]any{"a": "x", "b": "spurious"}

	// The automated-only key compares against a null truth: fp only.
	got := Compare(automated, truth, Config{})
	if got != (Count{TP: 1, FP: 1}) {
		t.Errorf("union of keys: got %+v", got)
	}
}

func TestCompareTypeMismatch(t *testing.T) {
	// Truth expects a mapping, automated is a scalar: every truth field
	// scores as missing, nothing panics.
	truth := map[string]any{"species": "Apis", "present": true}
	got := Compare("oops", truth, Config{})
	if got != (Count{FP: 1, FN: 2}) {
		t.Errorf("scalar vs mapping: got %+v", got)
	}
}

func TestCountAddAssociative(t *testing.T) {
	a := Count{TP: 1, FP: 2, FN: 3, TN: 1}
	b := Count{TP: 4, FP: 0, FN: 1}
	c := Count{TP: 2, FP: 2, FN: 2}

	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))
	if left != right {
		t.Errorf("Add not associative: %+v vs %+v", left, right)
	}
	if left != b.Add(c).Add(a) {
		t.Error("Add not commutative")
	}
}

func TestMetricsDerivation(t *testing.T) {
	m := Count{TP: 6, FP: 1, FN: 1}.Metrics()
	want := 6.0 / 7.0
	if !almostEqual(m.Precision, want) || !almostEqual(m.Recall, want) {
		t.Errorf("precision/recall = %f/%f, want %f", m.Precision, m.Recall, want)
	}
	if !almostEqual(m.F1, want) {
		t.Errorf("f1 = %f, want %f", m.F1, want)
	}
}

func TestMetricsZeroDenominator(t *testing.T) {
	m := Count{}.Metrics()
	if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
		t.Errorf("empty count metrics = %+v, want zeros", m)
	}

	// TN never enters the denominators.
	m = Count{TN: 5}.Metrics()
	if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
		t.Errorf("tn-only metrics = %+v, want zeros", m)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{NumericTolerance: 0.1}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := (Config{NumericTolerance: -1}).Validate(); err == nil {
		t.Error("negative tolerance accepted")
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{true, "true"},
		{3.0, "3"},
		{3.5, "3.5"},
		{[]any{"a", 1.0}, "[a,1]"},
	}

	for _, tt := range tests {
		if got := stringify(tt.in); got != tt.want {
			t.Errorf("stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Key order never affects the canonical form.
	a := map[string]any{"x": 1.0, "y": "z"}
	b := map[string]any{"y": "z", "x": 1.0}
	if stringify(a) != stringify(b) {
		t.Error("stringify should be key-order independent")
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
