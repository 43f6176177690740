package compare

// Config controls how values are judged equal. It is copied by value into
// the engine and never mutated during a run.
type Config struct {
	// NumericTolerance is the absolute difference allowed between numeric
	// values. Zero means exact equality.
	NumericTolerance float64 `json:"numeric_tolerance" yaml:"numeric_tolerance" envconfig:"PAPERVAL_NUMERIC_TOLERANCE"`

	// FuzzyStrings lower-cases and collapses whitespace before string
	// comparison.
	FuzzyStrings bool `json:"fuzzy_strings" yaml:"fuzzy_strings" envconfig:"PAPERVAL_FUZZY_STRINGS"`

	// ListOrderMatters compares lists positionally instead of as sets.
	ListOrderMatters bool `json:"list_order_matters" yaml:"list_order_matters" envconfig:"PAPERVAL_LIST_ORDER_MATTERS"`
}

// Validate rejects configurations the comparator cannot honor.
func (c Config) Validate() error {
	if c.NumericTolerance < 0 {
		return errNegativeTolerance
	}
	return nil
}
