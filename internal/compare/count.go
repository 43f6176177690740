package compare

// Count is the atomic unit of evaluation: true/false-positive/negative
// tallies. Addition is associative and commutative, which is what lets
// per-field, per-paper and per-corpus sums all compose the same way.
type Count struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	// TN only arises from boolean comparisons. It is carried through
	// addition but never enters precision/recall denominators.
	TN int `json:"tn,omitempty"`
}

// Add returns the field-wise sum of two counts.
func (c Count) Add(o Count) Count {
	return Count{
		TP: c.TP + o.TP,
		FP: c.FP + o.FP,
		FN: c.FN + o.FN,
		TN: c.TN + o.TN,
	}
}

// Metrics holds precision/recall/F1 together with the counts they were
// derived from, so aggregation can always re-sum integers instead of
// averaging ratios.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
}

// Metrics derives precision, recall and F1 from a count. Every
// zero-denominator case yields 0 rather than NaN.
func (c Count) Metrics() Metrics {
	m := Metrics{TP: c.TP, FP: c.FP, FN: c.FN}

	if c.TP+c.FP > 0 {
		m.Precision = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		m.Recall = float64(c.TP) / float64(c.TP+c.FN)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m
}

// Count reconstructs the integer counts behind a Metrics value.
func (m Metrics) Count() Count {
	return Count{TP: m.TP, FP: m.FP, FN: m.FN}
}
