// Package evaluation applies the value comparator across every field of a
// corpus and aggregates the resulting counts into corpus-wide metrics.
package evaluation

import (
	"encoding/json"

	"github.com/paperval/paperval/internal/compare"
)

// Status is the lifecycle state of one paper's evaluation.
type Status string

const (
	// StatusEvaluated means ground truth was present and metrics computed.
	StatusEvaluated Status = "evaluated"

	// StatusNotAnnotated means ground truth is still missing. The paper is
	// excluded from aggregation, not treated as zero.
	StatusNotAnnotated Status = "not_annotated"
)

// RecordDetail holds per-index metrics for one positionally paired
// sub-record of the records field.
type RecordDetail struct {
	RecordIndex int             `json:"record_index"`
	Metrics     compare.Metrics `json:"metrics"`
}

// FieldResult is the evaluation of one top-level field. Ordinary fields
// carry plain metrics; the records field additionally carries per-index
// detail, and its Metrics are the count-level set comparison.
type FieldResult struct {
	Metrics       compare.Metrics
	RecordDetails []RecordDetail
}

// fieldResultJSON is the wire shape for the records field.
type fieldResultJSON struct {
	CountMetrics  compare.Metrics `json:"count_metrics"`
	RecordDetails []RecordDetail  `json:"record_details"`
}

// MarshalJSON emits flat metrics for ordinary fields and the
// count_metrics/record_details pair for the records field.
func (f FieldResult) MarshalJSON() ([]byte, error) {
	if f.RecordDetails == nil {
		return json.Marshal(f.Metrics)
	}
	return json.Marshal(fieldResultJSON{
		CountMetrics:  f.Metrics,
		RecordDetails: f.RecordDetails,
	})
}

// UnmarshalJSON accepts both wire shapes.
func (f *FieldResult) UnmarshalJSON(data []byte) error {
	var rec fieldResultJSON
	if err := json.Unmarshal(data, &rec); err == nil && rec.RecordDetails != nil {
		f.Metrics = rec.CountMetrics
		f.RecordDetails = rec.RecordDetails
		return nil
	}
	return json.Unmarshal(data, &f.Metrics)
}

// PaperEvaluation is the immutable result of evaluating one paper. It is
// created once when ground truth becomes available and never mutated.
type PaperEvaluation struct {
	PaperID      string                 `json:"-"`
	Status       Status                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	FieldMetrics map[string]FieldResult `json:"field_metrics,omitempty"`
	Overall      *compare.Metrics       `json:"overall,omitempty"`
}

// Evaluated reports whether the paper contributes to aggregation.
func (p PaperEvaluation) Evaluated() bool {
	return p.Status == StatusEvaluated
}

// Summary is the corpus-wide aggregate over all evaluated papers.
type Summary struct {
	Overall            compare.Metrics            `json:"overall"`
	ByField            map[string]compare.Metrics `json:"by_field"`
	NumPapersEvaluated int                        `json:"num_papers_evaluated"`
}
