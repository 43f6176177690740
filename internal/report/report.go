// Package report renders aggregated validation metrics as a
// machine-readable structure and a narrative text report.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paperval/paperval/internal/compare"
	"github.com/paperval/paperval/internal/evaluation"
)

// Issue thresholds are fixed policy, not configuration.
const (
	lowRecallThreshold    = 0.70
	lowPrecisionThreshold = 0.70
)

// Detailed is the machine-readable output: the corpus summary, every
// paper's full evaluation, and the comparison configuration used.
type Detailed struct {
	RunID   string                                `json:"run_id,omitempty"`
	Summary evaluation.Summary                    `json:"summary"`
	ByPaper map[string]evaluation.PaperEvaluation `json:"by_paper"`
	Config  compare.Config                        `json:"config"`
}

// FieldIssue is one entry in the common-issues lists.
type FieldIssue struct {
	Field   string
	Metrics compare.Metrics
}

// LowRecallFields returns fields with recall below the threshold and at
// least one miss, ascending by recall.
func LowRecallFields(summary evaluation.Summary) []FieldIssue {
	var issues []FieldIssue
	for field, m := range summary.ByField {
		if m.Recall < lowRecallThreshold && m.FN > 0 {
			issues = append(issues, FieldIssue{Field: field, Metrics: m})
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Metrics.Recall != issues[j].Metrics.Recall {
			return issues[i].Metrics.Recall < issues[j].Metrics.Recall
		}
		return issues[i].Field < issues[j].Field
	})
	return issues
}

// LowPrecisionFields returns fields with precision below the threshold and
// at least one false positive, ascending by precision.
func LowPrecisionFields(summary evaluation.Summary) []FieldIssue {
	var issues []FieldIssue
	for field, m := range summary.ByField {
		if m.Precision < lowPrecisionThreshold && m.FP > 0 {
			issues = append(issues, FieldIssue{Field: field, Metrics: m})
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Metrics.Precision != issues[j].Metrics.Precision {
			return issues[i].Metrics.Precision < issues[j].Metrics.Precision
		}
		return issues[i].Field < issues[j].Field
	})
	return issues
}

// Text renders the narrative validation report.
func Text(summary evaluation.Summary) string {
	var b strings.Builder
	bar := strings.Repeat("=", 80)
	rule := strings.Repeat("-", 80)

	fmt.Fprintln(&b, bar)
	fmt.Fprintln(&b, "EXTRACTION VALIDATION REPORT")
	fmt.Fprintln(&b, bar)
	fmt.Fprintln(&b)

	overall := summary.Overall
	fmt.Fprintln(&b, "OVERALL METRICS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Papers evaluated: %d\n", summary.NumPapersEvaluated)
	fmt.Fprintf(&b, "Precision: %.2f%%\n", overall.Precision*100)
	fmt.Fprintf(&b, "Recall:    %.2f%%\n", overall.Recall*100)
	fmt.Fprintf(&b, "F1 Score:  %.2f%%\n", overall.F1*100)
	fmt.Fprintf(&b, "True Positives:  %d\n", overall.TP)
	fmt.Fprintf(&b, "False Positives: %d\n", overall.FP)
	fmt.Fprintf(&b, "False Negatives: %d\n", overall.FN)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "METRICS BY FIELD")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-30s %10s %10s %10s\n", "Field", "Precision", "Recall", "F1")
	fmt.Fprintln(&b, rule)

	fields := make([]string, 0, len(summary.ByField))
	for field := range summary.ByField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		m := summary.ByField[field]
		fmt.Fprintf(&b, "%-30s %9.1f%% %9.1f%% %9.1f%%\n",
			field, m.Precision*100, m.Recall*100, m.F1*100)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "COMMON ISSUES")
	fmt.Fprintln(&b, rule)

	lowRecall := LowRecallFields(summary)
	if len(lowRecall) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Fields with low recall (missed information):")
		for _, issue := range lowRecall {
			fmt.Fprintf(&b, "  - %s: %.1f%% recall, %d missed items\n",
				issue.Field, issue.Metrics.Recall*100, issue.Metrics.FN)
		}
	}

	lowPrecision := LowPrecisionFields(summary)
	if len(lowPrecision) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Fields with low precision (incorrect extractions):")
		for _, issue := range lowPrecision {
			fmt.Fprintf(&b, "  - %s: %.1f%% precision, %d incorrect items\n",
				issue.Field, issue.Metrics.Precision*100, issue.Metrics.FP)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, bar)
	return b.String()
}
