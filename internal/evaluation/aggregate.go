package evaluation

import (
	"github.com/paperval/paperval/internal/compare"
)

// Aggregate folds per-paper counts into corpus-wide metrics. Counts are
// re-summed as integers and metrics derived from the sums; ratios are never
// averaged across papers, which would weight small and large papers equally
// and break on zero-denominator papers.
func Aggregate(papers map[string]PaperEvaluation) Summary {
	byField := make(map[string]compare.Count)
	evaluated := 0

	for _, paper := range papers {
		if !paper.Evaluated() {
			continue
		}
		evaluated++

		for field, result := range paper.FieldMetrics {
			byField[field] = byField[field].Add(result.Metrics.Count())
		}
	}

	fieldMetrics := make(map[string]compare.Metrics, len(byField))
	var total compare.Count
	for field, count := range byField {
		fieldMetrics[field] = count.Metrics()
		total = total.Add(count)
	}

	return Summary{
		Overall:            total.Metrics(),
		ByField:            fieldMetrics,
		NumPapersEvaluated: evaluated,
	}
}
