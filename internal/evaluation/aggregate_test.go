package evaluation

import (
	"math"
	"testing"

	"github.com/paperval/paperval/internal/compare"
)

func evaluatedPaper(id string, fields map[string]compare.Count) PaperEvaluation {
	fieldMetrics := make(map[string]FieldResult, len(fields))
	var total compare.Count
	for name, c := range fields {
		fieldMetrics[name] = FieldResult{Metrics: c.Metrics()}
		total = total.Add(c)
	}
	overall := total.Metrics()
	return PaperEvaluation{
		PaperID:      id,
		Status:       StatusEvaluated,
		FieldMetrics: fieldMetrics,
		Overall:      &overall,
	}
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)

	if summary.NumPapersEvaluated != 0 {
		t.Errorf("NumPapersEvaluated = %d, want 0", summary.NumPapersEvaluated)
	}
	o := summary.Overall
	if o.Precision != 0 || o.Recall != 0 || o.F1 != 0 || o.TP != 0 || o.FP != 0 || o.FN != 0 {
		t.Errorf("Overall = %+v, want all zeros", o)
	}
}

func TestAggregateSkipsNotAnnotated(t *testing.T) {
	papers := map[string]PaperEvaluation{
		"p1": evaluatedPaper("p1", map[string]compare.Count{"species": {TP: 2}}),
		"p2": {PaperID: "p2", Status: StatusNotAnnotated},
	}

	summary := Aggregate(papers)
	if summary.NumPapersEvaluated != 1 {
		t.Errorf("NumPapersEvaluated = %d, want 1", summary.NumPapersEvaluated)
	}
	if summary.Overall.TP != 2 {
		t.Errorf("Overall.TP = %d, want 2", summary.Overall.TP)
	}
}

func TestAggregateEndToEnd(t *testing.T) {
	// Two evaluated papers: {tp:4,fp:1,fn:0} and {tp:2,fp:0,fn:1} give an
	// aggregate of {tp:6,fp:1,fn:1} and precision = recall = 6/7.
	papers := map[string]PaperEvaluation{
		"p1": evaluatedPaper("p1", map[string]compare.Count{
			"species": {TP: 3, FP: 1},
			"count":   {TP: 1},
		}),
		"p2": evaluatedPaper("p2", map[string]compare.Count{
			"species": {TP: 2, FN: 1},
		}),
	}

	summary := Aggregate(papers)
	o := summary.Overall
	if o.TP != 6 || o.FP != 1 || o.FN != 1 {
		t.Fatalf("Overall counts = %+v", o)
	}

	want := 6.0 / 7.0
	if math.Abs(o.Precision-want) > 1e-9 || math.Abs(o.Recall-want) > 1e-9 {
		t.Errorf("precision/recall = %f/%f, want %f", o.Precision, o.Recall, want)
	}

	// Per-field sums across papers.
	if m := summary.ByField["species"]; m.TP != 5 || m.FP != 1 || m.FN != 1 {
		t.Errorf("species = %+v", m)
	}
	if m := summary.ByField["count"]; m.TP != 1 {
		t.Errorf("count = %+v", m)
	}
}

func TestAggregateAdditivity(t *testing.T) {
	a := map[string]PaperEvaluation{
		"p1": evaluatedPaper("p1", map[string]compare.Count{"f": {TP: 3, FP: 2, FN: 1}}),
		"p2": evaluatedPaper("p2", map[string]compare.Count{"g": {TP: 1, FN: 4}}),
	}
	b := map[string]PaperEvaluation{
		"p3": evaluatedPaper("p3", map[string]compare.Count{"f": {TP: 7, FP: 1}}),
	}

	union := make(map[string]PaperEvaluation)
	for id, p := range a {
		union[id] = p
	}
	for id, p := range b {
		union[id] = p
	}

	sumA := Aggregate(a).Overall
	sumB := Aggregate(b).Overall
	got := Aggregate(union).Overall

	if got.TP != sumA.TP+sumB.TP || got.FP != sumA.FP+sumB.FP || got.FN != sumA.FN+sumB.FN {
		t.Errorf("aggregate(A∪B) = %+v, partial sums %+v + %+v", got, sumA, sumB)
	}
}

func TestAggregateRecordsUsesCountLevel(t *testing.T) {
	paper := EvaluatePaper("p1",
		map[string]any{
			"records": []any{map[string]any{"species": "Apis"}},
			"title":   "A study",
		},
		map[string]any{
			"records": []any{map[string]any{"species": "Apis"}},
			"title":   "A study",
		},
		compare.Config{})

	summary := Aggregate(map[string]PaperEvaluation{"p1": paper})

	// records contributes one unit (the matching sub-record), title one.
	if summary.Overall.TP != 2 {
		t.Errorf("Overall.TP = %d, want 2", summary.Overall.TP)
	}
	if m := summary.ByField["records"]; m.TP != 1 {
		t.Errorf("records = %+v", m)
	}
}
