package evaluation

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/paperval/paperval/internal/compare"
	"github.com/paperval/paperval/internal/corpus"
)

// recordsField is the one top-level field holding a list of structured
// sub-records, which gets count-level and per-index treatment.
const recordsField = "records"

// EvaluatePaper scores one paper's automated extraction against its ground
// truth. A nil truth yields a not_annotated result.
func EvaluatePaper(paperID string, automated, truth map[string]any, cfg compare.Config) PaperEvaluation {
	if truth == nil {
		return PaperEvaluation{
			PaperID: paperID,
			Status:  StatusNotAnnotated,
			Message: "ground truth not provided",
		}
	}

	fieldMetrics := make(map[string]FieldResult)
	var total compare.Count

	for field := range unionKeys(automated, truth) {
		var result FieldResult

		if field == recordsField {
			result = evaluateRecords(automated[field], truth[field], cfg)
		} else {
			c := compare.Compare(automated[field], truth[field], cfg)
			result = FieldResult{Metrics: c.Metrics()}
		}

		fieldMetrics[field] = result
		// The records field contributes its count-level metrics only, so
		// per-index detail is never double counted.
		total = total.Add(result.Metrics.Count())
	}

	overall := total.Metrics()
	return PaperEvaluation{
		PaperID:      paperID,
		Status:       StatusEvaluated,
		FieldMetrics: fieldMetrics,
		Overall:      &overall,
	}
}

// evaluateRecords gives the records field its dedicated treatment: a
// count-level set comparison of whole sub-records for presence bookkeeping,
// plus per-index detail from positional pairing. Pairing by index is only
// sound when extraction order is stable; reordered or inserted records will
// misattribute the detail while the count-level metrics stay correct.
func evaluateRecords(automated, truth any, cfg compare.Config) FieldResult {
	autoRecs := asList(automated)
	truthRecs := asList(truth)

	// Presence bookkeeping is always set-based over canonical record text,
	// independent of the configured list mode.
	counts := compare.CompareList(autoRecs, truthRecs, compare.Config{})

	details := make([]RecordDetail, 0, min(len(autoRecs), len(truthRecs)))
	for i := 0; i < len(autoRecs) && i < len(truthRecs); i++ {
		c := compare.Compare(autoRecs[i], truthRecs[i], cfg)
		details = append(details, RecordDetail{
			RecordIndex: i,
			Metrics:     c.Metrics(),
		})
	}

	return FieldResult{
		Metrics:       counts.Metrics(),
		RecordDetails: details,
	}
}

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

func unionKeys(a, b map[string]any) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// EvaluateCorpus evaluates every paper, fanning out across workers. Papers
// are independent and counts merge commutatively, so worker order never
// changes the result.
func EvaluateCorpus(ctx context.Context, papers map[string]corpus.Paper, cfg compare.Config, workers int) (map[string]PaperEvaluation, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(map[string]PaperEvaluation, len(papers))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for id, paper := range papers {
		id, paper := id, paper
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			eval := EvaluatePaper(id, paper.AutomatedExtraction, paper.GroundTruth, cfg)

			mu.Lock()
			results[id] = eval
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
