// Package history keeps a bounded log of evaluation runs.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/paperval/paperval/internal/bus"
	"github.com/paperval/paperval/internal/pkg/logger"
)

// RunRecord is one completed evaluation run.
type RunRecord struct {
	RunID              string    `json:"run_id"`
	Timestamp          time.Time `json:"timestamp"`
	Precision          float64   `json:"precision"`
	Recall             float64   `json:"recall"`
	F1                 float64   `json:"f1"`
	NumPapersEvaluated int       `json:"num_papers_evaluated"`
	NumPapersSkipped   int       `json:"num_papers_skipped"`
}

// Log stores evaluation runs with bounded retention and optional
// Redis persistence.
type Log struct {
	mu      sync.RWMutex
	records []RunRecord
	maxRuns int
	storage *RedisStorage
	log     *logger.Logger
}

// NewLog creates an in-memory run log retaining at most maxRuns records.
func NewLog(maxRuns int) *Log {
	if maxRuns <= 0 {
		maxRuns = 500
	}
	return &Log{
		records: make([]RunRecord, 0, maxRuns),
		maxRuns: maxRuns,
		log:     logger.Default(),
	}
}

// NewLogWithRedis creates a run log backed by Redis. Existing records
// within the retention window are loaded on startup; if loading fails the
// log starts empty and persistence stays enabled.
func NewLogWithRedis(maxRuns int, storage *RedisStorage, log *logger.Logger) *Log {
	l := NewLog(maxRuns)
	l.storage = storage
	if log != nil {
		l.log = log
	}

	if storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		records, err := storage.LoadRuns(ctx, l.maxRuns)
		if err != nil {
			l.log.Warn("failed to load run history from redis", "error", err.Error())
		} else {
			l.records = records
		}
	}

	return l
}

// Append records a completed run, trimming the oldest entries past the
// retention limit. Persistence to Redis is asynchronous.
func (l *Log) Append(record RunRecord) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.records = append(l.records, record)
	if len(l.records) > l.maxRuns {
		l.records = l.records[len(l.records)-l.maxRuns:]
	}
	l.mu.Unlock()

	if l.storage != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.storage.SaveRun(ctx, record); err != nil {
				l.log.Warn("failed to persist run record", "run_id", record.RunID, "error", err.Error())
			}
		}()
	}
}

// Recent returns up to n most recent runs, newest first. n <= 0 returns
// all retained runs.
func (l *Log) Recent(n int) []RunRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}

	out := make([]RunRecord, n)
	for i := 0; i < n; i++ {
		out[i] = l.records[len(l.records)-1-i]
	}
	return out
}

// Since returns runs recorded at or after the given time, oldest first.
func (l *Log) Since(since time.Time) []RunRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]RunRecord, 0, len(l.records))
	for _, r := range l.records {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of retained runs.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// SubscribeBus records corpus evaluation events published on the bus.
func (l *Log) SubscribeBus(ctx context.Context, b bus.Bus) error {
	return b.Subscribe(ctx, bus.TopicCorpusEvaluated, func(ctx context.Context, event bus.Event) error {
		payload, err := decodeCorpusPayload(event.Payload)
		if err != nil {
			return err
		}
		l.Append(RunRecord{
			RunID:              payload.RunID,
			Timestamp:          time.Unix(event.Timestamp, 0),
			Precision:          payload.Precision,
			Recall:             payload.Recall,
			F1:                 payload.F1,
			NumPapersEvaluated: payload.NumPapersEvaluated,
			NumPapersSkipped:   payload.NumPapersSkipped,
		})
		return nil
	})
}

// decodeCorpusPayload handles both in-process payloads (the struct itself)
// and payloads that round-tripped through JSON (map[string]any).
func decodeCorpusPayload(payload any) (bus.CorpusEvaluatedPayload, error) {
	if p, ok := payload.(bus.CorpusEvaluatedPayload); ok {
		return p, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return bus.CorpusEvaluatedPayload{}, err
	}

	var p bus.CorpusEvaluatedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return bus.CorpusEvaluatedPayload{}, err
	}
	return p, nil
}
