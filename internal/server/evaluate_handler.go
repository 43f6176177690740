package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/paperval/paperval/internal/bus"
	"github.com/paperval/paperval/internal/compare"
	"github.com/paperval/paperval/internal/config"
	"github.com/paperval/paperval/internal/corpus"
	"github.com/paperval/paperval/internal/evaluation"
	apperrors "github.com/paperval/paperval/internal/pkg/errors"
	"github.com/paperval/paperval/internal/pkg/hash"
	"github.com/paperval/paperval/internal/pkg/logger"
	"github.com/paperval/paperval/internal/pkg/security"
	"github.com/paperval/paperval/internal/report"
)

// maxRequestBody bounds evaluation request bodies (32 MiB).
const maxRequestBody = 32 << 20

// EvaluateHandler handles evaluation HTTP requests.
type EvaluateHandler struct {
	cfg config.Config
	bus bus.Bus
	log *logger.Logger
}

// NewEvaluateHandler creates a new evaluation handler.
func NewEvaluateHandler(cfg config.Config, b bus.Bus, log *logger.Logger) *EvaluateHandler {
	if log == nil {
		log = logger.Default()
	}
	return &EvaluateHandler{cfg: cfg, bus: b, log: log}
}

// EvaluateRequest is the request body for POST /v1/evaluate.
type EvaluateRequest struct {
	// Annotations holds the annotation set, kept raw so the run ID is
	// derived from the exact bytes submitted.
	Annotations json.RawMessage `json:"annotations"`

	// Config overrides the server's comparison settings when present.
	Config *compare.Config `json:"config,omitempty"`

	// Workers overrides the server's evaluation concurrency when > 0.
	Workers int `json:"workers,omitempty"`
}

// EvaluateResponse is the response body for POST /v1/evaluate.
type EvaluateResponse struct {
	report.Detailed
	NumPapersSkipped int `json:"num_papers_skipped"`
}

// RegisterRoutes registers evaluation routes.
func (h *EvaluateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/evaluate", h.handleEvaluate)
}

// handleEvaluate handles POST /v1/evaluate.
func (h *EvaluateHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "failed to read request body", err))
		return
	}

	var req EvaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid request body", err))
		return
	}
	if len(req.Annotations) == 0 {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeInvalidRequest, "annotations are required"))
		return
	}

	set, err := corpus.Parse(req.Annotations)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	for paperID := range set.ValidationPapers {
		if err := security.ValidatePaperID(paperID); err != nil {
			apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeValidation, "invalid paper id", err))
			return
		}
	}

	cfg := h.cfg.Compare
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := cfg.Validate(); err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	workers := h.cfg.Evaluation.Workers
	if req.Workers > 0 {
		workers = req.Workers
	}
	if err := security.ValidateWorkers(workers); err != nil {
		apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeValidation, "invalid worker count", err))
		return
	}

	runID := hash.RunID(req.Annotations)
	log := h.log.WithContext(r.Context()).WithRun(runID)
	log.Info("evaluating corpus", "papers", len(set.ValidationPapers))

	results, err := evaluation.EvaluateCorpus(r.Context(), set.ValidationPapers, cfg, workers)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	summary := evaluation.Aggregate(results)
	skipped := len(results) - summary.NumPapersEvaluated

	h.publishEvents(r, runID, results, summary, skipped)

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Detailed: report.Detailed{
			RunID:   runID,
			Summary: summary,
			ByPaper: results,
			Config:  cfg,
		},
		NumPapersSkipped: skipped,
	})
}

// publishEvents emits per-paper and corpus completion events. Publish
// failures are logged, not surfaced to the client.
func (h *EvaluateHandler) publishEvents(r *http.Request, runID string, results map[string]evaluation.PaperEvaluation, summary evaluation.Summary, skipped int) {
	if h.bus == nil {
		return
	}

	ctx := r.Context()
	log := h.log.WithRun(runID)

	for paperID, result := range results {
		payload := bus.PaperEvaluatedPayload{
			RunID:   runID,
			PaperID: paperID,
			Status:  string(result.Status),
		}
		if result.Overall != nil {
			payload.Precision = result.Overall.Precision
			payload.Recall = result.Overall.Recall
			payload.F1 = result.Overall.F1
		}
		event := bus.NewEvent(runID+":"+paperID, bus.TopicPaperEvaluated, "paperval-server", payload)
		if err := h.bus.Publish(ctx, bus.TopicPaperEvaluated, event); err != nil {
			log.WithPaper(paperID).Warn("failed to publish paper event", "error", err.Error())
		}
	}

	event := bus.NewEvent(runID, bus.TopicCorpusEvaluated, "paperval-server", bus.CorpusEvaluatedPayload{
		RunID:              runID,
		Precision:          summary.Overall.Precision,
		Recall:             summary.Overall.Recall,
		F1:                 summary.Overall.F1,
		NumPapersEvaluated: summary.NumPapersEvaluated,
		NumPapersSkipped:   skipped,
	})
	if err := h.bus.Publish(ctx, bus.TopicCorpusEvaluated, event); err != nil {
		log.Warn("failed to publish corpus event", "error", err.Error())
	}
}
