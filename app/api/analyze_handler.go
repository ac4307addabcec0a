package api

import (
	"errors"
	"log/slog"
	"time"

	"policylens/analysis"
	"policylens/app/agent"
	"policylens/fetch"
	"policylens/ingest"
	"policylens/store"
	"policylens/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AnalyzeHandler drives the full analysis flow: resolve the policy text,
// run the structured transform, persist document + analysis, ingest
// chunks and eagerly build the Q&A pipeline.
type AnalyzeHandler struct {
	store    store.DBStorer
	analyzer *analysis.Analyzer
	ingestor *ingest.Service
	fetcher  *fetch.Fetcher
	cache    *agent.PipelineCache
	logger   *slog.Logger
}

func NewAnalyzeHandler(storer store.DBStorer, analyzer *analysis.Analyzer, ingestor *ingest.Service, fetcher *fetch.Fetcher, cache *agent.PipelineCache) *AnalyzeHandler {
	return &AnalyzeHandler{
		store:    storer,
		analyzer: analyzer,
		ingestor: ingestor,
		fetcher:  fetcher,
		cache:    cache,
		logger:   slog.Default(),
	}
}

func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var params types.AnalyzeParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return types.NewValidationError(errs)
	}

	ctx := c.Context()

	policyText := params.Data
	sourcePath := ""
	title := params.Title
	if params.SourceType == "url" {
		result, err := h.fetcher.FetchPolicyText(ctx, params.Data)
		if err != nil {
			return NewError(fiber.StatusBadRequest, "could not load content from the provided URL: "+err.Error())
		}
		policyText = result.Text
		sourcePath = params.Data
		if title == "" {
			title = result.Title
		}
	}

	record, err := h.analyzer.Analyze(ctx, policyText)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrMalformedOutput):
			h.logger.Warn("analysis rejected", "error", err)
			return ErrInvalidPolicy()
		case errors.Is(err, types.ErrModelUnavailable):
			h.logger.Error("analysis model unavailable", "error", err)
			return ErrModelDown()
		default:
			return err
		}
	}

	docID := uuid.New()
	if title == "" {
		title = record.CompanyName
	}
	if title == "" {
		title = "Untitled policy"
	}

	doc := types.Document{
		ID:         docID,
		Title:      title,
		Source:     params.SourceType,
		SourcePath: sourcePath,
		PolicyText: policyText,
		CreatedAt:  time.Now(),
	}
	if err := h.store.SaveDocument(ctx, doc); err != nil {
		return err
	}

	record.DocID = docID
	record.CreatedAt = doc.CreatedAt
	if err := h.store.SaveAnalysis(ctx, record); err != nil {
		// Roll the document back so no partial state survives.
		if _, delErr := h.store.DeleteDocument(ctx, docID); delErr != nil {
			h.logger.Error("rollback failed after analysis save error", "doc_id", docID, "error", delErr)
		}
		return err
	}

	if err := h.ingestor.Ingest(ctx, docID, policyText); err != nil {
		if _, delErr := h.store.DeleteDocument(ctx, docID); delErr != nil {
			h.logger.Error("rollback failed after ingest error", "doc_id", docID, "error", delErr)
		}
		return err
	}

	// Eager build so the first question doesn't pay construction cost.
	h.cache.GetOrCreate(docID)

	h.logger.Info("policy analyzed", "doc_id", docID, "risk_score", record.RiskScore)
	return c.JSON(types.AnalyzeResponse{
		DocumentID: docID.String(),
		Analysis:   record,
	})
}
