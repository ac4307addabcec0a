package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"policylens/analysis"
	"policylens/app/agent"
	"policylens/model"
	"policylens/store"
	"policylens/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// legalProbeTemplate is the retrieval query used to pull regulation
// requirements out of the legal knowledge base.
const legalProbeTemplate = "%s compliance requirements data subject rights consent processing"

// complianceProbeTemplate is the retrieval query used to pull the policy
// sections most relevant to a compliance assessment.
const complianceProbeTemplate = "data collection sharing retention user rights consent %s"

// ComplianceHandler runs the compliance agent: retrieval-augmented
// assessment of one document against one regulation.
type ComplianceHandler struct {
	store    store.DBStorer
	analyzer *analysis.Analyzer
	embedder model.Embedder
	cache    *agent.PipelineCache
	builder  *agent.ContextBuilder
	logger   *slog.Logger
}

func NewComplianceHandler(storer store.DBStorer, analyzer *analysis.Analyzer, embedder model.Embedder, cache *agent.PipelineCache, builder *agent.ContextBuilder) *ComplianceHandler {
	return &ComplianceHandler{
		store:    storer,
		analyzer: analyzer,
		embedder: embedder,
		cache:    cache,
		builder:  builder,
		logger:   slog.Default(),
	}
}

func (h *ComplianceHandler) HandleCompliance(c *fiber.Ctx) error {
	var params types.ComplianceParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return types.NewValidationError(errs)
	}

	docID, err := uuid.Parse(params.DocumentID)
	if err != nil {
		return ErrInvalidID()
	}

	ctx := c.Context()
	if _, err := h.store.GetDocumentByID(ctx, docID); err != nil {
		if store.IsNotFound(err) {
			return ErrNotFound(docID, "document")
		}
		return err
	}

	pipeline := h.cache.GetOrCreate(docID)
	docChunks, err := pipeline.Retriever().Retrieve(ctx, fmt.Sprintf(complianceProbeTemplate, params.Regulation))
	if err != nil {
		if errors.Is(err, types.ErrRetrievalFilterViolation) {
			h.logger.Error("retrieval filter violation", "doc_id", docID, "error", err)
			return NewError(fiber.StatusInternalServerError, "internal retrieval error")
		}
		return err
	}

	legalVec, err := h.embedder.Embed(ctx, fmt.Sprintf(legalProbeTemplate, params.Regulation))
	if err != nil {
		return ErrModelDown()
	}
	legalChunks, err := h.store.SearchLegal(ctx, params.Regulation, legalVec, 6)
	if err != nil {
		return err
	}

	report, err := h.analyzer.AnalyzeCompliance(ctx,
		params.Regulation,
		h.builder.BuildLegal(legalChunks),
		h.builder.Build(docChunks))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrMalformedOutput):
			return NewError(fiber.StatusBadGateway, "the compliance model returned an unusable assessment, please try again")
		case errors.Is(err, types.ErrModelUnavailable):
			return ErrModelDown()
		default:
			return err
		}
	}

	// The agent run becomes part of the document's chat history, like a
	// question asked by the user.
	if err := h.store.SaveChatMessage(ctx, docID, types.AuthorUser, fmt.Sprintf("[Agent: %s compliance check]", params.Regulation)); err != nil {
		return err
	}
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := h.store.SaveChatMessage(ctx, docID, types.AuthorAssistant, string(reportJSON)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"result": report, "agent": "compliance"})
}
