package api

import (
	"errors"
	"log/slog"

	"policylens/analysis"
	"policylens/store"
	"policylens/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CompareHandler compares two or more analyzed policies side by side.
type CompareHandler struct {
	store    store.DBStorer
	analyzer *analysis.Analyzer
	logger   *slog.Logger
}

func NewCompareHandler(storer store.DBStorer, analyzer *analysis.Analyzer) *CompareHandler {
	return &CompareHandler{
		store:    storer,
		analyzer: analyzer,
		logger:   slog.Default(),
	}
}

func (h *CompareHandler) HandleCompare(c *fiber.Ctx) error {
	var params types.CompareParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return types.NewValidationError(errs)
	}

	ctx := c.Context()
	policies := make([]string, 0, len(params.DocumentIDs))
	for _, id := range params.DocumentIDs {
		docID, err := uuid.Parse(id)
		if err != nil {
			return ErrInvalidID()
		}
		doc, err := h.store.GetDocumentByID(ctx, docID)
		if err != nil {
			if store.IsNotFound(err) {
				return ErrNotFound(docID, "document")
			}
			return err
		}
		policies = append(policies, doc.PolicyText)
	}

	comparison, err := h.analyzer.Compare(ctx, policies)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrModelUnavailable):
			return ErrModelDown()
		case errors.Is(err, types.ErrMalformedOutput):
			return NewError(fiber.StatusBadGateway, "the comparison model returned an unusable result, please try again")
		default:
			return err
		}
	}

	h.logger.Info("policies compared", "count", len(policies))
	return c.JSON(types.CompareResponse{Comparison: comparison})
}
