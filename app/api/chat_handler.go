package api

import (
	"errors"
	"log/slog"

	"policylens/app/agent"
	"policylens/store"
	"policylens/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ChatHandler serves the per-document question-answering surface and the
// chat log management routes.
type ChatHandler struct {
	store  store.DBStorer
	cache  *agent.PipelineCache
	logger *slog.Logger
}

func NewChatHandler(storer store.DBStorer, cache *agent.PipelineCache) *ChatHandler {
	return &ChatHandler{
		store:  storer,
		cache:  cache,
		logger: slog.Default(),
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
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

	if err := h.store.SaveChatMessage(ctx, docID, types.AuthorUser, params.Question); err != nil {
		return err
	}

	answer, err := pipeline.Ask(ctx, params.Question)
	if err != nil {
		// The user message stays in the log; no broken answer is stored.
		if errors.Is(err, types.ErrRetrievalFilterViolation) {
			h.logger.Error("retrieval filter violation", "doc_id", docID, "error", err)
			return NewError(fiber.StatusInternalServerError, "internal retrieval error")
		}
		h.logger.Error("chat answer failed", "doc_id", docID, "error", err)
		return NewError(fiber.StatusInternalServerError, "an error occurred during chat: "+err.Error())
	}

	if err := h.store.SaveChatMessage(ctx, docID, types.AuthorAssistant, answer); err != nil {
		return err
	}

	return c.JSON(types.ChatResponse{Reply: answer})
}

func (h *ChatHandler) HandleListChats(c *fiber.Ctx) error {
	docs, err := h.store.ListDocuments(c.Context())
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []types.DocumentSummary{}
	}
	return c.JSON(docs)
}

func (h *ChatHandler) HandleChatHistory(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	ctx := c.Context()
	doc, err := h.store.GetDocumentByID(ctx, docID)
	if err != nil {
		if store.IsNotFound(err) {
			return ErrNotFound(docID, "document")
		}
		return err
	}

	messages, err := h.store.GetChatHistory(ctx, docID)
	if err != nil {
		return err
	}
	if messages == nil {
		messages = []types.ChatMessage{}
	}

	analysisRecord, err := h.store.GetAnalysisByDocID(ctx, docID)
	if err != nil && !store.IsNotFound(err) {
		return err
	}

	return c.JSON(fiber.Map{
		"document_id": doc.ID,
		"title":       doc.Title,
		"policy_text": doc.PolicyText,
		"analysis":    analysisRecord,
		"messages":    messages,
	})
}

func (h *ChatHandler) HandleRenameChat(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	var params types.RenameParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return types.NewValidationError(errs)
	}

	renamed, err := h.store.RenameDocument(c.Context(), docID, params.Title)
	if err != nil {
		return err
	}
	if !renamed {
		return ErrNotFound(docID, "document")
	}
	return c.JSON(fiber.Map{"message": "chat renamed successfully"})
}

func (h *ChatHandler) HandleDeleteChat(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	deleted, err := h.store.DeleteDocument(c.Context(), docID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound(docID, "document")
	}

	// The document row is gone; a stale pipeline must not survive it.
	h.cache.Invalidate(docID)

	h.logger.Info("document deleted", "doc_id", docID)
	return c.JSON(fiber.Map{"message": "chat deleted successfully"})
}
