package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"policylens/app/agent"
	"policylens/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeDB is an in-memory DBStorer for handler tests.
type fakeDB struct {
	docs     map[uuid.UUID]*types.Document
	analyses map[uuid.UUID]*types.Analysis
	chunks   []types.Chunk
	legal    []types.LegalChunk
	messages []types.ChatMessage

	searchErr  error
	leakChunks []types.Chunk
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		docs:     make(map[uuid.UUID]*types.Document),
		analyses: make(map[uuid.UUID]*types.Analysis),
	}
}

func (f *fakeDB) SaveDocument(_ context.Context, doc types.Document) error {
	f.docs[doc.ID] = &doc
	return nil
}

func (f *fakeDB) GetDocumentByID(_ context.Context, docID uuid.UUID) (*types.Document, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return doc, nil
}

func (f *fakeDB) ListDocuments(_ context.Context) ([]types.DocumentSummary, error) {
	var docs []types.DocumentSummary
	for _, d := range f.docs {
		docs = append(docs, types.DocumentSummary{ID: d.ID, Title: d.Title, CreatedAt: d.CreatedAt})
	}
	return docs, nil
}

func (f *fakeDB) RenameDocument(_ context.Context, docID uuid.UUID, title string) (bool, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return false, nil
	}
	doc.Title = title
	return true, nil
}

func (f *fakeDB) DeleteDocument(_ context.Context, docID uuid.UUID) (bool, error) {
	if _, ok := f.docs[docID]; !ok {
		return false, nil
	}
	delete(f.docs, docID)
	delete(f.analyses, docID)
	return true, nil
}

func (f *fakeDB) SaveAnalysis(_ context.Context, analysis *types.Analysis) error {
	f.analyses[analysis.DocID] = analysis
	return nil
}

func (f *fakeDB) GetAnalysisByDocID(_ context.Context, docID uuid.UUID) (*types.Analysis, error) {
	a, ok := f.analyses[docID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (f *fakeDB) SaveChunks(_ context.Context, chunks []types.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeDB) DeleteChunksByDocID(_ context.Context, docID uuid.UUID) error {
	kept := f.chunks[:0]
	for _, c := range f.chunks {
		if c.DocID != docID {
			kept = append(kept, c)
		}
	}
	f.chunks = kept
	return nil
}

func (f *fakeDB) SearchChunks(_ context.Context, docID uuid.UUID, _ []float32, k int) ([]types.Chunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.leakChunks != nil {
		return f.leakChunks, nil
	}
	var matches []types.Chunk
	for _, c := range f.chunks {
		if c.DocID == docID {
			matches = append(matches, c)
		}
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (f *fakeDB) SaveChatMessage(_ context.Context, docID uuid.UUID, author types.Author, content string) error {
	f.messages = append(f.messages, types.ChatMessage{
		ID:      int64(len(f.messages) + 1),
		DocID:   docID,
		Author:  author,
		Content: content,
	})
	return nil
}

func (f *fakeDB) GetChatHistory(_ context.Context, docID uuid.UUID) ([]types.ChatMessage, error) {
	var messages []types.ChatMessage
	for _, m := range f.messages {
		if m.DocID == docID {
			messages = append(messages, m)
		}
	}
	return messages, nil
}

func (f *fakeDB) SaveLegalChunks(_ context.Context, chunks []types.LegalChunk) error {
	f.legal = append(f.legal, chunks...)
	return nil
}

func (f *fakeDB) SearchLegal(_ context.Context, regulation string, _ []float32, k int) ([]types.LegalChunk, error) {
	var matches []types.LegalChunk
	for _, c := range f.legal {
		if c.Regulation == regulation {
			matches = append(matches, c)
		}
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// stubLLM is a canned completer.
type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubEmbed returns a fixed unit vector.
type stubEmbed struct{}

func (stubEmbed) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

// stubWeb returns one canned result.
type stubWeb struct{}

func (stubWeb) Search(_ context.Context, _ string, _ int) ([]types.WebResult, error) {
	return []types.WebResult{{Title: "result", Snippet: "snippet", URL: "https://example.org"}}, nil
}

func testPipelineCache(db *fakeDB, classifierReply string, answerLLM *stubLLM) *agent.PipelineCache {
	deps := agent.Deps{
		Searcher: db,
		Embedder: stubEmbed{},
		LLM:      answerLLM,
		FastLLM:  &stubLLM{reply: classifierReply},
		Web:      stubWeb{},
		Cfg: types.Config{
			TopK:             2,
			UseMMR:           false,
			WebMaxResults:    3,
			ContextMaxTokens: 3000,
		},
	}
	return agent.NewPipelineCache(0, func(docID uuid.UUID) *agent.Pipeline {
		return agent.NewPipeline(deps, docID)
	})
}

func testApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func jsonRequest(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func seedDocument(db *fakeDB) uuid.UUID {
	docID := uuid.New()
	db.docs[docID] = &types.Document{ID: docID, Title: "Acme policy", PolicyText: "We collect email."}
	db.chunks = append(db.chunks, types.Chunk{
		ID:        uuid.New(),
		DocID:     docID,
		Content:   "We collect email addresses and device identifiers.",
		Embedding: []float32{1, 0},
	})
	return docID
}
