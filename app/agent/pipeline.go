package agent

import (
	"context"

	"policylens/model"
	"policylens/types"

	"github.com/google/uuid"
)

// Deps collects the collaborators a pipeline is assembled from. The same
// Deps value serves every document; only the document id varies per
// pipeline.
type Deps struct {
	Searcher ChunkSearcher
	Embedder model.Embedder
	// LLM composes answers; FastLLM classifies intents. They may be the
	// same client.
	LLM     model.Completer
	FastLLM model.Completer
	Web     model.WebSearcher
	Cfg     types.Config
}

// Pipeline is the bound set of components (classifier, retriever,
// router) specialized to one document's identifier.
type Pipeline struct {
	docID  uuid.UUID
	router *Router
}

// NewPipeline assembles a pipeline for one document.
func NewPipeline(deps Deps, docID uuid.UUID) *Pipeline {
	retriever := NewRetriever(deps.Searcher, deps.Embedder, docID, RetrievalConfig{
		TopK:      deps.Cfg.TopK,
		FetchK:    deps.Cfg.FetchK,
		MMRLambda: deps.Cfg.MMRLambda,
		UseMMR:    deps.Cfg.UseMMR,
	})
	classifier := NewClassifier(deps.FastLLM)
	builder := NewContextBuilder(deps.Cfg.ContextMaxTokens)
	router := NewRouter(classifier, retriever, deps.LLM, deps.Web, builder, deps.Cfg.WebMaxResults)

	return &Pipeline{
		docID:  docID,
		router: router,
	}
}

func (p *Pipeline) DocID() uuid.UUID {
	return p.docID
}

// Ask answers one question against this pipeline's document. The call is
// strictly sequential (classify, retrieve, generate) and blocks until
// done or ctx expires.
func (p *Pipeline) Ask(ctx context.Context, question string) (string, error) {
	return p.router.Answer(ctx, question)
}

// Retriever exposes the document-bound retriever so collaborators (the
// compliance agent) can reuse the same scoped retrieval.
func (p *Pipeline) Retriever() *Retriever {
	return p.router.retriever
}
