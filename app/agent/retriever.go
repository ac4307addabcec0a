package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"policylens/model"
	"policylens/types"

	"github.com/google/uuid"
)

// ChunkSearcher is the slice of the store the retriever consumes.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, docID uuid.UUID, queryVec []float32, k int) ([]types.Chunk, error)
}

// RetrievalConfig tunes how fragments are selected for one question.
type RetrievalConfig struct {
	// TopK is how many fragments the retriever returns.
	TopK int
	// FetchK is the candidate pool size when MMR is enabled. Must exceed
	// TopK to give the diversification something to choose from.
	FetchK int
	// MMRLambda trades relevance against diversity: 1 is pure relevance,
	// 0 is maximum diversity.
	MMRLambda float64
	// UseMMR enables maximal-marginal-relevance selection.
	UseMMR bool
}

// Retriever returns the most relevant fragments of one document for a
// question. It is bound to a single document id; the id filter is applied
// by the store and re-checked here, since a fragment from another
// document crossing this boundary is a data leak.
type Retriever struct {
	searcher ChunkSearcher
	embedder model.Embedder
	docID    uuid.UUID
	cfg      RetrievalConfig
	logger   *slog.Logger
}

func NewRetriever(searcher ChunkSearcher, embedder model.Embedder, docID uuid.UUID, cfg RetrievalConfig) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.FetchK <= cfg.TopK {
		cfg.FetchK = cfg.TopK * 5
	}
	if cfg.MMRLambda < 0 || cfg.MMRLambda > 1 {
		cfg.MMRLambda = 0.5
	}
	return &Retriever{
		searcher: searcher,
		embedder: embedder,
		docID:    docID,
		cfg:      cfg,
		logger:   slog.Default(),
	}
}

// Retrieve embeds the question and returns up to TopK fragments in
// selection order.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]types.Chunk, error) {
	queryVec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	fetch := r.cfg.TopK
	if r.cfg.UseMMR {
		fetch = r.cfg.FetchK
	}

	candidates, err := r.searcher.SearchChunks(ctx, r.docID, queryVec, fetch)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	for _, c := range candidates {
		if c.DocID != r.docID {
			return nil, fmt.Errorf("%w: got chunk of document %s while retrieving for %s",
				types.ErrRetrievalFilterViolation, c.DocID, r.docID)
		}
	}

	if !r.cfg.UseMMR || len(candidates) <= r.cfg.TopK {
		if len(candidates) > r.cfg.TopK {
			candidates = candidates[:r.cfg.TopK]
		}
		return candidates, nil
	}

	selected := mmrSelect(queryVec, candidates, r.cfg.TopK, r.cfg.MMRLambda)
	r.logger.Debug("retrieval complete", "doc_id", r.docID, "candidates", len(candidates), "selected", len(selected))
	return selected, nil
}

// mmrSelect greedily picks k chunks maximizing
// lambda*sim(query, c) - (1-lambda)*max sim(c, already selected).
// Returned in selection order, which is not similarity order.
func mmrSelect(queryVec []float32, candidates []types.Chunk, k int, lambda float64) []types.Chunk {
	if k > len(candidates) {
		k = len(candidates)
	}

	querySims := make([]float64, len(candidates))
	for i, c := range candidates {
		querySims[i] = cosineSimilarity(queryVec, c.Embedding)
	}

	selected := make([]types.Chunk, 0, k)
	selectedIdx := make([]int, 0, k)
	used := make([]bool, len(candidates))

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i := range candidates {
			if used[i] {
				continue
			}
			// Max similarity to the selected set. Can be negative for
			// anticorrelated candidates, which earns diversity credit.
			redundancy := 0.0
			if len(selectedIdx) > 0 {
				redundancy = math.Inf(-1)
				for _, j := range selectedIdx {
					if sim := cosineSimilarity(candidates[i].Embedding, candidates[j].Embedding); sim > redundancy {
						redundancy = sim
					}
				}
			}
			score := lambda*querySims[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		used[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
		selected = append(selected, candidates[bestIdx])
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
