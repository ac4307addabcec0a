package agent

import (
	"context"
	"sort"
	"strings"

	"policylens/types"

	"github.com/google/uuid"
)

// stubCompleter returns a fixed reply and counts its calls.
type stubCompleter struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
}

func (s *stubCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// echoCompleter returns the prompt it was given, so tests can inspect the
// exact context that reached the model.
type echoCompleter struct {
	calls int
}

func (e *echoCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	e.calls++
	return prompt, nil
}

// letterEmbedder maps text to a letter-frequency vector. Deterministic,
// and texts sharing vocabulary land close together.
type letterEmbedder struct {
	calls int
	err   error
}

func (e *letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

// fakeSearcher returns canned chunks and records the last query.
type fakeSearcher struct {
	chunks  []types.Chunk
	err     error
	calls   int
	lastDoc uuid.UUID
	lastK   int
}

func (f *fakeSearcher) SearchChunks(_ context.Context, docID uuid.UUID, _ []float32, k int) ([]types.Chunk, error) {
	f.calls++
	f.lastDoc = docID
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chunks) > k {
		return f.chunks[:k], nil
	}
	return f.chunks, nil
}

// memorySearcher is an in-memory vector store honoring the document
// filter, used by the end-to-end pipeline tests. It also accepts writes so
// the ingestion service can feed it.
type memorySearcher struct {
	chunks []types.Chunk
}

func (m *memorySearcher) SaveChunks(_ context.Context, chunks []types.Chunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memorySearcher) DeleteChunksByDocID(_ context.Context, docID uuid.UUID) error {
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.DocID != docID {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
	return nil
}

func (m *memorySearcher) SaveLegalChunks(_ context.Context, _ []types.LegalChunk) error {
	return nil
}

func (m *memorySearcher) SearchChunks(_ context.Context, docID uuid.UUID, queryVec []float32, k int) ([]types.Chunk, error) {
	var matches []types.Chunk
	for _, c := range m.chunks {
		if c.DocID != docID {
			continue
		}
		c.Score = cosineSimilarity(queryVec, c.Embedding)
		matches = append(matches, c)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// leakySearcher ignores the document filter entirely and returns whatever
// it holds. Simulates a broken store-side filter.
type leakySearcher struct {
	chunks []types.Chunk
}

func (l *leakySearcher) SearchChunks(_ context.Context, _ uuid.UUID, _ []float32, k int) ([]types.Chunk, error) {
	if len(l.chunks) > k {
		return l.chunks[:k], nil
	}
	return l.chunks, nil
}

// fakeWeb returns canned search results.
type fakeWeb struct {
	results []types.WebResult
	err     error
	calls   int
}

func (f *fakeWeb) Search(_ context.Context, _ string, _ int) ([]types.WebResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
