// Package ingest splits policy text into overlapping fragments, embeds
// them and writes them to the vector store tagged with the owning
// document's id.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"policylens/model"
	"policylens/types"

	"github.com/google/uuid"
)

// ChunkStore is the slice of the persistence layer the ingestion service
// needs.
type ChunkStore interface {
	DeleteChunksByDocID(ctx context.Context, docID uuid.UUID) error
	SaveChunks(ctx context.Context, chunks []types.Chunk) error
	SaveLegalChunks(ctx context.Context, chunks []types.LegalChunk) error
}

type Service struct {
	store    ChunkStore
	embedder model.Embedder
	splitter *Splitter
	logger   *slog.Logger
}

func NewService(store ChunkStore, embedder model.Embedder, splitter *Splitter) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		splitter: splitter,
		logger:   slog.Default(),
	}
}

// Ingest splits rawText, embeds every fragment and stores the result
// tagged with docID. Existing chunks for the document are deleted first,
// so re-ingesting refreshes instead of duplicating.
func (s *Service) Ingest(ctx context.Context, docID uuid.UUID, rawText string) error {
	fragments := s.splitter.Split(rawText)
	if len(fragments) == 0 {
		return fmt.Errorf("no fragments produced for document %s", docID)
	}

	chunks := make([]types.Chunk, 0, len(fragments))
	for i, frag := range fragments {
		vec, err := s.embedder.Embed(ctx, frag)
		if err != nil {
			return fmt.Errorf("embed fragment %d: %w", i, err)
		}
		chunks = append(chunks, types.Chunk{
			ID:        uuid.New(),
			DocID:     docID,
			Index:     i,
			Content:   frag,
			Embedding: vec,
		})
	}

	if err := s.store.DeleteChunksByDocID(ctx, docID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	s.logger.Info("document ingested", "doc_id", docID, "chunks", len(chunks))
	return nil
}

// SeedLegal ingests one regulation reference text into the legal
// knowledge base collection using the same splitter and embedder.
func (s *Service) SeedLegal(ctx context.Context, regulation, sourceFile, text string) (int, error) {
	fragments := s.splitter.Split(text)
	if len(fragments) == 0 {
		return 0, fmt.Errorf("no fragments produced for %s", sourceFile)
	}

	chunks := make([]types.LegalChunk, 0, len(fragments))
	for i, frag := range fragments {
		vec, err := s.embedder.Embed(ctx, frag)
		if err != nil {
			return 0, fmt.Errorf("embed fragment %d of %s: %w", i, sourceFile, err)
		}
		chunks = append(chunks, types.LegalChunk{
			ID:         uuid.New(),
			Regulation: regulation,
			SourceFile: sourceFile,
			Index:      i,
			Content:    frag,
			Embedding:  vec,
		})
	}

	if err := s.store.SaveLegalChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("save legal chunks: %w", err)
	}

	s.logger.Info("legal reference ingested", "regulation", regulation, "file", sourceFile, "chunks", len(chunks))
	return len(chunks), nil
}
