package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"policylens/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DBStorer is the persistence collaborator consumed by the handlers and
// the pipeline core.
type DBStorer interface {
	SaveDocument(ctx context.Context, doc types.Document) error
	GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error)
	ListDocuments(ctx context.Context) ([]types.DocumentSummary, error)
	RenameDocument(ctx context.Context, docID uuid.UUID, title string) (bool, error)
	DeleteDocument(ctx context.Context, docID uuid.UUID) (bool, error)

	SaveAnalysis(ctx context.Context, analysis *types.Analysis) error
	GetAnalysisByDocID(ctx context.Context, docID uuid.UUID) (*types.Analysis, error)

	SaveChunks(ctx context.Context, chunks []types.Chunk) error
	DeleteChunksByDocID(ctx context.Context, docID uuid.UUID) error
	SearchChunks(ctx context.Context, docID uuid.UUID, queryVec []float32, k int) ([]types.Chunk, error)

	SaveChatMessage(ctx context.Context, docID uuid.UUID, author types.Author, content string) error
	GetChatHistory(ctx context.Context, docID uuid.UUID) ([]types.ChatMessage, error)

	SaveLegalChunks(ctx context.Context, chunks []types.LegalChunk) error
	SearchLegal(ctx context.Context, regulation string, queryVec []float32, k int) ([]types.LegalChunk, error)
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

type PostgresStore struct {
	pool   *pgxpool.Pool
	dim    int
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, embeddingDim int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:   pool,
		dim:    embeddingDim,
		logger: slog.Default(),
	}, nil
}

// Init creates the schema. Chunk deletion cascades from documents, so a
// document delete removes its analysis, chunks and chat history in one
// statement.
func (p *PostgresStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		source TEXT,
		source_path TEXT,
		policy_text TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS analyses (
		doc_id UUID PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
		company_name TEXT,
		company_domain TEXT,
		pii_collected TEXT[] NOT NULL,
		data_sharing TEXT NOT NULL,
		retention TEXT NOT NULL,
		risk_score INTEGER NOT NULL CHECK (risk_score BETWEEN 1 AND 10),
		final_summary TEXT NOT NULL,
		sharing_clauses JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id UUID PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);
	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		author TEXT NOT NULL CHECK (author IN ('user','assistant')),
		content TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_doc_id ON chat_messages(doc_id);

	CREATE TABLE IF NOT EXISTS legal_chunks (
		id UUID PRIMARY KEY,
		regulation TEXT NOT NULL,
		source_file TEXT NOT NULL,
		position INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d)
	);

	CREATE INDEX IF NOT EXISTS idx_legal_chunks_regulation ON legal_chunks(regulation);
	`, p.dim, p.dim)

	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) SaveDocument(ctx context.Context, doc types.Document) error {
	query := `INSERT INTO documents (id, title, source, source_path, policy_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := p.pool.Exec(ctx, query,
		doc.ID, doc.Title, doc.Source, doc.SourcePath, doc.PolicyText, doc.CreatedAt)
	return err
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	doc := &types.Document{}
	err := p.pool.QueryRow(ctx,
		`SELECT id, title, source, source_path, policy_text, created_at FROM documents WHERE id = $1`,
		docID,
	).Scan(&doc.ID, &doc.Title, &doc.Source, &doc.SourcePath, &doc.PolicyText, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *PostgresStore) ListDocuments(ctx context.Context) ([]types.DocumentSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT d.id, d.title, COALESCE(a.risk_score, 0), d.created_at
		FROM documents d
		LEFT JOIN analyses a ON a.doc_id = d.id
		ORDER BY d.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []types.DocumentSummary
	for rows.Next() {
		var d types.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.RiskScore, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (p *PostgresStore) RenameDocument(ctx context.Context, docID uuid.UUID, title string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `UPDATE documents SET title = $2 WHERE id = $1`, docID, title)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) DeleteDocument(ctx context.Context, docID uuid.UUID) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, docID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) SaveAnalysis(ctx context.Context, analysis *types.Analysis) error {
	clauses, err := json.Marshal(analysis.SharingClauses)
	if err != nil {
		return fmt.Errorf("marshal sharing clauses: %w", err)
	}

	query := `INSERT INTO analyses
		(doc_id, company_name, company_domain, pii_collected, data_sharing, retention, risk_score, final_summary, sharing_clauses, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = p.pool.Exec(ctx, query,
		analysis.DocID, analysis.CompanyName, analysis.CompanyDomain,
		analysis.PIICollected, analysis.DataSharing, analysis.Retention,
		analysis.RiskScore, analysis.FinalSummary, clauses, analysis.CreatedAt)
	return err
}

func (p *PostgresStore) GetAnalysisByDocID(ctx context.Context, docID uuid.UUID) (*types.Analysis, error) {
	a := &types.Analysis{}
	var clauses []byte
	err := p.pool.QueryRow(ctx, `
		SELECT doc_id, company_name, company_domain, pii_collected, data_sharing, retention, risk_score, final_summary, sharing_clauses, created_at
		FROM analyses WHERE doc_id = $1`, docID,
	).Scan(&a.DocID, &a.CompanyName, &a.CompanyDomain, &a.PIICollected,
		&a.DataSharing, &a.Retention, &a.RiskScore, &a.FinalSummary, &clauses, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(clauses) > 0 {
		if err := json.Unmarshal(clauses, &a.SharingClauses); err != nil {
			return nil, fmt.Errorf("unmarshal sharing clauses: %w", err)
		}
	}
	return a, nil
}

func (p *PostgresStore) SaveChunks(ctx context.Context, chunks []types.Chunk) error {
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO chunks (id, doc_id, position, content, embedding) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.DocID, c.Index, c.Content, pgvector.NewVector(c.Embedding))
	}
	return p.pool.SendBatch(ctx, batch).Close()
}

func (p *PostgresStore) DeleteChunksByDocID(ctx context.Context, docID uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM chunks WHERE doc_id = $1`, docID)
	return err
}

// SearchChunks runs a cosine similarity search restricted to one
// document. The doc_id filter lives in the SQL itself so a chunk from
// another document can never enter the candidate set, no matter how close
// its embedding is.
func (p *PostgresStore) SearchChunks(ctx context.Context, docID uuid.UUID, queryVec []float32, k int) ([]types.Chunk, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if k <= 0 {
		k = 5
	}

	query := `
		SELECT id, doc_id, position, content, embedding,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE doc_id = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3`
	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(queryVec), docID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var chunk types.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&chunk.ID, &chunk.DocID, &chunk.Index, &chunk.Content, &embedding, &chunk.Score); err != nil {
			return nil, err
		}
		chunk.Embedding = embedding.Slice()
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (p *PostgresStore) SaveChatMessage(ctx context.Context, docID uuid.UUID, author types.Author, content string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO chat_messages (doc_id, author, content) VALUES ($1, $2, $3)`,
		docID, author, content)
	return err
}

func (p *PostgresStore) GetChatHistory(ctx context.Context, docID uuid.UUID) ([]types.ChatMessage, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, doc_id, author, content, created_at
		FROM chat_messages WHERE doc_id = $1 ORDER BY id`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		if err := rows.Scan(&m.ID, &m.DocID, &m.Author, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (p *PostgresStore) SaveLegalChunks(ctx context.Context, chunks []types.LegalChunk) error {
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO legal_chunks (id, regulation, source_file, position, content, embedding) VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Regulation, c.SourceFile, c.Index, c.Content, pgvector.NewVector(c.Embedding))
	}
	return p.pool.SendBatch(ctx, batch).Close()
}

func (p *PostgresStore) SearchLegal(ctx context.Context, regulation string, queryVec []float32, k int) ([]types.LegalChunk, error) {
	if k <= 0 {
		k = 5
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id, regulation, source_file, position, content,
		       1 - (embedding <=> $1) AS score
		FROM legal_chunks
		WHERE regulation = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3`, pgvector.NewVector(queryVec), regulation, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.LegalChunk
	for rows.Next() {
		var c types.LegalChunk
		if err := rows.Scan(&c.ID, &c.Regulation, &c.SourceFile, &c.Index, &c.Content, &c.Score); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.logger.Info("postgres connection pool closed")
	}
	return nil
}
