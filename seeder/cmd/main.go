// Seeds the legal knowledge base: splits and embeds regulation reference
// texts (GDPR, CCPA, COPPA) into the legal_chunks collection so the
// compliance agent can retrieve them.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"policylens/ingest"
	"policylens/model"
	"policylens/store"
	"policylens/types"

	"github.com/joho/godotenv"
)

// legalFiles maps reference text files to the regulation they document.
var legalFiles = map[string]string{
	"gdpr_requirements.txt":  "GDPR",
	"ccpa_requirements.txt":  "CCPA",
	"coppa_requirements.txt": "COPPA",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	cfg := types.LoadConfig()

	docsDir := os.Getenv("LEGAL_DOCS_DIR")
	if docsDir == "" {
		docsDir = "legal_docs"
	}

	ctx := context.Background()
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.PGHost, cfg.PGPort, cfg.PGUser, cfg.PGPass, cfg.PGDBName)
	pool, err := store.NewPostgresStore(ctx, connStr, cfg.EmbeddingDim)
	if err != nil {
		log.Fatal("error connecting to Postgres database: ", err)
	}
	defer pool.Close()

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error creating tables: ", err)
	}

	embedder := model.NewOllamaEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)
	splitter := ingest.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	svc := ingest.NewService(pool, embedder, splitter)

	total := 0
	for filename, regulation := range legalFiles {
		path := filepath.Join(docsDir, filename)
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", filename, err)
			continue
		}

		count, err := svc.SeedLegal(ctx, regulation, filename, string(content))
		if err != nil {
			log.Fatalf("seeding %s failed: %v", filename, err)
		}
		log.Printf("seeded %s: %d chunks", filename, count)
		total += count
	}

	log.Printf("legal knowledge base seeded, %d chunks total", total)
}
