package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"policylens/analysis"
	"policylens/app/agent"
	"policylens/app/api"
	"policylens/fetch"
	"policylens/ingest"
	"policylens/model"
	"policylens/store"
	"policylens/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	cfg    types.Config
	logger *slog.Logger
	app    *fiber.App
	pool   *store.PostgresStore
}

func NewServer(cfg types.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (s *Server) Stop() {
	if s.app != nil {
		_ = s.app.Shutdown()
	}
	if s.pool != nil {
		_ = s.pool.Close()
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		s.cfg.PGHost, s.cfg.PGPort, s.cfg.PGUser, s.cfg.PGPass, s.cfg.PGDBName)
	pool, err := store.NewPostgresStore(ctx, connStr, s.cfg.EmbeddingDim)
	if err != nil {
		log.Fatal("error connecting to Postgres database: ", err)
		return
	}
	s.pool = pool

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error creating tables: ", err)
		return
	}

	var (
		embedder = model.NewOllamaEmbedder(s.cfg.EmbeddingURL, s.cfg.EmbeddingModel)
		llm      = model.NewOllamaClient(s.cfg.LLMURL, s.cfg.LLMModel, s.cfg.LLMTimeout)
		fastLLM  = model.NewOllamaClient(s.cfg.LLMURL, s.cfg.FastLLMModel, s.cfg.LLMTimeout)
		web      = model.NewTavilyClient(s.cfg.TavilyAPIKey)
		analyzer = analysis.NewAnalyzer(llm)
		splitter = ingest.NewSplitter(s.cfg.ChunkSize, s.cfg.ChunkOverlap)
		ingestor = ingest.NewService(pool, embedder, splitter)
		fetcher  = fetch.NewFetcher()
		builder  = agent.NewContextBuilder(s.cfg.ContextMaxTokens)
	)

	deps := agent.Deps{
		Searcher: pool,
		Embedder: embedder,
		LLM:      llm,
		FastLLM:  fastLLM,
		Web:      web,
		Cfg:      s.cfg,
	}
	cache := agent.NewPipelineCache(s.cfg.MaxPipelines, func(docID uuid.UUID) *agent.Pipeline {
		return agent.NewPipeline(deps, docID)
	})

	var (
		app               = fiber.New(fiberConfig)
		checkHandler      = api.NewCheckHandler()
		analyzeHandler    = api.NewAnalyzeHandler(pool, analyzer, ingestor, fetcher, cache)
		chatHandler       = api.NewChatHandler(pool, cache)
		compareHandler    = api.NewCompareHandler(pool, analyzer)
		complianceHandler = api.NewComplianceHandler(pool, analyzer, embedder, cache, builder)
		check             = app.Group("/check")
		apiv1             = app.Group("/api/v1")
	)
	s.app = app

	check.Get("/healthy", checkHandler.HandleHealthy)

	apiv1.Post("/analyze", analyzeHandler.HandleAnalyze)
	apiv1.Post("/chat", chatHandler.HandleChat)
	apiv1.Get("/chats", chatHandler.HandleListChats)
	apiv1.Get("/chats/:id", chatHandler.HandleChatHistory)
	apiv1.Put("/chats/:id", chatHandler.HandleRenameChat)
	apiv1.Delete("/chats/:id", chatHandler.HandleDeleteChat)
	apiv1.Post("/compare", compareHandler.HandleCompare)
	apiv1.Post("/agents/compliance", complianceHandler.HandleCompliance)

	if err := app.Listen(s.cfg.ServerAddr); err != nil {
		s.logger.Error("error starting server", "error", err.Error())
		return
	}
}
