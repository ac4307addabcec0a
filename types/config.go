package types

import (
	"os"
	"strconv"
	"time"
)

// Config collects all runtime settings, read once from the environment at
// startup.
type Config struct {
	ServerAddr string

	PGHost   string
	PGPort   int
	PGUser   string
	PGPass   string
	PGDBName string

	LLMURL   string
	LLMModel string
	// FastLLMModel handles low-latency calls (intent classification).
	FastLLMModel string
	LLMTimeout   time.Duration

	EmbeddingURL   string
	EmbeddingModel string
	EmbeddingDim   int

	TavilyAPIKey  string
	WebMaxResults int

	ChunkSize    int
	ChunkOverlap int

	TopK      int
	FetchK    int
	MMRLambda float64
	UseMMR    bool

	ContextMaxTokens int
	MaxPipelines     int
}

// LoadConfig reads settings from the environment, applying defaults for
// everything that is tunable rather than required.
func LoadConfig() Config {
	return Config{
		ServerAddr: envStr("SERVER_ADDR", ":8080"),

		PGHost:   os.Getenv("PG_HOST"),
		PGPort:   envInt("PG_PORT", 5432),
		PGUser:   os.Getenv("PG_USER"),
		PGPass:   os.Getenv("PG_PASS"),
		PGDBName: os.Getenv("PG_DB_NAME"),

		LLMURL:       os.Getenv("LLM_URL"),
		LLMModel:     os.Getenv("LLM_MODEL"),
		FastLLMModel: envStr("LLM_FAST_MODEL", os.Getenv("LLM_MODEL")),
		LLMTimeout:   time.Duration(envInt("LLM_TIMEOUT_SECS", 120)) * time.Second,

		EmbeddingURL:   os.Getenv("EMBEDDING_URL"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		EmbeddingDim:   envInt("EMBEDDING_DIM", 768),

		TavilyAPIKey:  os.Getenv("TAVILY_API_KEY"),
		WebMaxResults: envInt("WEB_MAX_RESULTS", 3),

		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 100),

		TopK:      envInt("RETRIEVAL_TOP_K", 4),
		FetchK:    envInt("RETRIEVAL_FETCH_K", 20),
		MMRLambda: envFloat("RETRIEVAL_MMR_LAMBDA", 0.5),
		UseMMR:    envBool("RETRIEVAL_USE_MMR", true),

		ContextMaxTokens: envInt("CONTEXT_MAX_TOKENS", 3000),
		MaxPipelines:     envInt("MAX_PIPELINES", 256),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
