// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AIConfig holds model provider settings. Each agent can override the
// generator model; empty overrides fall back to GeneratorModel.
type AIConfig struct {
	LLMProvider       string
	OllamaHost        string
	GeminiAPIKey      string
	GeneratorModel    string
	ClarityModel      string
	RigorModel        string
	OrchestratorModel string
	EmbedderProvider  string
	EmbedderModel     string
}

// ModelFor returns the model configured for an agent role, falling back to
// the generator model.
func (c AIConfig) ModelFor(role string) string {
	switch role {
	case "clarity":
		if c.ClarityModel != "" {
			return c.ClarityModel
		}
	case "rigor":
		if c.RigorModel != "" {
			return c.RigorModel
		}
	case "orchestrator":
		if c.OrchestratorModel != "" {
			return c.OrchestratorModel
		}
	}
	return c.GeneratorModel
}

// RetrievalConfig holds guideline retrieval settings shared by the agents.
type RetrievalConfig struct {
	QdrantHost string
	// Strategy selects how guideline snippets are retrieved:
	// "naive", "hybrid" or "rerank".
	Strategy string
	// TopK is the number of snippets handed to the prompt.
	TopK int
	// RecallK is the over-recall size for the rerank strategy.
	RecallK int
	// Enabled turns retrieval off entirely when false; agents then run on
	// model knowledge only.
	Enabled bool
}

// ReviewConfig holds workflow tuning for one review run.
type ReviewConfig struct {
	// MaxSectionTokens is the truncation budget per section.
	MaxSectionTokens int
	// AgentTimeout bounds each agent model call.
	AgentTimeout time.Duration
	// OrchestratorTimeout bounds the final validation call.
	OrchestratorTimeout time.Duration
	// MinValidationFindings is the minimum number of accumulated findings
	// before the orchestrator call is worth making; below it the raw
	// union is returned directly.
	MinValidationFindings int
	// RigorKeywords gate the rigor agent per section. Tunable, not a
	// contract; matching is case-insensitive substring over title and
	// content.
	RigorKeywords []string
	// MaxWorkers sizes the async review worker pool.
	MaxWorkers int
	// VenuesFile points to the optional venues.yml profile file.
	VenuesFile string
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string
	Format string
	Output string
}

// Config is the application configuration, passed explicitly to
// constructors. There is no ambient global configuration state.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Retrieval RetrievalConfig
	Review    ReviewConfig
	DB        DBConfig
	Logger    LoggerConfig
}

// defaultRigorKeywords mirrors the heuristic the rigor agent shipped with;
// override via REVIEW_RIGOR_KEYWORDS.
var defaultRigorKeywords = []string{
	"method", "methodology", "experiment", "evaluation",
	"result", "analysis", "proof", "theorem", "lemma",
	"implementation", "setup", "design", "procedure", "data",
}

// LoadConfig reads configuration from environment variables and a .env
// file, sets sensible defaults, and validates required fields. It uses the
// Viper library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")

	v.SetDefault("LLM_PROVIDER", "ollama")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	v.SetDefault("EMBEDDER_PROVIDER", "ollama")
	v.SetDefault("EMBEDDER_MODEL_NAME", "nomic-embed-text")

	v.SetDefault("QDRANT_HOST", "localhost:6334")
	v.SetDefault("RETRIEVAL_STRATEGY", "naive")
	v.SetDefault("RETRIEVAL_TOP_K", 3)
	v.SetDefault("RETRIEVAL_RECALL_K", 20)
	v.SetDefault("RETRIEVAL_ENABLED", true)

	v.SetDefault("REVIEW_MAX_SECTION_TOKENS", 2000)
	v.SetDefault("REVIEW_AGENT_TIMEOUT", "120s")
	v.SetDefault("REVIEW_ORCHESTRATOR_TIMEOUT", "120s")
	v.SetDefault("REVIEW_MIN_VALIDATION_FINDINGS", 3)
	v.SetDefault("REVIEW_MAX_WORKERS", 5)
	v.SetDefault("REVIEW_VENUES_FILE", "venues.yml")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "warden")
	v.SetDefault("DB_NAME", "paper_warden")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A present but unreadable .env is worth surfacing; a missing
			// one is the common container case.
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
		},
		AI: AIConfig{
			LLMProvider:       v.GetString("LLM_PROVIDER"),
			OllamaHost:        v.GetString("OLLAMA_HOST"),
			GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
			GeneratorModel:    v.GetString("GENERATOR_MODEL_NAME"),
			ClarityModel:      v.GetString("CLARITY_MODEL_NAME"),
			RigorModel:        v.GetString("RIGOR_MODEL_NAME"),
			OrchestratorModel: v.GetString("ORCHESTRATOR_MODEL_NAME"),
			EmbedderProvider:  v.GetString("EMBEDDER_PROVIDER"),
			EmbedderModel:     v.GetString("EMBEDDER_MODEL_NAME"),
		},
		Retrieval: RetrievalConfig{
			QdrantHost: v.GetString("QDRANT_HOST"),
			Strategy:   strings.ToLower(v.GetString("RETRIEVAL_STRATEGY")),
			TopK:       v.GetInt("RETRIEVAL_TOP_K"),
			RecallK:    v.GetInt("RETRIEVAL_RECALL_K"),
			Enabled:    v.GetBool("RETRIEVAL_ENABLED"),
		},
		Review: ReviewConfig{
			MaxSectionTokens:      v.GetInt("REVIEW_MAX_SECTION_TOKENS"),
			AgentTimeout:          v.GetDuration("REVIEW_AGENT_TIMEOUT"),
			OrchestratorTimeout:   v.GetDuration("REVIEW_ORCHESTRATOR_TIMEOUT"),
			MinValidationFindings: v.GetInt("REVIEW_MIN_VALIDATION_FINDINGS"),
			RigorKeywords:         rigorKeywords(v),
			MaxWorkers:            v.GetInt("REVIEW_MAX_WORKERS"),
			VenuesFile:            v.GetString("REVIEW_VENUES_FILE"),
		},
		DB: DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			Username:        v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func rigorKeywords(v *viper.Viper) []string {
	raw := v.GetString("REVIEW_RIGOR_KEYWORDS")
	if raw == "" {
		return defaultRigorKeywords
	}
	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return defaultRigorKeywords
	}
	return keywords
}

func (c *Config) validate() error {
	switch c.AI.LLMProvider {
	case "ollama":
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set for the gemini provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.AI.LLMProvider)
	}

	switch c.Retrieval.Strategy {
	case "naive", "hybrid", "rerank":
	default:
		return fmt.Errorf("unsupported retrieval strategy: %s", c.Retrieval.Strategy)
	}

	if c.Review.MaxSectionTokens <= 0 {
		return fmt.Errorf("REVIEW_MAX_SECTION_TOKENS must be positive, got %d", c.Review.MaxSectionTokens)
	}
	if c.Review.AgentTimeout <= 0 || c.Review.OrchestratorTimeout <= 0 {
		return fmt.Errorf("review timeouts must be positive")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.RecallK < c.Retrieval.TopK {
		return fmt.Errorf("RETRIEVAL_RECALL_K (%d) must not be below RETRIEVAL_TOP_K (%d)",
			c.Retrieval.RecallK, c.Retrieval.TopK)
	}
	return nil
}
