package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is read once at process start and handed to every component read-only.
type Settings struct {
	DatabaseURL string `yaml:"database_url"`
	SecretKey   string `yaml:"secret_key"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	ListenAddr  string `yaml:"listen_addr"`

	VectorBackend    string `yaml:"vector_backend"`
	QdrantHost       string `yaml:"qdrant_host"`
	QdrantPort       int    `yaml:"qdrant_port"`
	QdrantAPIKey     string `yaml:"qdrant_api_key"`
	QdrantUseTLS     bool   `yaml:"qdrant_use_tls"`
	QdrantCollection string `yaml:"qdrant_collection"`

	GeminiAPIKey       string `yaml:"gemini_api_key"`
	OpenAIAPIKey       string `yaml:"openai_api_key"`
	EmbeddingProvider  string `yaml:"embedding_provider"`
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`
	LLMProvider        string `yaml:"llm_provider"`
	LLMModel           string `yaml:"llm_model"`

	ConversationBackend string `yaml:"conversation_backend"`
	RedisAddr           string `yaml:"redis_addr"`
	RedisPassword       string `yaml:"redis_password"`
	RedisDB             int    `yaml:"redis_db"`

	MaxFileSizeMB      int `yaml:"max_file_size_mb"`
	ChunkSize          int `yaml:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap"`
	MaxChunksRetrieved int `yaml:"max_chunks_retrieved"`
	RateLimitPerSecond int `yaml:"rate_limit_per_second"`
	RateLimitBurst     int `yaml:"rate_limit_burst"`
}

const (
	BackendQdrant = "qdrant"
	BackendMemory = "memory"
	BackendSQL    = "sql"
	BackendRedis  = "redis"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

func defaultSettings() Settings {
	return Settings{
		DatabaseURL:         DefaultDatabaseURL,
		LogLevel:            "INFO",
		ListenAddr:          ServerListenAddr,
		VectorBackend:       BackendQdrant,
		QdrantHost:          QdrantHost,
		QdrantPort:          QdrantGrpcPort,
		QdrantUseTLS:        QdrantUseTLS,
		QdrantCollection:    QdrantCollection,
		EmbeddingProvider:   ProviderGemini,
		EmbeddingDimension:  DefaultEmbeddingDimension,
		LLMProvider:         ProviderGemini,
		ConversationBackend: BackendSQL,
		RedisAddr:           RedisAddr,
		RedisDB:             RedisConversationStore,
		MaxFileSizeMB:       DefaultMaxFileSizeMB,
		ChunkSize:           DefaultChunkSize,
		ChunkOverlap:        DefaultChunkOverlap,
		MaxChunksRetrieved:  DefaultMaxChunks,
		RateLimitPerSecond:  RATE_LIMIT_PER_SECOND,
		RateLimitBurst:      BURST_RATE_LIMIT_PER_SECOND,
	}
}

// Load builds Settings from defaults, then the optional YAML file named by
// RAGBOT_CONFIG, then the environment (.env included). Later sources win.
func Load() (Settings, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	s := defaultSettings()
	if path := os.Getenv("RAGBOT_CONFIG"); path != "" {
		if err := s.overlayFile(path); err != nil {
			return Settings{}, err
		}
	}
	s.overlayEnv()
	s.applyModelDefaults()

	return s, s.Validate()
}

func (s *Settings) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (s *Settings) overlayEnv() {
	s.DatabaseURL = getEnv("DATABASE_URL", s.DatabaseURL)
	s.SecretKey = getEnv("SECRET_KEY", s.SecretKey)
	s.Debug = getEnvBool("DEBUG", s.Debug)
	s.LogLevel = getEnv("LOG_LEVEL", s.LogLevel)
	s.ListenAddr = getEnv("LISTEN_ADDR", s.ListenAddr)

	s.VectorBackend = strings.ToLower(getEnv("VECTOR_BACKEND", s.VectorBackend))
	s.QdrantHost = getEnv("QDRANT_HOST", s.QdrantHost)
	s.QdrantPort = getEnvInt("QDRANT_PORT", s.QdrantPort)
	s.QdrantAPIKey = getEnv("QDRANT_API_KEY", s.QdrantAPIKey)
	s.QdrantUseTLS = getEnvBool("QDRANT_USE_TLS", s.QdrantUseTLS)
	s.QdrantCollection = getEnv("QDRANT_COLLECTION", s.QdrantCollection)

	s.GeminiAPIKey = getEnv("GEMINI_API_KEY", s.GeminiAPIKey)
	s.OpenAIAPIKey = getEnv("OPENAI_API_KEY", s.OpenAIAPIKey)
	s.EmbeddingProvider = strings.ToLower(getEnv("EMBEDDING_PROVIDER", s.EmbeddingProvider))
	s.EmbeddingModel = getEnv("EMBEDDING_MODEL", s.EmbeddingModel)
	s.EmbeddingDimension = getEnvInt("EMBEDDING_DIMENSION", s.EmbeddingDimension)
	s.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", s.LLMProvider))
	s.LLMModel = getEnv("LLM_MODEL", s.LLMModel)

	s.ConversationBackend = strings.ToLower(getEnv("CONVERSATION_BACKEND", s.ConversationBackend))
	s.RedisAddr = getEnv("REDIS_ADDR", s.RedisAddr)
	s.RedisPassword = getEnv("REDIS_PASSWORD", s.RedisPassword)
	s.RedisDB = getEnvInt("REDIS_DB", s.RedisDB)

	s.MaxFileSizeMB = getEnvInt("MAX_FILE_SIZE_MB", s.MaxFileSizeMB)
	s.ChunkSize = getEnvInt("CHUNK_SIZE", s.ChunkSize)
	s.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", s.ChunkOverlap)
	s.MaxChunksRetrieved = getEnvInt("MAX_CHUNKS_RETRIEVED", s.MaxChunksRetrieved)
	s.RateLimitPerSecond = getEnvInt("RATE_LIMIT_PER_SECOND", s.RateLimitPerSecond)
	s.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", s.RateLimitBurst)
}

func (s *Settings) applyModelDefaults() {
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = GoogleEmbeddingModel
		if s.EmbeddingProvider == ProviderOpenAI {
			s.EmbeddingModel = OpenAIEmbeddingModel
		}
	}
	if s.LLMModel == "" {
		s.LLMModel = GeminiModelName
		if s.LLMProvider == ProviderOpenAI {
			s.LLMModel = OpenAIModelName
		}
	}
}

func (s Settings) Validate() error {
	var errs []error
	if s.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if s.VectorBackend != BackendQdrant && s.VectorBackend != BackendMemory {
		errs = append(errs, fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendQdrant, BackendMemory, s.VectorBackend))
	}
	if s.ConversationBackend != BackendSQL && s.ConversationBackend != BackendRedis {
		errs = append(errs, fmt.Errorf("CONVERSATION_BACKEND must be %q or %q, got %q", BackendSQL, BackendRedis, s.ConversationBackend))
	}
	if !validProvider(s.EmbeddingProvider) {
		errs = append(errs, fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, s.EmbeddingProvider))
	}
	if !validProvider(s.LLMProvider) {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, s.LLMProvider))
	}
	if s.EmbeddingDimension <= 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", s.EmbeddingDimension))
	}
	if s.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", s.ChunkSize))
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", s.ChunkOverlap))
	}
	if s.MaxChunksRetrieved < MinMaxChunks || s.MaxChunksRetrieved > MaxMaxChunks {
		errs = append(errs, fmt.Errorf("MAX_CHUNKS_RETRIEVED must be %d-%d, got %d", MinMaxChunks, MaxMaxChunks, s.MaxChunksRetrieved))
	}
	if s.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_FILE_SIZE_MB must be positive, got %d", s.MaxFileSizeMB))
	}
	return errors.Join(errs...)
}

// RequireProviderKeys is checked only by binaries that talk to the providers.
func (s Settings) RequireProviderKeys() error {
	var errs []error
	providers := map[string]bool{s.EmbeddingProvider: true, s.LLMProvider: true}
	for p := range providers {
		if p == ProviderGemini && s.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
		if p == ProviderOpenAI && s.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	}
	return errors.Join(errs...)
}

func (s Settings) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

func validProvider(p string) bool {
	return p == ProviderGemini || p == ProviderOpenAI
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
