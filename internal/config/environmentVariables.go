package config

import (
	"time"
)

const (
	AppName    = "RAGBot"
	AppVersion = "1.0.0"

	TRACE_ID_KEY = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150

	//retrieval
	DefaultMaxChunks = 5
	MinMaxChunks     = 1
	MaxMaxChunks     = 10
	PreviewLength    = 200

	//upload
	DefaultMaxFileSizeMB = 10
	MaxMessageLength     = 1000
	UploadSource         = "api_upload"
	CLISource            = "cli_ingest"

	//pdf pages that take longer than this are skipped
	PageExtractionTimeout = 10 * time.Second

	//embeddings
	DefaultEmbeddingDimension = 768
	EmbeddingBatchSize        = 100
	GoogleEmbeddingModel      = "gemini-embedding-001"
	OpenAIEmbeddingModel      = "text-embedding-3-small"
	EmbeddingTaskTypeDocument = "RETRIEVAL_DOCUMENT"
	EmbeddingTaskTypeQuery    = "RETRIEVAL_QUERY"

	//llm
	GeminiModelName = "gemini-2.5-flash"
	OpenAIModelName = "gpt-4o-mini"

	//worker pool used for folder ingestion
	MaxWorkerCount    int64 = 4
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute
	BufferLimit             = 100

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 90 * time.Second
	IdleTimeout            = 120 * time.Second
	RequestTimeout         = 60 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//multipart parsing memory limit
	MaxUploadMemory = 32 << 20

	//vectorDB
	QdrantConnectionTimeout = 5 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantCollection        = "ragbot_chunks"
	QdrantUpsertBatchSize   = 100

	//sqlite
	DefaultDatabaseURL = "file:ragbot.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	//pending documents older than this are swept by reconcile
	StalePendingAfter = 1 * time.Hour

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisConversationStore = 1
	RedisPingTimeout       = 3 * time.Second
)
