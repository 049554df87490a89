package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"port"`
	UploadDir      string `mapstructure:"upload_dir"`
	MaxFileSizeMB  int    `mapstructure:"max_file_size_mb"`
	AIEndpoint     string `mapstructure:"ai_endpoint"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	EmbeddingModel string `mapstructure:"embedding_model"`

	LLM         LLMConfig         `mapstructure:"llm"`
	Chunking    ChunkingConfig    `mapstructure:"chunking"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval"`
	Storage     StorageConfig     `mapstructure:"storage"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Log         LogConfig         `mapstructure:"log"`
}

type LLMConfig struct {
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	GeminiAPIKey string  `mapstructure:"GEMINI_API_KEY"`
}

// ChunkingConfig sizes are approximate tokens (1 token ~ 4 characters).
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type RetrievalConfig struct {
	TopK          int     `mapstructure:"top_k"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

type VectorStoreConfig struct {
	Type     string              `mapstructure:"type"`
	Weaviate WeaviateStoreConfig `mapstructure:"weaviate"`
}

type WeaviateStoreConfig struct {
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"WEAVIATE_APIKEY"`
	ClassName string `mapstructure:"class_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMongo    = "mongo"

	VectorStorePGVector = "pgvector"
	VectorStoreWeaviate = "weaviate"
	VectorStoreMemory   = "memory"

	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_file_size_mb", 50)
	v.SetDefault("ai_endpoint", "https://api.openai.com/v1")
	v.SetDefault("embedding_model", "text-embedding-3-small")

	v.SetDefault("llm.provider", LLMProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4-turbo-preview")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 1000)

	v.SetDefault("chunking.chunk_size", 600)
	v.SetDefault("chunking.chunk_overlap", 100)

	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.min_similarity", 0.3)

	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("storage.sqlite_path", "pdfqa.db")
	v.SetDefault("storage.mongo_database", "pdfqa")

	v.SetDefault("vector_store.type", VectorStorePGVector)
	v.SetDefault("vector_store.weaviate.host", "http://localhost:8080")
	v.SetDefault("vector_store.weaviate.class_name", "Chunk")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads configPath (YAML) when it is not empty, then overlays
// environment variables on top of the defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Secrets keep their conventional names regardless of nesting.
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("llm.GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("storage.DATABASE_URL", "DATABASE_URL")
	v.BindEnv("storage.MONGODB_URI", "MONGODB_URI")
	v.BindEnv("vector_store.weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverSQLite, StorageDriverMongo:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	switch c.VectorStore.Type {
	case VectorStorePGVector, VectorStoreWeaviate, VectorStoreMemory:
	default:
		return fmt.Errorf("unknown vector store: %q", c.VectorStore.Type)
	}
	if c.VectorStore.Type == VectorStorePGVector && c.Storage.Driver != StorageDriverPostgres {
		return fmt.Errorf("vector store %q requires storage driver %q", VectorStorePGVector, StorageDriverPostgres)
	}
	switch c.LLM.Provider {
	case LLMProviderOpenAI, LLMProviderGemini:
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2], got %v", c.LLM.Temperature)
	}
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap must be in [0, chunk_size), got %d", c.Chunking.ChunkOverlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return nil
}
