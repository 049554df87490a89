/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/service"
	"gorm.io/gorm"
)

// app holds the services every command needs, built once from the config.
type app struct {
	documents   *service.DocumentService
	rag         *service.RAGService
	vectorStore database.VectorStore
	pingers     []database.Pinger
	closers     []func() error
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	if err := a.init(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context, cfg *config.Config) error {
	var (
		err          error
		gormDB       *gorm.DB
		documentRepo repository.DocumentRepository
		queryLogRepo repository.QueryLogRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres, config.StorageDriverSQLite:
		gormDB, err = database.OpenGorm(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		a.closers = append(a.closers, sqlDB.Close)
		if err := repository.AutoMigrate(gormDB); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		documentRepo = repository.NewGormDocumentRepo(gormDB)
		queryLogRepo = repository.NewGormQueryLogRepo(gormDB)
		a.pingers = append(a.pingers, database.GormPinger(gormDB))
	case config.StorageDriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.Storage.MongoURI)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		mongoDB := client.Database(cfg.Storage.MongoDatabase)
		documentRepo = repository.NewMongoDocumentRepo(mongoDB)
		queryLogRepo = repository.NewMongoQueryLogRepo(mongoDB)
		a.pingers = append(a.pingers, database.MongoPinger(client))
	}

	switch cfg.VectorStore.Type {
	case config.VectorStorePGVector:
		a.vectorStore, err = database.NewPGVectorStore(ctx, gormDB)
	case config.VectorStoreWeaviate:
		var store *database.WeaviateStore
		store, err = database.NewWeaviateStore(ctx, cfg.VectorStore.Weaviate)
		if err == nil {
			a.vectorStore = store
			a.pingers = append(a.pingers, store)
		}
	case config.VectorStoreMemory:
		logger.Warnf("Using the in-memory vector store; chunks are lost on restart")
		a.vectorStore = database.NewMemoryStore()
	}
	if err != nil {
		return err
	}

	llm, err := a.buildLLM(ctx, cfg)
	if err != nil {
		return err
	}

	embedder := service.NewEmbeddingService(
		service.NewOpenAIEmbeddingClient(cfg.AIEndpoint, cfg.OpenAIAPIKey),
		cfg.EmbeddingModel,
	)
	chunker := service.NewChunkingService(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	retriever := service.NewRetrievalService(embedder, a.vectorStore, cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity)

	a.documents = service.NewDocumentService(
		cfg.UploadDir,
		cfg.MaxFileSizeMB,
		documentRepo,
		a.vectorStore,
		service.NewDefaultPDFService(),
		chunker,
		embedder,
	)
	a.rag = service.NewRAGService(retriever, service.NewAnswerComposer(llm), documentRepo, queryLogRepo)

	logger.Infow("Application initialized",
		"storage", cfg.Storage.Driver,
		"vector_store", cfg.VectorStore.Type,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
	)
	return nil
}

func (a *app) buildLLM(ctx context.Context, cfg *config.Config) (service.AIService, error) {
	llmCfg := cfg.LLM
	switch llmCfg.Provider {
	case config.LLMProviderGemini:
		model := llmCfg.Model
		if model == service.DefaultLLMModel {
			model = service.DefaultGeminiModel
		}
		gemini, err := service.NewGeminiService(ctx, llmCfg.GeminiAPIKey, model, llmCfg.Temperature, llmCfg.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		a.closers = append(a.closers, gemini.Close)
		return gemini, nil
	default:
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, llmCfg.Model, llmCfg.Temperature, llmCfg.MaxTokens), nil
	}
}

// reinitVectorStore drops every stored chunk when the store supports it.
func (a *app) reinitVectorStore(ctx context.Context) error {
	r, ok := a.vectorStore.(database.Reinitializer)
	if !ok {
		return fmt.Errorf("vector store %T cannot be reinitialized", a.vectorStore)
	}
	return r.ReInit(ctx)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warnw("Failed to close resource", "error", err)
		}
	}
}
