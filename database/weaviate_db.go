package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	BatchSize         = 200
	DefaultChunkClass = "Chunk"

	listPageSize = 1000
)

func chunkClass(name string) *models.Class {
	return &models.Class{
		Class:      name,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "documentId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "content", DataType: []string{"text"}},
			{Name: "pageNumber", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "wordCount", DataType: []string{"int"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
	}
}

var chunkFields = []graphql.Field{
	{Name: "chunkId"},
	{Name: "documentId"},
	{Name: "content"},
	{Name: "pageNumber"},
	{Name: "chunkIndex"},
	{Name: "wordCount"},
	{Name: "createdAt"},
}

// WeaviateStore keeps chunks in a Weaviate class with client-supplied
// vectors. Score is 1 - cosine distance.
type WeaviateStore struct {
	client    *weaviate.Client
	className string
}

func NewWeaviateStore(ctx context.Context, cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		wcfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	className := cfg.ClassName
	if className == "" {
		className = DefaultChunkClass
	}
	s := &WeaviateStore{
		client:    client,
		className: className,
	}
	if err := s.ensureClass(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WeaviateStore) ensureClass(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == s.className {
			return nil
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(chunkClass(s.className)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", s.className, err)
	}
	return nil
}

func (s *WeaviateStore) ReInit(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s class: %w", s.className, err)
	}
	if err := s.client.Schema().ClassCreator().WithClass(chunkClass(s.className)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", s.className, err)
	}
	return nil
}

func (s *WeaviateStore) Ping(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}
	return nil
}

func (s *WeaviateStore) InsertChunks(ctx context.Context, chunks []*types.Chunk) error {
	total := len(chunks)
	for i := 0; i < total; i += BatchSize {
		end := min(i+BatchSize, total)

		batcher := s.client.Batch().ObjectsBatcher()
		for _, c := range chunks[i:end] {
			obj := &models.Object{
				Class: s.className,
				Properties: map[string]interface{}{
					"chunkId":    c.ID,
					"documentId": c.DocumentID,
					"content":    c.Content,
					"pageNumber": c.PageNumber,
					"chunkIndex": c.ChunkIndex,
					"wordCount":  c.WordCount,
					"createdAt":  c.CreatedAt.UTC().Format(time.RFC3339Nano),
				},
			}
			if c.Embedding != nil {
				obj.Vector = c.Embedding
			}
			batcher = batcher.WithObjects(obj)
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert batch %d-%d: %s", i, end, r.Result.Errors.Error[0].Message)
			}
		}
		logger.Debugf("Inserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

func (s *WeaviateStore) SimilaritySearch(ctx context.Context, embedding []float32, topK int, minScore float64, documentID string) ([]types.ScoredChunk, error) {
	results := make([]types.ScoredChunk, 0)
	if topK <= 0 || minScore > 1 {
		return results, nil
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(embedding)
	if maxDistance := 1 - minScore; maxDistance < 2 {
		nearVector = nearVector.WithDistance(float32(maxDistance))
	}
	fields := append([]graphql.Field{}, chunkFields...)
	fields = append(fields, graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}})

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK)
	if documentID != "" {
		getBuilder = getBuilder.WithWhere(documentFilter(documentID))
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %s", result.Errors[0].Message)
	}

	for _, item := range s.parseObjects(result) {
		additional, _ := item["_additional"].(map[string]interface{})
		distance, ok := additional["distance"].(float64)
		if !ok {
			continue
		}
		score := 1 - distance
		if score < minScore {
			continue
		}
		results = append(results, types.ScoredChunk{
			Chunk: parseChunk(item),
			Score: score,
		})
	}
	return results, nil
}

func (s *WeaviateStore) ListChunksByDocument(ctx context.Context, documentID string) ([]*types.Chunk, error) {
	chunks := make([]*types.Chunk, 0)
	for offset := 0; ; offset += listPageSize {
		result, err := s.client.GraphQL().Get().
			WithClassName(s.className).
			WithFields(chunkFields...).
			WithWhere(documentFilter(documentID)).
			WithSort(graphql.Sort{Path: []string{"chunkIndex"}, Order: graphql.Asc}).
			WithLimit(listPageSize).
			WithOffset(offset).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list chunks: %w", err)
		}
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("failed to list chunks: %s", result.Errors[0].Message)
		}

		page := s.parseObjects(result)
		for _, item := range page {
			chunks = append(chunks, parseChunk(item))
		}
		if len(page) < listPageSize {
			return chunks, nil
		}
	}
}

func (s *WeaviateStore) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.className).
		WithWhere(documentFilter(documentID)).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func (s *WeaviateStore) parseObjects(result *models.GraphQLResponse) []map[string]interface{} {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	data, ok := get[s.className].([]interface{})
	if !ok {
		return nil
	}
	objects := make([]map[string]interface{}, 0, len(data))
	for _, item := range data {
		if obj, ok := item.(map[string]interface{}); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

func documentFilter(documentID string) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)
}

func parseChunk(obj map[string]interface{}) *types.Chunk {
	c := &types.Chunk{
		ID:         parseString(obj["chunkId"]),
		DocumentID: parseString(obj["documentId"]),
		Content:    parseString(obj["content"]),
		PageNumber: parseInt(obj["pageNumber"]),
		ChunkIndex: parseInt(obj["chunkIndex"]),
		WordCount:  parseInt(obj["wordCount"]),
	}
	if createdAt, err := time.Parse(time.RFC3339Nano, parseString(obj["createdAt"])); err == nil {
		c.CreatedAt = createdAt
	}
	return c
}

// Helper functions
func parseString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
