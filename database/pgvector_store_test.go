package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/types"
	"gorm.io/gorm"
)

// wideUnitAt pads unitAt to the chunks table vector width.
func wideUnitAt(cos float64) []float32 {
	v := make([]float32, 1536)
	copy(v, unitAt(cos))
	return v
}

func newPGVectorStore(t *testing.T) (*PGVectorStore, *gorm.DB) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("Skipping test that requires DATABASE_URL")
	}
	ctx := context.Background()
	db, err := OpenGorm(ctx, config.StorageConfig{Driver: config.StorageDriverPostgres, DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(&types.Document{}))

	store, err := NewPGVectorStore(ctx, db)
	require.NoError(t, err)
	return store, db
}

func createDocument(t *testing.T, db *gorm.DB) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, db.Create(&types.Document{
		ID:         id,
		Filename:   "manual.pdf",
		FileSize:   10,
		UploadDate: time.Now(),
		Status:     types.DocumentStatusReady,
	}).Error)
	t.Cleanup(func() {
		db.Delete(&types.Document{ID: id})
	})
	return id
}

func TestPGVectorStore_SearchAndList(t *testing.T) {
	store, db := newPGVectorStore(t)
	ctx := context.Background()
	docA := createDocument(t, db)
	docB := createDocument(t, db)

	ca7, ca9, cax, cb8 := uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()
	require.NoError(t, store.InsertChunks(ctx, []*types.Chunk{
		{ID: ca7, DocumentID: docA, Content: "siete", PageNumber: 3, ChunkIndex: 2, Embedding: wideUnitAt(0.7), CreatedAt: time.Now()},
		{ID: ca9, DocumentID: docA, Content: "nueve", PageNumber: 1, ChunkIndex: 0, Embedding: wideUnitAt(0.9), CreatedAt: time.Now()},
		{ID: cax, DocumentID: docA, Content: "sin vector", PageNumber: 2, ChunkIndex: 1, CreatedAt: time.Now()},
		{ID: cb8, DocumentID: docB, Content: "ocho", PageNumber: 1, ChunkIndex: 0, Embedding: wideUnitAt(0.8), CreatedAt: time.Now()},
	}))
	query := wideUnitAt(1)

	scoped, err := store.SimilaritySearch(ctx, query, 5, 0.75, docA)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, ca9, scoped[0].Chunk.ID)
	assert.InDelta(t, 0.9, scoped[0].Score, 1e-4)
	assert.Equal(t, "nueve", scoped[0].Chunk.Content)
	assert.Len(t, scoped[0].Chunk.Embedding, 1536)

	scoped, err = store.SimilaritySearch(ctx, query, 5, 0, docA)
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, ca9, scoped[0].Chunk.ID)
	assert.Equal(t, ca7, scoped[1].Chunk.ID)

	limited, err := store.SimilaritySearch(ctx, query, 1, 0, docB)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, cb8, limited[0].Chunk.ID)

	none, err := store.SimilaritySearch(ctx, query, 0, 0, docA)
	require.NoError(t, err)
	assert.Empty(t, none)

	listed, err := store.ListChunksByDocument(ctx, docA)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{ca9, cax, ca7}, []string{listed[0].ID, listed[1].ID, listed[2].ID})
	assert.Nil(t, listed[1].Embedding)
}

func TestPGVectorStore_DeleteAndCascade(t *testing.T) {
	store, db := newPGVectorStore(t)
	ctx := context.Background()
	docA := createDocument(t, db)
	docB := createDocument(t, db)

	require.NoError(t, store.InsertChunks(ctx, []*types.Chunk{
		{ID: uuid.NewString(), DocumentID: docA, Content: "a", PageNumber: 1, Embedding: wideUnitAt(0.9), CreatedAt: time.Now()},
		{ID: uuid.NewString(), DocumentID: docB, Content: "b", PageNumber: 1, Embedding: wideUnitAt(0.9), CreatedAt: time.Now()},
	}))

	require.NoError(t, store.DeleteChunksByDocument(ctx, docA))
	listed, err := store.ListChunksByDocument(ctx, docA)
	require.NoError(t, err)
	assert.Empty(t, listed)

	require.NoError(t, db.Delete(&types.Document{ID: docB}).Error)
	listed, err = store.ListChunksByDocument(ctx, docB)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
