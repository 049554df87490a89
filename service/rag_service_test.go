package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

type fakeRetriever struct {
	chunks []types.ScoredChunk
	err    error
	calls  []RetrieveOptions
}

func (f *fakeRetriever) RetrieveRelevantChunks(_ context.Context, _ string, opts RetrieveOptions) ([]types.ScoredChunk, error) {
	f.calls = append(f.calls, opts)
	return f.chunks, f.err
}

type failingQueryLogRepo struct {
	repository.QueryLogRepository
}

func (failingQueryLogRepo) Create(context.Context, *types.QueryLog) error {
	return errors.New("disk full")
}

type ragFixture struct {
	docs   repository.DocumentRepository
	logs   repository.QueryLogRepository
	llm    *fakeLLM
	embed  *fakeEmbedder
	store  *database.MemoryStore
	docID  string
	ragSvc *RAGService
}

func newRAGFixture(t *testing.T, withDocument bool) *ragFixture {
	t.Helper()
	db := newTestDB(t)
	f := &ragFixture{
		docs:  repository.NewGormDocumentRepo(db),
		logs:  repository.NewGormQueryLogRepo(db),
		llm:   &fakeLLM{answer: "Son 15 días [Página 1].", tokens: 321},
		embed: &fakeEmbedder{},
		store: newSeededStore(t),
	}
	if withDocument {
		f.docID = uuid.NewString()
		require.NoError(t, f.docs.Create(context.Background(), &types.Document{
			ID:         f.docID,
			Filename:   "manual.pdf",
			FileSize:   10,
			UploadDate: time.Now(),
			Status:     types.DocumentStatusReady,
		}))
		require.NoError(t, f.store.InsertChunks(context.Background(), []*types.Chunk{
			{ID: "m0", DocumentID: f.docID, Content: "vacaciones 15 días hábiles", PageNumber: 1, ChunkIndex: 0, Embedding: []float32{1, 0}},
			{ID: "m1", DocumentID: f.docID, Content: "estacionamiento", PageNumber: 2, ChunkIndex: 1, Embedding: []float32{0, 1}},
		}))
	}
	retriever := NewRetrievalService(f.embed, f.store, DefaultTopK, DefaultMinSimilarity)
	f.ragSvc = NewRAGService(retriever, NewAnswerComposer(f.llm), f.docs, f.logs)
	return f
}

func TestAnswerQuestion_BlankQuestion(t *testing.T) {
	f := newRAGFixture(t, true)

	for _, q := range []string{"", "   "} {
		_, err := f.ragSvc.AnswerQuestion(context.Background(), q, "")
		assert.True(t, types.IsKind(err, types.KindInvalidInput))
	}
	assert.Zero(t, f.embed.calls)
	assert.Empty(t, f.llm.prompts)

	logs, err := f.logs.ListAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestAnswerQuestion_AnswersAndLogs(t *testing.T) {
	f := newRAGFixture(t, true)

	resp, err := f.ragSvc.AnswerQuestion(context.Background(), "¿Cuántos días de vacaciones?", f.docID)
	require.NoError(t, err)
	assert.Equal(t, "Son 15 días [Página 1].", resp.Answer)
	assert.True(t, resp.IsAnswerable)
	assert.Equal(t, 321, resp.TokensUsed)
	assert.Equal(t, []string{"m0"}, resp.ChunkIDs)
	assert.Equal(t, 1, resp.RetrievedChunksCount)
	require.Len(t, f.llm.prompts, 1)
	assert.Contains(t, f.llm.prompts[0], "vacaciones 15 días hábiles")
	assert.NotContains(t, f.llm.prompts[0], "otro documento")

	logs, err := f.logs.ListAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, f.docID, logs[0].DocumentID)
	assert.Equal(t, "¿Cuántos días de vacaciones?", logs[0].QueryText)
	assert.Equal(t, resp.Answer, logs[0].AnswerText)
	assert.Equal(t, resp.ChunkIDs, logs[0].RetrievedChunks)
	assert.True(t, logs[0].IsAnswerable)
	assert.GreaterOrEqual(t, logs[0].ResponseTimeMs, int64(0))
}

func TestAnswerQuestion_UnscopedLogsUnderExistingDocument(t *testing.T) {
	f := newRAGFixture(t, true)

	_, err := f.ragSvc.AnswerQuestion(context.Background(), "¿Horario?", "")
	require.NoError(t, err)

	logs, err := f.logs.ListAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, f.docID, logs[0].DocumentID)
}

func TestAnswerQuestion_UnscopedWithoutDocumentsSkipsLog(t *testing.T) {
	f := newRAGFixture(t, false)

	resp, err := f.ragSvc.AnswerQuestion(context.Background(), "¿Horario?", "")
	require.NoError(t, err)
	assert.True(t, resp.IsAnswerable)

	logs, err := f.logs.ListAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestAnswerQuestion_NoChunksShortCircuits(t *testing.T) {
	f := newRAGFixture(t, true)
	retriever := &fakeRetriever{chunks: []types.ScoredChunk{}}
	svc := NewRAGService(retriever, NewAnswerComposer(f.llm), f.docs, f.logs)

	resp, err := svc.AnswerQuestion(context.Background(), "¿Capital de Francia?", f.docID)
	require.NoError(t, err)
	assert.Equal(t, NoContextMessage, resp.Answer)
	assert.False(t, resp.IsAnswerable)
	assert.Zero(t, resp.TokensUsed)
	assert.Zero(t, resp.RetrievedChunksCount)
	assert.Empty(t, resp.ChunkIDs)
	assert.Empty(t, f.llm.prompts)
	require.Len(t, retriever.calls, 1)
	assert.Equal(t, f.docID, retriever.calls[0].DocumentID)

	logs, err := f.logs.ListAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].IsAnswerable)
	assert.Empty(t, logs[0].RetrievedChunks)
}

func TestAnswerQuestion_EmbeddingFailureIsRetrievalError(t *testing.T) {
	f := newRAGFixture(t, true)
	f.embed.err = types.NewError(types.KindEmbedding, "Failed to generate embedding: 500")

	_, err := f.ragSvc.AnswerQuestion(context.Background(), "¿Vacaciones?", f.docID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindRetrieval))
	assert.Empty(t, f.llm.prompts)
}

func TestAnswerQuestion_ErrorWrapping(t *testing.T) {
	f := newRAGFixture(t, true)

	svc := NewRAGService(&fakeRetriever{err: errors.New("unexpected nil")}, NewAnswerComposer(f.llm), f.docs, f.logs)
	_, err := svc.AnswerQuestion(context.Background(), "¿Qué?", "")
	assert.True(t, types.IsKind(err, types.KindOrchestration))

	domainErr := types.NewError(types.KindRetrieval, "Failed to retrieve chunks: timeout")
	svc = NewRAGService(&fakeRetriever{err: domainErr}, NewAnswerComposer(f.llm), f.docs, f.logs)
	_, err = svc.AnswerQuestion(context.Background(), "¿Qué?", "")
	assert.Same(t, domainErr, err)

	f.llm.err = errors.New("model overloaded")
	_, err = f.ragSvc.AnswerQuestion(context.Background(), "¿Vacaciones?", "")
	assert.True(t, types.IsKind(err, types.KindAnswerGeneration))
}

func TestAnswerQuestion_LogFailureIsSwallowed(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	f := newRAGFixture(t, true)
	svc := NewRAGService(
		NewRetrievalService(f.embed, f.store, DefaultTopK, DefaultMinSimilarity),
		NewAnswerComposer(f.llm),
		f.docs,
		failingQueryLogRepo{},
	)

	resp, err := svc.AnswerQuestion(context.Background(), "¿Vacaciones?", f.docID)
	require.NoError(t, err)
	assert.Equal(t, "Son 15 días [Página 1].", resp.Answer)
	assert.True(t, resp.IsAnswerable)
	assert.Equal(t, []string{"m0"}, resp.ChunkIDs)
	require.Len(t, f.llm.prompts, 1)

	entries := observed.FilterMessage("Failed to log query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "disk full", entries[0].ContextMap()["error"])
}
