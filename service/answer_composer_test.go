package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

type fakeLLM struct {
	answer  string
	tokens  int
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateAnswer(_ context.Context, prompt string) (string, int, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", 0, f.err
	}
	return f.answer, f.tokens, nil
}

func scored(id string, page int, content string, score float64) types.ScoredChunk {
	return types.ScoredChunk{
		Chunk: &types.Chunk{ID: id, PageNumber: page, Content: content},
		Score: score,
	}
}

func TestFormatContext(t *testing.T) {
	ctx := FormatContext([]types.ScoredChunk{
		scored("c1", 3, "Los empleados tienen 15 días de vacaciones.", 0.9),
		scored("c2", 1, "Introducción.", 0.5),
	})
	assert.Equal(t,
		"[Fragmento 1 - Página 3]\nLos empleados tienen 15 días de vacaciones.\n\n[Fragmento 2 - Página 1]\nIntroducción.",
		ctx)

	assert.Equal(t, "No se encontró información relevante en el documento.", FormatContext(nil))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("[Fragmento 1 - Página 2]\nTexto 100% real", "¿Qué dice?")

	assert.Contains(t, prompt, "CONTEXTO DEL DOCUMENTO:\n[Fragmento 1 - Página 2]\nTexto 100% real\n")
	assert.Contains(t, prompt, RefusalMessage)
	assert.Contains(t, prompt, "[Página X]")
	assert.NotContains(t, prompt, "%s")
	assert.True(t, strings.HasSuffix(prompt, "\n\nPREGUNTA: ¿Qué dice?\n\nRESPUESTA:"))
}

func TestIsAnswerable(t *testing.T) {
	assert.True(t, IsAnswerable("Son 15 días [Página 3]."))
	assert.False(t, IsAnswerable(RefusalMessage))
	assert.False(t, IsAnswerable("Bueno... Lo siento, esa información no se encuentra en el documento."))
	assert.True(t, IsAnswerable("lo siento, esa información no se encuentra en el documento"))
}

func TestAnswerComposer_NoContextResponse(t *testing.T) {
	llm := &fakeLLM{}
	resp := NewAnswerComposer(llm).NoContextResponse()

	assert.Equal(t, NoContextMessage, resp.Answer)
	assert.False(t, resp.IsAnswerable)
	assert.Zero(t, resp.RetrievedChunksCount)
	assert.Zero(t, resp.TokensUsed)
	assert.Empty(t, resp.ChunkIDs)
	assert.Empty(t, llm.prompts)
}

func TestAnswerComposer_Compose(t *testing.T) {
	llm := &fakeLLM{answer: "Tienes 15 días de vacaciones [Página 3].", tokens: 250}
	chunks := []types.ScoredChunk{
		scored("c1", 3, "Vacaciones: 15 días hábiles.", 0.91),
		scored("c2", 4, "Feriados legales.", 0.42),
	}

	resp, err := NewAnswerComposer(llm).Compose(context.Background(), "¿Cuántos días de vacaciones tengo?", chunks)
	require.NoError(t, err)

	assert.Equal(t, "Tienes 15 días de vacaciones [Página 3].", resp.Answer)
	assert.True(t, resp.IsAnswerable)
	assert.Equal(t, 2, resp.RetrievedChunksCount)
	assert.Equal(t, 250, resp.TokensUsed)
	assert.Equal(t, []string{"c1", "c2"}, resp.ChunkIDs)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "[Fragmento 1 - Página 3]\nVacaciones: 15 días hábiles.")
	assert.Contains(t, llm.prompts[0], "PREGUNTA: ¿Cuántos días de vacaciones tengo?")
}

func TestAnswerComposer_Refusal(t *testing.T) {
	llm := &fakeLLM{answer: RefusalMessage, tokens: 80}

	resp, err := NewAnswerComposer(llm).Compose(context.Background(), "¿Capital de Francia?", []types.ScoredChunk{
		scored("c1", 1, "Manual de vacaciones.", 0.31),
	})
	require.NoError(t, err)
	assert.False(t, resp.IsAnswerable)
	assert.Equal(t, 1, resp.RetrievedChunksCount)
	assert.Equal(t, []string{"c1"}, resp.ChunkIDs)
}

func TestAnswerComposer_LLMFailure(t *testing.T) {
	chunks := []types.ScoredChunk{scored("c1", 1, "texto", 0.8)}

	_, err := NewAnswerComposer(&fakeLLM{err: errors.New("503 service unavailable")}).
		Compose(context.Background(), "¿Qué?", chunks)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindAnswerGeneration))
	assert.Contains(t, err.Error(), "503")

	domainErr := types.NewError(types.KindAnswerGeneration, "Failed to generate answer: quota")
	_, err = NewAnswerComposer(&fakeLLM{err: domainErr}).Compose(context.Background(), "¿Qué?", chunks)
	assert.Same(t, domainErr, err)
}
