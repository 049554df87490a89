package service

import (
	"fmt"
	"strings"

	"github.com/tieubaoca/pdfqa-be/types"
)

const (
	// NotAnswerablePhrase marks a model answer as a refusal.
	NotAnswerablePhrase = "Lo siento, esa información no se encuentra en el documento"

	RefusalMessage = NotAnswerablePhrase + ". ¿Podrías reformular tu pregunta o hacer otra relacionada con el contenido?"

	NoContextMessage = "Lo siento, no encontré información relevante en el documento para responder tu pregunta."

	emptyContextMessage = "No se encontró información relevante en el documento."
)

const systemPromptTemplate = `Eres un asistente útil que responde preguntas basándose EXCLUSIVAMENTE en el contexto proporcionado de un documento PDF.

REGLAS ESTRICTAS:
1. Si la respuesta NO está en el contexto, debes responder: "` + RefusalMessage + `"
2. SIEMPRE debes incluir las páginas de referencia en tu respuesta usando el formato: [Página X]
3. Responde en español claro y natural, adaptado al español chileno cuando sea apropiado
4. NO inventes información que no esté en el contexto
5. Si el contexto es insuficiente o ambiguo, pide más detalles al usuario

CONTEXTO DEL DOCUMENTO:
%s

Responde la siguiente pregunta basándote ÚNICAMENTE en el contexto anterior.`

// FormatContext renders retrieved chunks as numbered fragments, keeping
// retrieval order.
func FormatContext(chunks []types.ScoredChunk) string {
	if len(chunks) == 0 {
		return emptyContextMessage
	}
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Fragmento %d - Página %d]\n%s", i+1, c.Chunk.PageNumber, c.Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

func BuildPrompt(context, question string) string {
	return fmt.Sprintf(systemPromptTemplate, context) + "\n\nPREGUNTA: " + question + "\n\nRESPUESTA:"
}

// IsAnswerable reports whether answer is not a refusal.
func IsAnswerable(answer string) bool {
	return !strings.Contains(answer, NotAnswerablePhrase)
}
