package service

import (
	"fmt"
	"strings"

	"github.com/bankborjam/sebastian/internal/domain"
)

// Only the most recent turns are included in the prompt to bound context
// window usage.
const historyWindow = 4

// Fixed sentences surfaced verbatim to the client; the contact number is
// part of the product copy and must never be altered or fabricated.
const (
	notFoundAnswer     = "No encuentro esa información específica en mis documentos. Te recomiendo contactar a un asesor en 01 8000 515 050"
	emptyContextText   = "No se encontró información relevante en los documentos."
	firstQuestionText  = "Esta es la primera pregunta de la conversación."
	chunkDelimiter     = "\n\n---\n\n"
	userRoleLabel      = "Usuario"
	assistantRoleLabel = "Asistente"
)

// promptHeader and promptInstructions are the fixed instruction template.
// Interpolated fields (history, context, question) are opaque text appended
// between them, never interpreted as template syntax.
const promptHeader = `Eres Sebastián, el asistente virtual de Bank BorjaM. Tu objetivo es ayudar a clientes con información precisa y segura.`

const promptInstructions = `INSTRUCCIONES CRÍTICAS:
1. Responde EXCLUSIVAMENTE con información del contexto documental proporcionado
2. Para datos sensibles (saldos, números de cuenta): "Para tu seguridad, valida esta información en tu portal bancario o llama al 01 8000 515 050"
3. Si la información NO está en el contexto: "No encuentro esa información específica en mis documentos. Te recomiendo contactar a un asesor en 01 8000 515 050"
4. Sé breve pero completo. Usa listas numeradas y tablas cuando sea apropiado
5. NO inventes tasas de interés, números de teléfono, ni procedimientos
6. Mantén un tono profesional y empático
7. Responde en español colombiano
8. Si mencionas productos o servicios, siempre incluye el contexto bancario

RESPUESTA DE SEBASTIÁN:`

// AssemblePrompt renders the full grounded prompt from the conversation
// history, the retrieved chunks in rank order, and the question. Pure and
// deterministic given its inputs.
func AssemblePrompt(question string, chunks []domain.Chunk, history []domain.Turn) string {
	var b strings.Builder

	b.WriteString(promptHeader)
	b.WriteString("\n\nHISTORIAL DE CONVERSACIÓN (contexto):\n")
	b.WriteString(formatHistory(history))
	b.WriteString("\n\nCONTEXTO DOCUMENTAL RELEVANTE:\n")
	b.WriteString(formatContext(chunks))
	b.WriteString("\n\nPREGUNTA DEL CLIENTE:\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(promptInstructions)

	return b.String()
}

// formatContext prefixes each chunk with a 1-based source index and its
// section label, preserving retrieval rank order.
func formatContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return emptyContextText
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		section := chunk.Section
		if section == "" {
			section = domain.DefaultSubsection
		}
		parts = append(parts, fmt.Sprintf("[Fuente %d - %s]\n%s", i+1, section, chunk.Content))
	}

	return strings.Join(parts, chunkDelimiter)
}

// formatHistory renders the most recent turns oldest-first, one
// "<Role>: <content>" line each. Any non-user role maps to the assistant
// label.
func formatHistory(history []domain.Turn) string {
	if len(history) == 0 {
		return firstQuestionText
	}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		label := assistantRoleLabel
		if turn.Role == domain.RoleUser {
			label = userRoleLabel
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, turn.Content))
	}

	return strings.Join(lines, "\n")
}
