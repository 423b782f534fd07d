package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankborjam/sebastian/internal/domain"
)

func TestAssemblePrompt(t *testing.T) {
	chunks := []domain.Chunk{
		{Section: "Cuentas de Ahorro", Content: "Las cuentas no cobran cuota de manejo."},
		{Section: "Tarjetas", Content: "La tarjeta joven no tiene costo el primer año."},
	}

	prompt := AssemblePrompt("¿La tarjeta tiene costo?", chunks, nil)

	assert.Contains(t, prompt, "Eres Sebastián, el asistente virtual de Bank BorjaM")
	assert.Contains(t, prompt, "[Fuente 1 - Cuentas de Ahorro]\nLas cuentas no cobran cuota de manejo.")
	assert.Contains(t, prompt, "[Fuente 2 - Tarjetas]\nLa tarjeta joven no tiene costo el primer año.")
	assert.Contains(t, prompt, chunkDelimiter)
	assert.Contains(t, prompt, "PREGUNTA DEL CLIENTE:\n¿La tarjeta tiene costo?")
	assert.Contains(t, prompt, "01 8000 515 050")
	assert.True(t, strings.HasSuffix(prompt, "RESPUESTA DE SEBASTIÁN:"))
}

func TestAssemblePrompt_EmptyHistory(t *testing.T) {
	prompt := AssemblePrompt("hola", nil, nil)

	assert.Contains(t, prompt, firstQuestionText)
	assert.Contains(t, prompt, emptyContextText)
}

func TestAssemblePrompt_HistoryWindow(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "primera"},
		{Role: domain.RoleAssistant, Content: "respuesta uno"},
		{Role: domain.RoleUser, Content: "segunda"},
		{Role: domain.RoleAssistant, Content: "respuesta dos"},
		{Role: domain.RoleUser, Content: "tercera"},
		{Role: domain.RoleAssistant, Content: "respuesta tres"},
	}

	prompt := AssemblePrompt("¿y ahora?", nil, history)

	// Only the last four turns survive.
	assert.NotContains(t, prompt, "primera")
	assert.NotContains(t, prompt, "respuesta uno")
	assert.Contains(t, prompt, "Usuario: segunda")
	assert.Contains(t, prompt, "Asistente: respuesta dos")
	assert.Contains(t, prompt, "Usuario: tercera")
	assert.Contains(t, prompt, "Asistente: respuesta tres")
	assert.NotContains(t, prompt, firstQuestionText)
}

func TestAssemblePrompt_Deterministic(t *testing.T) {
	chunks := []domain.Chunk{{Section: "General", Content: "contenido"}}
	history := []domain.Turn{{Role: domain.RoleUser, Content: "hola"}}

	a := AssemblePrompt("pregunta", chunks, history)
	b := AssemblePrompt("pregunta", chunks, history)

	assert.Equal(t, a, b)
}

func TestFormatContext_MissingSectionLabel(t *testing.T) {
	out := formatContext([]domain.Chunk{{Content: "texto"}})

	require.Contains(t, out, "[Fuente 1 - "+domain.DefaultSubsection+"]")
}

func TestFormatHistory_UnknownRoleMapsToAssistant(t *testing.T) {
	out := formatHistory([]domain.Turn{{Role: "tool", Content: "dato"}})

	assert.Equal(t, "Asistente: dato", out)
}
