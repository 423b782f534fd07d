package domain

import (
	"strings"
	"unicode/utf8"
)

// Turn roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Limits enforced on Ask input before any retrieval or generation work.
const (
	MaxQuestionChars    = 2000
	MaxHistoryTurns     = 20
	MaxTurnContentChars = 5000
)

// Turn is a single message in the caller-supplied conversation history.
// The caller owns session state; turns are never persisted by the core.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Validate checks a single turn.
func (t Turn) Validate() error {
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return ErrInvalidTurnRole
	}
	content := strings.TrimSpace(t.Content)
	if content == "" {
		return ErrEmptyTurnContent
	}
	if utf8.RuneCountInString(content) > MaxTurnContentChars {
		return ErrTurnContentTooLong
	}
	return nil
}

// ValidateQuestion checks the question text against the Ask limits and
// returns the trimmed question.
func ValidateQuestion(question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	if utf8.RuneCountInString(q) > MaxQuestionChars {
		return "", ErrQuestionTooLong
	}
	return q, nil
}

// ValidateHistory checks the full conversation history.
func ValidateHistory(history []Turn) error {
	if len(history) > MaxHistoryTurns {
		return ErrHistoryTooLong
	}
	for _, turn := range history {
		if err := turn.Validate(); err != nil {
			return err
		}
	}
	return nil
}
