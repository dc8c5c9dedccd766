package workflow

// #region imports
import (
	"strings"
)

// #endregion

// #region memory

// turn is one completed question/answer exchange.
type turn struct {
	question string
	answer   string
}

// ConversationMemory is a bounded log of completed turns. It is
// appended to only after a turn terminates and is read-only during
// node execution. Trimming happens on read, by cumulative character
// length rather than turn count, so prompt size stays bounded no
// matter how chatty the turns were.
type ConversationMemory struct {
	turns      []turn
	charBudget int
}

// NewConversationMemory creates an empty memory with the given
// character budget for rendered history.
func NewConversationMemory(charBudget int) *ConversationMemory {
	if charBudget <= 0 {
		charBudget = 3500
	}
	return &ConversationMemory{charBudget: charBudget}
}

// #endregion

// #region append

// Append records a completed turn.
func (m *ConversationMemory) Append(question, answer string) {
	m.turns = append(m.turns, turn{question: question, answer: answer})
}

// Len returns the number of stored turns.
func (m *ConversationMemory) Len() int {
	return len(m.turns)
}

// #endregion

// #region render

// Render returns the history as prompt text, newest turns last.
// Oldest turns are dropped first until the remainder fits the
// character budget. A single oversized turn is dropped entirely
// rather than truncated mid-sentence.
func (m *ConversationMemory) Render() string {
	if len(m.turns) == 0 {
		return ""
	}

	// Walk backwards accumulating turns until the budget is spent.
	total := 0
	start := len(m.turns)
	for i := len(m.turns) - 1; i >= 0; i-- {
		t := m.turns[i]
		size := len(t.question) + len(t.answer)
		if total+size > m.charBudget {
			break
		}
		total += size
		start = i
	}

	var b strings.Builder
	for _, t := range m.turns[start:] {
		b.WriteString("User: ")
		b.WriteString(t.question)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.answer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// #endregion
