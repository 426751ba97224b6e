package classifier

import (
	"context"
	"strings"
	"sync"

	"expensebot/internal/model"
	"expensebot/internal/parse"
)

// MockClassifier is a deterministic implementation of the engine's
// Classifier interface. It backs tests and offline chat, extracting fields
// with keyword rules instead of an API call.
type MockClassifier struct {
	err   error
	calls []MockCall
	mu    sync.Mutex
}

// MockCall records details of a classification request.
type MockCall struct {
	Text    string
	History []model.ConversationTurn
}

// NewMockClassifier creates a new mock classifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		calls: make([]MockCall, 0),
	}
}

var mockGreetings = map[string]bool{
	"hi":                true,
	"hello":             true,
	"hey":               true,
	"yo":                true,
	"salam":             true,
	"assalam o alaikum": true,
}

var mockAcks = map[string]bool{
	"ok":        true,
	"okay":      true,
	"k":         true,
	"thanks":    true,
	"thank you": true,
	"great":     true,
	"cool":      true,
	"sure":      true,
	"done":      true,
	"got it":    true,
}

var mockQueryPhrases = []string{
	"how much",
	"what did i spend",
	"biggest",
	"breakdown",
	"show me my expenses",
	"list my expenses",
}

// Classify applies keyword rules to produce a deterministic result.
func (m *MockClassifier) Classify(_ context.Context, text string, history []model.ConversationTurn) (model.ClassifierResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Text: text, History: history})
	err := m.err
	m.mu.Unlock()

	if err != nil {
		return model.ClassifierResult{}, err
	}

	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case mockGreetings[lower]:
		return model.ClassifierResult{Intent: model.IntentGreeting}, nil
	case mockAcks[lower]:
		return model.ClassifierResult{Intent: model.IntentAcknowledgment}, nil
	case strings.Contains(lower, "summary"):
		return model.ClassifierResult{Intent: model.IntentSummary}, nil
	}

	for _, phrase := range mockQueryPhrases {
		if strings.Contains(lower, phrase) {
			return model.ClassifierResult{Intent: model.IntentQuery}, nil
		}
	}

	result := model.ClassifierResult{Intent: model.IntentLogExpense}
	if token := parse.FindAmountToken(text); token != "" {
		result.Amount = &token
	}
	if cand := parse.ExtractCandidate(text); cand.Item != nil {
		result.Item = cand.Item
	}

	if result.Amount == nil && result.Item == nil {
		result.Intent = model.IntentUnknown
	}

	return result, nil
}

// SetError makes all subsequent Classify calls fail with err. Pass nil to
// clear.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetCalls returns a copy of all recorded calls.
func (m *MockClassifier) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of times Classify was called.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears all recorded calls.
func (m *MockClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make([]MockCall, 0)
	m.err = nil
}
