package model

import "time"

// Role identifies the author of a conversation turn.
type Role string

// Role constants.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one exchange in a user's rolling history window.
type ConversationTurn struct {
	At   time.Time
	Role Role
	Text string
}

// MaxHistoryTurns bounds how many turns a session retains.
const MaxHistoryTurns = 10

// SessionContext is the per-user conversational memory bridging turns.
// It is owned exclusively by the session store; the engine mutates it only
// while holding the user's session lock.
type SessionContext struct {
	SessionStart time.Time
	Pending      *ExpenseCandidate
	Queued       []ExpenseCandidate
	History      []ConversationTurn
}

// AppendTurn records a turn, discarding the oldest once the window is full.
func (s *SessionContext) AppendTurn(role Role, text string) {
	s.History = append(s.History, ConversationTurn{Role: role, Text: text, At: time.Now()})
	if len(s.History) > MaxHistoryTurns {
		s.History = s.History[len(s.History)-MaxHistoryTurns:]
	}
}

// RecentHistory returns up to n of the most recent turns, oldest first.
func (s *SessionContext) RecentHistory(n int) []ConversationTurn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		out := make([]ConversationTurn, len(s.History))
		copy(out, s.History)
		return out
	}
	out := make([]ConversationTurn, n)
	copy(out, s.History[len(s.History)-n:])
	return out
}

// Clone returns a deep copy, so a transition can work on scratch state and
// discard it on failure without corrupting the stored session.
func (s *SessionContext) Clone() *SessionContext {
	if s == nil {
		return nil
	}
	out := &SessionContext{SessionStart: s.SessionStart}
	if s.Pending != nil {
		p := s.Pending.Clone()
		out.Pending = &p
	}
	if len(s.Queued) > 0 {
		out.Queued = make([]ExpenseCandidate, len(s.Queued))
		for i := range s.Queued {
			out.Queued[i] = s.Queued[i].Clone()
		}
	}
	out.History = append([]ConversationTurn(nil), s.History...)
	return out
}

// PopQueued removes and returns the oldest queued candidate.
func (s *SessionContext) PopQueued() (ExpenseCandidate, bool) {
	if len(s.Queued) == 0 {
		return ExpenseCandidate{}, false
	}
	next := s.Queued[0]
	s.Queued = s.Queued[1:]
	return next, true
}
