package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"expensebot/internal/category"
	"expensebot/internal/common"
	"expensebot/internal/model"
	"expensebot/internal/service"
	"expensebot/internal/session"
)

// shortMessageMax is the rune count at or below which a message is treated
// as filler and answered without a classifier round trip.
const shortMessageMax = 2

// Engine drives the dialogue: one HandleMessage call per inbound message,
// serialized per user by the session store's scope lock.
type Engine struct {
	sessions      *session.Store
	resolver      *category.Resolver
	classifier    Classifier
	committer     ExpenseCommitter
	querier       Querier
	summarizer    Summarizer
	hooks         Hooks
	retryOpts     service.RetryOptions
	historyWindow int
}

// Config holds configuration options for the engine.
type Config struct {
	HistoryWindow int
	Retry         service.RetryOptions
	Hooks         Hooks
}

// Hooks let callers observe turn outcomes and commits without coupling the
// engine to a metrics backend. Nil hooks are skipped.
type Hooks struct {
	OnOutcome func(model.Outcome)
	OnCommit  func(model.ExpenseCandidate)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HistoryWindow: 3,
		Retry: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// New creates an engine with the given collaborators and default config.
func New(sessions *session.Store, resolver *category.Resolver, classifier Classifier, committer ExpenseCommitter, querier Querier, summarizer Summarizer) *Engine {
	return NewWithConfig(sessions, resolver, classifier, committer, querier, summarizer, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(sessions *session.Store, resolver *category.Resolver, classifier Classifier, committer ExpenseCommitter, querier Querier, summarizer Summarizer, cfg Config) *Engine {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultConfig().HistoryWindow
	}
	return &Engine{
		sessions:      sessions,
		resolver:      resolver,
		classifier:    classifier,
		committer:     committer,
		querier:       querier,
		summarizer:    summarizer,
		hooks:         cfg.Hooks,
		retryOpts:     cfg.Retry,
		historyWindow: cfg.HistoryWindow,
	}
}

// HandleMessage runs one full dialogue transition for an inbound message and
// returns the response, which always has exactly one populated field. It
// never fails: every error path degrades to a fixed reply.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string) model.Response {
	release := e.sessions.Acquire(userID)
	defer release()

	sess := e.sessions.Get(userID)
	if sess == nil {
		sess = &model.SessionContext{SessionStart: time.Now()}
	}

	// Filler replies like "ok" must never disturb a pending candidate.
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= shortMessageMax {
		return e.finish(userID, sess, text, model.OutcomeAcknowledged, messageResponse(shortReply(trimmed)))
	}

	history := sess.RecentHistory(e.historyWindow)
	var result model.ClassifierResult
	err := common.WithRetry(ctx, func() error {
		var cerr error
		result, cerr = e.classifier.Classify(ctx, text, history)
		return cerr
	}, e.retryOpts)
	if err != nil {
		slog.Error("Classifier unavailable, leaving session untouched",
			"user_id", userID,
			"error", err)
		if e.hooks.OnOutcome != nil {
			e.hooks.OnOutcome(model.OutcomeClarifying)
		}
		return clarificationResponse(classifierDownReply)
	}

	switch result.Intent {
	case model.IntentGreeting:
		return e.finish(userID, sess, text, model.OutcomeAcknowledged, messageResponse(greetingReply))

	case model.IntentAcknowledgment:
		return e.finish(userID, sess, text, model.OutcomeAcknowledged, messageResponse(ackReply))

	case model.IntentQuery:
		answer, qerr := e.querier.RunQuery(ctx, userID, text)
		if qerr != nil {
			slog.Error("Query collaborator failed", "user_id", userID, "error", qerr)
			answer = queryFailedReply
		}
		return e.finish(userID, sess, text, model.OutcomeRoutedOther, model.Response{QueryResult: &answer})

	case model.IntentSummary:
		period := periodFrom(text)
		summary, serr := e.summarizer.RunSummary(ctx, userID, period)
		if serr != nil {
			slog.Error("Summary collaborator failed",
				"user_id", userID,
				"period", string(period),
				"error", serr)
			summary = summaryFailedReply
		}
		return e.finish(userID, sess, text, model.OutcomeRoutedOther, model.Response{Summary: &summary})

	case model.IntentLogExpense:
		return e.handleLogExpense(ctx, userID, sess, text, result)

	default:
		return e.finish(userID, sess, text, model.OutcomeAcknowledged, messageResponse(unknownReply))
	}
}

// handleLogExpense merges the classifier's guess into the session on a
// scratch copy, commits whatever became complete, and persists the scratch
// state only when every planned commit succeeded.
func (e *Engine) handleLogExpense(ctx context.Context, userID string, sess *model.SessionContext, text string, result model.ClassifierResult) model.Response {
	work := sess.Clone()
	plan := planTurn(work, text, result, e.resolver)

	committed := make([]model.ExpenseCandidate, 0, len(plan.commits))
	for _, cand := range plan.commits {
		if err := e.committer.CommitExpense(ctx, userID, cand); err != nil {
			slog.Error("Expense commit failed",
				"user_id", userID,
				"committed_so_far", len(committed),
				"error", err)
			// Pre-turn pending and queue survive so the user can resend.
			return e.finish(userID, sess, text, model.OutcomeAcknowledged, messageResponse(commitFailedReply))
		}
		committed = append(committed, cand)
		if e.hooks.OnCommit != nil {
			e.hooks.OnCommit(cand)
		}
	}

	switch {
	case len(committed) > 0 && plan.ask != "":
		// Committed some, stopped at an incomplete one: confirm and ask.
		return e.finish(userID, work, text, model.OutcomeClarifying,
			clarificationResponse(confirmCommits(committed)+" "+plan.ask))
	case len(committed) > 0:
		return e.finish(userID, work, text, model.OutcomeCommitted,
			confirmationResponse(confirmCommits(committed)))
	default:
		return e.finish(userID, work, text, model.OutcomeClarifying,
			clarificationResponse(plan.ask))
	}
}

// finish records the turn in history, persists the session, and fires the
// outcome hook.
func (e *Engine) finish(userID string, sess *model.SessionContext, userText string, outcome model.Outcome, resp model.Response) model.Response {
	sess.AppendTurn(model.RoleUser, userText)
	if reply := resp.Text(); reply != "" {
		sess.AppendTurn(model.RoleAssistant, reply)
	}
	e.sessions.Upsert(userID, sess)

	if e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(outcome)
	}
	slog.Debug("Handled turn",
		"user_id", userID,
		"outcome", string(outcome),
		"response_kind", resp.Kind())
	return resp
}

// periodFrom picks the summary period named in the text, defaulting to
// weekly.
func periodFrom(text string) model.SummaryPeriod {
	if strings.Contains(strings.ToLower(text), "month") {
		return model.PeriodMonthly
	}
	return model.PeriodWeekly
}

func messageResponse(text string) model.Response {
	return model.Response{Message: &text}
}

func clarificationResponse(text string) model.Response {
	return model.Response{Clarification: &text}
}

func confirmationResponse(text string) model.Response {
	return model.Response{Confirmation: &text}
}
