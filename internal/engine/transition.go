package engine

import (
	"strings"

	"expensebot/internal/model"
	"expensebot/internal/parse"
)

// turnPlan is the pure outcome of folding one log-expense message into
// session state: the candidates that became complete, in commit order, and
// the clarification question if the chain stopped at an incomplete one.
type turnPlan struct {
	ask     string
	commits []model.ExpenseCandidate
}

// itemResolver is the slice of category.Resolver the transition needs.
type itemResolver interface {
	Resolve(item string) string
	Known(name string) bool
}

// planTurn runs one state-machine transition for a log-expense message
// against sess, which it mutates in place. It performs no I/O; the caller
// executes the planned commits and persists the session afterwards.
//
// The steps: split the message into fragments, queue the trailing ones as
// locally-parsed candidates, merge the classifier's guess for the first
// fragment into any pending candidate, fill amount and category from raw
// tokens, then commit complete candidates in order until the queue drains
// or the first incomplete one stops the chain and becomes pending.
func planTurn(sess *model.SessionContext, text string, result model.ClassifierResult, resolver itemResolver) turnPlan {
	fragments := parse.SplitCandidates(text)
	for _, frag := range fragments[1:] {
		sess.Queued = append(sess.Queued, parse.ExtractCandidate(frag))
	}

	cand := candidateFromResult(result, fragments[0])
	if sess.Pending != nil {
		merged := sess.Pending.Clone()
		merged.Merge(cand)
		cand = merged
	}

	var plan turnPlan
	for {
		fillCategory(&cand, resolver)
		if !cand.Complete() {
			pending := cand
			sess.Pending = &pending
			plan.ask = askFor(cand)
			return plan
		}

		plan.commits = append(plan.commits, cand)
		sess.Pending = nil

		next, ok := sess.PopQueued()
		if !ok {
			return plan
		}
		cand = next
	}
}

// candidateFromResult converts the classifier's raw guess into a candidate.
// An amount token that fails normalization counts as missing rather than
// failing the turn.
func candidateFromResult(result model.ClassifierResult, fragment string) model.ExpenseCandidate {
	cand := model.ExpenseCandidate{RawFragments: []string{fragment}}

	if amount := parse.NormalizeAmount(result.AmountToken()); amount != nil {
		cand.Amount = amount
	}
	if item := strings.TrimSpace(result.ItemText()); item != "" {
		cand.Item = &item
	}
	if cat := strings.ToLower(strings.TrimSpace(result.CategoryText())); cat != "" {
		cand.Category = &cat
	}
	return cand
}

// fillCategory derives the category from the item once one is known. A
// classifier category inside the closed set stays put; one outside it is
// replaced, so committed expenses never carry invented categories.
func fillCategory(cand *model.ExpenseCandidate, resolver itemResolver) {
	if cand.Category != nil && resolver.Known(*cand.Category) {
		return
	}
	if cand.Item == nil {
		return
	}
	cat := resolver.Resolve(*cand.Item)
	cand.Category = &cat
}
