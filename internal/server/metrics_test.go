package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/model"
)

func TestEngineHooksCountTurns(t *testing.T) {
	hooks := EngineHooks()
	require.NotNil(t, hooks.OnOutcome)
	require.NotNil(t, hooks.OnCommit)

	// Counters are process globals, so compare deltas.
	committedTurns := turnsTotal.WithLabelValues(string(model.OutcomeCommitted))
	before := testutil.ToFloat64(committedTurns)

	hooks.OnOutcome(model.OutcomeCommitted)
	hooks.OnOutcome(model.OutcomeCommitted)
	assert.Equal(t, before+2, testutil.ToFloat64(committedTurns))

	clarifying := turnsTotal.WithLabelValues(string(model.OutcomeClarifying))
	beforeClarify := testutil.ToFloat64(clarifying)
	hooks.OnOutcome(model.OutcomeClarifying)
	assert.Equal(t, beforeClarify+1, testutil.ToFloat64(clarifying))

	committed := testutil.ToFloat64(expensesCommitted)
	hooks.OnCommit(model.ExpenseCandidate{})
	assert.Equal(t, committed+1, testutil.ToFloat64(expensesCommitted))
}
