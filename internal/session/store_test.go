package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"expensebot/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStoreRoundtrip(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	release := store.Acquire("user-1")
	defer release()

	assert.Nil(t, store.Get("user-1"))

	sess := &model.SessionContext{SessionStart: time.Now()}
	sess.AppendTurn(model.RoleUser, "fuel 500")
	store.Upsert("user-1", sess)

	got := store.Get("user-1")
	require.NotNil(t, got)
	assert.Len(t, got.History, 1)

	store.Clear("user-1")
	assert.Nil(t, store.Get("user-1"))
}

func TestAcquireSerializesPerUser(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	const workers = 32
	amount := func(f float64) *float64 { return &f }

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			release := store.Acquire("user-1")
			defer release()

			sess := store.Get("user-1")
			if sess == nil {
				sess = &model.SessionContext{SessionStart: time.Now()}
			}
			if sess.Pending == nil {
				sess.Pending = &model.ExpenseCandidate{Amount: amount(0)}
			}
			// Read-modify-write would lose updates without per-user locking.
			current := *sess.Pending.Amount
			time.Sleep(time.Millisecond)
			sess.Pending.Amount = amount(current + 1)
			store.Upsert("user-1", sess)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	release := store.Acquire("user-1")
	defer release()
	sess := store.Get("user-1")
	require.NotNil(t, sess)
	require.NotNil(t, sess.Pending)
	assert.InDelta(t, float64(workers), *sess.Pending.Amount, 0.001)
}

func TestAcquireIndependentUsers(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	releaseA := store.Acquire("user-a")
	defer releaseA()

	acquired := make(chan struct{})
	go func() {
		release := store.Acquire("user-b")
		release()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("acquiring an unrelated user's scope blocked")
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	defer store.Close()

	release := store.Acquire("user-1")
	store.Upsert("user-1", &model.SessionContext{SessionStart: time.Now()})
	release()

	require.Equal(t, 1, store.Len())
	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHeldSessionSurvivesSweep(t *testing.T) {
	store := NewStore(30 * time.Millisecond)
	defer store.Close()

	release := store.Acquire("user-1")
	store.Upsert("user-1", &model.SessionContext{SessionStart: time.Now()})

	// Several sweep cycles pass while the scope is held.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, store.Len())

	release()
	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
