package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicfix-be/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSweepStore struct {
	complaints []models.Complaint
	saved      map[string]int
	failFor    map[string]bool
	listErr    error
}

func newFakeSweepStore(complaints ...models.Complaint) *fakeSweepStore {
	return &fakeSweepStore{
		complaints: complaints,
		saved:      map[string]int{},
		failFor:    map[string]bool{},
	}
}

func (f *fakeSweepStore) UnresolvedComplaints(_ context.Context) ([]models.Complaint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.complaints, nil
}

func (f *fakeSweepStore) SavePriorityScore(_ context.Context, c *models.Complaint, score int) error {
	if f.failFor[c.ID.Hex()] {
		return errors.New("write failed")
	}
	f.saved[c.ID.Hex()] = score
	return nil
}

func sweepComplaint(t *testing.T, hex string, severity models.ComplaintSeverity, upvotes int, age time.Duration, now time.Time) models.Complaint {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return models.Complaint{
		ID:          id,
		AISeverity:  severity,
		UpvoteCount: upvotes,
		Status:      models.StatusSubmitted,
		CreatedAt:   now.Add(-age),
	}
}

func TestRunEscalationSweep_RescoresAll(t *testing.T) {
	now := time.Now()
	store := newFakeSweepStore(
		sweepComplaint(t, "aaaaaaaaaaaaaaaaaaaaaaa1", models.SeverityHigh, 6, 30*time.Hour, now),
		sweepComplaint(t, "aaaaaaaaaaaaaaaaaaaaaaa2", models.SeverityLow, 0, time.Hour, now),
	)

	sweeper := NewSweeper(store, nil, nil)
	sweeper.nowFunc = func() time.Time { return now }

	require.NoError(t, sweeper.RunEscalationSweep(context.Background()))

	// 50 (high) + 30 (6 votes) + 10 (30h pending) = 90
	assert.Equal(t, 90, store.saved["aaaaaaaaaaaaaaaaaaaaaaa1"])
	// 10 (low), no votes, under 12h
	assert.Equal(t, 10, store.saved["aaaaaaaaaaaaaaaaaaaaaaa2"])
}

func TestRunEscalationSweep_ContinuesPastFailures(t *testing.T) {
	now := time.Now()
	store := newFakeSweepStore(
		sweepComplaint(t, "aaaaaaaaaaaaaaaaaaaaaaa1", models.SeverityHigh, 0, time.Hour, now),
		sweepComplaint(t, "aaaaaaaaaaaaaaaaaaaaaaa2", models.SeverityMedium, 0, time.Hour, now),
		sweepComplaint(t, "aaaaaaaaaaaaaaaaaaaaaaa3", models.SeverityLow, 0, time.Hour, now),
	)
	store.failFor["aaaaaaaaaaaaaaaaaaaaaaa2"] = true

	sweeper := NewSweeper(store, nil, nil)
	sweeper.nowFunc = func() time.Time { return now }

	// One bad record must not abort the batch.
	require.NoError(t, sweeper.RunEscalationSweep(context.Background()))

	assert.Equal(t, 50, store.saved["aaaaaaaaaaaaaaaaaaaaaaa1"])
	assert.NotContains(t, store.saved, "aaaaaaaaaaaaaaaaaaaaaaa2")
	assert.Equal(t, 10, store.saved["aaaaaaaaaaaaaaaaaaaaaaa3"])
}

func TestRunEscalationSweep_ListErrorPropagates(t *testing.T) {
	store := newFakeSweepStore()
	store.listErr = errors.New("find failed")

	sweeper := NewSweeper(store, nil, nil)
	assert.Error(t, sweeper.RunEscalationSweep(context.Background()))
}

func TestRunEscalationSweep_AdvisoryLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := time.Now()
	store := newFakeSweepStore(
		sweepComplaint(t, "aaaaaaaaaaaaaaaaaaaaaaa1", models.SeverityHigh, 0, time.Hour, now),
	)

	sweeper := NewSweeper(store, client, nil)
	sweeper.nowFunc = func() time.Time { return now }

	// Another replica holds the lock: the sweep skips without error.
	require.NoError(t, client.SetNX(context.Background(), sweepLockKey, "1", time.Minute).Err())
	require.NoError(t, sweeper.RunEscalationSweep(context.Background()))
	assert.Empty(t, store.saved)

	// Lock released: the sweep runs and releases the lock afterwards.
	require.NoError(t, client.Del(context.Background(), sweepLockKey).Err())
	require.NoError(t, sweeper.RunEscalationSweep(context.Background()))
	assert.Equal(t, 50, store.saved["aaaaaaaaaaaaaaaaaaaaaaa1"])

	exists, err := client.Exists(context.Background(), sweepLockKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestSweeperLifecycle(t *testing.T) {
	store := newFakeSweepStore()
	sweeper := NewSweeper(store, nil, nil)

	require.NoError(t, sweeper.Start(""))
	sweeper.Stop()
}

func TestSweeperStart_RejectsBadSpec(t *testing.T) {
	sweeper := NewSweeper(newFakeSweepStore(), nil, nil)
	assert.Error(t, sweeper.Start("not a cron spec"))
}
