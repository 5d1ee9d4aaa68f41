package cron

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage/local"
)

func stagingIDAt(t *testing.T, at time.Time) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	ms := uint64(at.UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (8 * (5 - i)))
	}
	return id.String()
}

func newSweeper(t *testing.T, store stagingStore, now time.Time) *stagingSweeperJob {
	t.Helper()
	job, err := NewStagingSweeperJob(StagingSweeperJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Store:  store,
		TTL:    48 * time.Hour,
	})
	require.NoError(t, err)
	sweeper := job.(*stagingSweeperJob)
	sweeper.now = func() time.Time { return now }
	return sweeper
}

func TestStagingSweeperRemovesOnlyExpiredAreas(t *testing.T) {
	ctx := context.Background()
	store, err := local.New(config.StorageConfig{LocalRoot: t.TempDir(), PublicBaseURL: "/uploads"})
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expired := stagingIDAt(t, now.Add(-72*time.Hour))
	fresh := stagingIDAt(t, now.Add(-time.Hour))
	legacy := uuid.NewString()
	for _, id := range []string{expired, fresh, legacy} {
		_, err := store.Save(ctx, strings.NewReader("img"), storage.StagingDir(id)+"/a.jpg", "image/jpeg")
		require.NoError(t, err)
	}

	require.NoError(t, newSweeper(t, store, now).Run(ctx))

	_, err = os.Stat(filepath.Join(store.Root(), "staging", expired))
	assert.True(t, os.IsNotExist(err), "expired area removed")
	for _, id := range []string{fresh, legacy} {
		_, err = os.Stat(filepath.Join(store.Root(), "staging", id, "a.jpg"))
		assert.NoError(t, err, id)
	}
}

func TestStagingSweeperHandlesMissingRoot(t *testing.T) {
	store, err := local.New(config.StorageConfig{LocalRoot: t.TempDir(), PublicBaseURL: "/uploads"})
	require.NoError(t, err)
	assert.NoError(t, newSweeper(t, store, time.Now()).Run(context.Background()))
}

type brokenStagingStore struct {
	areas   []string
	removed []string
}

func (b *brokenStagingStore) List(context.Context, string) ([]string, error) {
	return b.areas, nil
}

func (b *brokenStagingStore) RemoveDir(_ context.Context, dir string) error {
	if strings.HasSuffix(dir, b.areas[0]) {
		return errors.New("bucket unavailable")
	}
	b.removed = append(b.removed, dir)
	return nil
}

func TestStagingSweeperContinuesPastFailures(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &brokenStagingStore{areas: []string{
		stagingIDAt(t, now.Add(-96*time.Hour)),
		stagingIDAt(t, now.Add(-50*time.Hour)),
	}}

	err := newSweeper(t, store, now).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.Equal(t, []string{storage.StagingDir(store.areas[1])}, store.removed)
}

func TestNewStagingSweeperJobValidates(t *testing.T) {
	_, err := NewStagingSweeperJob(StagingSweeperJobParams{Store: &brokenStagingStore{}})
	assert.Error(t, err)
	_, err = NewStagingSweeperJob(StagingSweeperJobParams{Logger: logger.New(logger.Options{Output: io.Discard})})
	assert.Error(t, err)
}
