package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/media"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
)

const defaultStagingTTL = 48 * time.Hour

// StagingSweeperJobParams configure removal of abandoned upload staging areas.
type StagingSweeperJobParams struct {
	Logger *logger.Logger
	Store  stagingStore
	TTL    time.Duration
}

type stagingStore interface {
	List(ctx context.Context, dir string) ([]string, error)
	RemoveDir(ctx context.Context, dir string) error
}

func NewStagingSweeperJob(params StagingSweeperJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("storage required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultStagingTTL
	}
	return &stagingSweeperJob{
		logg:  params.Logger,
		store: params.Store,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

type stagingSweeperJob struct {
	logg  *logger.Logger
	store stagingStore
	ttl   time.Duration
	now   func() time.Time
}

func (j *stagingSweeperJob) Name() string { return "staging-sweeper" }

// Run removes staging areas whose id was minted before now-ttl. Areas that
// are not UUIDv7 carry no age and are left alone.
func (j *stagingSweeperJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	areas, err := j.store.List(ctx, storage.StagingRoot)
	if err != nil {
		return fmt.Errorf("list staging areas: %w", err)
	}

	var (
		removed int
		skipped int
		errs    error
	)
	for _, id := range areas {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		createdAt, ok := media.StagingCreatedAt(id)
		if !ok {
			skipped++
			j.logg.Warn(j.logg.WithField(ctx, "staging_id", id), "staging area without timestamp skipped")
			continue
		}
		if !createdAt.Before(cutoff) {
			continue
		}
		if err := j.store.RemoveDir(ctx, storage.StagingDir(id)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove staging area %s: %w", id, err))
			continue
		}
		removed++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"areas_seen":      len(areas),
		"areas_removed":   removed,
		"areas_skipped":   skipped,
		"areas_failed":    len(multierr.Errors(errs)),
		"staging_ttl_hrs": j.ttl.Hours(),
	}), "staging sweep complete")
	return errs
}
