// Package backend selects the storage.Store implementation named by config.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage/gcs"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage/local"
)

// Open builds the configured store.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case config.StorageDriverLocal:
		store, err := local.New(cfg.Storage)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverGCS:
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
