package media

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/metrics"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var stagingRefPattern = regexp.MustCompile(storage.StagingRoot + `/([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})/`)

type relocationMetrics interface {
	AddRelocation(outcome string, n int)
}

// MovedFile is one staged file now living in a place's permanent area.
type MovedFile struct {
	From string
	To   string
}

// Relocation is the outcome of moving staged areas to a place. Err aggregates
// every failure; a non-nil Err never means nothing moved.
type Relocation struct {
	Slug  string
	Moved []MovedFile
	Err   error
}

// Warnings flattens Err into one message per failure.
func (r Relocation) Warnings() []string {
	errs := multierr.Errors(r.Err)
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// RewriteURL points u at the permanent copy of a moved file. URLs that do not
// reference a moved file are returned unchanged.
func (r Relocation) RewriteURL(u string) string {
	for _, m := range r.Moved {
		idx := strings.Index(u, m.From)
		if idx < 0 {
			continue
		}
		end := idx + len(m.From)
		if end < len(u) && u[end] != '?' && u[end] != '#' {
			continue
		}
		return u[:idx] + m.To + u[end:]
	}
	return u
}

// RewritePtr is RewriteURL for optional values.
func (r Relocation) RewritePtr(u *string) *string {
	if u == nil {
		return nil
	}
	rewritten := r.RewriteURL(*u)
	return &rewritten
}

// RewriteAll rewrites every URL of values in place order.
func (r Relocation) RewriteAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = r.RewriteURL(v)
	}
	return out
}

// ExtractStagingIDs returns the distinct staging ids referenced by urls, in
// first-seen order.
func ExtractStagingIDs(urls ...string) []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, u := range urls {
		for _, match := range stagingRefPattern.FindAllStringSubmatch(u, -1) {
			id, err := uuid.Parse(match[1])
			if err != nil {
				continue
			}
			key := id.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			ids = append(ids, key)
		}
	}
	return ids
}

// Relocator moves staged uploads into a place's permanent asset area.
type Relocator struct {
	store   storage.Store
	logg    *logger.Logger
	metrics relocationMetrics
}

// NewRelocator wires a relocator over the provided store.
func NewRelocator(store storage.Store, logg *logger.Logger, m relocationMetrics) (*Relocator, error) {
	if store == nil {
		return nil, fmt.Errorf("storage store required")
	}
	if m == nil {
		m = (*metrics.PlaceMetrics)(nil)
	}
	return &Relocator{store: store, logg: logg, metrics: m}, nil
}

// RelocateStaged moves every file of the given staging areas to places/<slug>/
// keeping file names. An area is removed only once all of its files moved.
// Failures are collected in the result and logged, never returned.
func (r *Relocator) RelocateStaged(ctx context.Context, stagingIDs []string, slug string) Relocation {
	result := Relocation{Slug: slug}
	target := storage.PlaceDir(slug)

	for _, id := range normalizeStagingIDs(stagingIDs, &result) {
		area := storage.StagingDir(id)
		names, err := r.store.List(ctx, area)
		if err != nil {
			result.Err = multierr.Append(result.Err, storageFault(err, "list staged area %s", area))
			continue
		}
		if len(names) == 0 {
			continue
		}

		complete := true
		for _, name := range names {
			from := path.Join(area, name)
			to := path.Join(target, name)
			if err := r.store.Move(ctx, from, to); err != nil {
				complete = false
				result.Err = multierr.Append(result.Err, storageFault(err, "move %s", from))
				r.metrics.AddRelocation(metrics.RelocationFailed, 1)
				continue
			}
			result.Moved = append(result.Moved, MovedFile{From: from, To: to})
			r.metrics.AddRelocation(metrics.RelocationMoved, 1)
		}

		if !complete {
			continue
		}
		if err := r.store.RemoveDir(ctx, area); err != nil {
			result.Err = multierr.Append(result.Err, storageFault(err, "remove staged area %s", area))
			continue
		}
		r.metrics.AddRelocation(metrics.RelocationRemoved, 1)
	}

	r.report(ctx, result)
	return result
}

// Retarget moves files already relocated under prev.Slug to places/<slug>/,
// used when the slug a relocation targeted lost a uniqueness race. The old
// directory belongs to the winning place and is left in place.
func (r *Relocator) Retarget(ctx context.Context, prev Relocation, slug string) Relocation {
	result := Relocation{Slug: slug, Err: prev.Err}
	if prev.Slug == slug {
		result.Moved = prev.Moved
		return result
	}
	target := storage.PlaceDir(slug)
	for _, m := range prev.Moved {
		to := path.Join(target, path.Base(m.To))
		if err := r.store.Move(ctx, m.To, to); err != nil {
			result.Err = multierr.Append(result.Err, storageFault(err, "move %s", m.To))
			// The file is still reachable under the old slug.
			result.Moved = append(result.Moved, m)
			continue
		}
		result.Moved = append(result.Moved, MovedFile{From: m.From, To: to})
	}
	r.report(ctx, result)
	return result
}

// Restore moves relocated files back to their staging paths after the place
// they were relocated for failed to persist. Staged URLs held by the client
// stay valid for a retry.
func (r *Relocator) Restore(ctx context.Context, rel Relocation) error {
	var errs error
	for _, m := range rel.Moved {
		if err := r.store.Move(ctx, m.To, m.From); err != nil {
			errs = multierr.Append(errs, storageFault(err, "restore %s", m.From))
			r.metrics.AddRelocation(metrics.RelocationFailed, 1)
			continue
		}
		r.metrics.AddRelocation(metrics.RelocationRestored, 1)
	}
	if errs != nil && r.logg != nil {
		ctx = r.logg.WithField(ctx, "slug", rel.Slug)
		r.logg.Error(ctx, "staged asset restore incomplete", errs)
	}
	return errs
}

func (r *Relocator) report(ctx context.Context, result Relocation) {
	if r.logg == nil {
		return
	}
	ctx = r.logg.WithFields(ctx, map[string]any{
		"slug":        result.Slug,
		"moved_files": len(result.Moved),
	})
	if result.Err != nil {
		r.logg.Error(ctx, "staged asset relocation incomplete", result.Err)
		return
	}
	if len(result.Moved) > 0 {
		r.logg.Info(ctx, "staged assets relocated")
	}
}

func normalizeStagingIDs(ids []string, result *Relocation) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		id, err := uuid.Parse(trimmed)
		if err != nil {
			result.Err = multierr.Append(result.Err, storageFault(err, "invalid staging id %q", trimmed))
			continue
		}
		key := id.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func storageFault(err error, format string, args ...any) error {
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, fmt.Sprintf(format, args...))
}
