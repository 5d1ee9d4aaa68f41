package slugs

import (
	"context"
	"fmt"

	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
)

const defaultMaxAttempts = 1000

// Prober answers whether a slug is already taken.
type Prober interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Allocator hands out the first unused slug for a name. The probe is
// check-then-act; callers persisting the slug must rely on the unique index
// and retry on conflict.
type Allocator struct {
	prober      Prober
	maxAttempts int
}

func NewAllocator(prober Prober, maxAttempts int) (*Allocator, error) {
	if prober == nil {
		return nil, fmt.Errorf("slug prober required")
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Allocator{prober: prober, maxAttempts: maxAttempts}, nil
}

// Allocate returns base, base-1, base-2... whichever is unused first.
func (a *Allocator) Allocate(ctx context.Context, name string) (string, error) {
	base := Base(name)
	if base == "" {
		base = fallbackBase()
	}

	for i := 0; i < a.maxAttempts; i++ {
		candidate := Candidate(base, i)
		exists, err := a.prober.SlugExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "probe slug")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("no free slug for %q after %d attempts", base, a.maxAttempts))
}

// Candidate returns the n-th probe for base: base itself, then base-n.
func Candidate(base string, n int) string {
	if n <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
