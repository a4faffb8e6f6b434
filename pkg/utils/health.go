package utils

import (
	"cmp"
	"context"
)

// Check probes one backing service. A nil error means healthy.
type Check func(ctx context.Context) error

// RunChecks runs every check and returns the failures by name.
func RunChecks(ctx context.Context, checks map[string]Check) map[string]error {
	failed := make(map[string]error)
	for name, check := range checks {
		if err := check(ctx); err != nil {
			failed[name] = err
		}
	}
	return failed
}

func positiveOr[T cmp.Ordered](v, fallback T) T {
	var zero T
	if v <= zero {
		return fallback
	}
	return v
}
