package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort hands out independent random generators. Every pipeline invocation takes its
// own stream so concurrent requests never share generator state.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a generator for a named operation from the configured base seed.
	// With no base seed configured each stream is seeded from the clock.
	Stream(ctx context.Context, name string) (*rand.Rand, error)
}
