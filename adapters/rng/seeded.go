package rng

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"priorelicit/ports"
)

// SeededRNG derives PCG streams from a base seed and the operation name
type SeededRNG struct {
	baseSeed int64
	counter  atomic.Uint64
}

var _ ports.RNGPort = (*SeededRNG)(nil)

// NewSeededRNG creates the adapter; baseSeed 0 means clock-seeded streams
func NewSeededRNG(baseSeed int64) *SeededRNG {
	return &SeededRNG{baseSeed: baseSeed}
}

// SeededStream returns the same sequence for the same (name, seed) pair
func (r *SeededRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(uint64(seed), streamKey(name))), nil
}

// Stream returns a generator for name. Without a base seed every call is distinct.
func (r *SeededRNG) Stream(ctx context.Context, name string) (*rand.Rand, error) {
	seed := r.baseSeed
	if seed == 0 {
		seed = time.Now().UnixNano() ^ int64(r.counter.Add(1)<<32)
	}
	return r.SeededStream(ctx, name, seed)
}

func streamKey(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
