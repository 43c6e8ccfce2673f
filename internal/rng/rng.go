// Package rng abstracts the engine's randomness so combat tests can inject
// deterministic sequences.
package rng

import (
	"sync"
	"time"
)

// Source yields pseudo-random draws. Draw returns a value in [0, n).
type Source interface {
	Draw(n int) int
}

// Entropy derives draws from wall-clock entropy mixed with a per-call
// nonce. The seed is NOT cryptographically unpredictable: a motivated
// caller who controls request timing can bias outcomes. Acceptable for
// casual matches, unsuitable where adversarial fairness matters.
type Entropy struct {
	mu    sync.Mutex
	nonce uint64
}

// NewEntropy returns the production randomness source.
func NewEntropy() *Entropy {
	return &Entropy{}
}

func (e *Entropy) Draw(n int) int {
	if n <= 0 {
		return 0
	}
	e.mu.Lock()
	e.nonce++
	seed := uint64(time.Now().UnixNano()) ^ (e.nonce * 0x9e3779b97f4a7c15)
	e.mu.Unlock()
	// splitmix-style finalizer to spread the low bits
	seed ^= seed >> 33
	seed *= 0xff51afd7ed558ccd
	seed ^= seed >> 33
	return int(seed % uint64(n))
}

// Fixed replays a canned sequence of values. Each Draw consumes the next
// value modulo n; the sequence wraps around when exhausted.
type Fixed struct {
	Values []int
	idx    int
}

func (f *Fixed) Draw(n int) int {
	if n <= 0 || len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.idx%len(f.Values)]
	f.idx++
	return ((v % n) + n) % n
}
