package core

// limiter.go bounds how many uploads are parsed at once.
//
// Parsing holds the whole table in memory, so a burst of large uploads can
// exhaust the process. A ParseLimiter is a counting semaphore: callers wait
// up to maxWait for a slot and then fail with ErrTooManyUploads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when no parse slot frees up within the wait time.
var ErrTooManyUploads = errors.New("too many uploads in progress, please try again later")

// DefaultMaxConcurrentParses is used when NewParseLimiter is given a non-positive limit.
const DefaultMaxConcurrentParses = 5

// DefaultMaxWaitTime is used when NewParseLimiter is given a non-positive wait.
const DefaultMaxWaitTime = 30 * time.Second

// ParseLimiter limits concurrent upload parsing.
type ParseLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewParseLimiter allows at most maxConcurrent parses at a time.
func NewParseLimiter(maxConcurrent int, maxWait time.Duration) *ParseLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ParseLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. It returns ctx.Err() if ctx ends first and
// ErrTooManyUploads if the wait time runs out. Every successful Acquire
// must be paired with Release.
func (l *ParseLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// TryAcquire takes a slot only if one is free.
func (l *ParseLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ParseLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of parses in progress.
func (l *ParseLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *ParseLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no parse is in progress or ctx ends.
func (l *ParseLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
