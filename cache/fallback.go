package cache

import (
	"context"
	"errors"
	"log"
	"time"
)

// Fallback wraps a primary [Store] and degrades to an in-process [Memory]
// store when the primary reports [ErrUnavailable]. Misses on the primary
// are NOT retried against the fallback: the fallback only holds entries
// written while the primary was down.
//
// Revocation markers held only in the fallback do not survive a process
// restart; callers that cannot accept that should disable the fallback.
type Fallback struct {
	primary  Store
	fallback *Memory
}

// NewFallback creates a [Fallback] around the given primary store.
func NewFallback(primary Store) *Fallback {
	return &Fallback{
		primary:  primary,
		fallback: NewMemory(),
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *Fallback) Get(ctx context.Context, key string) (string, error) {
	value, err := f.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, ErrUnavailable) {
		log.Print("goAuthKit: cache read degraded to memory fallback")
		return f.fallback.Get(ctx, key)
	}
	return "", err
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *Fallback) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := f.primary.Set(ctx, key, value, ttl)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		log.Print("goAuthKit: cache write degraded to memory fallback")
		return f.fallback.Set(ctx, key, value, ttl)
	}
	return err
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *Fallback) Delete(ctx context.Context, keys ...string) error {
	// The fallback may hold shadow copies written during an outage.
	if err := f.fallback.Delete(ctx, keys...); err != nil {
		return err
	}

	err := f.primary.Delete(ctx, keys...)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		log.Print("goAuthKit: cache delete degraded to memory fallback")
		return nil
	}
	return err
}
