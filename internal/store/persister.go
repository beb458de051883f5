package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStaleWrite is returned by Save when a newer sequence was already written.
var ErrStaleWrite = errors.New("stale write dropped")

// BlobStore is the subset of Store a Persister writes through.
type BlobStore interface {
	GetBlob(key string) ([]byte, int, error)
	PutBlob(key string, version int, value []byte) error
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		InitialWait: 50 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

// Persister owns one kv key. Saves are ordered by caller-assigned sequence
// numbers; an older sequence never overwrites a newer one.
type Persister struct {
	blobs   BlobStore
	key     string
	version int
	retry   RetryConfig
	logger  *slog.Logger

	seq     atomic.Uint64
	mu      sync.Mutex
	written uint64
}

func NewPersister(blobs BlobStore, key string, version int, retry RetryConfig, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Persister{blobs: blobs, key: key, version: version, retry: retry, logger: logger}
}

// Next hands out the sequence number for the next snapshot.
func (p *Persister) Next() uint64 {
	return p.seq.Add(1)
}

// Load returns the stored blob, or nil when nothing has been saved yet.
func (p *Persister) Load() ([]byte, error) {
	value, _, err := p.blobs.GetBlob(p.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.key, err)
	}
	return value, nil
}

// Save writes blob if seq is newer than the last successful write.
func (p *Persister) Save(ctx context.Context, seq uint64, blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.written {
		p.logger.Debug("dropping stale write", "key", p.key, "seq", seq, "written", p.written)
		return ErrStaleWrite
	}

	var lastErr error
	for attempt := range p.retry.MaxAttempts {
		err := p.blobs.PutBlob(p.key, p.version, blob)
		if err == nil {
			p.written = seq
			return nil
		}
		lastErr = err
		p.logger.Warn("save failed", "key", p.key, "seq", seq, "attempt", attempt+1, "error", err)

		if attempt == p.retry.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}
	return fmt.Errorf("save %s after %d attempts: %w", p.key, p.retry.MaxAttempts, lastErr)
}

func (p *Persister) backoff(attempt int) time.Duration {
	wait := float64(p.retry.InitialWait) * math.Pow(p.retry.Multiplier, float64(attempt))
	if wait > float64(p.retry.MaxWait) {
		wait = float64(p.retry.MaxWait)
	}

	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
