package blobstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds limits for a ThrottledStore.
type ThrottleConfig struct {
	// MaxConcurrent is the maximum number of in-flight operations.
	// If 0, defaults to 1.
	MaxConcurrent int64

	// BytesPerSec is the maximum transfer rate for Put and Get payloads.
	// If 0, unlimited.
	BytesPerSec int
}

// ThrottledStore bounds concurrency and bandwidth of an underlying Store.
type ThrottledStore struct {
	inner   Store
	sem     *semaphore.Weighted
	limiter *rate.Limiter // nil if unlimited
}

// NewThrottledStore wraps inner with the given limits.
func NewThrottledStore(inner Store, cfg ThrottleConfig) *ThrottledStore {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	s := &ThrottledStore{
		inner: inner,
		sem:   semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	if cfg.BytesPerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), cfg.BytesPerSec)
	}
	return s
}

// acquireIO waits until the limiter allows n bytes. Payloads larger than the
// burst are admitted in burst-sized chunks.
func (s *ThrottledStore) acquireIO(ctx context.Context, n int) error {
	if s.limiter == nil {
		return nil
	}
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func (s *ThrottledStore) acquire(ctx context.Context) error {
	return s.sem.Acquire(ctx, 1)
}

func (s *ThrottledStore) release() {
	s.sem.Release(1)
}

// Put writes a blob once a slot and bandwidth are available.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if err := s.acquireIO(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// Get reads a blob. Bandwidth is charged after the read since the size is
// not known up front.
func (s *ThrottledStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.acquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a blob.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.inner.Delete(ctx, name)
}

// List returns all blob names with the given prefix.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	return s.inner.List(ctx, prefix)
}

var _ Store = (*ThrottledStore)(nil)
