package persistence

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/kcluster/blobstore"
)

// Save writes the snapshot to store under name.
func Save(ctx context.Context, store blobstore.Store, name string, s *Snapshot, opts ...WriteOption) error {
	var buf bytes.Buffer
	if err := Write(&buf, s, opts...); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("store snapshot %s: %w", name, err)
	}
	return nil
}

// Load reads the snapshot stored under name.
// A missing blob yields an error matching blobstore.ErrNotFound.
func Load(ctx context.Context, store blobstore.Store, name string) (*Snapshot, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	s, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return s, nil
}
