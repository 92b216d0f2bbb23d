package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Read returns the bytes behind opts.Path. Paths under the configured asset
// host are fetched from the bucket; everything else goes to the fallback
// with opts untouched.
func (s *Storage) Read(ctx context.Context, opts ReadOptions) ([]byte, error) {
	p := strings.TrimSuffix(opts.Path, "/")
	if !strings.HasPrefix(p, s.cfg.AssetHost) {
		readsTotal.WithLabelValues(sourceLocal).Inc()
		return s.fallback.Read(ctx, opts)
	}
	readsTotal.WithLabelValues(sourceRemote).Inc()

	key := stripLeadingSlash(strings.TrimPrefix(p, s.cfg.AssetHost))
	client, err := s.factory.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	obj, err := client.GetObject(ctx, s.cfg.Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", key, err)
	}
	return data, nil
}
