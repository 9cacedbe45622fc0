package cache

import (
	"context"
	"errors"
	"time"
)

// layeredCache checks a fast local layer before the shared one and
// backfills the local layer on remote hits. Writes go to both.
type layeredCache struct {
	local    Service
	remote   Service
	localTTL time.Duration
}

// NewLayered composes a local cache in front of a remote cache.
// localTTL bounds how long a backfilled entry may outlive a remote
// invalidation from another instance.
func NewLayered(local, remote Service, localTTL time.Duration) Service {
	return &layeredCache{
		local:    local,
		remote:   remote,
		localTTL: localTTL,
	}
}

func (l *layeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := l.remote.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	localTTL := ttl
	if l.localTTL > 0 && (ttl <= 0 || l.localTTL < ttl) {
		localTTL = l.localTTL
	}
	_ = l.local.Set(ctx, key, value, localTTL)
	return nil
}

func (l *layeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := l.local.Get(ctx, key); err == nil {
		return val, nil
	}

	val, err := l.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	localTTL := l.localTTL
	if localTTL <= 0 {
		localTTL = time.Minute
	}
	_ = l.local.Set(ctx, key, val, localTTL)

	return val, nil
}

func (l *layeredCache) Delete(ctx context.Context, key string) error {
	localErr := l.local.Delete(ctx, key)
	remoteErr := l.remote.Delete(ctx, key)
	return errors.Join(localErr, remoteErr)
}

func (l *layeredCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	localErr := l.local.DeleteByPrefix(ctx, prefix)
	remoteErr := l.remote.DeleteByPrefix(ctx, prefix)
	return errors.Join(localErr, remoteErr)
}

func (l *layeredCache) Close() error {
	return errors.Join(l.local.Close(), l.remote.Close())
}
