package redisx

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultDedupeTTL    = 72 * time.Hour
	defaultDedupePrefix = "stripe:event:"
)

// EventDeduper records which external event ids have already been handled.
type EventDeduper interface {
	// Claim returns false when id was claimed before and not released.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets a claim so a redelivery is processed again.
	Release(ctx context.Context, id string) error
}

type redisDeduper struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewEventDeduper(rdb goredis.Cmdable, prefix string, ttl time.Duration) EventDeduper {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultDedupePrefix
	}
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &redisDeduper{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (d *redisDeduper) Claim(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("event id required")
	}
	ok, err := d.rdb.SetNX(ctx, d.prefix+id, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	return ok, nil
}

func (d *redisDeduper) Release(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := d.rdb.Del(ctx, d.prefix+id).Err(); err != nil {
		return fmt.Errorf("release %s: %w", id, err)
	}
	return nil
}

type noopDeduper struct{}

// NoopDeduper claims every id; used when Redis is not configured.
func NoopDeduper() EventDeduper { return noopDeduper{} }

func (noopDeduper) Claim(context.Context, string) (bool, error) { return true, nil }
func (noopDeduper) Release(context.Context, string) error       { return nil }
