package redisx

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

const dialTimeout = 5 * time.Second

// NewFromEnv connects using REDIS_URL, else REDIS_ADDR. It returns nil, nil
// when neither is set.
func NewFromEnv(log *logger.Logger) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	var opts *goredis.Options
	if raw := envutil.String("REDIS_URL", ""); raw != "" {
		parsed, err := goredis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		opts = &goredis.Options{Addr: addr}
	} else {
		log.Warn("Redis disabled (REDIS_URL/REDIS_ADDR not set)")
		return nil, nil
	}
	opts.DialTimeout = dialTimeout
	return Connect(opts, log)
}

// Connect builds a client and pings it once.
func Connect(opts *goredis.Options, log *logger.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis connected", "addr", opts.Addr)
	return rdb, nil
}
