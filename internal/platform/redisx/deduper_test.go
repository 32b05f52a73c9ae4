package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := Connect(&goredis.Options{Addr: mr.Addr()}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDeduperClaimOnce(t *testing.T) {
	mr, rdb := newMiniredis(t)
	d := NewEventDeduper(rdb, "", 0)
	ctx := context.Background()

	first, err := d.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, first)

	again, err := d.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, again, "second delivery must be skipped")

	require.Equal(t, DefaultDedupeTTL, mr.TTL("stripe:event:evt_1"))
}

func TestDeduperReleaseAllowsRetry(t *testing.T) {
	_, rdb := newMiniredis(t)
	d := NewEventDeduper(rdb, "test:", time.Hour)
	ctx := context.Background()

	ok, err := d.Claim(ctx, "evt_2")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, d.Release(ctx, "evt_2"))

	ok, err = d.Claim(ctx, "evt_2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeduperExpires(t *testing.T) {
	mr, rdb := newMiniredis(t)
	d := NewEventDeduper(rdb, "", time.Minute)
	ctx := context.Background()

	_, err := d.Claim(ctx, "evt_3")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := d.Claim(ctx, "evt_3")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewFromEnvDisabled(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "")
	rdb, err := NewFromEnv(logger.Nop())
	require.NoError(t, err)
	require.Nil(t, rdb)
}

func TestNewFromEnvURL(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")
	rdb, err := NewFromEnv(logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()
}
