package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/siteproof-backend/internal/platform/langgraph"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/neo4jdb"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
	"github.com/yungbote/siteproof-backend/internal/platform/redisx"
	"github.com/yungbote/siteproof-backend/internal/platform/stripex"
)

// Clients holds connections to external systems. Optional ones are nil when
// their settings are absent.
type Clients struct {
	Neo4j     *neo4jdb.Client
	Redis     *goredis.Client
	Signer    objectstore.Signer
	Stripe    stripex.Provider
	LangGraph langgraph.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	signer, err := resolveSigner(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	graphClient, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}

	rdb, err := redisx.NewFromEnv(log)
	if err != nil {
		if graphClient != nil {
			_ = graphClient.Close(ctx)
		}
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	return Clients{
		Neo4j:     graphClient,
		Redis:     rdb,
		Signer:    signer,
		Stripe:    stripex.New(cfg.Stripe, log),
		LangGraph: langgraph.New(cfg.LangGraph, log),
	}, nil
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
