package app

import (
	"fmt"
	"time"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
	"github.com/yungbote/siteproof-backend/internal/platform/langgraph"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/neo4jdb"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
	"github.com/yungbote/siteproof-backend/internal/platform/stripex"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	Auth             services.AuthConfig
	AccessPolicyFile string
	CORSOrigins      []string

	OtelEnabled    bool
	MetricsEnabled bool
	MetricsAddr    string

	Storage        objectstore.Config
	StorageErr     error
	Neo4j          neo4jdb.Config
	Stripe         stripex.Config
	LangGraph      langgraph.Config
	DownloadURLTTL time.Duration
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// LoadConfig reads the process environment once at start.
func LoadConfig(log *logger.Logger) Config {
	env := envutil.WithLogger(log)
	storage, storageErr := objectstore.ResolveConfigFromEnv()
	return Config{
		Port:        env.String("PORT", "8080"),
		Environment: env.String("APP_ENV", "development"),
		Version:     env.String("APP_VERSION", ""),

		Auth: services.AuthConfig{
			Secret:   env.String("JWT_SECRET_KEY", ""),
			Issuer:   env.String("JWT_ISSUER", ""),
			Audience: env.String("JWT_AUDIENCE", ""),
			Leeway:   time.Duration(env.Int("JWT_LEEWAY_SECONDS", 30)) * time.Second,
		},
		AccessPolicyFile: env.String("ACCESS_POLICY_FILE", ""),
		CORSOrigins:      envutil.List("CORS_ALLOWED_ORIGINS"),

		OtelEnabled:    env.Bool("OTEL_ENABLED", false),
		MetricsEnabled: env.Bool("METRICS_ENABLED", false),
		MetricsAddr:    env.String("METRICS_ADDR", ""),

		Storage:        storage,
		StorageErr:     storageErr,
		Neo4j:          neo4jdb.ConfigFromEnv(),
		Stripe:         stripex.ConfigFromEnv(),
		LangGraph:      langgraph.ConfigFromEnv(),
		DownloadURLTTL: envutil.Minutes("DOWNLOAD_URL_TTL_MINUTES", objectstore.DefaultUploadTTL),
	}
}
