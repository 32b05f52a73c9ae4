package app

import (
	"context"

	"gorm.io/gorm"

	httpapi "github.com/yungbote/siteproof-backend/internal/http"
	httpH "github.com/yungbote/siteproof-backend/internal/http/handlers"
	httpMW "github.com/yungbote/siteproof-backend/internal/http/middleware"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

func healthChecks(db *gorm.DB, clients Clients) map[string]httpH.Pinger {
	checks := map[string]httpH.Pinger{}
	if db != nil {
		checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	if clients.Neo4j.Enabled() {
		checks["neo4j"] = func(ctx context.Context) error { return clients.Neo4j.Driver.VerifyConnectivity(ctx) }
	}
	return checks
}

func routerConfig(log *logger.Logger, cfg Config, db *gorm.DB, clients Clients, svc Services, metrics *observability.Metrics) httpapi.RouterConfig {
	log.Info("Wiring handlers...")
	return httpapi.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		CORSOrigins: cfg.CORSOrigins,
		OtelEnabled: cfg.OtelEnabled,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, svc.Auth),
		Access:         svc.Access,

		HealthHandler:     httpH.NewHealthHandler(healthChecks(db, clients)),
		ProjectHandler:    httpH.NewProjectHandler(svc.Projects, svc.Portal, svc.Dashboard),
		AssetHandler:      httpH.NewAssetHandler(svc.Assets),
		FieldHandler:      httpH.NewFieldHandler(svc.Field),
		ApprovalHandler:   httpH.NewApprovalHandler(svc.Approvals),
		BillingHandler:    httpH.NewBillingHandler(svc.Billing),
		UploadHandler:     httpH.NewUploadHandler(svc.Uploads),
		ProcessingHandler: httpH.NewProcessingHandler(log, svc.Processing, metrics),
		RegisterHandler:   httpH.NewRegisterHandler(svc.Register),
		QualityHandler:    httpH.NewQualityHandler(svc.Quality),
		GraphHandler:      httpH.NewGraphHandler(svc.Graph),
	}
}
