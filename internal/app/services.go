package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/data/aggregates"
	"github.com/yungbote/siteproof-backend/internal/data/graph"
	"github.com/yungbote/siteproof-backend/internal/data/repos"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/redisx"
	"github.com/yungbote/siteproof-backend/internal/services"
)

const (
	stripeDedupePrefix = "stripe:event:"
	stripeDedupeTTL    = 72 * time.Hour
)

type Services struct {
	Auth       services.AuthService
	Access     services.AccessService
	Writer     services.AssetWriter
	Register   services.RegisterService
	Status     services.StatusService
	Assets     services.AssetService
	Field      services.FieldService
	Approvals  services.ApprovalService
	Quality    services.QualityService
	Projects   services.ProjectService
	Portal     services.PortalService
	Dashboard  services.DashboardService
	Graph      services.GraphService
	Processing services.ProcessingService
	Uploads    services.UploadService
	Billing    services.BillingService
}

func loadPolicy(cfg Config) (*policy.Policy, error) {
	if cfg.AccessPolicyFile == "" {
		return policy.DefaultPolicy()
	}
	return policy.LoadPolicy(cfg.AccessPolicyFile)
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	p, err := loadPolicy(cfg)
	if err != nil {
		return Services{}, fmt.Errorf("load access policy: %w", err)
	}
	validator, err := assets.NewContentValidator()
	if err != nil {
		return Services{}, fmt.Errorf("compile content schemas: %w", err)
	}

	runner := aggregates.NewGormTxRunner(db)
	agg := aggregates.NewAssetAggregate(aggregates.AssetAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: aggregates.NewObservabilityHooks(metrics)},
		Assets:    set.Assets,
		Edges:     set.Edges,
		Audit:     set.Audit,
		Validator: validator,
	})

	projector := graph.NewProjector(clients.Neo4j, log)
	reader := graph.NewReader(clients.Neo4j, log)

	access := services.NewAccessService(log, set.Access, p)
	writer := services.NewAssetWriter(log, agg, projector)
	register := services.NewRegisterService(log, set.Assets)
	status := services.NewStatusService(log, set.Assets, writer)
	processing := services.NewProcessingService(log, clients.LangGraph, set.Runs, set.Assets)

	dedupe := redisx.NoopDeduper()
	if clients.Redis != nil {
		dedupe = redisx.NewEventDeduper(clients.Redis, stripeDedupePrefix, stripeDedupeTTL)
	} else {
		log.Warn("Stripe webhook de-duplication disabled (no redis)")
	}

	return Services{
		Auth:       services.NewAuthService(log, cfg.Auth),
		Access:     access,
		Writer:     writer,
		Register:   register,
		Status:     status,
		Assets:     services.NewAssetService(log, access, register, writer, status, set.Assets, set.Edges),
		Field:      services.NewFieldService(log, access, register, writer),
		Approvals:  services.NewApprovalService(log, access, register, writer, set.Assets),
		Quality:    services.NewQualityService(log, register, writer, set.Assets),
		Projects:   services.NewProjectService(log, runner, set),
		Portal:     services.NewPortalService(log, set.Projects),
		Dashboard:  services.NewDashboardService(log, set.Projects, set.Assets),
		Graph:      services.NewGraphService(log, reader, projector, register, status, set.Assets, set.Edges),
		Processing: processing,
		Uploads: services.NewUploadService(log, clients.Signer, set.Assets, writer, processing, metrics, services.UploadConfig{
			MaxFiles:    cfg.Storage.MaxFiles,
			DownloadTTL: cfg.DownloadURLTTL,
		}),
		Billing: services.NewBillingService(log, clients.Stripe, set.Subscriptions, dedupe, metrics),
	}, nil
}
