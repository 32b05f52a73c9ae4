package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/siteproof-backend/internal/data/graph"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	httpH "github.com/yungbote/siteproof-backend/internal/http/handlers"
	httpMW "github.com/yungbote/siteproof-backend/internal/http/middleware"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/services"
)

const otelServiceName = "siteproof-api"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	OtelEnabled bool

	AuthMiddleware *httpMW.AuthMiddleware
	Access         services.AccessService

	HealthHandler     *httpH.HealthHandler
	ProjectHandler    *httpH.ProjectHandler
	AssetHandler      *httpH.AssetHandler
	FieldHandler      *httpH.FieldHandler
	ApprovalHandler   *httpH.ApprovalHandler
	BillingHandler    *httpH.BillingHandler
	UploadHandler     *httpH.UploadHandler
	ProcessingHandler *httpH.ProcessingHandler
	RegisterHandler   *httpH.RegisterHandler
	QualityHandler    *httpH.QualityHandler
	GraphHandler      *httpH.GraphHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	v1 := api.Group("/v1")

	// Stripe calls in with its own signature, not a bearer token.
	if cfg.BillingHandler != nil {
		v1.POST("/webhooks/stripe", cfg.BillingHandler.StripeWebhook)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	pv1 := protected.Group("/v1")

	// Projects
	if cfg.ProjectHandler != nil {
		pv1.GET("/projects", cfg.ProjectHandler.ListProjects)
		pv1.POST("/projects", cfg.ProjectHandler.CreateProject)
		pv1.GET("/dashboard", cfg.ProjectHandler.Dashboard)
		pv1.GET("/client/projects", cfg.ProjectHandler.ClientProjects)
		pv1.GET("/subcontractor/projects", cfg.ProjectHandler.SubcontractorProjects)
	}

	// Assets
	if cfg.AssetHandler != nil {
		pv1.GET("/assets", cfg.AssetHandler.ListAssets)
		pv1.POST("/assets", cfg.AssetHandler.CreateAsset)
		pv1.PUT("/assets/:assetId", cfg.AssetHandler.UpdateAsset)
		pv1.DELETE("/assets/:assetId", cfg.AssetHandler.DeleteAsset)
		pv1.PATCH("/assets/:assetId/status", cfg.AssetHandler.SetAssetStatus)
		pv1.GET("/assets/:assetId/revisions", cfg.AssetHandler.ListRevisions)
		pv1.POST("/assets/:assetId/revisions", cfg.AssetHandler.CreateRevision)
	}

	// Field
	if cfg.FieldHandler != nil {
		for _, kind := range services.FieldKinds() {
			pv1.GET("/field/"+string(kind), cfg.FieldHandler.List(kind))
			pv1.POST("/field/"+string(kind), cfg.FieldHandler.Create(kind))
		}
	}

	// Approvals
	if cfg.ApprovalHandler != nil {
		pv1.GET("/approvals/workflows", cfg.ApprovalHandler.ListWorkflows)
		pv1.POST("/approvals/workflows", cfg.ApprovalHandler.CreateWorkflow)
		pv1.POST("/approvals/workflows/:assetId/decision", cfg.ApprovalHandler.Decide)
	}

	// Billing
	if cfg.BillingHandler != nil {
		pv1.POST("/billing/checkout-session", cfg.BillingHandler.CreateCheckoutSession)
		pv1.GET("/billing/subscription-status", cfg.BillingHandler.SubscriptionStatus)
	}

	// GraphRAG chat (SSE)
	if cfg.ProcessingHandler != nil {
		protected.POST("/graphrag/chat/stream", cfg.ProcessingHandler.ChatStream)
	}

	if cfg.Access == nil {
		return r
	}
	write := httpMW.RequireAction(cfg.Access, policy.ActionWrite)

	project := pv1.Group("/projects/:projectId")
	project.Use(httpMW.ProjectAccess(cfg.Access))
	{
		if cfg.ProjectHandler != nil {
			project.GET("", cfg.ProjectHandler.GetProject)
			project.GET("/team", cfg.ProjectHandler.ListTeam)
		}
		if cfg.UploadHandler != nil {
			project.POST("/uploads/sas", write, cfg.UploadHandler.IssueUploadURLs)
			project.POST("/uploads/complete", write, cfg.UploadHandler.CompleteUpload)
			project.GET("/downloads/sas", cfg.UploadHandler.DownloadURL)
			project.POST("/assets/:assetId/attachments/sas", write, cfg.UploadHandler.IssueAttachmentURLs)
			project.POST("/assets/:assetId/attachments/complete", write, cfg.UploadHandler.CompleteAttachment)
		}
		if cfg.ProcessingHandler != nil {
			project.POST("/processing/orchestrator", write, cfg.ProcessingHandler.Trigger)
			project.GET("/ai/status", cfg.ProcessingHandler.Status)
			project.GET("/ai/streams", cfg.ProcessingHandler.StreamRun)
		}
		if cfg.RegisterHandler != nil {
			project.GET("/registers/:type", cfg.RegisterHandler.List)
		}
		if cfg.QualityHandler != nil {
			project.GET("/quality/itp-register", cfg.QualityHandler.ITPRegister)
			project.POST("/quality/itp-register", write, cfg.QualityHandler.CreateITP)
			project.GET("/quality/lots", cfg.QualityHandler.Lots)
		}
	}

	// Graph collections
	if cfg.GraphHandler != nil {
		g := protected.Group("/neo4j/:projectId")
		g.Use(httpMW.ProjectAccess(cfg.Access))
		for _, kind := range graph.AllKinds() {
			g.GET("/"+string(kind), cfg.GraphHandler.List(kind))
		}
		g.GET("/lots/:lotId", cfg.GraphHandler.GetLot)
		g.PATCH("/lots/:lotId/status", write, cfg.GraphHandler.UpdateLotStatus)
	}

	return r
}
