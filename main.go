package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ops-checklist/backend/internal/chunker"
	"github.com/ops-checklist/backend/internal/client"
	"github.com/ops-checklist/backend/internal/config"
	"github.com/ops-checklist/backend/internal/db"
	"github.com/ops-checklist/backend/internal/dispatch"
	"github.com/ops-checklist/backend/internal/enrich"
	"github.com/ops-checklist/backend/internal/handler"
	"github.com/ops-checklist/backend/internal/index"
	"github.com/ops-checklist/backend/internal/ingest"
	"github.com/ops-checklist/backend/internal/pipeline"
	"github.com/ops-checklist/backend/internal/retrieve"
	"github.com/ops-checklist/backend/internal/service"
)

// @title ops-checklist API
// @version 1.0
// @description Alert-driven dynamic checklist generation service.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env 파일 로드 (없으면 무시)
	if err := godotenv.Load(); err != nil {
		log.Println("[Main] No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	// --- Postgres (선택) ---
	// 연결 실패 시 인메모리 인덱스로 폴백하고 영속화/인증 라우트는 비활성화
	var pg *db.Postgres
	if pool, err := db.NewPostgresPool(ctx, cfg.Postgres); err != nil {
		log.Printf("[Main] WARNING: Postgres unavailable, persistence disabled: %v", err)
	} else {
		pg = &db.Postgres{Pool: pool}
		defer pool.Close()
	}

	// --- 벡터 인덱스 백엔드 선택 ---
	var vectorIndex index.VectorIndex
	if cfg.Ingest.Backend == "postgres" && pg != nil {
		if err := pg.EnsureChunkSchema(ctx, cfg.Embedding.Dimension); err != nil {
			log.Fatalf("[Main] Failed to ensure chunk schema: %v", err)
		}
		vectorIndex = pg
		log.Printf("[Main] Using pgvector index (dimension=%d)", cfg.Embedding.Dimension)
	} else {
		vectorIndex = index.NewMemory()
		log.Println("[Main] Using in-memory vector index")
	}

	// --- AI 클라이언트 ---
	embedder, err := client.NewEmbeddingClient(cfg.Embedding)
	if err != nil {
		log.Fatalf("[Main] Failed to init embedding client: %v", err)
	}
	generator, err := client.NewGenerationClient(cfg.Generation)
	if err != nil {
		log.Fatalf("[Main] Failed to init generation client: %v", err)
	}

	// --- 보강 소스 (각각 선택) ---
	var metadataSource enrich.MetadataSource
	if gce, err := client.NewGCEMetadataClient(ctx, cfg.Metadata); err != nil {
		log.Printf("[Main] Resource metadata disabled: %v", err)
	} else {
		metadataSource = gce
	}

	var metricsSource enrich.MetricsSource
	if influx, err := client.NewInfluxMetricsClient(cfg.Metrics); err != nil {
		log.Printf("[Main] Metrics enrichment disabled: %v", err)
	} else {
		metricsSource = influx
	}

	var logsSource enrich.LogsSource
	if loki, err := client.NewLokiLogsClient(cfg.Logs); err != nil {
		log.Printf("[Main] Logs enrichment disabled: %v", err)
	} else {
		logsSource = loki
	}

	enricher := enrich.NewEnricher(metadataSource, metricsSource, logsSource, cfg.Enrich.Lookback, cfg.Enrich.FetchTimeout)
	retriever := retrieve.NewRetriever(embedder, vectorIndex, cfg.Generation.TopK, cfg.Ingest.EmbedTimeout)

	// --- 전송 ---
	slackClient := client.NewSlackClient(cfg.Slack)
	if !slackClient.IsConfigured() {
		log.Println("[Main] Slack delivery disabled (SLACK_BOT_TOKEN/SLACK_CHANNEL_ID not set)")
	}
	var webhookReader dispatch.WebhookConfigReader
	if pg != nil {
		if err := pg.EnsureWebhookSchema(ctx); err != nil {
			log.Fatalf("[Main] Failed to ensure webhook schema: %v", err)
		}
		webhookReader = pg
	}
	dispatcher := dispatch.NewDispatcher(slackClient, webhookReader)

	// --- 파이프라인 ---
	var checklistStore pipeline.ChecklistStore
	if pg != nil {
		if err := pg.EnsureChecklistSchema(ctx); err != nil {
			log.Fatalf("[Main] Failed to ensure checklist schema: %v", err)
		}
		checklistStore = pg
	}
	alertPipeline := pipeline.New(enricher, retriever, generator, checklistStore, dispatcher, cfg.Generation.Timeout)

	// --- 런북 인제스트 (GCS 설정 시) ---
	var ingestPipeline *ingest.Pipeline
	if cfg.Ingest.Bucket == "" {
		log.Println("[Main] Runbook ingestion disabled (RUNBOOK_BUCKET not set)")
	} else {
		gcs, err := client.NewGCSClient(ctx, cfg.Ingest.Bucket, cfg.Metadata.CredentialsFile)
		if err != nil {
			log.Fatalf("[Main] Failed to init GCS client: %v", err)
		}
		ingestPipeline = ingest.NewPipeline(gcs, chunker.New(cfg.Ingest.MaxChunkSize), embedder, vectorIndex, cfg.Ingest.Prefix, cfg.Ingest.EmbedTimeout)

		if cfg.Ingest.OnStartup {
			go ingestPipeline.RunStartup(context.Background())
		}
	}

	// --- 인증 (Postgres + JWT_SECRET 필요) ---
	var authSvc *service.AuthService
	if pg != nil && cfg.Auth.JWTSecret != "" {
		authSvc, err = service.NewAuthService(ctx, pg, cfg.Auth)
		if err != nil {
			log.Fatalf("[Main] Failed to init auth service: %v", err)
		}
		if err := authSvc.EnsureSchema(ctx); err != nil {
			log.Fatalf("[Main] Failed to ensure auth schema: %v", err)
		}
		if cfg.Auth.AdminUsername != "" {
			if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
				log.Fatalf("[Main] Failed to ensure admin user: %v", err)
			}
		}
	} else {
		log.Println("[Main] WARNING: auth disabled, API is unprotected (requires Postgres and JWT_SECRET)")
	}

	router := setupRouter(cfg, pg, authSvc, alertPipeline, ingestPipeline, embedder, vectorIndex)

	log.Printf("[Main] Listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("[Main] Server stopped: %v", err)
	}
}

func setupRouter(
	cfg config.Config,
	pg *db.Postgres,
	authSvc *service.AuthService,
	alertPipeline *pipeline.Pipeline,
	ingestPipeline *ingest.Pipeline,
	embedder *client.EmbeddingClient,
	vectorIndex index.VectorIndex,
) *gin.Engine {
	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.Server.AllowedOrigins, true))

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	api := router.Group("/api/v1")

	// 인증이 구성되면 보호 그룹에 미들웨어 적용, 아니면 전부 공개
	protected := api.Group("")
	if authSvc != nil {
		protected.Use(handler.AuthMiddleware(authSvc))

		authHandler := handler.NewAuthHandler(authSvc)
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/config", authHandler.Config)
		auth.GET("/oidc/login", authHandler.OIDCLogin)
		auth.POST("/oidc/callback", authHandler.OIDCCallback)
		protected.GET("/auth/me", authHandler.Me)
	}

	alertHandler := handler.NewAlertHandler(alertPipeline)
	protected.POST("/alerts", alertHandler.ProcessAlert)

	// Alertmanager 웹훅은 Bearer 토큰을 붙일 수 없으므로 공개 그룹에 등록
	alertmanagerHandler := handler.NewAlertmanagerHandler(alertPipeline)
	api.POST("/alerts/alertmanager", alertmanagerHandler.Webhook)

	searchHandler := handler.NewSearchHandler(embedder, vectorIndex)
	protected.POST("/search", searchHandler.Search)

	if ingestPipeline != nil {
		ingestHandler := handler.NewIngestHandler(ingestPipeline)
		protected.POST("/ingest", ingestHandler.IngestAll)
		protected.POST("/ingest/one", ingestHandler.IngestOne)
	}

	if pg != nil {
		checklistHandler := handler.NewChecklistHandler(service.NewChecklistService(pg))
		protected.GET("/checklists", checklistHandler.List)
		protected.GET("/checklists/:id", checklistHandler.Detail)

		webhookHandler := handler.NewWebhookSettingsHandler(service.NewWebhookService(pg))
		settings := protected.Group("/settings")
		settings.GET("/webhooks", webhookHandler.ListWebhookConfigs)
		settings.GET("/webhooks/:id", webhookHandler.GetWebhookConfig)
		settings.POST("/webhooks", webhookHandler.CreateWebhookConfig)
		settings.PUT("/webhooks/:id", webhookHandler.UpdateWebhookConfig)
		settings.DELETE("/webhooks/:id", webhookHandler.DeleteWebhookConfig)
	}

	routes := make([]string, 0, len(router.Routes()))
	for _, r := range router.Routes() {
		routes = append(routes, r.Method+" "+r.Path)
	}
	log.Printf("[Main] Registered routes: %s", strings.Join(routes, ", "))

	return router
}
