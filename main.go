package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kotu-game/server/api/rest"
	"github.com/kotu-game/server/api/sse"
	"github.com/kotu-game/server/audit"
	"github.com/kotu-game/server/cache"
	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/config"
	dbadapter "github.com/kotu-game/server/db"
	"github.com/kotu-game/server/game/combat"
	"github.com/kotu-game/server/game/command"
	"github.com/kotu-game/server/game/economy"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	gskill "github.com/kotu-game/server/game/skill"
	"github.com/kotu-game/server/game/travel"
	mw "github.com/kotu-game/server/middleware"
	"github.com/kotu-game/server/model"
	"github.com/kotu-game/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.AdminKeyHash == "" {
		logger.Warn("security.admin_key_hash is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Catalog ----
	if err := catalog.Seed(db, cfg.Server.DataPath); err != nil {
		log.Fatalf("catalog seed: %v", err)
	}
	cat, err := catalog.Load(db)
	if err != nil {
		log.Fatalf("catalog load: %v", err)
	}
	logger.Info("Catalog loaded", zap.Int("max_location", cat.MaxLocationID()))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Game Services ----
	playerSvc := player.NewService(db, cfg.Game, logger)
	invSvc := inventory.NewService(db, cat, logger)
	combatSvc := combat.NewService(db, cat, playerSvc, cfg.Game, logger)
	skillSvc := gskill.NewService(db, cat, playerSvc, combatSvc, logger)
	ecoSvc := economy.NewService(db, cat, playerSvc, cfg.Game, logger)
	travelSvc := travel.NewService(db, cat, playerSvc, logger)
	dispatcher := command.NewDispatcher(playerSvc, skillSvc, combatSvc, ecoSvc, travelSvc,
		auditSvc, c, pubsub, cfg.Game, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- HTTP Handlers ----
	panelH := apirest.NewPanelHandler(db, playerSvc, invSvc, logger)
	sessionH := apirest.NewSessionHandler(playerSvc, c, cfg.Security, logger)
	rankH := apirest.NewRankingHandler(db, c, logger)
	adminH := apirest.NewAdminHandler(db, cat, sched, logger)
	cmdH := apirest.NewCommandHandler(dispatcher, logger)
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)

	// Ranking stays fresh without a write on every XP change.
	sched.AddTicker("ranking_rebuild", time.Duration(cfg.Game.RankingRebuildS)*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := rankH.Rebuild(ctx); err != nil {
			logger.Error("ranking rebuild failed", zap.Error(err))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/command", cmdH.Execute)
		api.GET("/events", cmdH.RecentEvents)

		api.POST("/session", sessionH.Create)
		api.DELETE("/session", mw.Auth(cfg.Security, c), sessionH.Delete)

		api.GET("/player/:handle", panelH.GetPlayer)
		api.GET("/player/:handle/stats", panelH.GetStats)
		api.GET("/player/:handle/inventory", panelH.GetInventory)

		meG := api.Group("/me")
		meG.Use(mw.Auth(cfg.Security, c))
		meG.GET("", panelH.Me)
		meG.GET("/inventory", panelH.MyInventory)

		rankG := api.Group("/ranking")
		rankG.GET("/xp", rankH.TopXP)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Security.AdminIPs))
		adminG.Use(apirest.AdminAuth(cfg.Security.AdminKeyHash))
		adminG.POST("/reload", adminH.ReloadCatalog)
		adminG.POST("/ranking/refresh", rankH.Refresh)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	// ---- SSE ----
	r.GET("/sse", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
