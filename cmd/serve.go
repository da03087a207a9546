package cmd

import (
	"fmt"
	"time"

	"github.com/Dm-vYzion/StoryForge/api"
	"github.com/Dm-vYzion/StoryForge/api/rest"
	"github.com/Dm-vYzion/StoryForge/audit"
	"github.com/Dm-vYzion/StoryForge/cache"
	"github.com/Dm-vYzion/StoryForge/config"
	dbadapter "github.com/Dm-vYzion/StoryForge/db"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/Dm-vYzion/StoryForge/progress"
	"github.com/Dm-vYzion/StoryForge/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(_ *cobra.Command) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)

	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	logger.Info("Cache initialized")

	progressSvc := progress.NewService(db, logger)

	sched := scheduler.New(logger)
	defer sched.Stop()

	sched.AddTicker("audit_flush", 2*time.Second, auditSvc.Flush)

	if cfg.Game.RankingRefresh > 0 {
		defH := rest.NewCampaignDefHandler(db, c, logger)
		sched.AddTicker("popular_ranking_refresh", cfg.Game.RankingRefresh, func() {
			defH.RefreshPopularRanking(cfg.Game.RankingTopEntries)
		})
	}

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(api.Deps{
		DB:       db,
		Cache:    c,
		Audit:    auditSvc,
		Progress: progressSvc,
		Config:   cfg,
		Logger:   logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("listening", zap.String("addr", addr))
	return r.Run(addr)
}
