// Package api assembles the HTTP router from the REST handlers and the
// middleware chain.
package api

import (
	"net/http"

	"github.com/Dm-vYzion/StoryForge/api/rest"
	"github.com/Dm-vYzion/StoryForge/audit"
	"github.com/Dm-vYzion/StoryForge/cache"
	"github.com/Dm-vYzion/StoryForge/config"
	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/progress"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps carries everything the router needs.
type Deps struct {
	DB       *gorm.DB
	Cache    cache.Cache
	Audit    *audit.Service
	Progress *progress.Service
	Config   *config.Config
	Logger   *zap.Logger
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := rest.NewAuthHandler(d.DB, d.Cache, cfg.Security)
	worldH := rest.NewWorldHandler(d.DB)
	tplH := rest.NewTemplateHandler(d.DB)
	packH := rest.NewAssetPackHandler(d.DB)
	defH := rest.NewCampaignDefHandler(d.DB, d.Cache, d.Logger)
	pcH := rest.NewCharacterHandler(d.DB)
	instH := rest.NewInstanceHandler(d.DB, d.Progress, d.Audit, cfg.Game, d.Logger)
	purchaseH := rest.NewPurchaseHandler(d.DB, d.Audit)

	authRequired := mw.Auth(cfg.Security, d.Cache)
	authOptional := mw.OptionalAuth(cfg.Security, d.Cache)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", authH.Logout)
		authG.GET("/me", authRequired, authH.Me)

		worldsG := api.Group("/worlds")
		worldsG.GET("/public", worldH.ListPublic)
		worldsG.GET("/:id", authOptional, worldH.Get)
		worldsG.POST("", authRequired, worldH.Create)
		worldsG.POST("/:id/license", authRequired, worldH.License)

		npcG := api.Group("/npc-templates")
		npcG.POST("", authRequired, tplH.CreateNpc)
		npcG.GET("/mine", authRequired, tplH.MineNpc)
		npcG.GET("/:id", tplH.GetNpc)

		bestiaryG := api.Group("/bestiary")
		bestiaryG.POST("", authRequired, tplH.CreateBestiary)
		bestiaryG.GET("/mine", authRequired, tplH.MineBestiary)
		bestiaryG.GET("/:id", tplH.GetBestiary)

		itemG := api.Group("/item-templates")
		itemG.POST("", authRequired, tplH.CreateItem)
		itemG.GET("/mine", authRequired, tplH.MineItems)
		itemG.GET("/:id", tplH.GetItem)

		envG := api.Group("/environments")
		envG.POST("", authRequired, tplH.CreateEnvironment)
		envG.GET("/mine", authRequired, tplH.MineEnvironments)
		envG.GET("/:id", tplH.GetEnvironment)

		packsG := api.Group("/asset-packs")
		packsG.GET("/public", packH.ListPublic)
		packsG.GET("/:id", packH.Get)
		packsG.POST("", authRequired, packH.Create)
		packsG.POST("/:id/import-into-campaign-def/:defId", authRequired, packH.Import)

		defsG := api.Group("/campaign-defs")
		defsG.GET("/public", defH.ListPublic)
		defsG.GET("/popular", defH.Popular)
		defsG.GET("/mine", authRequired, defH.Mine)
		defsG.GET("/:id", authOptional, defH.Get)
		defsG.POST("", authRequired, defH.Create)
		defsG.PATCH("/:id", authRequired, defH.Patch)

		pcsG := api.Group("/player-characters")
		pcsG.Use(authRequired)
		pcsG.POST("", pcH.Create)
		pcsG.GET("/mine", pcH.Mine)
		pcsG.GET("/:id", pcH.Get)
		pcsG.PATCH("/:id", pcH.Patch)
		pcsG.DELETE("/:id", pcH.Delete)

		instG := api.Group("/campaign-instances")
		instG.Use(authRequired)
		instG.POST("", instH.Create)
		instG.GET("/mine", instH.Mine)
		instG.GET("/:id", instH.Get)
		instG.POST("/:id/fork", instH.Fork)
		instG.POST("/:id/events", instH.AppendEvent)
		instG.GET("/:id/events", instH.ListEvents)
		instG.POST("/:id/snapshots", instH.CreateSnapshot)
		instG.GET("/:id/snapshots/latest", instH.LatestSnapshot)
		instG.POST("/:id/items/transfer", instH.TransferItem)
		instG.POST("/:id/items/use", instH.UseItem)

		purchasesG := api.Group("/purchases")
		purchasesG.Use(authRequired)
		purchasesG.POST("/checkout", purchaseH.Checkout)
		purchasesG.GET("/my-assets", purchaseH.MyAssets)
		purchasesG.GET("/check/:assetType/:assetId", purchaseH.Check)
	}

	return r
}
