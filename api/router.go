package api

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/api/handler"
	"github.com/lightning66/GiftMe/api/middleware"
	"github.com/lightning66/GiftMe/auth"
	"github.com/lightning66/GiftMe/config"
	"github.com/lightning66/GiftMe/store"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Extractor handler.ItemExtractor
	Images    handler.ImageStreamer
	Verifier  auth.Verifier
	Store     store.Store
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:   Recovery → Logger → CORS
//	Fetch:    OptionalIdentity → RateLimit (per user, else per IP)
//	Items:    RequireIdentity
//	Users:    AdminAuth (no-op without admin keys)
//
// Health and the image proxy are open so the front end and probes always work.
// Unmatched paths fall through to the static directory.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.GET("/health", handler.Health(startTime))
	r.POST("/exchange", handler.Exchange(deps.Verifier, deps.Store))
	r.GET("/proxy-image", handler.ProxyImage(deps.Images, cfg.Fetch.Timeout))

	limited := r.Group("")
	limited.Use(middleware.OptionalIdentity(deps.Verifier), middleware.RateLimit(cfg.RateLimit))
	limited.POST("/fetch-item", handler.FetchItem(deps.Extractor))
	limited.POST("/fetch-items", handler.FetchItems(deps.Extractor, cfg.Batch.Concurrency))

	items := r.Group("")
	items.Use(middleware.RequireIdentity(deps.Verifier))
	items.POST("/add-item", handler.AddItem(deps.Store))
	items.GET("/items", handler.ListItems(deps.Store))
	items.DELETE("/items/:index", handler.DeleteItem(deps.Store))

	users := r.Group("/users")
	users.Use(middleware.AdminAuth(cfg.Auth.AdminKeys))
	users.GET("/:email", handler.GetUser(deps.Store))
	users.DELETE("/:email", handler.DeleteUser(deps.Store))

	if dir := cfg.Server.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.NoRoute(gin.WrapH(http.FileServer(http.Dir(dir))))
		} else {
			slog.Warn("static directory not found, serving API only", "dir", dir)
		}
	}

	return r
}
