package http

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"photolabel/internal/bootstrap"
	"photolabel/internal/transport/http/handler"
	"photolabel/internal/transport/http/middleware"
	"photolabel/web"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	if len(cfg.App.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.App.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Requested-With"}
		corsConfig.AllowCredentials = true
		corsConfig.MaxAge = 12 * time.Hour
		router.Use(cors.New(corsConfig))
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse page templates failed: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	maxUpload := int64(cfg.App.MaxUploadBytes)
	router.MaxMultipartMemory = maxUpload

	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.StartedAt, app.Gateway, app.Sessions, app.CatalogDB())
	router.GET("/healthz", healthHandler.Check)

	sessions := middleware.Session(middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.TokenSecret,
		TTL:        time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		Secure:     cfg.Session.SecureCookie,
	}, app.Logger)

	pageHandler := handler.NewPageHandler(app.Presentation, cfg.App.Name, maxUpload, app.Logger)
	page := router.Group("/")
	page.Use(sessions)
	page.GET("/", pageHandler.Index)
	page.GET("/image", pageHandler.Image)
	page.POST("/submit", pageHandler.Submit)
	page.POST("/select", pageHandler.Select)

	apiHandler := handler.NewAPIHandler(app.Presentation, maxUpload, app.Logger)
	v1 := router.Group("/api/v1")
	v1.GET("/labels", apiHandler.Labels)
	v1.GET("/catalog/:label", apiHandler.Catalog)

	sessionAPI := v1.Group("")
	sessionAPI.Use(sessions)
	sessionAPI.GET("/view", apiHandler.View)
	sessionAPI.POST("/predict", apiHandler.Predict)
	sessionAPI.POST("/selection", apiHandler.Selection)

	router.NoRoute(handler.NotFound)

	return router, nil
}
