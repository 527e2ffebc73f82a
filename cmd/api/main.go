package main

import (
	"context"
	"log"
	"net"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/domain/photo"
	"photoshare/internal/domain/system"
	"photoshare/internal/middleware"
	"photoshare/internal/pkg/blobstore"
	"photoshare/internal/pkg/sharelink"
	"photoshare/internal/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DSN(), database.WithLogLevel(cfg.LogLevel))
	if err != nil {
		log.Fatal(err)
	}
	if err := photo.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	blobs, err := blobstore.NewFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("blob store init failed: %v", err)
	}
	defer blobs.Close()

	baseURL, err := utils.NewBaseURLResolver(cfg.PublicBaseURL, cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("TRUSTED_PROXIES: %v", err)
	}
	if cfg.IsProd() && cfg.PublicBaseURL == "" {
		log.Println("warning: PUBLIC_BASE_URL is not set; download links follow the request Host header")
	}

	hub := photo.NewHub()
	defer hub.Close()

	photoService := photo.NewService(
		photo.NewRepository(db),
		blobs,
		sharelink.New(0),
		photo.Options{
			Limits: photo.Limits{
				MaxFileSize: cfg.Upload.MaxFileSize,
				MaxFiles:    cfg.Upload.MaxFiles,
				MaxFields:   cfg.Upload.MaxFields,
			},
			CleanupOnFailure: cfg.Upload.CleanupOnFailure,
			Notifier:         hub,
		},
	)
	photoHandler := photo.NewHandler(photoService, baseURL)
	wsHandler := photo.NewWSHandler(hub)
	systemHandler := system.NewHandler(sqlDB, baseURL)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.MaxMultipartMemory = 32 << 20

	photo.RegisterRoutes(r, photoHandler, wsHandler)
	system.RegisterRoutes(r, systemHandler)

	if cfg.PprofEnabled {
		pprof.Register(r)
		log.Println("pprof enabled at /debug/pprof")
	}

	addr := net.JoinHostPort("0.0.0.0", cfg.Port)
	log.Printf("photoshare listening addr=%s storage=%s public_base_url=%q", addr, blobs.Backend(), cfg.PublicBaseURL)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
