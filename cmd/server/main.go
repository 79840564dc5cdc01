package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/config"
	"github.com/kyiku/keydrop-back/internal/gesture"
	"github.com/kyiku/keydrop-back/internal/handler"
	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/middleware"
	"github.com/kyiku/keydrop-back/internal/storage"
	"github.com/kyiku/keydrop-back/internal/stream"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(gommonlog.INFO)

	// Middleware
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			e.Logger.Infof("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))
	e.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{
		Limit:  120,
		Window: time.Minute,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/ws" || strings.HasSuffix(p, "/health")
		},
	}))

	// Initialize dependencies
	b := board.New(board.Options{
		Width:        cfg.WorldWidth,
		Height:       cfg.WorldHeight,
		GravityScale: cfg.GravityScale,
		MaxAttempts:  cfg.SpawnAttempts,
		Step:         cfg.SpawnStep,
	}, keyshape.NewGenerator(), e.Logger)
	hub := stream.NewHub()

	tracker := gesture.NewTracker(b, cfg.GestureTTL)
	tracker.SetExpireHandler(func(id string) {
		e.Logger.Warnf("gesture %s expired", id)
	})

	// Snapshot storage is optional
	var snapshots handler.SnapshotStore
	if cfg.S3Enabled() {
		store, err := newSnapshotStore(cfg)
		if err != nil {
			log.Printf("Warning: Failed to load AWS config: %v (snapshots disabled)", err)
		} else {
			snapshots = store
		}
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(b, hub)
	keysHandler := handler.NewKeysHandler(b, hub)
	gestureHandler := handler.NewGestureHandler(tracker, hub)
	worldHandler := handler.NewWorldHandler(b, hub)
	renderHandler := handler.NewRenderHandler(b, snapshots, e.Logger)
	streamHandler := handler.NewStreamHandler(hub, b, func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || middleware.IsAllowedOrigin(origin, []string{cfg.AllowedOrigin})
	}, e.Logger)

	// Health check (root level for ALB)
	e.GET("/health", healthHandler.Check)

	// WebSocket endpoint
	e.GET("/ws", streamHandler.Connect)

	// API routes
	api := e.Group("/api")
	api.GET("/health", healthHandler.Check)

	api.GET("/keys", keysHandler.List)
	api.POST("/keys", keysHandler.Spawn)
	api.DELETE("/keys", keysHandler.Clear)
	api.POST("/keys/preview", keysHandler.Preview)

	api.POST("/gestures", gestureHandler.Begin)
	api.POST("/gestures/:id/move", gestureHandler.Move)
	api.POST("/gestures/:id/rotate", gestureHandler.Rotate)
	api.POST("/gestures/:id/end", gestureHandler.End)
	api.DELETE("/gestures/:id", gestureHandler.Cancel)

	api.POST("/world/tilt", worldHandler.Tilt)
	api.POST("/world/gyro", worldHandler.Gyro)
	api.POST("/world/resize", worldHandler.Resize)

	api.GET("/render.svg", renderHandler.SVG)
	api.GET("/render.png", renderHandler.PNG)
	api.POST("/snapshots", renderHandler.Snapshot)
	api.GET("/snapshots", renderHandler.ListSnapshots)
	api.GET("/snapshots/:id", renderHandler.GetSnapshot)

	// Log registered endpoints
	log.Println("Registered endpoints:")
	for _, r := range e.Routes() {
		log.Printf("  %-6s %s", r.Method, r.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Physics loop
	runner := board.NewRunner(b, hub, cfg.TickRate, cfg.FrameEvery)
	go runner.Run(ctx)

	// Start server
	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}

// newSnapshotStore wires S3 backed snapshot storage.
func newSnapshotStore(cfg *config.Config) (*storage.SnapshotStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}

	baseURL := cfg.CloudfrontDomain
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.AWSRegion)
	} else if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}

	adapter := storage.NewS3Adapter(s3.NewFromConfig(awsCfg), cfg.S3Bucket)
	return storage.NewSnapshotStore(adapter, baseURL), nil
}
