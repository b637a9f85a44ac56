// Package server assembles the HTTP API and the expiry sweeper from config.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/domain/comment"
	"photoshare/internal/domain/upload"
	"photoshare/internal/middleware"
	"photoshare/internal/pkg/blob"
	"photoshare/internal/pkg/response"
	"photoshare/internal/pkg/secretcode"
)

type Server struct {
	cfg        *config.Config
	log        *zap.Logger
	db         *gorm.DB
	engine     *gin.Engine
	httpServer *http.Server
	sweeper    *upload.Sweeper
}

// New opens the store and the uploads directory named in cfg, migrates the
// schema and wires every component.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	db, err := database.Connect(cfg.Database.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	blobs, err := blob.NewOSStore(cfg.Storage.UploadsDir)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	return Build(cfg, log, db, blobs, upload.Options{MaxFileSize: cfg.Upload.MaxSize}), nil
}

// Build wires the server around an already migrated db and a blob store.
func Build(cfg *config.Config, log *zap.Logger, db *gorm.DB, blobs *blob.Store, opts upload.Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	authorizer := secretcode.NewAuthorizer(cfg.Admin.OverrideCode, log)
	if authorizer.OverrideEnabled() {
		log.Warn("operator override code is enabled; it bypasses per-upload secret codes")
	}

	uploadRepo := upload.NewRepository(db)
	uploadService := upload.NewService(uploadRepo, blobs, authorizer, log, opts)
	uploadHandler := upload.NewHandler(uploadService, log)

	commentService := comment.NewService(comment.NewRepository(db), uploadService)
	commentHandler := comment.NewHandler(commentService, log)

	sweeper := upload.NewSweeper(uploadRepo, blobs, log, cfg.Sweeper.Interval, opts.Now)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := NewRouter(log, cfg.CORS.AllowedOrigins, uploadHandler, commentHandler)

	return &Server{
		cfg:    cfg,
		log:    log,
		db:     db,
		engine: engine,
		httpServer: &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: engine,
		},
		sweeper: sweeper,
	}
}

// Migrate creates the uploads table and then the comments table that
// references it.
func Migrate(db *gorm.DB) error {
	if err := upload.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate uploads: %w", err)
	}
	if err := comment.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate comments: %w", err)
	}
	return nil
}

// NewRouter mounts the API under /api.
func NewRouter(log *zap.Logger, origins []string, uploads *upload.Handler, comments *comment.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorLogger(log), middleware.RequestLogger(log), middleware.CORS(origins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	upload.RegisterRoutes(api, uploads)
	comment.RegisterRoutes(api, comments)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "route not found")
	})
	return r
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Sweeper() *upload.Sweeper { return s.sweeper }

// Run serves HTTP and, when enabled, runs the expiry sweeper until ctx is
// cancelled, then shuts the HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.cfg.Sweeper.Enabled {
		g.Go(func() error { return s.sweeper.Run(gctx) })
	} else {
		s.log.Info("expiry sweeper is disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		s.log.Info("server exited gracefully")
		return nil
	})

	return g.Wait()
}

// Close releases the database.
func (s *Server) Close() error {
	return database.Close(s.db)
}

