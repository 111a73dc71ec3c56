package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planora/internal/access"
	"planora/internal/cache"
	"planora/internal/config"
	"planora/internal/db"
	"planora/internal/gateway"
	"planora/internal/handler"
	"planora/internal/membership"
	"planora/internal/middleware"
	"planora/internal/repository"
	"planora/internal/session"
	syncpkg "planora/internal/sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config

	viewCache *cache.ProjectViewCache
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup the process-wide connection pool; every component receives
	// this handle explicitly.
	gormDB, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}

	// Optional Redis-backed project view cache.
	var viewCache *cache.ProjectViewCache
	if cfg.RedisAddr != "" {
		viewCache, err = cache.New(cfg.RedisAddr)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, running without view cache: %v", err)
			viewCache = nil
		} else {
			log.Println("✅ Connected to Redis")
		}
	}

	// SQL gateway bridge; writes are confined to the configured scope.
	gw := gateway.NewClient(gateway.Config{
		BaseURL:       cfg.GatewayURL,
		APIKey:        cfg.GatewayAPIKey,
		WriteServer:   cfg.GatewayWriteServer,
		WriteDatabase: cfg.GatewayWriteDatabase,
	})

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionMaxAgeDays)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)
	memberRepo := repository.NewMemberRepository(gormDB)
	statusRepo := repository.NewStatusRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	// Core services
	evaluator := access.NewEvaluator(projectRepo, memberRepo)
	var invalidator membership.Invalidator
	var viewCacheIface handler.ViewCache
	if viewCache != nil {
		invalidator = viewCache
		viewCacheIface = viewCache
	}
	registry := membership.NewRegistry(memberRepo, invalidator)
	orchestrator := syncpkg.NewOrchestrator(
		syncpkg.NewGormStore(gormDB), gw,
		cfg.GatewayWriteServer, cfg.GatewayWriteDatabase,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(userRepo, sessions, cfg.CookieSecure)
	userHandler := handler.NewUserHandler(userRepo)
	projectHandler := handler.NewProjectHandler(projectRepo, taskRepo, statusRepo, evaluator, viewCacheIface)
	memberHandler := handler.NewMemberHandler(registry, userRepo, evaluator)
	statusHandler := handler.NewStatusHandler(statusRepo, taskRepo, evaluator)
	taskHandler := handler.NewTaskHandler(taskRepo, statusRepo, evaluator)
	canvasHandler := handler.NewCanvasHandler(gw, projectRepo, evaluator)
	syncHandler := handler.NewSyncHandler(orchestrator)
	healthHandler := handler.NewHealthHandler(gormDB, gw)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	// Protected routes - require a valid session cookie
	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(sessions))
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)

		api.GET("/users/search", userHandler.Search)

		// Project routes
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/trash", projectHandler.ListTrash)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.PATCH("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.POST("/projects/:id/trash", projectHandler.MoveToTrash)
		api.POST("/projects/:id/restore", projectHandler.Restore)

		// Membership routes
		api.GET("/projects/:id/members", memberHandler.List)
		api.POST("/projects/:id/members", memberHandler.Add)
		api.PATCH("/projects/:id/members/:user_id", memberHandler.UpdateRole)
		api.DELETE("/projects/:id/members/:user_id", memberHandler.Remove)

		// Board routes
		api.POST("/projects/:id/statuses", statusHandler.Create)
		api.PATCH("/statuses/:id", statusHandler.Update)
		api.DELETE("/statuses/:id", statusHandler.Delete)

		// Task routes
		api.GET("/projects/:id/tasks", taskHandler.ListByProject)
		api.POST("/projects/:id/tasks", taskHandler.Create)
		api.GET("/tasks/:id", taskHandler.GetByID)
		api.PATCH("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", taskHandler.Delete)
		api.POST("/tasks/:id/complete", taskHandler.Complete)

		// Canvas routes (stored behind the SQL gateway)
		api.GET("/projects/:id/canvas", canvasHandler.Get)
		api.POST("/projects/:id/canvas", canvasHandler.Save)

		// Sync routes
		api.GET("/sync", syncHandler.Status)
		api.POST("/sync", syncHandler.Trigger)
	}

	return &Server{
		Engine:    r,
		DB:        gormDB,
		Config:    cfg,
		viewCache: viewCache,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if s.viewCache != nil {
		if err := s.viewCache.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis client: %v", err)
		}
	}
	if err := db.Close(s.DB); err != nil {
		log.Printf("⚠️  Failed to close database pool: %v", err)
	}

	log.Println("✅ Server exited properly")
}
