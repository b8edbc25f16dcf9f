package entrypoint

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	auditrepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/demo"
	http_controllers "github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/session"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds everything the server needs for its lifetime.
type App struct {
	Router    *gin.Engine
	DB        *database.Database
	Catalog   *catalog.Service
	Audit     *audit.Service
	Scheduler *scheduler.AuditCleanupScheduler
}

// Close releases the database connection.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// Build opens the database and wires the services and the router.
func Build(cfg *config.Config, version string) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	catalogService := catalog.NewService(books.NewRepository(db.DB), auditService)

	// Sessions share the SQLite file; other drivers keep them in memory
	var sessionDB *sql.DB
	if db.Driver == config.DriverSQLite {
		sessionDB, err = db.SQLDB()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
	}
	sessions, err := session.NewManager(sessionDB, cfg.Session)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	var csrfSecret []byte
	if cfg.Session.Secret != "" {
		csrfSecret = session.ParseSecret(cfg.Session.Secret)
	} else {
		csrfSecret, err = session.GenerateSecret()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Printf("Generated session secret (set SESSION_SECRET to keep forms valid across restarts)")
	}

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled - write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true, sessions)
	}

	router, err := http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:        catalogService,
		Sessions:       sessions,
		Database:       db,
		AuditReader:    auditService,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Session.SecureCookies,
		DemoMiddleware: demoMiddleware,
		TemplatesPath:  cfg.UI.TemplatesPath,
		Version:        version,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		Router:    router,
		DB:        db,
		Catalog:   catalogService,
		Audit:     auditService,
		Scheduler: scheduler.NewAuditCleanupScheduler(auditService, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays),
	}, nil
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarian v%s", version)

	app, err := Build(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	if err := app.Scheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: audit cleanup disabled: %v", err)
	}

	// In-flight requests finish before the connection closes
	onShutdown := func(ctx context.Context) {
		cancelScheduler()
		app.Close()
	}

	Serve(app.Router, cfg, onShutdown)
}
