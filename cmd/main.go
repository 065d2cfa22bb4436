package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/jrprasath/paperhouse-backend/internal/db"
	"github.com/jrprasath/paperhouse-backend/internal/handlers"
	"github.com/jrprasath/paperhouse-backend/internal/impact"
	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/mailer"
	"github.com/jrprasath/paperhouse-backend/internal/middleware"
	"github.com/jrprasath/paperhouse-backend/internal/observability"
	"github.com/jrprasath/paperhouse-backend/internal/repos"
	"github.com/jrprasath/paperhouse-backend/internal/server"
	"github.com/jrprasath/paperhouse-backend/internal/services"
	"github.com/jrprasath/paperhouse-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	otelShutdown := observability.InitTracing(ctx, log, observability.Config{
		ServiceName: "paperhouse-backend",
		Environment: logMode,
	})

	// Env
	log.Info("Loading environment variables...")
	dataDir := utils.GetEnv("DATA_DIR", "./data", log)
	port := utils.GetEnv("PORT", "5000", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)

	// Database (contact messages)
	dbService, err := db.NewService(log, dataDir)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	// Repos
	contactRepo := repos.NewContactRepo(theDB, log)

	// Impact core
	log.Info("Setting up impact store...", "data_dir", dataDir)
	impactStore, err := impact.NewFileStore(dataDir)
	if err != nil {
		log.Error("Could not init impact store", "error", err)
		os.Exit(1)
	}
	impactLedger, err := impact.NewFileLedger(filepath.Join(dataDir, "history"))
	if err != nil {
		log.Error("Could not init impact history", "error", err)
		os.Exit(1)
	}
	impactBackups, err := impact.NewFileBackups(filepath.Join(dataDir, "backups"))
	if err != nil {
		log.Error("Could not init impact backups", "error", err)
		os.Exit(1)
	}
	engine := impact.NewEngine(log, impactStore, impactLedger, impactBackups, impact.LoadDefaults(log))

	// Mail (optional: submissions are stored either way)
	var mailClient mailer.Client
	if client, merr := mailer.New(log, mailer.ConfigFromEnv(log)); merr != nil {
		log.Warn("Mail client not configured, contact notifications disabled", "error", merr)
	} else {
		mailClient = client
	}

	// Services
	log.Info("Setting up services...")
	authService, err := services.NewAuthService(log, services.AuthConfig{
		AdminEmail:        utils.GetEnv("ADMIN_EMAIL", "", nil),
		AdminPasswordHash: adminPasswordHash(log),
		JWTSecretKey:      jwtSecretKey,
		AccessTTL:         time.Duration(accessTokenTTL) * time.Second,
	})
	if err != nil {
		log.Error("Could not init AuthService", "error", err)
		os.Exit(1)
	}
	contactService := services.NewContactService(theDB, log, contactRepo, mailClient)

	// Handlers and middleware
	authHandler := handlers.NewAuthHandler(authService)
	impactHandler := handlers.NewImpactHandler(log, engine, impactLedger, impactBackups)
	contactHandler := handlers.NewContactHandler(log, contactService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	rateLimiter, err := middleware.NewRateLimiter(log)
	if err != nil {
		log.Error("Could not init rate limiter", "error", err)
		os.Exit(1)
	}
	defer rateLimiter.Close()

	// Router
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins: server.ParseOrigins(utils.GetEnv("ALLOWED_ORIGINS", "", log)),
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		ImpactHandler:  impactHandler,
		ContactHandler: contactHandler,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if otelShutdown != nil {
			_ = otelShutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// adminPasswordHash prefers a pre-computed bcrypt hash; ADMIN_PASSWORD is a
// convenience for local runs.
func adminPasswordHash(log *logger.Logger) string {
	if hash := utils.GetEnv("ADMIN_PASSWORD_HASH", "", nil); hash != "" {
		return hash
	}
	plain := utils.GetEnv("ADMIN_PASSWORD", "", nil)
	if plain == "" {
		return ""
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		log.Warn("Could not hash ADMIN_PASSWORD", "error", err)
		return ""
	}
	return string(hashed)
}
