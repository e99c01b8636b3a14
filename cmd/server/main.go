package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tonequest/internal/config"
	"tonequest/internal/database"
	"tonequest/internal/handlers"
	"tonequest/internal/importer"
	"tonequest/internal/judge"
	"tonequest/internal/models"
	"tonequest/internal/repository"
	"tonequest/internal/scheduler"
	"tonequest/internal/security"
	"tonequest/internal/service"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("database initialization failed", zap.Error(err))
	}
	defer db.Close()

	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	gameRepo := repository.NewGameRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	assocRepo := repository.NewAssociationRepository(db)

	// Services
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenExpiry)

	emailService, err := service.NewEmailService(startupCtx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Fatal("email service initialization failed", zap.Error(err))
	}

	authService := service.NewAuthService(userRepo, assocRepo, tokens, emailService, logger)
	deckService := service.NewDeckService(deckRepo, logger)

	pronunciationJudge, closeJudge, err := buildJudge(startupCtx, cfg, logger)
	if err != nil {
		logger.Fatal("judge initialization failed", zap.Error(err))
	}
	if closeJudge != nil {
		defer closeJudge()
	}

	gameService := service.NewGameService(gameRepo, deckRepo, streakRepo, pronunciationJudge, logger)
	statsService := service.NewStatisticsService(gameRepo, deckRepo, streakRepo, userRepo, assocRepo)

	if cfg.SeedDemoData {
		if err := service.SeedDemoData(deckRepo, logger); err != nil {
			logger.Warn("demo data seeding failed", zap.Error(err))
		}
	}

	// Background jobs
	jobs := scheduler.New(userRepo, logger)
	jobs.Start()
	defer jobs.Stop()

	// Handlers
	middleware := handlers.NewMiddleware(authService, tokens, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	oauthHandler := handlers.NewOAuthHandler(authService, cfg, logger)
	deckHandler := handlers.NewDeckHandler(deckService, logger)
	gameHandler := handlers.NewGameHandler(gameService, cfg.UploadMaxSize, logger)
	statsHandler := handlers.NewStatsHandler(statsService, logger)
	adminHandler := handlers.NewAdminHandler(deckService, authService, importer.New(), cfg.UploadMaxSize, logger)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			logger.Error("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /api/auth/google/start", oauthHandler.Start)
	mux.HandleFunc("GET /api/auth/google/callback", oauthHandler.Callback)

	// Authenticated routes
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/decks", middleware.RequireAuth(deckHandler.ListDecks))
	mux.HandleFunc("GET /api/decks/{id}", middleware.RequireAuth(deckHandler.GetDeck))
	mux.HandleFunc("POST /api/games", middleware.RequireAuth(gameHandler.StartGame))
	mux.HandleFunc("GET /api/games/{id}", middleware.RequireAuth(gameHandler.GetGame))
	mux.HandleFunc("POST /api/games/{id}/attempts", middleware.RequireAuth(gameHandler.SubmitAttempt))
	mux.HandleFunc("POST /api/games/{id}/end", middleware.RequireAuth(gameHandler.EndGame))
	mux.HandleFunc("GET /api/statistics", middleware.RequireAuth(statsHandler.MyStatistics))
	mux.HandleFunc("GET /api/words/error-ratios", middleware.RequireAuth(statsHandler.WordErrorRatios))

	// Teacher and admin routes
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	mux.HandleFunc("GET /api/students", middleware.RequireAuth(staff(statsHandler.ListStudents)))
	mux.HandleFunc("GET /api/users/{id}/statistics", middleware.RequireAuth(staff(statsHandler.UserStatistics)))
	mux.HandleFunc("POST /api/admin/decks/{id}/import", middleware.RequireAuth(staff(adminHandler.ImportWords)))

	// Admin routes
	admin := middleware.RequireRole(models.RoleAdmin)
	mux.HandleFunc("POST /api/admin/decks", middleware.RequireAuth(admin(adminHandler.CreateDeck)))
	mux.HandleFunc("DELETE /api/admin/decks/{id}", middleware.RequireAuth(admin(adminHandler.DeleteDeck)))
	mux.HandleFunc("POST /api/admin/decks/{id}/words", middleware.RequireAuth(admin(adminHandler.AddWord)))
	mux.HandleFunc("DELETE /api/admin/words/{id}", middleware.RequireAuth(admin(adminHandler.DeleteWord)))
	mux.HandleFunc("POST /api/admin/users", middleware.RequireAuth(admin(adminHandler.CreateUser)))
	mux.HandleFunc("POST /api/admin/users/{id}/reset-password", middleware.RequireAuth(admin(adminHandler.ResetUserPassword)))
	mux.HandleFunc("POST /api/admin/associations", middleware.RequireAuth(admin(adminHandler.AssociateStudent)))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.LogRequests(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// buildJudge selects the pronunciation judge from configuration.
// "speech" needs Google credentials; the default text matcher judges
// client-side recognition results and needs nothing.
func buildJudge(ctx context.Context, cfg *config.Config, logger *zap.Logger) (judge.Judge, func() error, error) {
	if cfg.JudgeMode == "speech" {
		sj, err := judge.NewSpeechJudge(ctx, cfg.SpeechLanguageCode)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using cloud speech judge", zap.String("language", cfg.SpeechLanguageCode))
		return sj, sj.Close, nil
	}

	logger.Info("using text matcher judge")
	return judge.NewMatcher(), nil, nil
}

func newLogger(env string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
