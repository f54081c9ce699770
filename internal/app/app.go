package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-api/internal/authz"
	"chat-api/internal/config"
	"chat-api/internal/database"
	"chat-api/internal/event"
	"chat-api/internal/handler"
	"chat-api/internal/mail"
	"chat-api/internal/middleware"
	"chat-api/internal/repository"
	"chat-api/internal/router"
	"chat-api/internal/service"
	"chat-api/internal/websocket"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	if err := db.SeedAdmin(context.Background(), cfg.SeedAdminPassword); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	endpointRepo := repository.NewEndpointRepository(pool)
	slog.Info("database ready")

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		mailer = mail.NewLogMailer(slog.Default())
	}

	bus := event.NewBus()
	hub := websocket.NewHub(bus, slog.Default())
	go hub.Run()

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessTTL, cfg.JWTClockSkew)
	userService := service.NewUserService(userRepo, roleRepo)
	roleService := service.NewRoleService(roleRepo)
	endpointService := service.NewEndpointService(endpointRepo, roleRepo, bus)
	accountService := service.NewAccountService(
		userRepo, roleRepo, userService, tokenService, mailer, bus,
		cfg.LoginMaxAttempts, cfg.LoginLockout)
	chatService := service.NewChatService(bus)

	evaluator := authz.NewEvaluator(endpointRepo, tokenService)
	authorize := middleware.NewAuthorizeMiddleware(evaluator)

	appRouter := router.New(cfg, authorize, router.Handlers{
		Account:  handler.NewAccountHandler(accountService),
		User:     handler.NewUserHandler(userService),
		Role:     handler.NewRoleHandler(roleService),
		Endpoint: handler.NewEndpointHandler(endpointService),
		Hub:      handler.NewHubHandler(chatService, hub),
		Health:   handler.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
