// cmd/server/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/urfave/cli"

	"restaurant-admin/internal/api"
	"restaurant-admin/internal/auth"
	"restaurant-admin/internal/config"
	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/db"
	"restaurant-admin/internal/handlers"
	"restaurant-admin/internal/kitchen"
	"restaurant-admin/internal/middleware"
)

const (
	auditRetention      = 30 * 24 * time.Hour
	auditCleanupEvery   = 24 * time.Hour
	reaperEvery         = time.Minute
	limiterCleanupEvery = 10 * time.Minute
	limiterMaxIdle      = 15 * time.Minute
)

func main() {
	app := cli.NewApp()
	app.Name = "restaurant-admin"
	app.Usage = "admin console for the restaurant ordering platform"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  "configs/config.yaml",
			Usage:  "path to the YAML config",
			EnvVar: "CONFIG_PATH",
		},
	}
	app.Action = func(c *cli.Context) error {
		return serve(c.GlobalString("config"))
	}
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "run the console (default)",
			Action: func(c *cli.Context) error {
				return serve(c.GlobalString("config"))
			},
		},
		{
			Name:  "migrate",
			Usage: "apply database migrations and exit",
			Action: func(c *cli.Context) error {
				return migrateDB(c.GlobalString("config"))
			},
		},
		{
			Name:      "hash-password",
			Usage:     "print a bcrypt hash for admin.password_hash",
			ArgsUsage: "[password]",
			Action: func(c *cli.Context) error {
				return hashPassword(c.Args().First())
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.InitLogger(cfg.AppEnv)
	return cfg, nil
}

func migrateDB(path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("no database configured")
	}
	if err := db.InitDB(cfg, true); err != nil {
		return err
	}
	db.Close()
	return nil
}

func hashPassword(password string) error {
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("empty password")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func newSessionManager(cfg *config.Config) *scs.SessionManager {
	sessionManager := scs.New()
	if db.DB != nil {
		sessionManager.Store = mysqlstore.New(db.DB)
	} else {
		sessionManager.Store = memstore.New()
	}
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.Name = cfg.Session.CookieName
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.IsProduction()
	sessionManager.Cookie.Path = "/"
	return sessionManager
}

func serve(path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	slog.Info("Запуск админ-консоли ресторана...", "app_env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder dashboard.Recorder
	if cfg.Database.Enabled() {
		if err := db.InitDB(cfg, true); err != nil {
			return fmt.Errorf("failed to initialise database: %w", err)
		}
		defer db.Close()

		audit := db.NewAuditLog(db.DB)
		recorder = audit
		db.StartAuditCleanupScheduler(ctx, audit, auditCleanupEvery, auditRetention)
	} else {
		slog.Info("База данных не настроена: сессии в памяти, журнала операций нет.")
	}

	sessionManager := newSessionManager(cfg)
	slog.Info("Менеджер сессий инициализирован", "lifetime", sessionManager.Lifetime, "secure_cookie", sessionManager.Cookie.Secure, "mysql", db.DB != nil)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, cfg.API.Headers)
	queue, closeQueue, err := kitchen.New(cfg.Kitchen, client)
	if err != nil {
		return err
	}
	defer closeQueue()

	registry := dashboard.NewRegistry(client, queue, recorder, dashboard.Options{
		PollInterval:     cfg.Dashboard.PollInterval,
		PageSize:         cfg.Dashboard.PageSize,
		OperationHistory: cfg.Dashboard.OperationHistory,
		IdleTimeout:      cfg.Dashboard.IdleTimeout,
	})
	defer registry.Shutdown()
	registry.StartReaper(ctx, reaperEvery)

	loginLimiter := middleware.NewRateLimiter(cfg.Admin.LoginRPS, cfg.Admin.LoginBurst)
	loginLimiter.StartCleanup(ctx, limiterCleanupEvery, limiterMaxIdle)

	appHandlers := handlers.NewAppHandlers(cfg, sessionManager)
	authHandlers := handlers.NewAuthHandlers(sessionManager, appHandlers,
		auth.AdminPassword{Hash: cfg.Admin.PasswordHash, Plain: cfg.Admin.Password}, registry)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, sessionManager, appHandlers, authHandlers, registry, loginLimiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.API.RequestTimeout + 15*time.Second,
		IdleTimeout:  240 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Консоль слушает", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed on %s: %w", addr, err)
		}
	case <-ctx.Done():
		slog.Info("Завершение работы...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Плавное завершение не удалось", "error", err)
	}
	return nil
}
