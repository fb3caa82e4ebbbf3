package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func main() {
	foundEnv, envErr := config.LoadDotenv(".env")
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Warn("dotenv_error", "error", envErr)
	} else if !foundEnv {
		logger.Warn(".env file not found, using process environment")
	}

	decimal.MarshalJSONWithoutQuotes = true

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	initCtx = logging.IntoContext(initCtx, logger)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}
	if err := repo.Migrate(initCtx, db); err != nil {
		cancel()
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}
	gormRepo := &repo.GormRepo{DB: db}

	var events mykafka.Publisher = mykafka.Nop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
		events = producer
	} else {
		logger.Warn("KAFKA_BROKERS empty, events are not published")
	}

	var denylist tokens.Denylist
	var redisDeny *tokens.RedisDenylist
	if cfg.RedisAddr != "" {
		redisDeny = tokens.NewRedisDenylist(cfg.RedisAddr, cfg.ServiceName)
		if err := redisDeny.Ping(initCtx); err != nil {
			cancel()
			logger.Error("redis_init_error", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		denylist = redisDeny
	} else {
		denylist = tokens.NewMemoryDenylist()
	}

	txOpts := pkgdb.DefaultTxOptions()
	txOpts.MaxRetries = cfg.TxMaxRetries

	catalog := &service.CatalogService{Repo: gormRepo, Events: events, TxOpts: txOpts}
	users := &service.UserService{Repo: gormRepo, Events: events, TxOpts: txOpts}
	if cfg.ElasticURL != "" {
		idx, err := search.NewElasticIndex(search.Config{
			URL:      cfg.ElasticURL,
			Username: cfg.ElasticUser,
			Password: cfg.ElasticPassword,
			Index:    cfg.ElasticIndex,
		})
		if err != nil {
			logger.Warn("elastic_init_error, searching the database", "error", err)
		} else {
			catalog.Search = idx
			users.Search = idx
		}
	}

	authSvc := &service.AuthService{
		Repo:      gormRepo,
		Events:    events,
		Denylist:  denylist,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTExpiration,
	}
	cart := &service.CartService{Repo: gormRepo, Events: events, TxOpts: txOpts}

	if cfg.SeedFile != "" {
		fixture, err := seed.LoadFile(cfg.SeedFile)
		if err == nil {
			_, err = (&seed.Seeder{Auth: authSvc, Catalog: catalog}).Apply(initCtx, fixture)
		}
		if err != nil {
			cancel()
			logger.Error("seed_error", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Validator = httpserver.NewValidator()
	e.HTTPErrorHandler = httpserver.ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.CORS())
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			SessionName: cfg.JWTCookieName,
			Secure:      true,
			SkipPaths:   []string{"/auth/signin", "/auth/signup"},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: authSvc, CookieName: cfg.JWTCookieName},
		Cart:     &httpserver.CartHTTP{Svc: cart},
		Order:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: gormRepo, Events: events, TxOpts: txOpts}},
		Address:  &httpserver.AddressHTTP{Svc: &service.AddressService{Repo: gormRepo, TxOpts: txOpts}},
		Category: &httpserver.CategoryHTTP{Svc: catalog},
		Product:  &httpserver.ProductHTTP{Svc: catalog},
		User:     &httpserver.UserHTTP{Svc: users},
		AuthMW:   authmw.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTCookieName, denylist, authSvc),
		DB:       gormRepo,
	})

	addr := ":" + strconv.Itoa(cfg.ServerPort)
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if redisDeny != nil {
		if err := redisDeny.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
