package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/restaurant_pos/internal/httpserver"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/csrf"
	"github.com/Skotchmaster/restaurant_pos/internal/mykafka"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/report"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/pkg/config"
	pkgdb "github.com/Skotchmaster/restaurant_pos/pkg/db"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
	loggingmw "github.com/Skotchmaster/restaurant_pos/pkg/middleware/logging"
)

type publisher interface {
	service.Publisher
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustOneOf(cfg.DBDriver, "DB_DRIVER", pkgdb.DriverPostgres, pkgdb.DriverSQLite)
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Timezone, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var events publisher = mykafka.NopProducer{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := mykafka.NewProducer(cfg.KafkaBrokers, []string{
			service.TopicOrders, service.TopicProducts, service.TopicDiscounts, service.TopicUsers,
		})
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = p
	} else {
		logger.Warn("kafka disabled", "reason", "KAFKA_BROKERS is empty")
	}

	store := repo.New(db)
	catalog := &service.CatalogService{Repo: store, Events: events}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		idx := search.NewProductIndex(es, cfg.ESIndex)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = idx.EnsureIndex(ctx)
		cancel()
		if err != nil {
			log.Fatalf("elasticsearch index: %v", err)
		}
		catalog.Index = idx
	} else {
		logger.Warn("elasticsearch disabled", "reason", "ES_URL is empty")
	}

	branding := report.Branding{Name: cfg.RestaurantName, Currency: cfg.Currency, Location: loc}

	authSvc := &service.AuthService{Repo: store, AccessSecret: cfg.JWTAccessSecret, RefreshSecret: cfg.JWTRefreshSecret}
	orderSvc := &service.OrderService{
		Repo:      store,
		Products:  store,
		Discounts: store,
		Events:    events,
		Location:  loc,
		Strict:    cfg.StrictOrderTransitions,
	}
	posSvc := &service.PosService{Sessions: store, Products: store, Discounts: store, Orders: orderSvc}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.DefaultConfig()))
	}
	e.Validator = httpserver.NewRequestValidator()

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		PosHandler:      &httpserver.PosHTTP{Svc: posSvc, Catalog: catalog},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orderSvc, Branding: branding},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalog},
		DiscountHandler: &httpserver.DiscountHTTP{Svc: &service.DiscountService{Repo: store, Events: events}},
		UserHandler:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: store, Events: events}},
		ReportHandler:   &httpserver.ReportHTTP{Svc: &service.ReportService{Repo: store, Branding: branding}},
		JWTSecret:       cfg.JWTAccessSecret,
		Refresher:       authSvc,
		Ready:           func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("pos listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := events.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	_ = pkgdb.Close(db)

	logger.Info("pos stopped")
}
