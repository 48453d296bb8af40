package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/pkg/config"
	pkgdb "github.com/Skotchmaster/restaurant_pos/pkg/db"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

func main() {
	reindex := flag.Bool("reindex", false, "push every product into elasticsearch after seeding")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", "seed")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.DBDriver == pkgdb.DriverPostgres {
		created, err := pkgdb.EnsureDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("ensure database: %v", err)
		}
		if created {
			logger.Info("database created")
		}
	}

	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := repo.New(db)
	res, err := store.Seed(ctx)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	logger.Info("seed done", "users", res.Users, "products", res.Products, "discounts", res.Discounts)

	if !*reindex {
		return
	}
	config.MustNonEmpty(cfg.ESURL, "ES_URL")
	es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	idx := search.NewProductIndex(es, cfg.ESIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		log.Fatalf("elasticsearch index: %v", err)
	}
	n, err := (&service.CatalogService{Repo: store, Index: idx}).Reindex(ctx)
	if err != nil {
		log.Fatalf("reindex: %v", err)
	}
	logger.Info("reindex done", "products", n)
}
