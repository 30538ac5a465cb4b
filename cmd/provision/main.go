// Command provision prepares a deployment: it creates the upload bucket (or directory) and
// the database schema. The server never creates buckets on its own.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/logger"
	"github.com/debemdeboas/the-press/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	skipDB := flag.Bool("skip-db", false, "Only provision object storage")
	flag.Parse()

	godotenv.Load()
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level)
	db.SetLogger(l)
	storage.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := provisionStorage(ctx, cfg.Storage); err != nil {
		l.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to provision storage")
	}
	l.Info().Str("driver", cfg.Storage.Driver).Str("bucket", cfg.Storage.Bucket).Msg("Storage ready")

	if *skipDB {
		return
	}
	if err := provisionDatabase(cfg.Database); err != nil {
		l.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to provision database")
	}
	l.Info().Str("driver", cfg.Database.Driver).Msg("Database schema ready")
}

func provisionStorage(ctx context.Context, cfg config.StorageConfig) error {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	p, ok := store.(storage.Provisioner)
	if !ok {
		return nil
	}
	return p.Provision(ctx)
}

func provisionDatabase(cfg config.DatabaseConfig) error {
	database, err := db.New(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	defer database.Close()
	return database.InitDb()
}
