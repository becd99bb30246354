package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brojonat/tipjar/service/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Applies the SQL migrations under service/db/migrations in lexical order.
// Migrations are written to be idempotent (CREATE TABLE IF NOT EXISTS etc),
// so re-running this command against an up-to-date database is safe.
func main() {
	migrationsDir := flag.String("dir", "service/db/migrations", "directory containing .sql migration files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("starting database migration", "dir", *migrationsDir)

	// Load configuration
	cfg := config.MustLoad()

	// Connect to database
	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Verify database connection
	if err := dbPool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Collect migration files in lexical order
	entries, err := os.ReadDir(*migrationsDir)
	if err != nil {
		logger.Error("failed to read migrations directory", "dir", *migrationsDir, "error", err)
		os.Exit(1)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.Warn("no migration files found", "dir", *migrationsDir)
		return
	}

	// Apply each migration
	for _, name := range files {
		path := filepath.Join(*migrationsDir, name)
		sql, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read migration", "file", name, "error", err)
			os.Exit(1)
		}

		if _, err := dbPool.Exec(ctx, string(sql)); err != nil {
			logger.Error("failed to apply migration", "file", name, "error", err)
			os.Exit(1)
		}
		logger.Info("applied migration", "file", name)
	}

	logger.Info("migration complete", "applied", len(files))
}
