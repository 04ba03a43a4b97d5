// Package main seeds the built-in scoring actions (and optional extras from a
// YAML file) into the action_configs table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/db"
	"github.com/matchfund/matchfund-backend/internal/store/postgres"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
	"gopkg.in/yaml.v3"
)

func main() {
	overwrite := flag.Bool("overwrite", false, "Replace existing rows instead of skipping them")
	file := flag.String("file", "", "Optional YAML file with extra action configs")
	dryRun := flag.Bool("dry-run", false, "Print the rows that would be written without touching the database")
	migrate := flag.Bool("migrate", true, "Apply pending migrations first")
	flag.Parse()

	var extra []types.ActionConfig
	if *file != "" {
		var err error
		extra, err = loadExtras(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		log.Printf("Loaded %d extra action configs from %s", len(extra), *file)
	}

	if *dryRun {
		for _, row := range append(services.DefaultActionConfigs(), extra...) {
			fmt.Printf("%-12s %-24s weight=%-5g negative=%-5t order=%d\n",
				row.Key, row.Label, row.Weight, row.IsNegative, row.SortOrder)
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *migrate {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	seeder := services.NewConfigService(postgres.NewConfigStore(pool))
	written, err := seeder.SeedActionConfigs(ctx, extra, *overwrite)
	if err != nil {
		log.Printf("Seeding failed: %v", err)
		os.Exit(1)
	}
	log.Printf("Seeded action configs: %d rows written (overwrite=%t)", written, *overwrite)
}

func loadExtras(path string) ([]types.ActionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseExtras(raw)
}

func parseExtras(raw []byte) ([]types.ActionConfig, error) {
	var rows []types.ActionConfig
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	for i, r := range rows {
		if r.Key == "" {
			return nil, fmt.Errorf("entry %d: key is required", i)
		}
	}
	return rows, nil
}
