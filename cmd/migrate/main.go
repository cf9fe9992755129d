// Package main applies the embedded SQL migrations.
//
// Usage:
//
//	migrate [-config path] [up|down|status|version|reset]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"smartshop/internal/config"
	"smartshop/internal/infrastructure/storage/postgres"
	"smartshop/migrations"
	"smartshop/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0
	poolCfg.ApplicationName = cfg.App.Name + "-migrate"

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, migrations.FS, command); err != nil {
		log.Fatalw("migration failed", "command", command, "error", err)
	}
	log.Infow("migration finished", "command", command)
}
