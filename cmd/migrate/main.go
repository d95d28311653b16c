package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const defaultPingTimeout = 5 * time.Second

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	log := logger.New(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("ENVIRONMENT"))
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			log.Error("name is required for 'create' command")
			os.Exit(2)
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Error("create migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migration created", "name", *name, "dir", dir)
		return
	}

	dsn := databaseDSN()
	pool, err := postgres.Open(context.Background(), dsn, defaultPingTimeout)
	if err != nil {
		log.Error("connect to database failed", "dsn", config.RedactDSN(dsn), "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("set dialect failed", "error", err)
		os.Exit(1)
	}

	if err := run(*command, db, dir); err != nil {
		log.Error("migration failed", "command", *command, "error", err)
		os.Exit(1)
	}
	log.Info("migration finished", "command", *command)
}

func run(command string, db *sql.DB, dir string) error {
	switch command {
	case "up":
		return goose.Up(db, dir)
	case "down":
		return goose.Down(db, dir)
	case "status":
		return goose.Status(db, dir)
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, create", command)
	}
}
