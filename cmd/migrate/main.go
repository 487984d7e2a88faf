package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samirrijal/civicfix/internal/adapters/postgres"
	"github.com/samirrijal/civicfix/internal/pkg/config"
)

const migrationsDir = "migrations"

// dropOrder lists the schema objects created by the migrations, children first.
var dropOrder = []string{
	"DROP TABLE IF EXISTS notifications",
	"DROP TABLE IF EXISTS reviews",
	"DROP TABLE IF EXISTS issues",
	"DROP TABLE IF EXISTS profiles",
	"DROP TYPE IF EXISTS issue_type",
	"DROP TYPE IF EXISTS issue_status",
	"DROP TYPE IF EXISTS user_role",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("civicfix-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		if err := up(ctx, db); err != nil {
			log.Fatal(err)
		}
	case "down":
		if err := down(ctx, db); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// up applies every migration file in name order. The files are idempotent.
func up(ctx context.Context, db *postgres.DB) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %s", migrationsDir)
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
	return nil
}

func down(ctx context.Context, db *postgres.DB) error {
	for _, stmt := range dropOrder {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	log.Println("schema dropped")
	return nil
}
