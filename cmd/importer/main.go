package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/civicfix/internal/adapters/postgres"
	"github.com/samirrijal/civicfix/internal/adapters/valkey"
	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/core/usecases"
	"github.com/samirrijal/civicfix/internal/pkg/config"
	"github.com/samirrijal/civicfix/internal/pkg/logging"
)

// Manifest is the directory export loaded by the importer.
type Manifest struct {
	Source   string           `json:"source"`
	Profiles []domain.Profile `json:"profiles"`
}

func main() {
	cfg, err := config.Load("civicfix-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// The API caches the directory in valkey; importing clears it.
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cached directory will expire on its own", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	manifestPath := "officials.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	manifest, err := readManifest(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}

	profiles := postgres.NewProfileRepo(db)
	svc := usecases.NewOfficialService(profiles, usecases.NewMatchService(profiles, cache, cfg.Matching))
	if err := svc.Import(ctx, manifest.Profiles); err != nil {
		log.Fatalf("import: %v", err)
	}

	officials := 0
	for _, p := range manifest.Profiles {
		if p.Role == domain.RoleOfficial {
			officials++
		}
	}
	slog.Info("directory imported",
		"source", manifest.Source,
		"profiles", len(manifest.Profiles),
		"officials", officials,
	)
}

// readManifest loads a manifest from a file, or from stdin when path is "-".
func readManifest(path string) (*Manifest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(m.Profiles) == 0 {
		return nil, fmt.Errorf("%s has no profiles", path)
	}
	return &m, nil
}
