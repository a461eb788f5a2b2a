// ABOUTME: Seed utility that loads a JSON export of prospects into a SQLite database
// ABOUTME: Provides dry-run and backup capabilities so existing data is never lost by accident

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/importer"
	"github.com/harperreed/prospect/models"
)

type options struct {
	dbPath string
	file   string
	dryRun bool
	backup bool
	force  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dbPath, "db", "", "Path to database file (required)")
	flag.StringVar(&opts.file, "file", "", "JSON array of prospects to load (required)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Show what would happen without making changes")
	flag.BoolVar(&opts.backup, "backup", true, "Create backup before seeding an existing database")
	flag.BoolVar(&opts.force, "force", false, "Seed even if the database already has prospects")
	flag.Parse()

	if opts.dbPath == "" || opts.file == "" {
		log.Fatal("Error: -db and -file flags are required")
	}

	if err := seed(context.Background(), opts); err != nil {
		log.Fatal("Seed failed", "err", err)
	}
}

func seed(ctx context.Context, opts options) error {
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.file, err)
	}

	var records []models.Prospect
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to decode %s: %w", opts.file, err)
	}
	log.Info("Loaded seed file", "file", opts.file, "records", len(records))

	_, statErr := os.Stat(opts.dbPath)
	exists := statErr == nil

	if opts.dryRun {
		log.Info("[DRY RUN] Would perform the following actions:")
		if exists && opts.backup {
			log.Info("[DRY RUN] - Back up existing database", "path", opts.dbPath)
		}
		log.Info("[DRY RUN] - Create prospects", "count", len(records))
		return nil
	}

	if exists && opts.backup {
		backupPath := fmt.Sprintf("%s.backup.%s", opts.dbPath, time.Now().Format("20060102-150405"))
		log.Info("Creating backup", "path", backupPath)

		input, err := os.ReadFile(opts.dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	store, err := db.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	existing, err := store.ListProspects(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !opts.force {
		log.Warn("Database already has prospects", "count", len(existing))
		return fmt.Errorf("seeding a non-empty database requires -force")
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.file, err)
	}
	defer func() { _ = f.Close() }()

	res, importErr := importer.Import(ctx, store, f)
	log.Info("Seed completed", "created", res.Created, "matched", res.Matched, "skipped", res.Skipped)
	if importErr != nil {
		log.Warn("Some records were skipped", "err", importErr)
	}
	return nil
}
