// ABOUTME: Store and session construction from configuration
// ABOUTME: Opens the SQLite or Charm backend and loads the first snapshot
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/charm"
	"github.com/harperreed/prospect/config"
	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/session"
)

// OpenStore opens the record store named by cfg.Backend.
func OpenStore(cfg *config.Config) (db.Store, error) {
	switch cfg.Backend {
	case config.BackendCharm:
		client, err := charm.NewClient(cfg.Charm())
		if err != nil {
			return nil, fmt.Errorf("failed to open charm store: %w", err)
		}
		log.Debug("Using charm backend", "host", cfg.CharmHost)
		return charm.NewStore(client), nil
	case config.BackendSQLite, "":
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		log.Debug("Using sqlite backend", "path", cfg.DBPath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// NewSession wraps store in a session configured from cfg and loads the
// first snapshot.
func NewSession(ctx context.Context, cfg *config.Config, store db.Store) (*session.Session, error) {
	eng := engine.New(engine.WithLocale(cfg.Locale), engine.WithTagLimit(cfg.TagLimit))
	s := session.New(store,
		session.WithEngine(eng),
		session.WithLogger(log.Default()),
		session.WithUserID(cfg.UserID),
	)
	if err := s.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to load prospects: %w", err)
	}
	return s, nil
}

// charmClient returns the charm client behind store, if it has one.
func charmClient(store db.Store) (*charm.Client, bool) {
	cs, ok := store.(*charm.Store)
	if !ok {
		return nil, false
	}
	return cs.Client(), true
}
