// ABOUTME: Sync CLI commands for the Charm backend
// ABOUTME: Routes status, now, auto, unlink, and wipe subcommands
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/prospect/charm"
	"github.com/harperreed/prospect/config"
	"github.com/harperreed/prospect/db"
)

// ErrNotCharm is returned by sync commands when the SQLite backend is active.
var ErrNotCharm = errors.New("sync needs the charm backend (set \"backend\": \"charm\" or pass --backend charm)")

// SyncCommand dispatches `prospect sync <subcommand>`.
func SyncCommand(cfg *config.Config, store db.Store, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sync <status|now|auto|unlink|wipe>")
	}
	sub, rest := args[0], args[1:]

	if sub == "unlink" {
		return charm.SyncUnlinkCommand(out, rest)
	}
	if sub == "auto" {
		return SyncAutoCommand(cfg, rest)
	}

	client, ok := charmClient(store)
	if !ok {
		return ErrNotCharm
	}

	switch sub {
	case "status":
		return charm.SyncStatusCommand(out, client, rest)
	case "now":
		return charm.SyncNowCommand(out, client, rest)
	case "wipe":
		return charm.SyncWipeCommand(out, client, rest)
	default:
		return fmt.Errorf("unknown sync command: %s", sub)
	}
}

// SyncAutoCommand turns auto-sync on or off and saves the config.
func SyncAutoCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		_, _ = fmt.Fprintf(out, "Auto-sync: %v\n", cfg.CharmAutoSync)
		return nil
	}

	switch strings.ToLower(fs.Arg(0)) {
	case "on", "true", "yes":
		cfg.CharmAutoSync = true
	case "off", "false", "no":
		cfg.CharmAutoSync = false
	default:
		return fmt.Errorf("usage: sync auto [on|off]")
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	state := "disabled"
	if cfg.CharmAutoSync {
		state = "enabled"
	}
	_, _ = fmt.Fprintf(out, "✓ Auto-sync %s\n", state)
	return nil
}
