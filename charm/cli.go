// ABOUTME: CLI commands for Charm KV sync operations
// ABOUTME: Status, manual sync, unlink instructions, and wipe for the hosted backend

package charm

import (
	"flag"
	"fmt"
	"io"
)

// SyncStatusCommand shows current sync configuration and status.
func SyncStatusCommand(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := c.Config()
	_, _ = fmt.Fprintln(w, "Charm Sync Status")
	_, _ = fmt.Fprintln(w, "─────────────────")
	_, _ = fmt.Fprintf(w, "Server:    %s\n", cfg.Host)
	_, _ = fmt.Fprintf(w, "Auto-sync: %v\n", cfg.AutoSync)

	id, err := c.ID()
	if err != nil {
		_, _ = fmt.Fprintln(w, "\nStatus: Not connected")
	} else {
		_, _ = fmt.Fprintln(w, "\nStatus: Connected to Charm Cloud")
		_, _ = fmt.Fprintf(w, "ID:        %s\n", id)
	}

	prospects, err := c.KeysWithPrefix([]byte(prospectPrefix))
	if err == nil {
		_, _ = fmt.Fprintf(w, "Prospects: %d\n", len(prospects))
	}
	interactions, err := c.KeysWithPrefix([]byte(interactionPrefix))
	if err == nil {
		_, _ = fmt.Fprintf(w, "Interactions: %d\n", len(interactions))
	}

	_, _ = fmt.Fprintln(w, "\nCharm uses SSH keys for authentication - no login required!")
	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *verbose {
		_, _ = fmt.Fprintln(w, "Syncing with server...")
	}

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	_, _ = fmt.Fprintln(w, "✓ Synced")
	return nil
}

// SyncUnlinkCommand explains how to disconnect this device. Charm has no
// unlink API; the SSH key must be removed from the account.
func SyncUnlinkCommand(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync unlink", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, "To unlink your device from Charm Cloud:")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  1. Remove this device's SSH key from your Charm account")
	_, _ = fmt.Fprintln(w, "  2. Delete local charm data: rm -rf ~/.local/share/charm")
	return nil
}

// SyncWipeCommand completely resets the KV store.
func SyncWipeCommand(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		_, _ = fmt.Fprintln(w, "WARNING: This will delete ALL prospects and interactions!")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "To confirm, run:")
		_, _ = fmt.Fprintln(w, "  prospect sync wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}

	_, _ = fmt.Fprintln(w, "✓ All data wiped")
	return nil
}
