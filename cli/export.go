// ABOUTME: CSV export and JSON import commands
// ABOUTME: Exports the filtered prospect list and bulk-loads prospects from JSON
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/export"
	"github.com/harperreed/prospect/importer"
	"github.com/harperreed/prospect/session"
)

// ExportCSVCommand writes the filtered, sorted prospect list as CSV.
func ExportCSVCommand(s *session.Session, defaultScreen string, args []string) error {
	fs := flag.NewFlagSet("export-csv", flag.ContinueOnError)
	qf := registerQueryFlags(fs, defaultScreen)
	layoutName := fs.String("layout", "", "Column set: grid or crm (default follows --screen)")
	output := fs.String("output", "", "Output file; \"auto\" for a dated filename (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	screen, query, sort, err := qf.build()
	if err != nil {
		return err
	}

	name := *layoutName
	if name == "" {
		name = string(export.LayoutGrid)
		if screen.Name == engine.ScreenCRM.Name {
			name = string(export.LayoutCRM)
		}
	}
	layout, err := export.ParseLayout(name)
	if err != nil {
		return err
	}

	visible := s.Visible(query, sort)

	path := *output
	if path == "auto" {
		path = layout.Filename(time.Now())
	}
	if path == "" {
		return export.WriteCSV(out, visible, layout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, visible, layout); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(out, "✓ Exported %d prospects to %s\n", len(visible), path)
	return nil
}

// ImportJSONCommand loads prospects from a JSON file.
func ImportJSONCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("import-json", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: import-json <file.json>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fs.Arg(0), err)
	}
	defer func() { _ = f.Close() }()

	ctx := context.Background()
	res, importErr := importer.Import(ctx, s.Store(), f)
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "✓ Imported %d prospects", res.Created)
	if res.Matched > 0 {
		_, _ = fmt.Fprintf(out, " (%d matched existing)", res.Matched)
	}
	_, _ = fmt.Fprintln(out)
	if importErr != nil {
		return fmt.Errorf("some records were skipped:\n%w", importErr)
	}
	return nil
}
