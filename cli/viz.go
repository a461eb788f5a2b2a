// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/prospect/session"
	"github.com/harperreed/prospect/viz"
)

// VizDashboardCommand prints the ASCII pipeline dashboard.
func VizDashboardCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("viz dashboard", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats := viz.GenerateDashboardStats(s.Snapshot(), time.Now())
	_, _ = fmt.Fprint(out, viz.RenderDashboard(stats))
	return nil
}

// VizPipelineCommand generates the status funnel graph for the filtered list.
func VizPipelineCommand(s *session.Session, defaultScreen string, args []string) error {
	fs := flag.NewFlagSet("viz pipeline", flag.ContinueOnError)
	qf := registerQueryFlags(fs, defaultScreen)
	perStatus := fs.Int("per-status", 8, "Prospects drawn per status (-1 for all)")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, query, sort, err := qf.build()
	if err != nil {
		return err
	}

	generator := viz.NewGraphGenerator(s.Visible(query, sort))
	dot, err := generator.GeneratePipelineGraph(*perStatus)
	if err != nil {
		return err
	}
	return writeDot(dot, *output)
}

// VizMarketCommand generates the profession-by-city graph.
func VizMarketCommand(s *session.Session, defaultScreen string, args []string) error {
	fs := flag.NewFlagSet("viz market", flag.ContinueOnError)
	qf := registerQueryFlags(fs, defaultScreen)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, query, sort, err := qf.build()
	if err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(s.Visible(query, sort)).GenerateMarketGraph()
	if err != nil {
		return err
	}
	return writeDot(dot, *output)
}

func writeDot(dot, output string) error {
	if output != "" {
		return os.WriteFile(output, []byte(dot), 0644)
	}
	_, _ = fmt.Fprintln(out, dot)
	return nil
}
