// ABOUTME: Entry point for the prospect CLI, TUI, web UI, and MCP server
// ABOUTME: Loads configuration, opens the store, and routes to the requested command
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/cli"
	"github.com/harperreed/prospect/config"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/session"
	"github.com/harperreed/prospect/tui"
	"github.com/harperreed/prospect/web"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/prospect/prospect.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite or charm")
	screen := flag.String("screen", "", "Default screen: grid, list, modern, or crm")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("prospect version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *screen != "" {
		cfg.Screen = *screen
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", "err", err)
	}
	if _, err := engine.LookupScreen(cfg.Screen); err != nil {
		log.Fatal("Invalid screen", "err", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if *verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	command := args[0]
	commandArgs := args[1:]

	// sync unlink and sync auto work without opening the store
	if command == "sync" && len(commandArgs) > 0 && (commandArgs[0] == "unlink" || commandArgs[0] == "auto") {
		if err := cli.SyncCommand(cfg, nil, commandArgs); err != nil {
			log.Fatal("Error", "err", err)
		}
		return
	}

	switch command {
	case "mcp", "crm", "viz", "tui", "web", "sync":
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		log.Fatal("Failed to open store", "backend", cfg.Backend, "err", err)
	}
	defer func() { _ = store.Close() }()

	if command == "sync" {
		if err := cli.SyncCommand(cfg, store, commandArgs); err != nil {
			log.Fatal("Error", "err", err)
		}
		return
	}

	s, err := cli.NewSession(context.Background(), cfg, store)
	if err != nil {
		log.Fatal("Failed to start session", "err", err)
	}
	log.Debug("Loaded prospects", "count", s.Len(), "backend", cfg.Backend)

	switch command {
	case "mcp":
		if err := cli.MCPCommand(s, version); err != nil {
			log.Fatal("MCP server failed", "err", err)
		}

	case "tui":
		if err := tui.Run(s, cfg.Screen); err != nil {
			log.Fatal("TUI failed", "err", err)
		}

	case "web":
		if err := runWeb(s, cfg, commandArgs); err != nil {
			log.Fatal("Web server failed", "err", err)
		}

	case "crm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		if err := runCRM(s, cfg, commandArgs[0], commandArgs[1:]); err != nil {
			log.Fatal("Error", "err", err)
		}

	case "viz":
		if len(commandArgs) == 0 {
			fmt.Println("Error: viz requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		if err := runViz(s, cfg, commandArgs[0], commandArgs[1:]); err != nil {
			log.Fatal("Error", "err", err)
		}
	}
}

func runCRM(s *session.Session, cfg *config.Config, command string, args []string) error {
	switch command {
	// Prospect commands
	case "add-prospect":
		return cli.AddProspectCommand(s, args)
	case "list-prospects":
		return cli.ListProspectsCommand(s, cfg.Screen, args)
	case "show-prospect":
		return cli.ShowProspectCommand(s, args)
	case "delete-prospect":
		return cli.DeleteProspectCommand(s, args)
	case "facets":
		return cli.FacetsCommand(s, args)

	// Pipeline commands
	case "set-status":
		return cli.SetStatusCommand(s, args)
	case "set-priority":
		return cli.SetPriorityCommand(s, args)
	case "log-interaction":
		return cli.LogInteractionCommand(s, args)
	case "follow-ups":
		return cli.FollowupListCommand(s, args)
	case "set-follow-up":
		return cli.SetFollowupCommand(s, args)

	// Import and export
	case "export-csv":
		return cli.ExportCSVCommand(s, cfg.Screen, args)
	case "import-json":
		return cli.ImportJSONCommand(s, args)

	default:
		printUsage()
		return fmt.Errorf("unknown crm command: %s", command)
	}
}

func runViz(s *session.Session, cfg *config.Config, command string, args []string) error {
	switch command {
	case "dashboard":
		return cli.VizDashboardCommand(s, args)
	case "pipeline":
		return cli.VizPipelineCommand(s, cfg.Screen, args)
	case "market":
		return cli.VizMarketCommand(s, cfg.Screen, args)
	default:
		printUsage()
		return fmt.Errorf("unknown viz command: %s", command)
	}
}

func runWeb(s *session.Session, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	port := fs.Int("port", cfg.WebPort, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(s, cfg.Screen)
	if err != nil {
		return err
	}
	return server.Start(*port)
}

func printUsage() {
	fmt.Printf(`prospect v%s - Prospecção ativa CRM

USAGE:
  prospect [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/prospect/prospect.db)
  --backend <name>       Storage backend: sqlite or charm (default: sqlite)
  --screen <name>        Default screen: grid, list, modern, crm (default: crm)
  --verbose              Enable debug logging

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  crm                    Prospect management commands
  viz                    Visualization commands
  tui                    Interactive terminal UI
  web                    Read-only web UI and JSON API
  sync                   Charm cloud sync commands

CRM COMMANDS:
  prospect crm add-prospect      Add a new prospect
    --company <name>               Company name (required)
    --contact <name>               Contact person
    --profession <p>               Profession (e.g., Dentista)
    --city <city> --state <UF>     Location
    --phone/--whatsapp/--email/--website
    --rating <1-5>                 Rating
    --years <n>                    Years of experience
    --services <a, b>              Comma-separated services (tags)
    --status <s> --priority <p>    Pipeline status and priority

  prospect crm list-prospects    List prospects through a screen
    --screen <name>                Screen whose facets and sorts apply
    --search <text>                Search company, contact, profession, city
    --profession/--city/--state/--rating/--tag/--status/--priority <v>
                                   Facet values (repeatable, OR within a facet)
    --has-whatsapp/--has-email/--has-website/--has-phone <yes|no>
    --min-years <n> --max-years <n>
    --sort <field> --desc          Sort field and direction
    --limit <n>                    Max rows (default: 50, 0 for all)

  prospect crm show-prospect <id>      Show a prospect and its interactions
  prospect crm delete-prospect <id>    Delete a prospect
  prospect crm facets [--all-tags]     Show facet values and counts
  prospect crm set-status <id> <status>
  prospect crm set-priority <id> <priority>
  prospect crm log-interaction [flags] <id>
    --type <type>                  call, whatsapp, email, meeting, proposal, follow_up, note
    --title <text>                 Title (required)
    --description <text>           Details
    --at <date>                    Schedule for a future date
  prospect crm follow-ups        List prospects due for contact
    --days <n>                     Days without contact (default: 14)
    --overdue-only                 Only scheduled follow-ups in the past
  prospect crm set-follow-up [--clear] <id> [date]
  prospect crm export-csv        Export the filtered list as CSV
    --layout <grid|crm>            Column layout
    --output <file>                Output file (default: auto-named)
  prospect crm import-json <file>      Import prospects from a JSON array

VIZ COMMANDS:
  prospect viz dashboard         Terminal pipeline dashboard
  prospect viz pipeline          Pipeline graph in Graphviz format
    --per-status <n>               Prospects shown per status (default: 8)
    --output <file>                Output file (default: stdout)
  prospect viz market            Profession by city graph

WEB:
  prospect web [--port <n>]      Serve the web UI (default port: %d)

SYNC COMMANDS (charm backend):
  prospect sync status           Show link and sync state
  prospect sync now              Sync with the charm server
  prospect sync auto [on|off]    Toggle automatic sync
  prospect sync unlink           Forget this device's charm link
  prospect sync wipe             Delete all local charm data

EXAMPLES:
  # Start MCP server for Claude Desktop
  prospect mcp

  # Dentists in Curitiba with WhatsApp, best rated first
  prospect crm list-prospects --screen crm --profession Dentista --city Curitiba --has-whatsapp yes --sort rating --desc

  # Move a prospect forward in the pipeline
  prospect crm set-status 01J8Z qualified

`, version, config.DefaultWebPort)
}
