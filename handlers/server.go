// ABOUTME: MCP server assembly for the prospect tools, resources, and prompts
// ABOUTME: Registers every handler against one session
package handlers

import (
	"github.com/harperreed/prospect/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing the prospect tools.
func NewServer(s *session.Session, version string) *mcp.Server {
	prospectHandlers := NewProspectHandlers(s)
	resourceHandlers := NewResourceHandlers(s)
	promptHandlers := NewPromptHandlers(s)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "prospect",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_prospect",
		Description: "Add a new prospect to the prospecting list",
	}, prospectHandlers.AddProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_prospects",
		Description: "Search, filter, and sort prospects by text, profession, city, state, rating, services, status, priority, contact method, and years of experience",
	}, prospectHandlers.FindProspects)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_prospect",
		Description: "Get one prospect with its interaction history",
	}, prospectHandlers.GetProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "prospect_facets",
		Description: "List the available filter values with counts for every facet",
	}, prospectHandlers.ProspectFacets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_prospect_status",
		Description: "Move a prospect to a new pipeline status and record the contact time",
	}, prospectHandlers.UpdateProspectStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_prospect_priority",
		Description: "Change a prospect's priority",
	}, prospectHandlers.UpdateProspectPriority)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_prospect_interaction",
		Description: "Log a call, message, meeting, or note against a prospect and update its last contact time",
	}, prospectHandlers.LogProspectInteraction)

	server.AddResource(&mcp.Resource{
		URI:         "prospect://prospects",
		Name:        "prospects",
		Description: "Every prospect, newest first",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "prospect://prospects/{id}",
		Name:        "prospect",
		Description: "One prospect with its interactions",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "prospect://facets",
		Name:        "facets",
		Description: "Filter values with counts, all tags included",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "prospect://pipeline",
		Name:        "pipeline",
		Description: "Prospect counts and deal value per pipeline status",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "prospect-summary",
		Description: "Summarize a prospect and suggest the next contact",
		Arguments: []*mcp.PromptArgument{
			{Name: "prospect_id", Description: "Prospect ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review the prospecting pipeline by status, priority, and profession",
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "List open prospects without recent contact and ask for follow-up ideas",
		Arguments: []*mcp.PromptArgument{
			{Name: "days", Description: "Days without contact (default 14)"},
		},
	}, promptHandlers.GetPrompt)

	return server
}
