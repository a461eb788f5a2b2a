// ABOUTME: MCP prompt handlers for reusable prospecting workflow templates
// ABOUTME: Builds summary, pipeline review, and follow-up prompts from the current snapshot
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultStaleDays = 14

type PromptHandlers struct {
	session *session.Session
	now     func() time.Time
}

func NewPromptHandlers(s *session.Session) *PromptHandlers {
	return &PromptHandlers{session: s, now: time.Now}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	if err := h.session.Refresh(ctx); err != nil {
		return nil, err
	}

	arguments := request.Params.Arguments
	switch request.Params.Name {
	case "prospect-summary":
		return h.getProspectSummaryPrompt(ctx, arguments)
	case "pipeline-review":
		return h.getPipelineReviewPrompt()
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getProspectSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["prospect_id"]
	if !ok || id == "" {
		return nil, fmt.Errorf("prospect_id is required")
	}

	p, err := h.session.Prospect(id)
	if err != nil {
		return nil, err
	}
	interactions, _ := h.session.Interactions(ctx, id)

	var b strings.Builder
	b.WriteString("Please provide a summary of this prospect:\n\n")
	fmt.Fprintf(&b, "Company: %s\n", p.DisplayName())
	writeField(&b, "Contact", p.ContactName)
	writeField(&b, "Profession", p.Profession)
	writeField(&b, "Specialization", p.Specialization)
	writeField(&b, "City", strings.Trim(p.City+" / "+p.State, " /"))
	writeField(&b, "Rating", p.Rating)
	writeField(&b, "Years of experience", p.YearsExperience)
	if tags := p.Tags(); len(tags) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(tags, ", "))
	}
	fmt.Fprintf(&b, "Status: %s\n", models.StatusLabel(p.EffectiveStatus()))
	fmt.Fprintf(&b, "Priority: %s\n", models.PriorityLabel(p.EffectivePriority()))
	if p.LastContactAt != nil {
		fmt.Fprintf(&b, "Last contact: %s\n", p.LastContactAt.Format("2006-01-02"))
	}
	writeField(&b, "Notes", p.Notes)

	if len(interactions) > 0 {
		fmt.Fprintf(&b, "\nRecent interactions (%d):\n", len(interactions))
		for i, in := range interactions {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s [%s] %s\n", in.CreatedAt.Format("2006-01-02"), in.Type, in.Title)
		}
	}

	b.WriteString("\nPlease analyze this prospect and provide:")
	b.WriteString("\n1. A short profile of the business")
	b.WriteString("\n2. The best channel and message for the next contact")
	b.WriteString("\n3. Whether the status or priority should change")

	return userPrompt(fmt.Sprintf("Summary for prospect: %s", p.DisplayName()), b.String()), nil
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func (h *PromptHandlers) getPipelineReviewPrompt() (*mcp.GetPromptResult, error) {
	facets := h.session.Facets()

	var b strings.Builder
	fmt.Fprintf(&b, "Please review this prospecting pipeline (%d prospects):\n\n", h.session.Len())
	b.WriteString("By status:\n")
	for _, opt := range facets.Statuses {
		fmt.Fprintf(&b, "- %s: %d\n", opt.Label, opt.Count)
	}
	b.WriteString("\nBy priority:\n")
	for _, opt := range facets.Priorities {
		fmt.Fprintf(&b, "- %s: %d\n", opt.Label, opt.Count)
	}
	if len(facets.Professions) > 0 {
		b.WriteString("\nProfessions:\n")
		for _, opt := range facets.Professions {
			fmt.Fprintf(&b, "- %s: %d\n", opt.Label, opt.Count)
		}
	}

	b.WriteString("\nPlease identify bottlenecks, segments worth focusing on, and concrete next steps.")

	return userPrompt("Prospect pipeline review", b.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	days := defaultStaleDays
	if v, ok := args["days"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("days must be a positive integer")
		}
		days = n
	}
	cutoff := h.now().AddDate(0, 0, -days)

	open := h.session.Visible(engine.Query{
		Statuses: []string{
			models.StatusLead, models.StatusProspect, models.StatusQualified,
			models.StatusProposal, models.StatusNegotiation,
		},
	}, engine.Sort{Field: engine.SortName})

	var b strings.Builder
	fmt.Fprintf(&b, "These open prospects have not been contacted in %d days:\n\n", days)
	stale := 0
	for _, p := range open {
		if p.LastContactAt != nil && p.LastContactAt.After(cutoff) {
			continue
		}
		stale++
		last := "never"
		if p.LastContactAt != nil {
			last = p.LastContactAt.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "- %s (%s, %s) last contact: %s\n",
			p.DisplayName(), models.StatusLabel(p.EffectiveStatus()), models.PriorityLabel(p.EffectivePriority()), last)
	}
	if stale == 0 {
		b.WriteString("(none)\n")
	}

	b.WriteString("\nSuggest who to contact first, through which channel, and what to say.")

	return userPrompt("Follow-up suggestions", b.String()), nil
}
