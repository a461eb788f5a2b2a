// ABOUTME: Prospect MCP tool handlers
// ABOUTME: Implements add, find, get, facet, status, priority, and interaction tools over a session
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultFindLimit = 25
	maxFindLimit     = 500
)

type ProspectHandlers struct {
	session *session.Session
}

func NewProspectHandlers(s *session.Session) *ProspectHandlers {
	return &ProspectHandlers{session: s}
}

type ProspectOutput struct {
	ID              string   `json:"id"`
	CompanyName     string   `json:"company_name"`
	ContactName     string   `json:"contact_name,omitempty"`
	Profession      string   `json:"profession,omitempty"`
	Specialization  string   `json:"specialization,omitempty"`
	City            string   `json:"city,omitempty"`
	State           string   `json:"state,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Whatsapp        string   `json:"whatsapp,omitempty"`
	Email           string   `json:"email,omitempty"`
	Website         string   `json:"website,omitempty"`
	Rating          string   `json:"rating,omitempty"`
	YearsExperience string   `json:"years_experience,omitempty"`
	Services        string   `json:"services,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	LeadSource      string   `json:"lead_source,omitempty"`
	LastContactAt   *string  `json:"last_contact_at,omitempty"`
	NextFollowUp    *string  `json:"next_follow_up,omitempty"`
	DealValue       int64    `json:"deal_value,omitempty"`
	Probability     int      `json:"probability,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type InteractionOutput struct {
	ID          string  `json:"id"`
	ProspectID  string  `json:"prospect_id"`
	Type        string  `json:"interaction_type"`
	Status      string  `json:"interaction_status"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	Unsynced    bool    `json:"unsynced,omitempty"`
}

type AddProspectInput struct {
	CompanyName     string `json:"company_name" jsonschema:"Company or practice name (required)"`
	ContactName     string `json:"contact_name,omitempty" jsonschema:"Contact person"`
	Profession      string `json:"profession,omitempty" jsonschema:"Profession, e.g. Dentista"`
	Specialization  string `json:"specialization,omitempty" jsonschema:"Specialization within the profession"`
	City            string `json:"city,omitempty" jsonschema:"City"`
	State           string `json:"state,omitempty" jsonschema:"State code, e.g. SP"`
	Phone           string `json:"phone,omitempty" jsonschema:"Phone number"`
	Whatsapp        string `json:"whatsapp,omitempty" jsonschema:"WhatsApp number"`
	Email           string `json:"email,omitempty" jsonschema:"Email address"`
	Website         string `json:"website,omitempty" jsonschema:"Website URL"`
	Rating          string `json:"rating,omitempty" jsonschema:"Rating as text, e.g. 4.5"`
	YearsExperience string `json:"years_experience,omitempty" jsonschema:"Years of experience as text"`
	Services        string `json:"services,omitempty" jsonschema:"Comma-separated services; each entry becomes a tag"`
	Notes           string `json:"notes,omitempty" jsonschema:"Free-form notes"`
	Status          string `json:"status,omitempty" jsonschema:"Pipeline status: lead, prospect, qualified, proposal, negotiation, client, inactive, lost (default prospect)"`
	Priority        string `json:"priority,omitempty" jsonschema:"Priority: low, medium, high, urgent (default medium)"`
	LeadSource      string `json:"lead_source,omitempty" jsonschema:"Where the lead came from"`
}

func (h *ProspectHandlers) AddProspect(ctx context.Context, _ *mcp.CallToolRequest, input AddProspectInput) (*mcp.CallToolResult, ProspectOutput, error) {
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, ProspectOutput{}, fmt.Errorf("company_name is required")
	}

	p := &models.Prospect{
		CompanyName:     input.CompanyName,
		ContactName:     input.ContactName,
		Profession:      input.Profession,
		Specialization:  input.Specialization,
		City:            input.City,
		State:           input.State,
		Phone:           input.Phone,
		Whatsapp:        input.Whatsapp,
		Email:           input.Email,
		Website:         input.Website,
		Rating:          input.Rating,
		YearsExperience: input.YearsExperience,
		Services:        input.Services,
		Notes:           input.Notes,
		Status:          input.Status,
		Priority:        input.Priority,
		LeadSource:      input.LeadSource,
		IsActive:        true,
	}

	if err := h.session.AddProspect(ctx, p); err != nil {
		return nil, ProspectOutput{}, fmt.Errorf("failed to add prospect: %w", err)
	}

	return nil, prospectToOutput(p), nil
}

type FindProspectsInput struct {
	Query       string   `json:"query,omitempty" jsonschema:"Case-insensitive text matched against company, contact, profession, city, specialization, and email"`
	Professions []string `json:"professions,omitempty" jsonschema:"Keep prospects whose profession is one of these"`
	Cities      []string `json:"cities,omitempty" jsonschema:"Keep prospects whose city is one of these"`
	States      []string `json:"states,omitempty" jsonschema:"Keep prospects whose state is one of these"`
	Ratings     []string `json:"ratings,omitempty" jsonschema:"Keep prospects whose rating text is one of these"`
	Tags        []string `json:"tags,omitempty" jsonschema:"Keep prospects offering at least one of these services"`
	Statuses    []string `json:"statuses,omitempty" jsonschema:"Keep prospects in one of these pipeline statuses"`
	Priorities  []string `json:"priorities,omitempty" jsonschema:"Keep prospects with one of these priorities"`
	HasWhatsapp *bool    `json:"has_whatsapp,omitempty" jsonschema:"true requires a WhatsApp number, false requires none"`
	HasEmail    *bool    `json:"has_email,omitempty" jsonschema:"true requires an email, false requires none"`
	HasWebsite  *bool    `json:"has_website,omitempty" jsonschema:"true requires a website, false requires none"`
	HasPhone    *bool    `json:"has_phone,omitempty" jsonschema:"true requires a phone, false requires none"`
	MinYears    *int     `json:"min_years,omitempty" jsonschema:"Minimum years of experience"`
	MaxYears    *int     `json:"max_years,omitempty" jsonschema:"Maximum years of experience"`
	Sort        string   `json:"sort,omitempty" jsonschema:"Sort field: name, contact_name, rating, years_experience, city, profession, created_at"`
	Desc        bool     `json:"desc,omitempty" jsonschema:"Sort descending"`
	Screen      string   `json:"screen,omitempty" jsonschema:"Restrict to a screen's filters and sorts: grid, list, modern, crm"`
	Limit       int      `json:"limit,omitempty" jsonschema:"Maximum number of results (default 25)"`
}

type FindProspectsOutput struct {
	Prospects     []ProspectOutput `json:"prospects"`
	Total         int              `json:"total"`
	Matched       int              `json:"matched"`
	ActiveFilters int              `json:"active_filters"`
	Sort          string           `json:"sort"`
}

func (h *ProspectHandlers) FindProspects(ctx context.Context, _ *mcp.CallToolRequest, input FindProspectsInput) (*mcp.CallToolResult, FindProspectsOutput, error) {
	limit := input.Limit
	if limit < 0 {
		return nil, FindProspectsOutput{}, fmt.Errorf("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultFindLimit
	}
	if limit > maxFindLimit {
		limit = maxFindLimit
	}

	screen := engine.ScreenCRM
	if input.Screen != "" {
		s, err := engine.LookupScreen(input.Screen)
		if err != nil {
			return nil, FindProspectsOutput{}, err
		}
		screen = s
	}

	sort, err := parseSort(input.Sort, input.Desc)
	if err != nil {
		return nil, FindProspectsOutput{}, err
	}
	sort = screen.SortOrDefault(sort)

	q := screen.Restrict(engine.Query{
		Search:      input.Query,
		Professions: input.Professions,
		Cities:      input.Cities,
		States:      input.States,
		Ratings:     input.Ratings,
		Tags:        input.Tags,
		Statuses:    input.Statuses,
		Priorities:  input.Priorities,
		HasWhatsapp: input.HasWhatsapp,
		HasEmail:    input.HasEmail,
		HasWebsite:  input.HasWebsite,
		HasPhone:    input.HasPhone,
		MinYears:    input.MinYears,
		MaxYears:    input.MaxYears,
	}.Normalize())

	if err := h.session.Refresh(ctx); err != nil {
		return nil, FindProspectsOutput{}, err
	}

	visible := h.session.Visible(q, sort)
	out := FindProspectsOutput{
		Prospects:     make([]ProspectOutput, 0, min(limit, len(visible))),
		Total:         h.session.Len(),
		Matched:       len(visible),
		ActiveFilters: q.ActiveCount(),
		Sort:          sort.String(),
	}
	for i := range visible {
		if i >= limit {
			break
		}
		out.Prospects = append(out.Prospects, prospectToOutput(&visible[i]))
	}

	return nil, out, nil
}

// parseSort builds a Sort from a field name and direction flag. An empty
// field yields the zero Sort so screens can apply their default.
func parseSort(field string, desc bool) (engine.Sort, error) {
	if strings.TrimSpace(field) == "" {
		if desc {
			return engine.DefaultSort.Reversed(), nil
		}
		return engine.Sort{}, nil
	}
	f, err := engine.ParseSortField(field)
	if err != nil {
		return engine.Sort{}, err
	}
	s := engine.Sort{Field: f, Direction: engine.Asc}
	if desc {
		s.Direction = engine.Desc
	}
	return s, nil
}

type GetProspectInput struct {
	ID string `json:"id" jsonschema:"Prospect ID (required)"`
}

type GetProspectOutput struct {
	Prospect     ProspectOutput      `json:"prospect"`
	Interactions []InteractionOutput `json:"interactions"`
	Warning      string              `json:"warning,omitempty"`
}

func (h *ProspectHandlers) GetProspect(ctx context.Context, _ *mcp.CallToolRequest, input GetProspectInput) (*mcp.CallToolResult, GetProspectOutput, error) {
	if input.ID == "" {
		return nil, GetProspectOutput{}, fmt.Errorf("id is required")
	}

	if err := h.session.Refresh(ctx); err != nil {
		return nil, GetProspectOutput{}, err
	}

	p, err := h.session.Prospect(input.ID)
	if err != nil {
		return nil, GetProspectOutput{}, err
	}

	out := GetProspectOutput{Prospect: prospectToOutput(&p), Interactions: []InteractionOutput{}}

	interactions, err := h.session.Interactions(ctx, input.ID)
	if err != nil {
		out.Warning = err.Error()
	}
	for i := range interactions {
		out.Interactions = append(out.Interactions, interactionToOutput(&interactions[i]))
	}

	return nil, out, nil
}

type FacetsInput struct {
	AllTags bool `json:"all_tags,omitempty" jsonschema:"Return every tag instead of the top 20"`
}

func (h *ProspectHandlers) ProspectFacets(ctx context.Context, _ *mcp.CallToolRequest, input FacetsInput) (*mcp.CallToolResult, engine.Facets, error) {
	if err := h.session.Refresh(ctx); err != nil {
		return nil, engine.Facets{}, err
	}
	if input.AllTags {
		return nil, h.session.FacetsAll(), nil
	}
	return nil, h.session.Facets(), nil
}

type UpdateStatusInput struct {
	ID     string `json:"id" jsonschema:"Prospect ID (required)"`
	Status string `json:"status" jsonschema:"New status: lead, prospect, qualified, proposal, negotiation, client, inactive, lost"`
}

func (h *ProspectHandlers) UpdateProspectStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateStatusInput) (*mcp.CallToolResult, ProspectOutput, error) {
	if input.ID == "" {
		return nil, ProspectOutput{}, fmt.Errorf("id is required")
	}
	if err := h.session.Refresh(ctx); err != nil {
		return nil, ProspectOutput{}, err
	}
	if err := h.session.SetStatus(ctx, input.ID, input.Status); err != nil {
		return nil, ProspectOutput{}, err
	}

	p, err := h.session.Prospect(input.ID)
	if err != nil {
		return nil, ProspectOutput{}, err
	}
	return nil, prospectToOutput(&p), nil
}

type UpdatePriorityInput struct {
	ID       string `json:"id" jsonschema:"Prospect ID (required)"`
	Priority string `json:"priority" jsonschema:"New priority: low, medium, high, urgent"`
}

func (h *ProspectHandlers) UpdateProspectPriority(ctx context.Context, _ *mcp.CallToolRequest, input UpdatePriorityInput) (*mcp.CallToolResult, ProspectOutput, error) {
	if input.ID == "" {
		return nil, ProspectOutput{}, fmt.Errorf("id is required")
	}
	if err := h.session.Refresh(ctx); err != nil {
		return nil, ProspectOutput{}, err
	}
	if err := h.session.SetPriority(ctx, input.ID, input.Priority); err != nil {
		return nil, ProspectOutput{}, err
	}

	p, err := h.session.Prospect(input.ID)
	if err != nil {
		return nil, ProspectOutput{}, err
	}
	return nil, prospectToOutput(&p), nil
}

type LogInteractionInput struct {
	ProspectID  string `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Type        string `json:"interaction_type" jsonschema:"One of: call, whatsapp, email, meeting, proposal, follow_up, note"`
	Title       string `json:"title" jsonschema:"Short summary (required)"`
	Description string `json:"description,omitempty" jsonschema:"Longer description"`
	Notes       string `json:"notes,omitempty" jsonschema:"Private notes"`
	Status      string `json:"interaction_status,omitempty" jsonschema:"scheduled, completed, cancelled, no_response (default completed)"`
	ScheduledAt string `json:"scheduled_at,omitempty" jsonschema:"When a scheduled interaction takes place, ISO 8601"`
}

type LogInteractionOutput struct {
	Interaction InteractionOutput `json:"interaction"`
	Warning     string            `json:"warning,omitempty"`
}

func (h *ProspectHandlers) LogProspectInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, LogInteractionOutput, error) {
	if input.ProspectID == "" {
		return nil, LogInteractionOutput{}, fmt.Errorf("prospect_id is required")
	}

	draft := models.Interaction{
		ProspectID:  input.ProspectID,
		Type:        input.Type,
		Status:      input.Status,
		Title:       input.Title,
		Description: input.Description,
		Notes:       input.Notes,
	}
	if input.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			return nil, LogInteractionOutput{}, fmt.Errorf("invalid scheduled_at: %w", err)
		}
		draft.ScheduledAt = &t
	}

	if err := h.session.Refresh(ctx); err != nil {
		return nil, LogInteractionOutput{}, err
	}

	in, err := h.session.LogInteraction(ctx, draft)
	if errors.Is(err, session.ErrUnsynced) {
		return nil, LogInteractionOutput{Interaction: interactionToOutput(&in), Warning: err.Error()}, nil
	}
	if err != nil {
		return nil, LogInteractionOutput{}, err
	}

	return nil, LogInteractionOutput{Interaction: interactionToOutput(&in)}, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func prospectToOutput(p *models.Prospect) ProspectOutput {
	return ProspectOutput{
		ID:              p.ID,
		CompanyName:     p.CompanyName,
		ContactName:     p.ContactName,
		Profession:      p.Profession,
		Specialization:  p.Specialization,
		City:            p.City,
		State:           p.State,
		Phone:           p.Phone,
		Whatsapp:        p.Whatsapp,
		Email:           p.Email,
		Website:         p.Website,
		Rating:          p.Rating,
		YearsExperience: p.YearsExperience,
		Services:        p.Services,
		Tags:            p.Tags(),
		Notes:           p.Notes,
		Status:          p.EffectiveStatus(),
		Priority:        p.EffectivePriority(),
		LeadSource:      p.LeadSource,
		LastContactAt:   formatTime(p.LastContactAt),
		NextFollowUp:    formatTime(p.NextFollowUp),
		DealValue:       p.DealValue,
		Probability:     p.Probability,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func interactionToOutput(in *models.Interaction) InteractionOutput {
	return InteractionOutput{
		ID:          in.ID,
		ProspectID:  in.ProspectID,
		Type:        in.Type,
		Status:      in.Status,
		Title:       in.Title,
		Description: in.Description,
		Notes:       in.Notes,
		ScheduledAt: formatTime(in.ScheduledAt),
		CompletedAt: formatTime(in.CompletedAt),
		CreatedAt:   in.CreatedAt.UTC().Format(time.RFC3339),
		Unsynced:    in.Unsynced,
	}
}
