// ABOUTME: Prospect CLI commands
// ABOUTME: Human-friendly commands for adding, listing, inspecting, and updating prospects
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
)

// AddProspectCommand adds a new prospect.
func AddProspectCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("add-prospect", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	contact := fs.String("contact", "", "Contact name")
	profession := fs.String("profession", "", "Profession")
	specialization := fs.String("specialization", "", "Specialization")
	city := fs.String("city", "", "City")
	state := fs.String("state", "", "State")
	phone := fs.String("phone", "", "Phone number")
	whatsapp := fs.String("whatsapp", "", "WhatsApp number")
	email := fs.String("email", "", "Email address")
	website := fs.String("website", "", "Website")
	rating := fs.String("rating", "", "Rating")
	years := fs.String("years", "", "Years of experience")
	services := fs.String("services", "", "Comma-separated services")
	notes := fs.String("notes", "", "Notes")
	status := fs.String("status", "", "Pipeline status (default prospect)")
	priority := fs.String("priority", "", "Priority (default medium)")
	source := fs.String("source", "", "Lead source")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*company) == "" {
		return fmt.Errorf("--company is required")
	}

	p := &models.Prospect{
		CompanyName:     *company,
		ContactName:     *contact,
		Profession:      *profession,
		Specialization:  *specialization,
		City:            *city,
		State:           *state,
		Phone:           *phone,
		Whatsapp:        *whatsapp,
		Email:           *email,
		Website:         *website,
		Rating:          *rating,
		YearsExperience: *years,
		Services:        *services,
		Notes:           *notes,
		Status:          *status,
		Priority:        *priority,
		LeadSource:      *source,
		IsActive:        true,
	}

	if err := s.AddProspect(context.Background(), p); err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Prospect created: %s (ID: %s)\n", p.CompanyName, p.ID)
	if p.ContactName != "" {
		_, _ = fmt.Fprintf(out, "  Contact: %s\n", p.ContactName)
	}
	if tags := p.Tags(); len(tags) > 0 {
		_, _ = fmt.Fprintf(out, "  Services: %s\n", strings.Join(tags, ", "))
	}
	_, _ = fmt.Fprintf(out, "  Status: %s  Priority: %s\n", models.StatusLabel(p.Status), models.PriorityLabel(p.Priority))

	return nil
}

// ListProspectsCommand prints the filtered, sorted prospect list.
func ListProspectsCommand(s *session.Session, defaultScreen string, args []string) error {
	fs := flag.NewFlagSet("list-prospects", flag.ContinueOnError)
	qf := registerQueryFlags(fs, defaultScreen)
	limit := fs.Int("limit", 50, "Maximum results (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	screen, query, sort, err := qf.build()
	if err != nil {
		return err
	}

	visible := s.Visible(query, sort)
	if len(visible) == 0 {
		_, _ = fmt.Fprintln(out, "No prospects found.")
		return nil
	}

	shown := visible
	if *limit > 0 && len(shown) > *limit {
		shown = shown[:*limit]
	}

	printProspectTable(shown, screen)

	_, _ = fmt.Fprintf(out, "\n%d of %d prospects", len(visible), s.Len())
	if n := query.ActiveCount(); n > 0 {
		_, _ = fmt.Fprintf(out, " (%d filters)", n)
	}
	_, _ = fmt.Fprintf(out, ", sorted by %s\n", sort.Field.Label())
	if len(shown) < len(visible) {
		_, _ = fmt.Fprintf(out, "Showing first %d; use --limit 0 for all.\n", len(shown))
	}
	return nil
}

func printProspectTable(prospects []models.Prospect, screen engine.Screen) {
	// Name, contact and profession share whatever width is left after fixed columns
	width := termWidth()
	nameWidth := max(16, (width-60)/3)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	crm := screen.Exposes(engine.FacetStatus)
	if crm {
		_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tCONTACT\tPROFESSION\tCITY\tRATING\tSTATUS\tPRIORITY")
	} else {
		_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tCONTACT\tPROFESSION\tCITY\tRATING\tSERVICES")
	}

	for _, p := range prospects {
		row := []string{
			shortID(p.ID),
			truncate(p.DisplayName(), nameWidth),
			truncate(orDash(p.ContactName), nameWidth),
			truncate(orDash(p.Profession), nameWidth),
			orDash(p.City),
			orDash(p.Rating),
		}
		if crm {
			row = append(row, models.StatusLabel(p.EffectiveStatus()), models.PriorityLabel(p.EffectivePriority()))
		} else {
			row = append(row, truncate(orDash(strings.Join(p.Tags(), ", ")), 30))
		}
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID accepts a full id or a unique prefix of one.
func resolveID(s *session.Session, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("prospect id is required")
	}
	if _, err := s.Prospect(ref); err == nil {
		return ref, nil
	}

	var match string
	for _, p := range s.Snapshot() {
		if strings.HasPrefix(p.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = p.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", session.ErrUnknownProspect, ref)
	}
	return match, nil
}

// ShowProspectCommand prints one prospect with its interactions.
func ShowProspectCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("show-prospect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: show-prospect <id>")
	}

	id, err := resolveID(s, fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := s.Prospect(id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s\n", p.DisplayName())
	_, _ = fmt.Fprintf(out, "%s\n", strings.Repeat("─", min(60, len([]rune(p.DisplayName()))+4)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fields := [][2]string{
		{"ID", p.ID},
		{"Contact", p.ContactName},
		{"Profession", p.Profession},
		{"Specialization", p.Specialization},
		{"City", p.City},
		{"State", p.State},
		{"Address", p.Address},
		{"Phone", p.Phone},
		{"WhatsApp", p.Whatsapp},
		{"Email", p.Email},
		{"Website", p.Website},
		{"Social", p.SocialMedia},
		{"Rating", p.Rating},
		{"Experience", p.YearsExperience},
		{"Services", strings.Join(p.Tags(), ", ")},
		{"Status", models.StatusLabel(p.EffectiveStatus())},
		{"Priority", models.PriorityLabel(p.EffectivePriority())},
		{"Lead source", p.LeadSource},
		{"Last contact", formatDate(p.LastContactAt)},
		{"Next follow-up", formatDate(p.NextFollowUp)},
		{"Notes", p.Notes},
	}
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", f[0], orDash(f[1]))
	}
	_ = w.Flush()

	interactions, err := s.Interactions(context.Background(), id)
	if err != nil {
		_, _ = fmt.Fprintf(out, "\n⚠ %v\n", err)
	}
	if len(interactions) == 0 {
		_, _ = fmt.Fprintln(out, "\nNo interactions yet.")
		return nil
	}

	_, _ = fmt.Fprintf(out, "\nInteractions (%d):\n", len(interactions))
	for _, in := range interactions {
		marker := ""
		if in.Unsynced {
			marker = " [not saved]"
		}
		_, _ = fmt.Fprintf(out, "  %s  %-9s %-11s %s%s\n",
			in.CreatedAt.Local().Format("2006-01-02 15:04"), in.Type, in.Status, in.Title, marker)
		if in.Description != "" {
			_, _ = fmt.Fprintf(out, "      %s\n", in.Description)
		}
	}
	return nil
}

// SetStatusCommand moves a prospect to a new pipeline status.
func SetStatusCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: set-status <id> <%s>", strings.Join(models.Statuses, "|"))
	}

	id, err := resolveID(s, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := s.SetStatus(context.Background(), id, fs.Arg(1)); err != nil {
		return err
	}

	p, _ := s.Prospect(id)
	_, _ = fmt.Fprintf(out, "✓ %s is now %s\n", p.DisplayName(), models.StatusLabel(p.Status))
	return nil
}

// SetPriorityCommand changes a prospect's priority.
func SetPriorityCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("set-priority", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: set-priority <id> <%s>", strings.Join(models.Priorities, "|"))
	}

	id, err := resolveID(s, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := s.SetPriority(context.Background(), id, fs.Arg(1)); err != nil {
		return err
	}

	p, _ := s.Prospect(id)
	_, _ = fmt.Fprintf(out, "✓ %s priority: %s\n", p.DisplayName(), models.PriorityLabel(p.Priority))
	return nil
}

// LogInteractionCommand records a call, message, or note.
// Flags must come before the prospect ID.
func LogInteractionCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("log-interaction", flag.ContinueOnError)
	kind := fs.String("type", models.InteractionNote, "Type: "+strings.Join(models.InteractionTypes, ", "))
	title := fs.String("title", "", "Short summary (required)")
	description := fs.String("description", "", "Longer description")
	status := fs.String("status", "", "scheduled, completed, cancelled, no_response (default completed)")
	at := fs.String("at", "", "Scheduled time, YYYY-MM-DD or YYYY-MM-DD HH:MM")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: log-interaction [flags] <id>")
	}
	if strings.TrimSpace(*title) == "" {
		return fmt.Errorf("--title is required")
	}

	id, err := resolveID(s, fs.Arg(0))
	if err != nil {
		return err
	}

	draft := models.Interaction{
		ProspectID:  id,
		Type:        *kind,
		Title:       *title,
		Description: *description,
		Status:      *status,
	}
	if *at != "" {
		t, err := parseWhen(*at)
		if err != nil {
			return err
		}
		draft.ScheduledAt = &t
		if draft.Status == "" {
			draft.Status = models.InteractionScheduled
		}
	}

	in, err := s.LogInteraction(context.Background(), draft)
	if errors.Is(err, session.ErrUnsynced) {
		_, _ = fmt.Fprintf(out, "⚠ Interaction kept locally but not saved: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "✓ Logged %s: %s (ID: %s)\n", in.Type, in.Title, in.ID)
	return nil
}

func parseWhen(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", s)
}

// DeleteProspectCommand removes a prospect and its interactions.
func DeleteProspectCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("delete-prospect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: delete-prospect <id>")
	}

	id, err := resolveID(s, fs.Arg(0))
	if err != nil {
		return err
	}
	p, _ := s.Prospect(id)

	if err := s.DeleteProspect(context.Background(), id); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "✓ Deleted %s\n", p.DisplayName())
	return nil
}

// FacetsCommand prints every facet with its option counts.
func FacetsCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("facets", flag.ContinueOnError)
	allTags := fs.Bool("all-tags", false, "List every tag instead of the top 20")
	if err := fs.Parse(args); err != nil {
		return err
	}

	facets := s.Facets()
	if *allTags {
		facets = s.FacetsAll()
	}

	sections := []struct {
		title string
		opts  []engine.FacetOption
	}{
		{"Professions", facets.Professions},
		{"Cities", facets.Cities},
		{"States", facets.States},
		{"Ratings", facets.Ratings},
		{"Services", facets.Tags},
		{"Status", facets.Statuses},
		{"Priority", facets.Priorities},
	}

	for i, sec := range sections {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintf(out, "%s (%d)\n", sec.title, len(sec.opts))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, opt := range sec.opts {
			_, _ = fmt.Fprintf(w, "  %d\t %s\n", opt.Count, opt.Label)
		}
		_ = w.Flush()
	}
	return nil
}
