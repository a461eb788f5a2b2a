// ABOUTME: Follow-up tracking CLI commands
// ABOUTME: Lists prospects due for contact and schedules the next follow-up
package cli

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
)

// followup is one prospect that needs attention.
type followup struct {
	prospect  models.Prospect
	daysSince int // -1 when never contacted
	overdue   int // days past next_follow_up, -1 when not scheduled or not yet due
}

// dueFollowups returns open prospects that are overdue, never contacted, or
// silent for at least cadence days, most urgent first.
func dueFollowups(prospects []models.Prospect, now time.Time, cadence int) []followup {
	var due []followup
	for _, p := range prospects {
		switch p.EffectiveStatus() {
		case models.StatusClient, models.StatusLost, models.StatusInactive:
			continue
		}

		f := followup{prospect: p, daysSince: -1, overdue: -1}
		if p.LastContactAt != nil {
			f.daysSince = int(now.Sub(*p.LastContactAt).Hours() / 24)
		}
		if p.NextFollowUp != nil && !p.NextFollowUp.After(now) {
			f.overdue = int(now.Sub(*p.NextFollowUp).Hours() / 24)
		}

		if f.overdue >= 0 || f.daysSince < 0 || f.daysSince >= cadence {
			due = append(due, f)
		}
	}

	slices.SortStableFunc(due, func(a, b followup) int {
		if a.overdue != b.overdue {
			return b.overdue - a.overdue
		}
		return urgency(b) - urgency(a)
	})
	return due
}

func urgency(f followup) int {
	if f.daysSince < 0 {
		return 1 << 30
	}
	return f.daysSince
}

// FollowupListCommand lists prospects needing follow-up
func FollowupListCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("follow-ups", flag.ContinueOnError)
	cadence := fs.Int("days", 14, "Days without contact before a prospect is due")
	overdueOnly := fs.Bool("overdue-only", false, "Show only prospects past their scheduled follow-up")
	priority := fs.String("priority", "", "Filter by priority")
	limit := fs.Int("limit", 20, "Maximum number of prospects to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	due := dueFollowups(s.Snapshot(), time.Now(), *cadence)

	var filtered []followup
	for _, f := range due {
		if *overdueOnly && f.overdue < 0 {
			continue
		}
		if *priority != "" && f.prospect.EffectivePriority() != *priority {
			continue
		}
		filtered = append(filtered, f)
	}
	if len(filtered) == 0 {
		_, _ = fmt.Fprintln(out, "Nobody needs a follow-up right now.")
		return nil
	}
	if *limit > 0 && len(filtered) > *limit {
		filtered = filtered[:*limit]
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tLAST CONTACT\tFOLLOW-UP\tPRIORITY\tWHATSAPP")
	_, _ = fmt.Fprintln(w, "--\t-------\t------------\t---------\t--------\t--------")

	for _, f := range filtered {
		indicator := "🟡"
		if f.overdue > 0 || f.daysSince > *cadence*2 {
			indicator = "🔴"
		}

		last := "never"
		if f.daysSince >= 0 {
			last = fmt.Sprintf("%d days ago", f.daysSince)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\t%s\n",
			shortID(f.prospect.ID), indicator, truncate(f.prospect.DisplayName(), 40), last,
			formatDate(f.prospect.NextFollowUp), models.PriorityLabel(f.prospect.EffectivePriority()),
			orDash(f.prospect.Whatsapp))
	}

	_ = w.Flush()
	return nil
}

// SetFollowupCommand schedules or clears a prospect's next follow-up.
func SetFollowupCommand(s *session.Session, args []string) error {
	fs := flag.NewFlagSet("set-follow-up", flag.ContinueOnError)
	unset := fs.Bool("clear", false, "Remove the scheduled follow-up")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || (!*unset && fs.NArg() < 2) {
		return fmt.Errorf("usage: set-follow-up [--clear] <id> [YYYY-MM-DD]")
	}

	id, err := resolveID(s, fs.Arg(0))
	if err != nil {
		return err
	}

	var when *time.Time
	if !*unset {
		at, err := parseWhen(strings.TrimSpace(fs.Arg(1)))
		if err != nil {
			return err
		}
		when = &at
	}

	p, err := s.SetFollowUp(context.Background(), id, when)
	if err != nil {
		return err
	}

	if p.NextFollowUp == nil {
		_, _ = fmt.Fprintf(out, "✓ Cleared follow-up for %s\n", p.DisplayName())
	} else {
		_, _ = fmt.Fprintf(out, "✓ Follow-up for %s on %s\n", p.DisplayName(), formatDate(p.NextFollowUp))
	}
	return nil
}
