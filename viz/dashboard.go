// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII dashboard for the prospect pipeline
package viz

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/prospect/models"
)

// Days without contact before a prospect needs attention.
const StaleAfterDays = 30

type DashboardStats struct {
	// Pipeline overview, keyed by effective status
	PipelineByStatus map[string]PipelineStageStats

	// Overall stats
	TotalProspects int
	WithWhatsapp   int
	WithEmail      int
	WithWebsite    int
	ByPriority     map[string]int

	// Most common professions, highest count first
	TopProfessions []NamedCount

	// Needs attention
	NeverContacted []StaleProspect
	StaleProspects []StaleProspect
	FollowUpsDue   []StaleProspect
}

type PipelineStageStats struct {
	Status string
	Count  int
	Value  int64 // in cents
}

type NamedCount struct {
	Name  string
	Count int
}

type StaleProspect struct {
	ID        string
	Name      string
	DaysSince int
}

// GenerateDashboardStats summarizes the given prospects as of now.
func GenerateDashboardStats(prospects []models.Prospect, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		PipelineByStatus: make(map[string]PipelineStageStats),
		ByPriority:       make(map[string]int),
		TotalProspects:   len(prospects),
	}

	professions := make(map[string]int)
	for i := range prospects {
		p := &prospects[i]

		status := p.EffectiveStatus()
		pstats := stats.PipelineByStatus[status]
		pstats.Status = status
		pstats.Count++
		pstats.Value += p.DealValue
		stats.PipelineByStatus[status] = pstats

		stats.ByPriority[p.EffectivePriority()]++

		if strings.TrimSpace(p.Whatsapp) != "" {
			stats.WithWhatsapp++
		}
		if strings.TrimSpace(p.Email) != "" {
			stats.WithEmail++
		}
		if strings.TrimSpace(p.Website) != "" {
			stats.WithWebsite++
		}
		if p.Profession != "" {
			professions[p.Profession]++
		}

		// Closed pipelines don't need chasing
		if status == models.StatusClient || status == models.StatusLost || status == models.StatusInactive {
			continue
		}

		entry := StaleProspect{ID: p.ID, Name: p.DisplayName()}
		if p.LastContactAt == nil {
			entry.DaysSince = -1
			stats.NeverContacted = append(stats.NeverContacted, entry)
		} else if days := int(now.Sub(*p.LastContactAt).Hours() / 24); days > StaleAfterDays {
			entry.DaysSince = days
			stats.StaleProspects = append(stats.StaleProspects, entry)
		}

		if p.NextFollowUp != nil && !p.NextFollowUp.After(now) {
			due := entry
			due.DaysSince = int(now.Sub(*p.NextFollowUp).Hours() / 24)
			stats.FollowUpsDue = append(stats.FollowUpsDue, due)
		}
	}

	for name, count := range professions {
		stats.TopProfessions = append(stats.TopProfessions, NamedCount{Name: name, Count: count})
	}
	slices.SortFunc(stats.TopProfessions, func(a, b NamedCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(stats.TopProfessions) > 5 {
		stats.TopProfessions = stats.TopProfessions[:5]
	}

	slices.SortFunc(stats.StaleProspects, func(a, b StaleProspect) int {
		return b.DaysSince - a.DaysSince
	})

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  PROSPECÇÃO ATIVA DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.PipelineByStatus)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d prospects  💬 %d WhatsApp  ✉️  %d email  🌐 %d website\n",
		stats.TotalProspects, stats.WithWhatsapp, stats.WithEmail, stats.WithWebsite))
	out.WriteString("  Priority:")
	for _, priority := range models.Priorities {
		out.WriteString(fmt.Sprintf("  %s %d", models.PriorityLabel(priority), stats.ByPriority[priority]))
	}
	out.WriteString("\n\n")

	if len(stats.TopProfessions) > 0 {
		out.WriteString("TOP PROFESSIONS\n")
		for _, pc := range stats.TopProfessions {
			out.WriteString(fmt.Sprintf("  %-24s %d\n", pc.Name, pc.Count))
		}
		out.WriteString("\n")
	}

	if len(stats.NeverContacted) > 0 || len(stats.StaleProspects) > 0 || len(stats.FollowUpsDue) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.FollowUpsDue) > 0 {
			out.WriteString(fmt.Sprintf("  ⏰ %d follow-ups due\n", len(stats.FollowUpsDue)))
		}
		if len(stats.StaleProspects) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d prospects - no contact in %d+ days\n", len(stats.StaleProspects), StaleAfterDays))
		}
		if len(stats.NeverContacted) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d prospects never contacted\n", len(stats.NeverContacted)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline map[string]PipelineStageStats) {
	// Find max count for scaling
	maxCount := 0
	for _, pstats := range pipeline {
		maxCount = max(maxCount, pstats.Count)
	}
	if maxCount == 0 {
		out.WriteString("  (empty)\n")
		return
	}

	for _, status := range models.Statuses {
		pstats, exists := pipeline[status]
		if !exists {
			continue
		}

		// Calculate bar length (0-10 blocks)
		barLength := (pstats.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		line := fmt.Sprintf("  %-13s %s  %3d", models.StatusLabel(status), bar, pstats.Count)
		if pstats.Value > 0 {
			line += fmt.Sprintf(" (R$%dK)", pstats.Value/100000)
		}
		out.WriteString(line + "\n")
	}
}
