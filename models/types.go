// ABOUTME: Data models for prospecting CRM entities
// ABOUTME: Defines Prospect and Interaction structs plus CRM status and priority constants
package models

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Prospect is a business contact tracked through the prospecting pipeline.
// Every descriptive field is optional; an empty string means absent.
type Prospect struct {
	ID              string `json:"id"`
	CompanyName     string `json:"company_name"`
	ContactName     string `json:"contact_name,omitempty"`
	Profession      string `json:"profession,omitempty"`
	Specialization  string `json:"specialization,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Whatsapp        string `json:"whatsapp,omitempty"`
	Email           string `json:"email,omitempty"`
	Website         string `json:"website,omitempty"`
	SocialMedia     string `json:"social_media,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Rating          string `json:"rating,omitempty"`
	YearsExperience string `json:"years_experience,omitempty"`
	Services        string `json:"services,omitempty"`
	IsActive        bool   `json:"is_active"`

	TagList   []string       `json:"tags,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedBy string         `json:"created_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// CRM pipeline fields
	Status        string     `json:"status,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	LeadSource    string     `json:"lead_source,omitempty"`
	LastContactAt *time.Time `json:"last_contact_at,omitempty"`
	NextFollowUp  *time.Time `json:"next_follow_up,omitempty"`
	DealValue     int64      `json:"deal_value,omitempty"` // in cents
	Probability   int        `json:"probability,omitempty"`
}

// Tags parses the comma-separated services string into trimmed, non-empty
// tags. This is the only place the services string is interpreted.
func (p *Prospect) Tags() []string {
	return SplitServices(p.Services)
}

// SplitServices splits a comma-separated services string into trimmed tags,
// dropping empty entries.
func SplitServices(services string) []string {
	if services == "" {
		return nil
	}
	parts := strings.Split(services, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// EffectiveStatus returns the status, defaulting records imported without one.
func (p *Prospect) EffectiveStatus() string {
	if p.Status == "" {
		return DefaultStatus
	}
	return p.Status
}

// EffectivePriority returns the priority, defaulting records imported without one.
func (p *Prospect) EffectivePriority() string {
	if p.Priority == "" {
		return DefaultPriority
	}
	return p.Priority
}

// DisplayName is the company name, falling back to the contact name.
func (p *Prospect) DisplayName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	if p.ContactName != "" {
		return p.ContactName
	}
	return "(unnamed)"
}

// Pipeline statuses, in funnel order.
const (
	StatusLead        = "lead"
	StatusProspect    = "prospect"
	StatusQualified   = "qualified"
	StatusProposal    = "proposal"
	StatusNegotiation = "negotiation"
	StatusClient      = "client"
	StatusInactive    = "inactive"
	StatusLost        = "lost"
)

// Priorities, lowest first.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	DefaultStatus     = StatusProspect
	DefaultPriority   = PriorityMedium
	DefaultLeadSource = "imported"
)

// Statuses lists every pipeline status in funnel order.
var Statuses = []string{
	StatusLead, StatusProspect, StatusQualified, StatusProposal,
	StatusNegotiation, StatusClient, StatusInactive, StatusLost,
}

// Priorities lists every priority from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var statusLabels = map[string]string{
	StatusLead:        "Lead",
	StatusProspect:    "Prospecto",
	StatusQualified:   "Qualificado",
	StatusProposal:    "Proposta",
	StatusNegotiation: "Negociação",
	StatusClient:      "Cliente",
	StatusInactive:    "Inativo",
	StatusLost:        "Perdido",
}

var priorityLabels = map[string]string{
	PriorityLow:    "Baixa",
	PriorityMedium: "Média",
	PriorityHigh:   "Alta",
	PriorityUrgent: "Urgente",
}

// ValidStatus reports whether s is a known pipeline status.
func ValidStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	_, ok := priorityLabels[p]
	return ok
}

// StatusLabel returns the display label for a status, or the raw value.
func StatusLabel(s string) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s
}

// PriorityLabel returns the display label for a priority, or the raw value.
func PriorityLabel(p string) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return p
}

// InteractionType constants.
const (
	InteractionCall     = "call"
	InteractionWhatsapp = "whatsapp"
	InteractionEmail    = "email"
	InteractionMeeting  = "meeting"
	InteractionProposal = "proposal"
	InteractionFollowUp = "follow_up"
	InteractionNote     = "note"
)

// InteractionTypes lists the accepted interaction types.
var InteractionTypes = []string{
	InteractionCall, InteractionWhatsapp, InteractionEmail, InteractionMeeting,
	InteractionProposal, InteractionFollowUp, InteractionNote,
}

// InteractionStatus constants.
const (
	InteractionScheduled  = "scheduled"
	InteractionCompleted  = "completed"
	InteractionCancelled  = "cancelled"
	InteractionNoResponse = "no_response"
)

// ValidInteractionType reports whether t is a known interaction type.
func ValidInteractionType(t string) bool {
	for _, known := range InteractionTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Interaction is a timestamped note or event attached to a prospect.
type Interaction struct {
	ID          string     `json:"id"`
	ProspectID  string     `json:"prospect_id"`
	UserID      string     `json:"user_id,omitempty"`
	Type        string     `json:"interaction_type"`
	Status      string     `json:"interaction_status"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Unsynced marks an interaction that exists only in this session
	// because persisting it failed.
	Unsynced bool `json:"unsynced,omitempty"`
}

// NewProspectID returns a fresh prospect identifier.
func NewProspectID() string {
	return uuid.New().String()
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewInteractionID returns a time-ordered identifier for an interaction
// created at t.
func NewInteractionID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
