// ABOUTME: MCP resource handlers for exposing prospect data
// ABOUTME: Provides read-only access to the prospect list, single prospects, facets, and the pipeline via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "prospect://"

type ResourceHandlers struct {
	session *session.Session
}

func NewResourceHandlers(s *session.Session) *ResourceHandlers {
	return &ResourceHandlers{session: s}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	if err := h.session.Refresh(ctx); err != nil {
		return nil, err
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	switch parts[0] {
	case "prospects":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllProspects(uri)
		}
		return h.readProspect(ctx, uri, parts[1])

	case "facets":
		return jsonResource(uri, h.session.FacetsAll())

	case "pipeline":
		return h.readPipeline(uri)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllProspects(uri string) (*mcp.ReadResourceResult, error) {
	snapshot := h.session.Snapshot()
	out := make([]ProspectOutput, len(snapshot))
	for i := range snapshot {
		out[i] = prospectToOutput(&snapshot[i])
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readProspect(ctx context.Context, uri, id string) (*mcp.ReadResourceResult, error) {
	p, err := h.session.Prospect(id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	out := GetProspectOutput{Prospect: prospectToOutput(&p), Interactions: []InteractionOutput{}}
	interactions, err := h.session.Interactions(ctx, id)
	if err != nil {
		out.Warning = err.Error()
	}
	for i := range interactions {
		out.Interactions = append(out.Interactions, interactionToOutput(&interactions[i]))
	}
	return jsonResource(uri, out)
}

type pipelineStage struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Value  int64  `json:"deal_value"`
}

func (h *ResourceHandlers) readPipeline(uri string) (*mcp.ReadResourceResult, error) {
	counts := map[string]int{}
	values := map[string]int64{}
	for _, p := range h.session.Snapshot() {
		status := p.EffectiveStatus()
		counts[status]++
		values[status] += p.DealValue
	}

	stages := make([]pipelineStage, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		stages = append(stages, pipelineStage{
			Status: status,
			Label:  models.StatusLabel(status),
			Count:  counts[status],
			Value:  values[status],
		})
	}
	return jsonResource(uri, stages)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
