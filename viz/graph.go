// ABOUTME: Graphviz generation for the prospect pipeline and market
// ABOUTME: Renders status funnels and profession-by-city maps as DOT source
package viz

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/prospect/models"
)

// GraphGenerator renders graphs over a fixed set of prospects.
type GraphGenerator struct {
	prospects []models.Prospect
}

func NewGraphGenerator(prospects []models.Prospect) *GraphGenerator {
	return &GraphGenerator{prospects: prospects}
}

var statusColors = map[string]string{
	models.StatusLead:        "lightgrey",
	models.StatusProspect:    "lightblue",
	models.StatusQualified:   "lightcyan",
	models.StatusProposal:    "lightyellow",
	models.StatusNegotiation: "orange",
	models.StatusClient:      "lightgreen",
	models.StatusInactive:    "grey",
	models.StatusLost:        "salmon",
}

func newGraph(ctx context.Context) (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create graphviz: %w", err)
	}
	graph, err := gv.Graph()
	if err != nil {
		_ = gv.Close()
		return nil, nil, fmt.Errorf("failed to create graph: %w", err)
	}
	return gv, graph, nil
}

func render(ctx context.Context, gv *graphviz.Graphviz, graph *cgraph.Graph, format graphviz.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.Bytes(), nil
}

// GeneratePipelineGraph draws one node per status in funnel order with the
// prospects in it. Statuses with more than perStatus prospects are summarized.
func (g *GraphGenerator) GeneratePipelineGraph(perStatus int) (string, error) {
	out, err := g.pipeline(perStatus, graphviz.XDOT)
	return string(out), err
}

// PipelineSVG renders the pipeline graph as SVG.
func (g *GraphGenerator) PipelineSVG(perStatus int) ([]byte, error) {
	return g.pipeline(perStatus, graphviz.SVG)
}

func (g *GraphGenerator) pipeline(perStatus int, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, graph, err := newGraph(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = graph.Close(); _ = gv.Close() }()

	graph.SetLabel("Prospect Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	byStatus := make(map[string][]models.Prospect)
	for _, p := range g.prospects {
		status := p.EffectiveStatus()
		byStatus[status] = append(byStatus[status], p)
	}

	var prev *cgraph.Node
	for _, status := range models.Statuses {
		members := byStatus[status]

		stage, err := graph.CreateNodeByName("status_" + status)
		if err != nil {
			return nil, fmt.Errorf("failed to create status node: %w", err)
		}
		stage.SetLabel(fmt.Sprintf("%s\n(%d)", models.StatusLabel(status), len(members)))
		stage.SetShape("box")
		stage.SetStyle("filled")
		stage.SetFillColor(statusColors[status])

		// Inactive and lost sit outside the funnel
		if status != models.StatusInactive && status != models.StatusLost {
			if prev != nil {
				edge, err := graph.CreateEdgeByName("next_"+status, prev, stage)
				if err != nil {
					return nil, fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = stage
		}

		shown := members
		if perStatus >= 0 && len(shown) > perStatus {
			shown = shown[:perStatus]
		}
		for _, p := range shown {
			node, err := graph.CreateNodeByName("prospect_" + p.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to create prospect node: %w", err)
			}
			node.SetLabel(prospectLabel(&p))
			node.SetShape("ellipse")
			if p.EffectivePriority() == models.PriorityUrgent || p.EffectivePriority() == models.PriorityHigh {
				node.SetColor("red")
			}
			edge, err := graph.CreateEdgeByName("in_"+p.ID, stage, node)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
			edge.SetDir("none")
		}

		if rest := len(members) - len(shown); rest > 0 {
			more, err := graph.CreateNodeByName("more_" + status)
			if err != nil {
				return nil, fmt.Errorf("failed to create summary node: %w", err)
			}
			more.SetLabel(fmt.Sprintf("+%d more", rest))
			more.SetShape("plaintext")
			edge, err := graph.CreateEdgeByName("more_"+status, stage, more)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetDir("none")
		}
	}

	return render(ctx, gv, graph, format)
}

func prospectLabel(p *models.Prospect) string {
	label := p.DisplayName()
	if p.City != "" {
		label += "\n" + p.City
	}
	return label
}

// GenerateMarketGraph links each profession to the cities it appears in,
// weighting edges by prospect count.
func (g *GraphGenerator) GenerateMarketGraph() (string, error) {
	ctx := context.Background()
	gv, graph, err := newGraph(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = graph.Close(); _ = gv.Close() }()

	graph.SetLabel("Prospects by Profession and City")
	graph.SetLayout("neato")

	type pair struct{ profession, city string }
	counts := make(map[pair]int)
	for _, p := range g.prospects {
		profession := strings.TrimSpace(p.Profession)
		city := strings.TrimSpace(p.City)
		if profession == "" || city == "" {
			continue
		}
		counts[pair{profession, city}]++
	}

	pairs := make([]pair, 0, len(counts))
	for k := range counts {
		pairs = append(pairs, k)
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := strings.Compare(a.profession, b.profession); c != 0 {
			return c
		}
		return strings.Compare(a.city, b.city)
	})

	nodes := make(map[string]*cgraph.Node)
	node := func(kind, name string) (*cgraph.Node, error) {
		key := kind + "_" + name
		if n, ok := nodes[key]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s node: %w", kind, err)
		}
		n.SetLabel(name)
		n.SetStyle("filled")
		if kind == "profession" {
			n.SetShape("box")
			n.SetFillColor("lightblue")
		} else {
			n.SetShape("ellipse")
			n.SetFillColor("lightgreen")
		}
		nodes[key] = n
		return n, nil
	}

	for _, pr := range pairs {
		from, err := node("profession", pr.profession)
		if err != nil {
			return "", err
		}
		to, err := node("city", pr.city)
		if err != nil {
			return "", err
		}
		edge, err := graph.CreateEdgeByName(pr.profession+"->"+pr.city, from, to)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(fmt.Sprintf("%d", counts[pr]))
		edge.SetDir("none")
	}

	out, err := render(ctx, gv, graph, graphviz.XDOT)
	return string(out), err
}
