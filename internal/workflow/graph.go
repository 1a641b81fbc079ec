package workflow

import (
	"slices"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// paths is the ordered status path of each request type.
var paths = map[model.RequestType][]model.Status{
	model.TypeLocal: {
		model.StatusDraft, model.StatusPendingHead, model.StatusPendingPM,
		model.StatusApproved, model.StatusOrdered, model.StatusCompleted,
	},
	model.TypeHeadOffice: {
		model.StatusDraft, model.StatusPendingCheck, model.StatusPRIssued,
		model.StatusPOIssued, model.StatusShipping, model.StatusCompleted,
	},
	model.TypeWithdraw: {
		model.StatusDraft, model.StatusPendingHead, model.StatusApproved,
		model.StatusReadyToDisburse, model.StatusCompleted,
	},
	model.TypeBorrow: {
		model.StatusDraft, model.StatusPendingHead, model.StatusApproved,
		model.StatusReadyToDisburse, model.StatusCompleted, model.StatusReturned,
	},
}

// Edge is one permitted status change and the roles that may perform it.
type Edge struct {
	From  model.Status `json:"from"`
	To    model.Status `json:"to"`
	Roles []string     `json:"roles"`
}

// Permits reports whether role may take this edge.
func (e Edge) Permits(role string) bool {
	return slices.Contains(e.Roles, role)
}

// Graph is the directed status graph of every request type.
type Graph struct {
	paths map[model.RequestType][]model.Status
	edges map[model.RequestType]map[model.Status][]Edge
}

// NewGraph builds the graph from the status paths and the role table. Every
// consecutive pair of a path is an edge, and every Pending status also leads
// to Rejected.
func NewGraph() *Graph {
	g := &Graph{
		paths: paths,
		edges: make(map[model.RequestType]map[model.Status][]Edge, len(paths)),
	}

	for typ, path := range paths {
		out := make(map[model.Status][]Edge)
		for i := 0; i+1 < len(path); i++ {
			from, to := path[i], path[i+1]
			out[from] = append(out[from], Edge{From: from, To: to, Roles: rolesFor(typ, from)})
			if from.Pending() {
				out[from] = append(out[from], Edge{From: from, To: model.StatusRejected, Roles: rolesFor(typ, from)})
			}
		}
		g.edges[typ] = out
	}
	return g
}

// Edges returns the outgoing edges of a status.
func (g *Graph) Edges(typ model.RequestType, from model.Status) []Edge {
	return g.edges[typ][from]
}

// Edge returns the edge from -> to, if the graph has one.
func (g *Graph) Edge(typ model.RequestType, from, to model.Status) (Edge, bool) {
	for _, e := range g.edges[typ][from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Targets returns the statuses role may move a request to from its current
// status. An empty role returns every target.
func (g *Graph) Targets(typ model.RequestType, from model.Status, role string) []model.Status {
	var targets []model.Status
	for _, e := range g.edges[typ][from] {
		if role == "" || e.Permits(role) {
			targets = append(targets, e.To)
		}
	}
	return targets
}

// Statuses returns every status a request of typ can be in, path order first.
func (g *Graph) Statuses(typ model.RequestType) []model.Status {
	path, ok := g.paths[typ]
	if !ok {
		return nil
	}
	statuses := slices.Clone(path)
	for _, s := range path {
		if s.Pending() {
			return append(statuses, model.StatusRejected)
		}
	}
	return statuses
}

// FirstStatus is where a submitted (non-draft) request starts.
func (g *Graph) FirstStatus(typ model.RequestType) model.Status {
	return g.paths[typ][1]
}

// Terminal reports whether a status has no outgoing edges for typ.
func (g *Graph) Terminal(typ model.RequestType, s model.Status) bool {
	return len(g.edges[typ][s]) == 0
}
