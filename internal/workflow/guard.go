package workflow

import (
	"slices"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// stageRoles names who acts on a request while it sits in a status. The
// administrator is added to every edge by rolesFor and is not listed.
var stageRoles = map[model.RequestType]map[model.Status][]string{
	model.TypeLocal: {
		model.StatusPendingHead: {model.RoleDeptHead},
		model.StatusPendingPM:   {model.RolePM},
		model.StatusApproved:    {model.RolePurchasing},
		model.StatusOrdered:     {model.RolePurchasing},
	},
	model.TypeHeadOffice: {
		model.StatusPendingCheck: {model.RolePurchasing},
		model.StatusPRIssued:     {model.RolePurchasing},
		model.StatusPOIssued:     {model.RolePurchasing},
		model.StatusShipping:     {model.RolePurchasing},
	},
	model.TypeWithdraw: {
		model.StatusPendingHead:     {model.RoleDeptHead},
		model.StatusApproved:        {model.RoleStoreKeeper},
		model.StatusReadyToDisburse: {model.RoleStoreKeeper},
	},
	model.TypeBorrow: {
		model.StatusPendingHead:     {model.RoleDeptHead},
		model.StatusApproved:        {model.RoleStoreKeeper},
		model.StatusReadyToDisburse: {model.RoleStoreKeeper},
		model.StatusCompleted:       {model.RoleStoreKeeper},
	},
}

// rolesFor returns the roles permitted on edges leaving from. Any role may
// submit its own draft; AuthorizeRequest checks ownership.
func rolesFor(typ model.RequestType, from model.Status) []string {
	if from == model.StatusDraft {
		return slices.Clone(model.Roles)
	}
	roles := slices.Clone(stageRoles[typ][from])
	if !slices.Contains(roles, model.RoleAdmin) {
		roles = append(roles, model.RoleAdmin)
	}
	return roles
}

// Guard decides whether an actor may perform an operation.
type Guard struct {
	graph *Graph
}

// NewGuard returns a guard over g.
func NewGuard(g *Graph) *Guard {
	return &Guard{graph: g}
}

// Authorize checks that actor may move a request of typ from -> to. The edge
// must exist; callers check that first.
func (g *Guard) Authorize(actor model.Actor, typ model.RequestType, from, to model.Status) error {
	e, ok := g.graph.Edge(typ, from, to)
	if !ok || !e.Permits(actor.Role) {
		return newError(KindUnauthorized, "%s may not move %s request from %s to %s", actor, typ, from, to)
	}
	return nil
}

// OwnsDraft reports whether actor may edit or submit a draft raised by
// requester.
func OwnsDraft(actor model.Actor, requester string) bool {
	return actor.Username == requester || actor.Role == model.RoleAdmin
}

// AuthorizeRequest checks the edge roles for req and, while req is a draft,
// that actor owns it.
func (g *Guard) AuthorizeRequest(actor model.Actor, req *model.Request, to model.Status) error {
	if err := g.Authorize(actor, req.Type, req.Status, to); err != nil {
		return err
	}
	if req.Status == model.StatusDraft && !OwnsDraft(actor, req.Requester) {
		return newError(KindUnauthorized, "%s may not submit a draft of %s", actor, req.Requester)
	}
	return nil
}

// CanManageStock reports whether role may edit inventory and assets directly
// and return borrowed assets outside a request.
func CanManageStock(role string) bool {
	return role == model.RoleStoreKeeper || role == model.RoleAdmin
}

// AuthorizeStock fails with an unauthorized error unless actor may manage
// stock.
func (g *Guard) AuthorizeStock(actor model.Actor, op string) error {
	if !CanManageStock(actor.Role) {
		return newError(KindUnauthorized, "%s may not %s", actor, op)
	}
	return nil
}
