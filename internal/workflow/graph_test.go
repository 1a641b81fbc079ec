package workflow

import (
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// declared lists every edge the graph must contain and nothing else.
var declared = map[model.RequestType]map[model.Status][]model.Status{
	model.TypeLocal: {
		model.StatusDraft:       {model.StatusPendingHead},
		model.StatusPendingHead: {model.StatusPendingPM, model.StatusRejected},
		model.StatusPendingPM:   {model.StatusApproved, model.StatusRejected},
		model.StatusApproved:    {model.StatusOrdered},
		model.StatusOrdered:     {model.StatusCompleted},
	},
	model.TypeHeadOffice: {
		model.StatusDraft:        {model.StatusPendingCheck},
		model.StatusPendingCheck: {model.StatusPRIssued, model.StatusRejected},
		model.StatusPRIssued:     {model.StatusPOIssued},
		model.StatusPOIssued:     {model.StatusShipping},
		model.StatusShipping:     {model.StatusCompleted},
	},
	model.TypeWithdraw: {
		model.StatusDraft:           {model.StatusPendingHead},
		model.StatusPendingHead:     {model.StatusApproved, model.StatusRejected},
		model.StatusApproved:        {model.StatusReadyToDisburse},
		model.StatusReadyToDisburse: {model.StatusCompleted},
	},
	model.TypeBorrow: {
		model.StatusDraft:           {model.StatusPendingHead},
		model.StatusPendingHead:     {model.StatusApproved, model.StatusRejected},
		model.StatusApproved:        {model.StatusReadyToDisburse},
		model.StatusReadyToDisburse: {model.StatusCompleted},
		model.StatusCompleted:       {model.StatusReturned},
	},
}

var allStatuses = []model.Status{
	model.StatusDraft, model.StatusPendingHead, model.StatusPendingPM, model.StatusPendingCheck,
	model.StatusApproved, model.StatusOrdered, model.StatusPRIssued, model.StatusPOIssued,
	model.StatusShipping, model.StatusReadyToDisburse, model.StatusCompleted, model.StatusReturned,
	model.StatusRejected,
}

func TestGraphHasExactlyDeclaredEdges(t *testing.T) {
	g := NewGraph()
	rapid.Check(t, func(t *rapid.T) {
		typ := rapid.SampledFrom(model.RequestTypes).Draw(t, "type")
		from := rapid.SampledFrom(allStatuses).Draw(t, "from")
		to := rapid.SampledFrom(allStatuses).Draw(t, "to")

		_, got := g.Edge(typ, from, to)
		want := slices.Contains(declared[typ][from], to)
		if got != want {
			t.Fatalf("%s %s -> %s: edge present = %v, want %v", typ, from, to, got, want)
		}
	})
}

func TestGraphRoles(t *testing.T) {
	g := NewGraph()
	for _, typ := range model.RequestTypes {
		for _, from := range g.Statuses(typ) {
			for _, e := range g.Edges(typ, from) {
				if !e.Permits(model.RoleAdmin) {
					t.Errorf("%s %s -> %s: admin not permitted", typ, e.From, e.To)
				}
				if from == model.StatusDraft {
					for _, role := range model.Roles {
						if !e.Permits(role) {
							t.Errorf("%s draft submit: %s not permitted", typ, role)
						}
					}
				} else if e.Permits(model.RoleUser) {
					t.Errorf("%s %s -> %s: plain user permitted", typ, e.From, e.To)
				}
			}
		}
	}
}

func TestGuardTable(t *testing.T) {
	guard := NewGuard(NewGraph())

	tests := []struct {
		typ      model.RequestType
		from, to model.Status
		role     string
		allowed  bool
	}{
		{model.TypeLocal, model.StatusPendingHead, model.StatusPendingPM, model.RoleDeptHead, true},
		{model.TypeLocal, model.StatusPendingHead, model.StatusRejected, model.RoleDeptHead, true},
		{model.TypeLocal, model.StatusPendingHead, model.StatusPendingPM, model.RolePM, false},
		{model.TypeLocal, model.StatusPendingPM, model.StatusApproved, model.RolePM, true},
		{model.TypeLocal, model.StatusPendingPM, model.StatusRejected, model.RoleDeptHead, false},
		{model.TypeLocal, model.StatusApproved, model.StatusOrdered, model.RolePurchasing, true},
		{model.TypeLocal, model.StatusOrdered, model.StatusCompleted, model.RolePurchasing, true},
		{model.TypeLocal, model.StatusOrdered, model.StatusCompleted, model.RoleStoreKeeper, false},
		{model.TypeHeadOffice, model.StatusPendingCheck, model.StatusRejected, model.RolePurchasing, true},
		{model.TypeHeadOffice, model.StatusShipping, model.StatusCompleted, model.RolePurchasing, true},
		{model.TypeHeadOffice, model.StatusPRIssued, model.StatusPOIssued, model.RolePM, false},
		{model.TypeWithdraw, model.StatusApproved, model.StatusReadyToDisburse, model.RoleStoreKeeper, true},
		{model.TypeWithdraw, model.StatusReadyToDisburse, model.StatusCompleted, model.RoleStoreKeeper, true},
		{model.TypeWithdraw, model.StatusReadyToDisburse, model.StatusCompleted, model.RolePurchasing, false},
		{model.TypeBorrow, model.StatusCompleted, model.StatusReturned, model.RoleStoreKeeper, true},
		{model.TypeBorrow, model.StatusCompleted, model.StatusReturned, model.RoleUser, false},
		{model.TypeBorrow, model.StatusDraft, model.StatusPendingHead, model.RoleUser, true},
		{model.TypeBorrow, model.StatusApproved, model.StatusReadyToDisburse, "", false},
	}

	for _, tt := range tests {
		actor := model.Actor{Username: "x", Role: tt.role}
		err := guard.Authorize(actor, tt.typ, tt.from, tt.to)
		if tt.allowed && err != nil {
			t.Errorf("%s %s -> %s as %s: unexpected error %v", tt.typ, tt.from, tt.to, tt.role, err)
		}
		if !tt.allowed && KindOf(err) != KindUnauthorized {
			t.Errorf("%s %s -> %s as %s: expected unauthorized, got %v", tt.typ, tt.from, tt.to, tt.role, err)
		}
	}
}

func TestCanManageStock(t *testing.T) {
	for _, role := range model.Roles {
		want := role == model.RoleAdmin || role == model.RoleStoreKeeper
		if got := CanManageStock(role); got != want {
			t.Errorf("CanManageStock(%q) = %v, want %v", role, got, want)
		}
	}
}

func TestAuthorizeRequestChecksDraftOwner(t *testing.T) {
	guard := NewGuard(NewGraph())
	draft := &model.Request{Type: model.TypeWithdraw, Status: model.StatusDraft, Requester: "somchai"}

	tests := []struct {
		actor model.Actor
		ok    bool
	}{
		{model.Actor{Username: "somchai", Role: model.RoleUser}, true},
		{model.Actor{Username: "root", Role: model.RoleAdmin}, true},
		{model.Actor{Username: "mallory", Role: model.RoleUser}, false},
		{model.Actor{Username: "tan", Role: model.RoleStoreKeeper}, false},
	}
	for _, tt := range tests {
		err := guard.AuthorizeRequest(tt.actor, draft, model.StatusPendingHead)
		if (err == nil) != tt.ok {
			t.Errorf("AuthorizeRequest(%s) = %v, want ok=%v", tt.actor, err, tt.ok)
		}
		if err != nil && KindOf(err) != KindUnauthorized {
			t.Errorf("expected unauthorized, got %v", err)
		}
	}

	// Past Draft only the edge roles count.
	pending := &model.Request{Type: model.TypeWithdraw, Status: model.StatusPendingHead, Requester: "somchai"}
	if err := guard.AuthorizeRequest(model.Actor{Username: "lek", Role: model.RoleDeptHead}, pending, model.StatusApproved); err != nil {
		t.Errorf("dept head approving: %v", err)
	}
}

func TestGraphInspection(t *testing.T) {
	g := NewGraph()

	if got := g.FirstStatus(model.TypeHeadOffice); got != model.StatusPendingCheck {
		t.Errorf("HeadOffice first status = %s", got)
	}
	if got := g.FirstStatus(model.TypeBorrow); got != model.StatusPendingHead {
		t.Errorf("Borrow first status = %s", got)
	}

	statuses := g.Statuses(model.TypeBorrow)
	if statuses[len(statuses)-1] != model.StatusRejected || len(statuses) != 7 {
		t.Errorf("unexpected Borrow statuses %v", statuses)
	}

	targets := g.Targets(model.TypeLocal, model.StatusPendingPM, model.RolePM)
	if !slices.Equal(targets, []model.Status{model.StatusApproved, model.StatusRejected}) {
		t.Errorf("unexpected PM targets %v", targets)
	}
	if targets := g.Targets(model.TypeLocal, model.StatusPendingPM, model.RoleStoreKeeper); len(targets) != 0 {
		t.Errorf("store keeper should have no targets, got %v", targets)
	}

	for _, s := range []model.Status{model.StatusRejected, model.StatusReturned} {
		if !g.Terminal(model.TypeBorrow, s) {
			t.Errorf("%s should be terminal for Borrow", s)
		}
	}
	if !g.Terminal(model.TypeLocal, model.StatusCompleted) {
		t.Error("Completed should be terminal for Local")
	}
}
