package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// Engine drives requests through their status graphs and applies the stock
// and asset movements that go with them. All writes of one operation commit
// together or not at all.
type Engine struct {
	repo   Repository
	graph  *Graph
	guard  *Guard
	recon  *reconciler
	locks  *keyedMutex
	now    func() time.Time
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for timestamps and document numbers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSerials sets the generator for serials of assets registered on receipt.
func WithSerials(next func() string) Option {
	return func(e *Engine) { e.recon.serial = next }
}

// New creates an engine over repo.
func New(repo Repository, opts ...Option) *Engine {
	g := NewGraph()
	e := &Engine{
		repo:   repo,
		graph:  g,
		guard:  NewGuard(g),
		recon:  &reconciler{serial: newSerial},
		locks:  newKeyedMutex(),
		now:    time.Now,
		tracer: otel.Tracer("github.com/setthawutitd-beep/Purchase-Hub/workflow"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the status graph the engine enforces.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// CreateInput describes a new request.
type CreateInput struct {
	Type         model.RequestType `json:"type"`
	Job          string            `json:"job"`
	DateRequired string            `json:"date_required"`
	Items        []model.LineItem  `json:"items"`
	Draft        bool              `json:"draft"`
}

// DraftInput replaces the editable fields of a draft.
type DraftInput struct {
	Job          string           `json:"job"`
	DateRequired string           `json:"date_required"`
	Items        []model.LineItem `json:"items"`
}

// TransitionInput asks for a request to move to Target. Receipt routes line
// items on goods receipt; Condition is recorded on assets coming back from
// loan.
type TransitionInput struct {
	RequestID string         `json:"-"`
	Actor     model.Actor    `json:"-"`
	Target    model.Status   `json:"target"`
	Note      string         `json:"note"`
	Images    []string       `json:"images"`
	Receipt   []ReceiptRoute `json:"receipt"`
	Condition string         `json:"condition"`
}

// normalizeItems trims and checks line items. Borrow requests always ask for
// one unit per line.
func normalizeItems(typ model.RequestType, items []model.LineItem) ([]model.LineItem, error) {
	out := make([]model.LineItem, 0, len(items))
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return nil, newError(KindValidation, "item %d: name is required", i+1)
		}
		if typ == model.TypeBorrow {
			it.Quantity = 1
		}
		if it.Quantity < 1 {
			return nil, newError(KindValidation, "item %d: quantity must be at least 1", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, newError(KindValidation, "item %d: unit price must not be negative", i+1)
		}
		out = append(out, it)
	}
	return out, nil
}

// Create stores a new request owned by actor, either as a draft or submitted
// into the first status of its path.
func (e *Engine) Create(ctx context.Context, actor model.Actor, in CreateInput) (*model.Request, error) {
	if !in.Type.Valid() {
		return nil, newError(KindValidation, "unknown request type %q", in.Type)
	}
	if actor.Username == "" {
		return nil, newError(KindValidation, "requester is required")
	}
	items, err := normalizeItems(in.Type, in.Items)
	if err != nil {
		return nil, err
	}
	if !in.Draft && len(items) == 0 {
		return nil, newError(KindValidation, "at least one line item is required")
	}

	ctx, span := e.tracer.Start(ctx, "workflow.create",
		trace.WithAttributes(attribute.String("request.type", string(in.Type))))
	defer span.End()

	now := e.now()
	req := &model.Request{
		Type:         in.Type,
		Status:       e.graph.FirstStatus(in.Type),
		Items:        items,
		Job:          strings.TrimSpace(in.Job),
		Requester:    actor.Username,
		DateRequired: strings.TrimSpace(in.DateRequired),
		CreatedAt:    now,
		UpdatedAt:    now,
		History:      []model.HistoryEntry{newEntry(now, ActionCreated, actor, "", nil)},
	}
	if in.Draft {
		req.Status = model.StatusDraft
	}

	err = e.repo.InTx(ctx, func(tx Tx) error {
		n, err := tx.NextValue(ctx, store.CounterRequests)
		if err != nil {
			return persistence("allocating request id", err)
		}
		req.ID = fmt.Sprintf("REQ-%06d", n)
		if err := tx.InsertRequest(ctx, req); err != nil {
			return persistence("creating request", err)
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, persistence("creating request", err))
	}

	span.SetAttributes(attribute.String("request.id", req.ID))
	slog.Info("request created", "request", req.ID, "type", req.Type, "status", req.Status, "actor", actor.String())
	return req, nil
}

// Get returns a request with its items and history.
func (e *Engine) Get(ctx context.Context, id string) (*model.Request, error) {
	var req *model.Request
	err := e.repo.View(ctx, func(tx Tx) error {
		r, err := tx.GetRequest(ctx, id)
		if err != nil {
			return persistence("loading request", err)
		}
		if r == nil {
			return newError(KindNotFound, "request %s not found", id)
		}
		req = r
		return nil
	})
	return req, err
}

// UpdateDraft replaces a draft's job, date and line items. Only the requester
// or an administrator may edit it.
func (e *Engine) UpdateDraft(ctx context.Context, actor model.Actor, id string, in DraftInput) (*model.Request, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	var req *model.Request
	err := e.repo.InTx(ctx, func(tx Tx) error {
		r, err := tx.GetRequest(ctx, id)
		if err != nil {
			return persistence("loading request", err)
		}
		if r == nil {
			return newError(KindNotFound, "request %s not found", id)
		}
		if r.Status != model.StatusDraft {
			return newError(KindInvalidTransition, "request %s is %s, only drafts can be edited", id, r.Status)
		}
		if !OwnsDraft(actor, r.Requester) {
			return newError(KindUnauthorized, "%s may not edit a draft of %s", actor, r.Requester)
		}
		items, err := normalizeItems(r.Type, in.Items)
		if err != nil {
			return err
		}

		now := e.now()
		r.Job = strings.TrimSpace(in.Job)
		r.DateRequired = strings.TrimSpace(in.DateRequired)
		r.Items = items
		r.UpdatedAt = now
		entry := newEntry(now, ActionDraftEdited, actor, "", nil)

		if err := tx.ReplaceItems(ctx, r.ID, r.Items); err != nil {
			return persistence("replacing items", err)
		}
		if err := tx.AppendHistory(ctx, r.ID, entry); err != nil {
			return persistence("recording history", err)
		}
		if err := tx.UpdateRequest(ctx, r); err != nil {
			return persistence("saving draft", err)
		}
		r.History = append(r.History, entry)
		req = r
		return nil
	})
	if err != nil {
		return nil, persistence("editing draft", err)
	}
	return req, nil
}

// Transition moves a request along one edge of its graph. The request is
// loaded, the edge and the actor's role are checked, stock is reconciled, a
// document number is allocated at the numbering checkpoint and a history
// entry appended, all inside one transaction. Transitions on the same
// request are serialized.
func (e *Engine) Transition(ctx context.Context, in TransitionInput) (*model.Request, error) {
	unlock := e.locks.Lock(in.RequestID)
	defer unlock()

	ctx, span := e.tracer.Start(ctx, "workflow.transition",
		trace.WithAttributes(
			attribute.String("request.id", in.RequestID),
			attribute.String("status.to", string(in.Target)),
			attribute.String("actor.role", in.Actor.Role),
		),
	)
	defer span.End()

	var (
		req  *model.Request
		from model.Status
	)
	err := e.repo.InTx(ctx, func(tx Tx) error {
		r, err := tx.GetRequest(ctx, in.RequestID)
		if err != nil {
			return persistence("loading request", err)
		}
		if r == nil {
			return newError(KindNotFound, "request %s not found", in.RequestID)
		}
		from = r.Status

		if _, ok := e.graph.Edge(r.Type, from, in.Target); !ok {
			return newError(KindInvalidTransition, "%s request %s cannot move from %s to %q", r.Type, r.ID, from, in.Target)
		}
		if err := e.guard.AuthorizeRequest(in.Actor, r, in.Target); err != nil {
			return err
		}
		if from == model.StatusDraft && len(r.Items) == 0 {
			return newError(KindValidation, "request %s has no line items", r.ID)
		}

		now := e.now()
		if err := e.recon.apply(ctx, tx, r, in, now); err != nil {
			return err
		}
		if r.DocNumber == "" && IsNumberingCheckpoint(r.Type, in.Target) {
			num, err := allocateDocNumber(ctx, tx, r.Type, now)
			if err != nil {
				return err
			}
			r.DocNumber = num
		}

		entry := newEntry(now, actionLabel(r.Type, from, in.Target), in.Actor, in.Note, in.Images)
		if err := tx.AppendHistory(ctx, r.ID, entry); err != nil {
			return persistence("recording history", err)
		}
		r.Status = in.Target
		r.UpdatedAt = now
		if err := tx.UpdateRequest(ctx, r); err != nil {
			return persistence("saving request", err)
		}
		r.History = append(r.History, entry)
		req = r
		return nil
	})
	if err != nil {
		return nil, fail(span, persistence("committing transition", err))
	}

	span.SetAttributes(attribute.String("status.from", string(from)), attribute.String("doc.number", req.DocNumber))
	slog.Info("request transitioned", "request", req.ID, "from", from, "to", req.Status,
		"actor", in.Actor.String(), "doc_number", req.DocNumber)
	return req, nil
}

// ReturnAsset brings a borrowed asset back outside a request transition.
func (e *Engine) ReturnAsset(ctx context.Context, actor model.Actor, id, condition string) (*model.Asset, error) {
	if err := e.guard.AuthorizeStock(actor, "return assets"); err != nil {
		return nil, err
	}
	unlock := e.locks.Lock("asset:" + id)
	defer unlock()

	var asset *model.Asset
	err := e.repo.InTx(ctx, func(tx Tx) error {
		a, err := tx.GetAsset(ctx, id)
		if err != nil {
			return persistence("loading asset", err)
		}
		if a == nil {
			return newError(KindNotFound, "asset %s not found", id)
		}
		if a.Status != model.AssetBorrowed {
			return newError(KindValidation, "asset %s is %s, not borrowed", id, a.Status)
		}
		if err := releaseAsset(ctx, tx, a, condition, e.now()); err != nil {
			return err
		}
		asset = a
		return nil
	})
	if err != nil {
		return nil, persistence("returning asset", err)
	}

	slog.Info("asset returned", "asset", asset.ID, "condition", asset.Condition, "actor", actor.String())
	return asset, nil
}

// InventoryInput describes an inventory line.
type InventoryInput struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	Unit      string          `json:"unit"`
	MinStock  int             `json:"min_stock"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (in InventoryInput) validate() error {
	if in.Quantity < 0 {
		return newError(KindValidation, "quantity must not be negative")
	}
	if in.MinStock < 0 {
		return newError(KindValidation, "minimum stock must not be negative")
	}
	if in.UnitPrice.IsNegative() {
		return newError(KindValidation, "unit price must not be negative")
	}
	return nil
}

// CreateInventoryItem adds a new inventory line.
func (e *Engine) CreateInventoryItem(ctx context.Context, actor model.Actor, in InventoryInput) (*model.InventoryItem, error) {
	if err := e.guard.AuthorizeStock(actor, "edit inventory"); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, newError(KindValidation, "name is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	it := &model.InventoryItem{
		Name:      in.Name,
		Quantity:  in.Quantity,
		Unit:      strings.TrimSpace(in.Unit),
		MinStock:  in.MinStock,
		UnitPrice: in.UnitPrice,
		UpdatedAt: e.now(),
	}
	err := e.repo.InTx(ctx, func(tx Tx) error {
		existing, err := tx.GetInventoryItemByName(ctx, it.Name)
		if err != nil {
			return persistence("checking inventory name", err)
		}
		if existing != nil {
			return newError(KindValidation, "inventory item %q already exists as %s", it.Name, existing.ID)
		}
		return tx.InsertInventoryItem(ctx, it)
	})
	if err != nil {
		return nil, persistence("creating inventory item", err)
	}

	slog.Info("inventory item created", "item", it.ID, "name", it.Name, "qty", it.Quantity, "actor", actor.String())
	return it, nil
}

// UpdateInventoryItem edits an inventory line's quantity, unit, threshold and
// price. The name is the matching key and does not change.
func (e *Engine) UpdateInventoryItem(ctx context.Context, actor model.Actor, id string, in InventoryInput) (*model.InventoryItem, error) {
	if err := e.guard.AuthorizeStock(actor, "edit inventory"); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var item *model.InventoryItem
	err := e.repo.InTx(ctx, func(tx Tx) error {
		it, err := tx.GetInventoryItem(ctx, id)
		if err != nil {
			return persistence("loading inventory item", err)
		}
		if it == nil {
			return newError(KindNotFound, "inventory item %s not found", id)
		}
		it.Quantity = in.Quantity
		if u := strings.TrimSpace(in.Unit); u != "" {
			it.Unit = u
		}
		it.MinStock = in.MinStock
		it.UnitPrice = in.UnitPrice
		it.UpdatedAt = e.now()
		if err := tx.UpdateInventoryItem(ctx, it); err != nil {
			return persistence("updating inventory item", err)
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, persistence("updating inventory item", err)
	}

	slog.Info("inventory item updated", "item", item.ID, "qty", item.Quantity, "actor", actor.String())
	return item, nil
}

// AssetInput describes an asset to register.
type AssetInput struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Serial    string          `json:"serial"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RegisterAsset adds an Available asset. An empty ID is allocated and an
// empty serial generated.
func (e *Engine) RegisterAsset(ctx context.Context, actor model.Actor, in AssetInput) (*model.Asset, error) {
	if err := e.guard.AuthorizeStock(actor, "register assets"); err != nil {
		return nil, err
	}
	a := &model.Asset{
		ID:        strings.TrimSpace(in.ID),
		Name:      strings.TrimSpace(in.Name),
		Serial:    strings.TrimSpace(in.Serial),
		Status:    model.AssetAvailable,
		Holder:    model.NoHolder,
		Condition: model.DefaultCondition,
		UnitPrice: in.UnitPrice,
		UpdatedAt: e.now(),
	}
	if a.Name == "" {
		return nil, newError(KindValidation, "name is required")
	}
	if a.UnitPrice.IsNegative() {
		return nil, newError(KindValidation, "unit price must not be negative")
	}
	if a.Serial == "" {
		a.Serial = e.recon.serial()
	}

	err := e.repo.InTx(ctx, func(tx Tx) error {
		if a.ID != "" {
			existing, err := tx.GetAsset(ctx, a.ID)
			if err != nil {
				return persistence("checking asset id", err)
			}
			if existing != nil {
				return newError(KindValidation, "asset %s already exists", a.ID)
			}
		}
		return tx.InsertAsset(ctx, a)
	})
	if err != nil {
		return nil, persistence("registering asset", err)
	}

	slog.Info("asset registered", "asset", a.ID, "name", a.Name, "actor", actor.String())
	return a, nil
}

// AssetUpdate edits an asset's status and condition. Empty fields are kept.
type AssetUpdate struct {
	Status    string `json:"status"`
	Condition string `json:"condition"`
}

// UpdateAsset edits an asset directly. Lending and returning go through
// Transition and ReturnAsset, so Borrowed can be neither set nor cleared
// here.
func (e *Engine) UpdateAsset(ctx context.Context, actor model.Actor, id string, in AssetUpdate) (*model.Asset, error) {
	if err := e.guard.AuthorizeStock(actor, "edit assets"); err != nil {
		return nil, err
	}
	switch in.Status {
	case "", model.AssetAvailable, model.AssetBorrowed, model.AssetBroken:
	default:
		return nil, newError(KindValidation, "unknown asset status %q", in.Status)
	}

	unlock := e.locks.Lock("asset:" + id)
	defer unlock()

	var asset *model.Asset
	err := e.repo.InTx(ctx, func(tx Tx) error {
		a, err := tx.GetAsset(ctx, id)
		if err != nil {
			return persistence("loading asset", err)
		}
		if a == nil {
			return newError(KindNotFound, "asset %s not found", id)
		}
		if in.Status != "" && in.Status != a.Status {
			if in.Status == model.AssetBorrowed {
				return newError(KindValidation, "assets are lent through borrow requests")
			}
			if a.Status == model.AssetBorrowed {
				return newError(KindValidation, "asset %s is borrowed, return it first", id)
			}
			a.Status = in.Status
		}
		if c := strings.TrimSpace(in.Condition); c != "" {
			a.Condition = c
		}
		a.UpdatedAt = e.now()
		if err := tx.UpdateAsset(ctx, a); err != nil {
			return persistence("updating asset", err)
		}
		asset = a
		return nil
	})
	if err != nil {
		return nil, persistence("updating asset", err)
	}

	slog.Info("asset updated", "asset", asset.ID, "status", asset.Status, "actor", actor.String())
	return asset, nil
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
