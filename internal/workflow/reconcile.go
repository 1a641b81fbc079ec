package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// Receipt destinations.
const (
	DestinationInventory = "inventory"
	DestinationAsset     = "asset"
)

// ReceiptRoute says where the goods of one line item go on receipt. Line
// items without a route go to inventory.
type ReceiptRoute struct {
	Item        string   `json:"item"`
	Destination string   `json:"destination"`
	AssetIDs    []string `json:"asset_ids,omitempty"`
	Serials     []string `json:"serials,omitempty"`
}

type checkpoint int

const (
	noCheckpoint checkpoint = iota
	checkpointReceipt
	checkpointDisbursement
	checkpointReturn
)

// checkpointOf returns the stock movement implied by entering to.
func checkpointOf(typ model.RequestType, to model.Status) checkpoint {
	switch {
	case to == model.StatusCompleted && (typ == model.TypeLocal || typ == model.TypeHeadOffice):
		return checkpointReceipt
	case to == model.StatusCompleted && (typ == model.TypeWithdraw || typ == model.TypeBorrow):
		return checkpointDisbursement
	case to == model.StatusReturned && typ == model.TypeBorrow:
		return checkpointReturn
	}
	return noCheckpoint
}

// reconciler applies the inventory and asset side effects of a transition.
type reconciler struct {
	serial func() string
}

func newSerial() string {
	return "SN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func (rc *reconciler) apply(ctx context.Context, tx Tx, req *model.Request, in TransitionInput, at time.Time) error {
	switch checkpointOf(req.Type, in.Target) {
	case checkpointReceipt:
		return rc.receive(ctx, tx, req, in.Receipt, at)
	case checkpointDisbursement:
		if req.Type == model.TypeWithdraw {
			return rc.withdraw(ctx, tx, req, at)
		}
		return rc.lend(ctx, tx, req, at)
	case checkpointReturn:
		return rc.returnLoan(ctx, tx, req, in.Condition, at)
	}
	return nil
}

func (rc *reconciler) receive(ctx context.Context, tx Tx, req *model.Request, routes []ReceiptRoute, at time.Time) error {
	byItem := make(map[string]ReceiptRoute, len(routes))
	for _, r := range routes {
		if !hasItem(req.Items, r.Item) {
			return newError(KindValidation, "receipt route for unknown item %q", r.Item)
		}
		switch r.Destination {
		case "", DestinationInventory, DestinationAsset:
		default:
			return newError(KindValidation, "unknown receipt destination %q", r.Destination)
		}
		if _, dup := byItem[r.Item]; dup {
			return newError(KindValidation, "more than one receipt route for %q", r.Item)
		}
		if countItems(req.Items, r.Item) > 1 && (len(r.AssetIDs) > 0 || len(r.Serials) > 0) {
			return newError(KindValidation, "%q is on several lines, asset ids and serials cannot be assigned to it", r.Item)
		}
		byItem[r.Item] = r
	}

	for _, it := range req.Items {
		route := byItem[it.Name]
		if route.Destination != DestinationAsset {
			if _, _, err := tx.ReceiveStock(ctx, it.Name, it.Quantity, it.UnitPrice, at); err != nil {
				return persistence("receiving "+it.Name, err)
			}
			continue
		}
		if err := rc.register(ctx, tx, it, route, at); err != nil {
			return err
		}
	}
	return nil
}

// register creates one Available asset per unit of it.
func (rc *reconciler) register(ctx context.Context, tx Tx, it model.LineItem, route ReceiptRoute, at time.Time) error {
	if n := len(route.AssetIDs); n > 0 && n != it.Quantity {
		return newError(KindValidation, "%q needs %d asset ids, got %d", it.Name, it.Quantity, n)
	}
	if n := len(route.Serials); n > 0 && n != it.Quantity {
		return newError(KindValidation, "%q needs %d serials, got %d", it.Name, it.Quantity, n)
	}

	for i := 0; i < it.Quantity; i++ {
		a := &model.Asset{
			Name:      it.Name,
			Serial:    rc.serial(),
			Status:    model.AssetAvailable,
			Holder:    model.NoHolder,
			Condition: model.DefaultCondition,
			UnitPrice: it.UnitPrice,
			UpdatedAt: at,
		}
		if len(route.AssetIDs) > 0 {
			a.ID = strings.TrimSpace(route.AssetIDs[i])
			existing, err := tx.GetAsset(ctx, a.ID)
			if err != nil {
				return persistence("checking asset id", err)
			}
			if existing != nil {
				return newError(KindValidation, "asset %s already exists", a.ID)
			}
		}
		if len(route.Serials) > 0 && strings.TrimSpace(route.Serials[i]) != "" {
			a.Serial = strings.TrimSpace(route.Serials[i])
		}
		if err := tx.InsertAsset(ctx, a); err != nil {
			return persistence("registering asset", err)
		}
	}
	return nil
}

func (rc *reconciler) withdraw(ctx context.Context, tx Tx, req *model.Request, at time.Time) error {
	for _, it := range req.Items {
		if _, err := tx.WithdrawStock(ctx, it.Name, it.Quantity, at); err != nil {
			if errors.Is(err, store.ErrInsufficientStock) {
				return wrapError(KindInsufficientStock, "disbursing "+it.Name, err)
			}
			return persistence("disbursing "+it.Name, err)
		}
	}
	return nil
}

// lend marks one matching Available asset per line item as Borrowed by the
// requester.
func (rc *reconciler) lend(ctx context.Context, tx Tx, req *model.Request, at time.Time) error {
	for _, it := range req.Items {
		available, err := tx.ListAvailableAssets(ctx)
		if err != nil {
			return persistence("listing available assets", err)
		}
		i, ok := matchAsset(available, it.Name)
		if !ok {
			return newError(KindInsufficientStock, "no available asset matches %q", it.Name)
		}

		a := available[i]
		a.Status = model.AssetBorrowed
		a.Holder = req.Requester
		a.RequestID = &req.ID
		a.UpdatedAt = at
		if err := tx.UpdateAsset(ctx, &a); err != nil {
			return persistence("lending asset "+a.ID, err)
		}
	}
	return nil
}

func (rc *reconciler) returnLoan(ctx context.Context, tx Tx, req *model.Request, condition string, at time.Time) error {
	lent, err := tx.ListAssetsByRequest(ctx, req.ID)
	if err != nil {
		return persistence("listing lent assets", err)
	}
	for i := range lent {
		if err := releaseAsset(ctx, tx, &lent[i], condition, at); err != nil {
			return err
		}
	}
	return nil
}

// releaseAsset makes a borrowed asset Available again.
func releaseAsset(ctx context.Context, tx Tx, a *model.Asset, condition string, at time.Time) error {
	a.Status = model.AssetAvailable
	a.Holder = model.NoHolder
	a.RequestID = nil
	if c := strings.TrimSpace(condition); c != "" {
		a.Condition = c
	}
	a.UpdatedAt = at
	if err := tx.UpdateAsset(ctx, a); err != nil {
		return persistence("returning asset "+a.ID, err)
	}
	return nil
}

// baseName strips a trailing parenthesised qualifier, as in "Drill (Bosch)".
func baseName(name string) string {
	if i := strings.Index(name, " ("); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// matchAsset picks the asset to lend for a line item name. An exact
// case-insensitive base-name match wins; otherwise the first asset whose name
// contains the base name. assets must be ordered by ID.
func matchAsset(assets []model.Asset, name string) (int, bool) {
	base := baseName(name)
	if base == "" {
		return 0, false
	}
	for i, a := range assets {
		if strings.EqualFold(baseName(a.Name), base) {
			return i, true
		}
	}
	lower := strings.ToLower(base)
	for i, a := range assets {
		if strings.Contains(strings.ToLower(a.Name), lower) {
			return i, true
		}
	}
	return 0, false
}

func hasItem(items []model.LineItem, name string) bool {
	return countItems(items, name) > 0
}

func countItems(items []model.LineItem, name string) int {
	n := 0
	for _, it := range items {
		if it.Name == name {
			n++
		}
	}
	return n
}
