package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestType selects the approval pipeline a request goes through.
type RequestType string

// Request types.
const (
	TypeLocal      RequestType = "Local"
	TypeHeadOffice RequestType = "HeadOffice"
	TypeWithdraw   RequestType = "Withdraw"
	TypeBorrow     RequestType = "Borrow"
)

// RequestTypes lists every request type.
var RequestTypes = []RequestType{TypeLocal, TypeHeadOffice, TypeWithdraw, TypeBorrow}

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	for _, rt := range RequestTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Status is a step in a request's pipeline.
type Status string

// Request statuses.
const (
	StatusDraft           Status = "Draft"
	StatusPendingHead     Status = "Pending Head"
	StatusPendingPM       Status = "Pending PM"
	StatusPendingCheck    Status = "Pending Check"
	StatusApproved        Status = "Approved"
	StatusOrdered         Status = "Ordered"
	StatusPRIssued        Status = "PR Issued"
	StatusPOIssued        Status = "PO Issued"
	StatusShipping        Status = "Shipping"
	StatusReadyToDisburse Status = "Ready to Disburse"
	StatusCompleted       Status = "Completed"
	StatusReturned        Status = "Returned"
	StatusRejected        Status = "Rejected"
)

// Pending reports whether the status is an approval wait, which may always
// be rejected.
func (s Status) Pending() bool {
	return strings.HasPrefix(string(s), "Pending")
}

// Request is a purchase, withdrawal, or loan moving through approval.
type Request struct {
	ID           string         `json:"id"`
	Type         RequestType    `json:"type"`
	Status       Status         `json:"status"`
	Items        []LineItem     `json:"items"`
	Job          string         `json:"job,omitempty"`
	Requester    string         `json:"requester"`
	DateRequired string         `json:"date_required,omitempty"`
	DocNumber    string         `json:"doc_number,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	History      []HistoryEntry `json:"history"`
}

// Total is the sum of quantity times unit price over all line items.
func (r *Request) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// LineItem is one requested name/quantity/price tuple.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Images    []string        `json:"images,omitempty"`
}

// Subtotal is quantity times unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// HistoryEntry is one immutable audit record on a request.
type HistoryEntry struct {
	At     time.Time `json:"at"`
	Action string    `json:"action"`
	Actor  string    `json:"actor"`
	Note   string    `json:"note,omitempty"`
	Images []string  `json:"images,omitempty"`
}

// RequestFilter narrows request listings. Empty fields match everything.
type RequestFilter struct {
	Type   RequestType
	Status Status
	Search string
}
