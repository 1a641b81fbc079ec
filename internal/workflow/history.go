package workflow

import (
	"slices"
	"strings"
	"time"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// History actions recorded outside transitions.
const (
	ActionCreated     = "Created"
	ActionDraftEdited = "Draft edited"
)

// actionLabel describes a transition for the history log.
func actionLabel(typ model.RequestType, from, to model.Status) string {
	switch {
	case from == model.StatusDraft:
		return "Submitted"
	case to == model.StatusRejected:
		return "Rejected"
	case to == model.StatusApproved:
		return "Approved"
	}
	switch checkpointOf(typ, to) {
	case checkpointReceipt:
		return "Goods received"
	case checkpointDisbursement:
		return "Disbursed"
	case checkpointReturn:
		return "Returned"
	}
	return "Moved to " + string(to)
}

// newEntry builds a history entry. Image names are copied so later changes to
// the caller's slice cannot reach the log.
func newEntry(at time.Time, action string, actor model.Actor, note string, images []string) model.HistoryEntry {
	return model.HistoryEntry{
		At:     at,
		Action: action,
		Actor:  actor.String(),
		Note:   strings.TrimSpace(note),
		Images: slices.Clone(images),
	}
}
