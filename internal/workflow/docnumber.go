package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// docPrefixes is the document number prefix of each request type.
var docPrefixes = map[model.RequestType]string{
	model.TypeLocal:      "LPO",
	model.TypeHeadOffice: "HPO",
	model.TypeWithdraw:   "WID",
	model.TypeBorrow:     "BOR",
}

// numberingCheckpoints is the status at whose entry a request of each type
// receives its document number.
var numberingCheckpoints = map[model.RequestType]model.Status{
	model.TypeLocal:      model.StatusOrdered,
	model.TypeHeadOffice: model.StatusPOIssued,
	model.TypeWithdraw:   model.StatusReadyToDisburse,
	model.TypeBorrow:     model.StatusReadyToDisburse,
}

// IsNumberingCheckpoint reports whether entering to allocates a document
// number for typ.
func IsNumberingCheckpoint(typ model.RequestType, to model.Status) bool {
	s, ok := numberingCheckpoints[typ]
	return ok && s == to
}

// FormatDocNumber renders PREFIX-YYMM-NNN.
func FormatDocNumber(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, at.Format("0601"), seq)
}

// allocateDocNumber takes the next number of typ's sequence. The counter
// increment runs in the caller's transaction, so a rolled back transition
// gives its number back.
func allocateDocNumber(ctx context.Context, tx Tx, typ model.RequestType, at time.Time) (string, error) {
	prefix, ok := docPrefixes[typ]
	if !ok {
		return "", newError(KindValidation, "no document prefix for type %q", typ)
	}
	seq, err := tx.NextValue(ctx, store.DocumentCounter(prefix))
	if err != nil {
		return "", persistence("allocating document number", err)
	}
	return FormatDocNumber(prefix, at, seq), nil
}
