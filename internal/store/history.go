package store

import (
	"context"
	"fmt"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// AppendHistory adds an entry to a request's audit trail. The table rejects
// updates and deletes, so entries are permanent once written.
func AppendHistory(ctx context.Context, q Querier, requestID string, e model.HistoryEntry) error {
	images, err := encodeNames(e.Images)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO request_history (request_id, at, action, actor, note, images)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		requestID, e.At.UTC(), e.Action, e.Actor, e.Note, images,
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// ListHistory returns a request's audit trail in insertion order.
func ListHistory(ctx context.Context, q Querier, requestID string) ([]model.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT at, action, actor, note, images
		 FROM request_history WHERE request_id = ? ORDER BY id`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var images string
		if err := rows.Scan(&e.At, &e.Action, &e.Actor, &e.Note, &images); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if e.Images, err = decodeNames(images); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
