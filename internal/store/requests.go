package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

const requestColumns = `id, type, status, job, requester, date_required, doc_number, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*model.Request, error) {
	r := &model.Request{}
	var docNumber sql.NullString
	if err := row.Scan(&r.ID, &r.Type, &r.Status, &r.Job, &r.Requester, &r.DateRequired,
		&docNumber, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.DocNumber = docNumber.String
	return r, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertRequest stores a new request together with its line items and any
// history entries it already carries.
func InsertRequest(ctx context.Context, q Querier, r *model.Request) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Type, r.Status, r.Job, r.Requester, r.DateRequired,
		nullable(r.DocNumber), r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if err := insertItems(ctx, q, r.ID, r.Items); err != nil {
		return err
	}

	for _, e := range r.History {
		if err := AppendHistory(ctx, q, r.ID, e); err != nil {
			return err
		}
	}
	return nil
}

// GetRequest returns a request with its line items and full history, or nil
// if there is none.
func GetRequest(ctx context.Context, q Querier, id string) (*model.Request, error) {
	r, err := scanRequest(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}

	if r.Items, err = listItems(ctx, q, r.ID); err != nil {
		return nil, err
	}
	if r.History, err = ListHistory(ctx, q, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRequests returns requests newest first with their line items. History
// is not loaded.
func ListRequests(ctx context.Context, q Querier, f model.RequestFilter) ([]model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests r WHERE 1=1`
	var args []any

	if f.Type != "" {
		query += ` AND r.type = ?`
		args = append(args, f.Type)
	}
	if f.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		query += ` AND (r.id LIKE ? OR EXISTS (
		              SELECT 1 FROM request_items ri
		              WHERE ri.request_id = r.id AND ri.position = 0 AND ri.name LIKE ?))`
		args = append(args, like, like)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}

	var requests []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Items are loaded after the cursor is closed; a transaction may only
	// have one open at a time.
	for i := range requests {
		if requests[i].Items, err = listItems(ctx, q, requests[i].ID); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// UpdateRequest writes the mutable request fields. A document number that is
// already stored is never overwritten.
func UpdateRequest(ctx context.Context, q Querier, r *model.Request) error {
	result, err := q.ExecContext(ctx,
		`UPDATE requests
		 SET status = ?, job = ?, date_required = ?,
		     doc_number = COALESCE(doc_number, ?), updated_at = ?
		 WHERE id = ?`,
		r.Status, r.Job, r.DateRequired, nullable(r.DocNumber), r.UpdatedAt.UTC(), r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating request: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating request: %s not found", r.ID)
	}
	return nil
}

// ReplaceItems swaps a request's line items for a new list.
func ReplaceItems(ctx context.Context, q Querier, requestID string, items []model.LineItem) error {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM request_items WHERE request_id = ?`, requestID,
	); err != nil {
		return fmt.Errorf("clearing request items: %w", err)
	}
	return insertItems(ctx, q, requestID, items)
}

// CountRequestsByStatus returns the number of requests in each status.
func CountRequestsByStatus(ctx context.Context, q Querier) (map[model.Status]int, error) {
	rows, err := q.QueryContext(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting requests: %w", err)
	}
	defer rows.Close()

	counts := map[model.Status]int{}
	for rows.Next() {
		var status model.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning request count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func insertItems(ctx context.Context, q Querier, requestID string, items []model.LineItem) error {
	for i, it := range items {
		images, err := encodeNames(it.Images)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO request_items (request_id, position, name, quantity, unit_price, images)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			requestID, i, it.Name, it.Quantity, it.UnitPrice.String(), images,
		)
		if err != nil {
			return fmt.Errorf("adding request item %d: %w", i, err)
		}
	}
	return nil
}

func listItems(ctx context.Context, q Querier, requestID string) ([]model.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, quantity, unit_price, images
		 FROM request_items WHERE request_id = ? ORDER BY position`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing request items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var it model.LineItem
		var price, images string
		if err := rows.Scan(&it.Name, &it.Quantity, &price, &images); err != nil {
			return nil, fmt.Errorf("scanning request item: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parsing unit price %q: %w", price, err)
		}
		if it.Images, err = decodeNames(images); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
