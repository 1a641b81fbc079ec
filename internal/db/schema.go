package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user'
                  CHECK (role IN ('admin', 'user', 'dept_head', 'pm', 'purchasing', 'store_keeper')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL CHECK (value > 0)
);

CREATE TABLE IF NOT EXISTS requests (
    id            TEXT PRIMARY KEY,
    type          TEXT NOT NULL CHECK (type IN ('Local', 'HeadOffice', 'Withdraw', 'Borrow')),
    status        TEXT NOT NULL,
    job           TEXT NOT NULL DEFAULT '',
    requester     TEXT NOT NULL,
    date_required TEXT NOT NULL DEFAULT '',
    doc_number    TEXT,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_doc_number
    ON requests(doc_number) WHERE doc_number IS NOT NULL;

CREATE TABLE IF NOT EXISTS request_items (
    request_id TEXT NOT NULL REFERENCES requests(id),
    position   INTEGER NOT NULL,
    name       TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity >= 1),
    unit_price TEXT NOT NULL DEFAULT '0',
    images     TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (request_id, position)
);

CREATE TABLE IF NOT EXISTS request_history (
    id         INTEGER PRIMARY KEY,
    request_id TEXT NOT NULL REFERENCES requests(id),
    at         DATETIME NOT NULL,
    action     TEXT NOT NULL,
    actor      TEXT NOT NULL,
    note       TEXT NOT NULL DEFAULT '',
    images     TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_request_history_request
    ON request_history(request_id, id);

CREATE TRIGGER IF NOT EXISTS request_history_no_update
    BEFORE UPDATE ON request_history
BEGIN
    SELECT RAISE(ABORT, 'request history is append-only');
END;

CREATE TRIGGER IF NOT EXISTS request_history_no_delete
    BEFORE DELETE ON request_history
BEGIN
    SELECT RAISE(ABORT, 'request history is append-only');
END;

CREATE TABLE IF NOT EXISTS inventory (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    quantity   INTEGER NOT NULL CHECK (quantity >= 0),
    unit       TEXT NOT NULL DEFAULT '',
    min_stock  INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
    unit_price TEXT NOT NULL DEFAULT '0',
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    serial     TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'Available' CHECK (status IN ('Available', 'Borrowed', 'Broken')),
    holder     TEXT NOT NULL DEFAULT '-',
    condition  TEXT NOT NULL DEFAULT 'Good',
    unit_price TEXT NOT NULL DEFAULT '0',
    request_id TEXT REFERENCES requests(id),
    updated_at DATETIME NOT NULL,
    CHECK (
        (status = 'Borrowed' AND holder <> '-' AND request_id IS NOT NULL) OR
        (status <> 'Borrowed' AND holder = '-' AND request_id IS NULL)
    )
);

CREATE INDEX IF NOT EXISTS idx_assets_request ON assets(request_id);
`

// EnsureSchema creates all tables, indexes and triggers if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
