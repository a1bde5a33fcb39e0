package db

// schema is the initial database schema, applied as migration 1.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL,
    category        TEXT NOT NULL DEFAULT 'Other',
    action          TEXT NOT NULL DEFAULT 'Keep' CHECK (action IN ('Keep', 'Sell')),
    date_added      TEXT NOT NULL,
    last_updated    TEXT NOT NULL,
    deleted         INTEGER NOT NULL DEFAULT 0 CHECK (deleted IN (0, 1)),
    age_years       INTEGER,
    date_acquired   TEXT,
    purchase_price  REAL,
    estimated_value REAL,
    creator         TEXT,
    working         INTEGER CHECK (working IN (0, 1)),
    provenance      TEXT
);

CREATE INDEX IF NOT EXISTS idx_items_deleted ON items(deleted);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
