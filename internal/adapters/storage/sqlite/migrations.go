package sqlite

import "database/sql"

// schema mirrors the browser localStorage model: one value per (origin, key).
const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
    origin TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (origin, key)
);
`

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
