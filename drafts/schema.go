package drafts

// Migrations is the drafts schema, one step per user_version.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS drafts (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		type       TEXT NOT NULL CHECK (type IN ('email', 'webpage')),
		data       TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_drafts_updated ON drafts(updated_at DESC);`,
}
