package store

const Schema = `
CREATE TABLE IF NOT EXISTS separations (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	progress INTEGER DEFAULT 0,
	input_name TEXT NOT NULL,
	output_name TEXT NOT NULL DEFAULT '',
	stored_name TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_separations_status ON separations(status);
CREATE INDEX IF NOT EXISTS idx_separations_created_at ON separations(created_at);

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);
`
