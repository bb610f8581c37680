// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS calculations (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	pair TEXT NOT NULL,
	account_currency TEXT NOT NULL,
	ask REAL NOT NULL,
	cached INTEGER NOT NULL,
	parameters TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calculations_created ON calculations(created_at);
`
