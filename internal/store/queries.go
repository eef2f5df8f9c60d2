package store

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, base_url, started_at, elapsed_ms, passed, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetRun = `
		SELECT id, base_url, started_at, elapsed_ms, passed, failed, skipped
		FROM runs WHERE id = ?`
)

// Result queries
const (
	queryInsertResult = `
		INSERT INTO results (run_id, position, name, status, detail)
		VALUES (?, ?, ?, ?, ?)`

	queryGetResults = `
		SELECT position, name, status, detail
		FROM results WHERE run_id = ?
		ORDER BY position`
)
