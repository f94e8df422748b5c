package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/researcher/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "researcher.db"

// ResearchDB manages the SQLite database for research runs.
//
// It keeps three tables keyed by research id:
//   - summaries: one row per query summary, in insertion order
//   - visited_urls: every URL a research has already fetched
//   - reports: one row per finished run, holding the full research as JSON
//
// The connection pool is limited to a single connection because SQLite
// allows one writer at a time. Batch runs share one ResearchDB.
type ResearchDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures database behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database when missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*ResearchDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResearchDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResearchDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *ResearchDB) Path() string {
	return rdb.dbPath
}

func (rdb *ResearchDB) createTables() error {
	schema := `
	-- One summary per search query of a research
	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		research_id TEXT NOT NULL,
		query TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(research_id, query)
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_research ON summaries(research_id);

	CREATE TABLE IF NOT EXISTS visited_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		research_id TEXT NOT NULL,
		url TEXT NOT NULL,
		UNIQUE(research_id, url)
	);

	-- Finished reports with the full research state as JSON
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		research_id TEXT NOT NULL,
		question TEXT NOT NULL,
		agent TEXT,
		report_type TEXT NOT NULL,
		report TEXT NOT NULL,
		research_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_research ON reports(research_id);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSummary stores the summary for one query, replacing an earlier one.
func (rdb *ResearchDB) SaveSummary(ctx context.Context, researchID, query, summary string) error {
	stmt := `
	INSERT INTO summaries (research_id, query, summary)
	VALUES (?, ?, ?)
	ON CONFLICT(research_id, query) DO UPDATE SET
		summary = excluded.summary,
		created_at = CURRENT_TIMESTAMP
	`
	if _, err := rdb.db.ExecContext(ctx, stmt, researchID, query, summary); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// GetSummaries returns the summaries of a research in insertion order.
func (rdb *ResearchDB) GetSummaries(ctx context.Context, researchID string) ([]model.QuerySummary, error) {
	rows, err := rdb.db.QueryContext(ctx,
		`SELECT query, summary FROM summaries WHERE research_id = ? ORDER BY id`, researchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summaries: %w", err)
	}
	defer rows.Close()

	var results []model.QuerySummary
	for rows.Next() {
		var qs model.QuerySummary
		if err := rows.Scan(&qs.Query, &qs.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		results = append(results, qs)
	}
	return results, rows.Err()
}

// HasSummaries reports whether any summary is stored for the research.
func (rdb *ResearchDB) HasSummaries(ctx context.Context, researchID string) (bool, error) {
	var count int
	err := rdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summaries WHERE research_id = ?`, researchID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count > 0, nil
}

// AddVisited records URLs as visited. Already recorded URLs are ignored.
func (rdb *ResearchDB) AddVisited(ctx context.Context, researchID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO visited_urls (research_id, url) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, u := range urls {
		if _, err := stmt.ExecContext(ctx, researchID, u); err != nil {
			return fmt.Errorf("failed to add visited url: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visited urls: %w", err)
	}
	return nil
}

// GetVisited returns the visited URLs of a research in insertion order.
func (rdb *ResearchDB) GetVisited(ctx context.Context, researchID string) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx,
		`SELECT url FROM visited_urls WHERE research_id = ? ORDER BY id`, researchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visited urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan visited url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// ReportRecord is a stored report.
type ReportRecord struct {
	ID         string
	ResearchID string
	Question   string
	Agent      string
	ReportType string
	Report     string
	CreatedAt  time.Time

	// Research is the full run state. It is nil in ListReports results.
	Research *model.Research
}

// SaveReport stores a finished research and returns the new report id.
func (rdb *ResearchDB) SaveReport(ctx context.Context, r *model.Research) (string, error) {
	researchJSON, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to serialize research: %w", err)
	}

	id := uuid.NewString()
	stmt := `
	INSERT INTO reports (id, research_id, question, agent, report_type, report, research_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = rdb.db.ExecContext(ctx, stmt,
		id,
		r.ID,
		r.Question,
		r.Agent,
		r.ReportType,
		r.Report,
		string(researchJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return id, nil
}

// GetReport returns the report with the given id, or nil if none exists.
func (rdb *ResearchDB) GetReport(ctx context.Context, id string) (*ReportRecord, error) {
	row := rdb.db.QueryRowContext(ctx, `
	SELECT id, research_id, question, agent, report_type, report, research_json, created_at
	FROM reports WHERE id = ?
	`, id)
	return scanFullReport(row)
}

// LatestReport returns the newest report of a research, or nil if none exists.
func (rdb *ResearchDB) LatestReport(ctx context.Context, researchID string) (*ReportRecord, error) {
	row := rdb.db.QueryRowContext(ctx, `
	SELECT id, research_id, question, agent, report_type, report, research_json, created_at
	FROM reports WHERE research_id = ?
	ORDER BY created_at DESC, rowid DESC
	LIMIT 1
	`, researchID)
	return scanFullReport(row)
}

func scanFullReport(row *sql.Row) (*ReportRecord, error) {
	var rec ReportRecord
	var agent sql.NullString
	var researchJSON, createdAt string

	err := row.Scan(
		&rec.ID,
		&rec.ResearchID,
		&rec.Question,
		&agent,
		&rec.ReportType,
		&rec.Report,
		&researchJSON,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	rec.Agent = agent.String
	rec.CreatedAt = parseTimestamp(createdAt)

	var r model.Research
	if err := json.Unmarshal([]byte(researchJSON), &r); err != nil {
		return nil, fmt.Errorf("failed to parse research: %w", err)
	}
	rec.Research = &r

	return &rec, nil
}

// ListReports returns the newest reports first. A non-positive limit
// returns all of them.
func (rdb *ResearchDB) ListReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	query := `
	SELECT id, research_id, question, agent, report_type, report, created_at
	FROM reports
	ORDER BY created_at DESC, rowid DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportRecord
	for rows.Next() {
		var rec ReportRecord
		var agent sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ResearchID, &rec.Question, &agent,
			&rec.ReportType, &rec.Report, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rec.Agent = agent.String
		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}
	return results, rows.Err()
}

// DeleteResearch removes the cached summaries and visited URLs of a
// research. Saved reports are kept for the history command.
func (rdb *ResearchDB) DeleteResearch(ctx context.Context, researchID string) error {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{
		`DELETE FROM summaries WHERE research_id = ?`,
		`DELETE FROM visited_urls WHERE research_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, researchID); err != nil {
			return fmt.Errorf("failed to delete research cache: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// timestampFormats lists the formats SQLite may return for DATETIME columns.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
