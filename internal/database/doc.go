// Package database provides SQLite-based storage for research runs.
//
// ResearchDB stores:
//   - Per-query summaries, so a repeated question skips search and scraping
//   - Visited URLs per research, restored together with the summaries
//   - Finished reports, listed and printed by the history command
//
// The database is a single file opened with modernc.org/sqlite, a CGO-free
// driver, in WAL mode with one connection.
package database
