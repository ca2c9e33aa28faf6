package provider

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/fathom-search/fathom/internal/text"
)

// sqliteIndex implements knowledgeIndex using SQLite FTS5.
// WAL mode allows the serve and search commands to share one index file.
type sqliteIndex struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// newSQLiteIndex creates an FTS5-backed index at path.
// Empty path creates an in-memory index.
func newSQLiteIndex(path string) (*sqliteIndex, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite index: %w", err)
	}

	// Single writer to prevent lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL must be set via PRAGMA for modernc.org/sqlite.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	idx := &sqliteIndex{db: db}
	if err := idx.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return idx, nil
}

func (s *sqliteIndex) initSchema() error {
	schema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS fts_docs USING fts5(
		doc_id UNINDEXED,
		content,
		tokenize='unicode61'
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Index adds documents. Existing entries with the same ID are replaced
// (FTS5 virtual tables don't support REPLACE, so delete first).
func (s *sqliteIndex) Index(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sqlite index is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteStmt, err := tx.PrepareContext(ctx, `DELETE FROM fts_docs WHERE doc_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.PrepareContext(ctx, `INSERT INTO fts_docs(doc_id, content) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insertStmt.Close()

	for _, d := range docs {
		tokens := text.QueryTokens(d.Title + " " + d.Body)
		content := strings.Join(tokens, " ")

		if _, err := deleteStmt.ExecContext(ctx, d.ID); err != nil {
			return fmt.Errorf("delete document %s: %w", d.ID, err)
		}
		if _, err := insertStmt.ExecContext(ctx, d.ID, content); err != nil {
			return fmt.Errorf("index document %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns document IDs ranked by BM25.
func (s *sqliteIndex) Search(ctx context.Context, queryStr string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("sqlite index is closed")
	}

	tokens := text.QueryTokens(queryStr)
	if len(tokens) == 0 {
		return []string{}, nil
	}

	// FTS5 OR-matches the terms; bm25() is negative where lower = better.
	for i, tok := range tokens {
		tokens[i] = `"` + strings.ReplaceAll(tok, `"`, ``) + `"`
	}
	match := strings.Join(tokens, " OR ")

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, bm25(fts_docs) AS score
		FROM fts_docs
		WHERE content MATCH ?
		ORDER BY score
		LIMIT ?
	`, match, limit)
	if err != nil {
		// FTS5 errors on malformed match expressions; treat as no results.
		if strings.Contains(err.Error(), "fts5") || strings.Contains(err.Error(), "syntax error") {
			return []string{}, nil
		}
		return nil, fmt.Errorf("fts query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var (
			id    string
			score float64
		)
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the database.
func (s *sqliteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
