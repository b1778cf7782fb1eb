// Package sqlite persists the policy knowledge base and query history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/storage/models"
	"github.com/policy-agent/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

// NewClient opens the database, enables WAL, and creates the schema if it
// does not exist yet.
func NewClient(path string) (*Client, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c := &Client{db: db}
	if err := c.initSchema(); err != nil {
		return nil, err
	}

	logger.Info("SQLite storage initialized", zap.String("path", path))
	return c, nil
}

func (c *Client) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS policy_conditions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		condition_text TEXT NOT NULL,
		source_file TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_conditions_category ON policy_conditions(category);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		category TEXT NOT NULL,
		confidence REAL NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON query_history(created_at DESC);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ReplaceConditions swaps out every stored condition for a category in a
// single transaction. Running it twice with the same input leaves the same
// rows behind.
func (c *Client) ReplaceConditions(ctx context.Context, category string, conds []string, sourceFile string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM policy_conditions WHERE category = ?`, category); err != nil {
		return fmt.Errorf("failed to clear category %s: %w", category, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO policy_conditions (category, condition_text, source_file) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, cond := range conds {
		if _, err := stmt.ExecContext(ctx, category, cond, sourceFile); err != nil {
			return fmt.Errorf("failed to insert condition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logger.Info("Replaced category conditions",
		zap.String("category", category),
		zap.Int("count", len(conds)))
	return nil
}

// Conditions returns the stored sentences for one category, oldest first.
func (c *Client) Conditions(ctx context.Context, category string) ([]models.PolicyCondition, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, category, condition_text, source_file, created_at
		 FROM policy_conditions WHERE category = ? ORDER BY id`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query conditions: %w", err)
	}
	defer rows.Close()

	var out []models.PolicyCondition
	for rows.Next() {
		var pc models.PolicyCondition
		if err := rows.Scan(&pc.ID, &pc.Category, &pc.Condition, &pc.SourceFile, &pc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan condition: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// ConditionCounts returns the number of stored sentences per category.
func (c *Client) ConditionCounts(ctx context.Context) (map[string]int, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM policy_conditions GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count conditions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// InsertQueryRecord stores one answered question.
func (c *Client) InsertQueryRecord(ctx context.Context, rec models.QueryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO query_history (id, question, category, confidence, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Question, rec.Category, rec.Confidence, rec.Source, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

// QueryHistory returns the most recent answered questions, newest first.
func (c *Client) QueryHistory(ctx context.Context, limit int) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, question, category, confidence, source, created_at
		 FROM query_history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []models.QueryRecord
	for rows.Next() {
		var rec models.QueryRecord
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Category, &rec.Confidence, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *Client) Close() error {
	return c.db.Close()
}
