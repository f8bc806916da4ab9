package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gentle/internal/domain"
	"gentle/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.SessionRepository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.SessionRepository = (*Repository)(nil)

// New creates a new SQLite repository. The special path ":memory:" opens a
// private in-memory database.
func New(dbPath string) (*Repository, error) {
	memory := dbPath == ":memory:"

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		viewport_width REAL NOT NULL,
		viewport_height REAL NOT NULL,
		narrow INTEGER NOT NULL DEFAULT 0,
		counter INTEGER NOT NULL DEFAULT 1,
		correction INTEGER NOT NULL DEFAULT 0,
		source INTEGER NOT NULL DEFAULT -1,
		link_key_seq INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		session_id TEXT NOT NULL,
		key INTEGER NOT NULL,
		name TEXT NOT NULL,
		size REAL NOT NULL,
		sex TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT -1,
		category TEXT NOT NULL DEFAULT '',
		category_color TEXT NOT NULL,
		link INTEGER NOT NULL DEFAULT 0,
		fixed_pos_x REAL NOT NULL,
		fixed_pos_y REAL NOT NULL,
		closeness REAL NOT NULL DEFAULT -1,
		liking REAL NOT NULL DEFAULT -1,
		float_x REAL NOT NULL DEFAULT 0,
		float_y REAL NOT NULL DEFAULT 0,
		should_float INTEGER NOT NULL DEFAULT 0,
		focus_x REAL NOT NULL,
		focus_y REAL NOT NULL,
		PRIMARY KEY (session_id, key),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS links (
		session_id TEXT NOT NULL,
		key INTEGER NOT NULL,
		source INTEGER NOT NULL,
		target INTEGER NOT NULL,
		PRIMARY KEY (session_id, key),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// GetSession loads the complete snapshot of a session
func (r *Repository) GetSession(ctx context.Context, id string) (*domain.Network, error) {
	var row sessionRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	net, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to convert session %s: %w", id, err)
	}

	if err := r.loadNodes(ctx, net); err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, net); err != nil {
		return nil, err
	}

	return net, nil
}

func (r *Repository) loadNodes(ctx context.Context, net *domain.Network) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE session_id = ? ORDER BY key`, net.SessionID)
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}
		node, focus := row.toDomain()
		net.AddNode(node)
		net.AddFocus(focus)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}
	return nil
}

func (r *Repository) loadLinks(ctx context.Context, net *domain.Network) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE session_id = ? ORDER BY rowid`, net.SessionID)
	if err != nil {
		return fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.Key, &l.Source, &l.Target); err != nil {
			return fmt.Errorf("failed to scan link: %w", err)
		}
		net.AddLink(l)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating links: %w", err)
	}
	return nil
}

// ListSessions returns summaries of all sessions, most recently updated first
func (r *Repository) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM nodes n WHERE n.session_id = s.id AND n.key > 0),
			(SELECT COUNT(*) FROM links l WHERE l.session_id = s.id)
		FROM sessions s
		ORDER BY s.updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.SessionSummary, 0)
	for rows.Next() {
		var (
			s                domain.SessionSummary
			created, updated string
		)
		if err := rows.Scan(&s.SessionID, &created, &updated, &s.Alters, &s.Links); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", s.SessionID, err)
		}
		if s.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("parse updated_at of %s: %w", s.SessionID, err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return summaries, nil
}

// SaveSession replaces the stored snapshot of a session in one transaction
func (r *Repository) SaveSession(ctx context.Context, net *domain.Network) error {
	if net == nil || net.SessionID == "" {
		return fmt.Errorf("session id required")
	}
	if len(net.Nodes) != len(net.Foci) {
		return fmt.Errorf("session %s: %d nodes but %d foci", net.SessionID, len(net.Nodes), len(net.Foci))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session := newSessionRow(net)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			viewport_width = excluded.viewport_width,
			viewport_height = excluded.viewport_height,
			narrow = excluded.narrow,
			counter = excluded.counter,
			correction = excluded.correction,
			source = excluded.source,
			link_key_seq = excluded.link_key_seq,
			updated_at = excluded.updated_at
	`, session.insertArgs()...)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE session_id = ?`, net.SessionID); err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE session_id = ?`, net.SessionID); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (session_id, `+nodeColumns+`) VALUES (`+placeholders(19)+`)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range net.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, newNodeRow(n, net.Foci[i]).insertArgs(net.SessionID)...); err != nil {
			return fmt.Errorf("failed to insert node %d: %w", n.Key, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO links (session_id, `+linkColumns+`) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, l := range net.Links {
		if _, err := linkStmt.ExecContext(ctx, net.SessionID, l.Key, l.Source, l.Target); err != nil {
			return fmt.Errorf("failed to insert link %d: %w", l.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteSession removes a session and everything it owns
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
