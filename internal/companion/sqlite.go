package companion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// The special path ":memory:" keeps the database in memory.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := ":memory:?_pragma=foreign_keys(on)"
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS companions (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		user_name    TEXT NOT NULL DEFAULT '',
		src          TEXT NOT NULL DEFAULT '',
		name         TEXT NOT NULL,
		description  TEXT NOT NULL,
		instructions TEXT NOT NULL,
		seed         TEXT NOT NULL,
		category_id  TEXT NOT NULL REFERENCES categories(id),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_companions_category ON companions(category_id);
	CREATE INDEX IF NOT EXISTS idx_companions_created ON companions(created_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		id           TEXT PRIMARY KEY,
		role         TEXT NOT NULL,
		content      TEXT NOT NULL,
		companion_id TEXT NOT NULL REFERENCES companions(id) ON DELETE CASCADE,
		user_id      TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_companion_user ON messages(companion_id, user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const companionColumns = `id, user_id, user_name, src, name, description, instructions, seed, category_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompanion(row rowScanner) (*Companion, error) {
	var c Companion
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.UserID, &c.UserName, &c.Src, &c.Name, &c.Description,
		&c.Instructions, &c.Seed, &c.CategoryID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &c, nil
}

// Create stores a new companion.
func (s *SQLiteStore) Create(ctx context.Context, c *Companion) (*Companion, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created := *c
	created.ID = uuid.NewString()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companions (`+companionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.UserID, created.UserName, created.Src, created.Name, created.Description,
		created.Instructions, created.Seed, created.CategoryID,
		created.CreatedAt.Format(timeFormat), created.UpdatedAt.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("insert companion: %w", err)
	}
	return &created, nil
}

// Get returns a companion by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Companion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+companionColumns+` FROM companions WHERE id = ?`, id)
	c, err := scanCompanion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get companion: %w", err)
	}
	return c, nil
}

// List returns companions matching p, newest first.
func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]Companion, error) {
	query := `SELECT ` + companionColumns + ` FROM companions WHERE 1=1`
	var args []any

	if p.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, p.CategoryID)
	}
	if p.Name != "" {
		query += ` AND name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(p.Name)+"%")
	}
	query += ` ORDER BY created_at DESC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list companions: %w", err)
	}
	defer rows.Close()

	companions := []Companion{}
	for rows.Next() {
		c, err := scanCompanion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan companion: %w", err)
		}
		companions = append(companions, *c)
	}
	return companions, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Update replaces the editable fields of a companion owned by c.UserID.
func (s *SQLiteStore) Update(ctx context.Context, c *Companion) (*Companion, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, c.ID, c.UserID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE companions
		 SET user_name = ?, src = ?, name = ?, description = ?, instructions = ?, seed = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		c.UserName, c.Src, c.Name, c.Description, c.Instructions, c.Seed, c.CategoryID,
		s.now().Format(timeFormat), c.ID)
	if err != nil {
		return nil, fmt.Errorf("update companion: %w", err)
	}
	return s.Get(ctx, c.ID)
}

// Delete removes a companion owned by userID together with its messages.
func (s *SQLiteStore) Delete(ctx context.Context, id, userID string) error {
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE companion_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM companions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete companion: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM companions WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check owner: %w", err)
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

// AddMessage appends a visible chat message.
func (s *SQLiteStore) AddMessage(ctx context.Context, companionID, userID string, role Role, content string) (*Message, error) {
	msg := &Message{
		ID:          ulid.Make().String(),
		Role:        role,
		Content:     content,
		CompanionID: companionID,
		UserID:      userID,
		CreatedAt:   s.now(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, role, content, companion_id, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, string(msg.Role), msg.Content, msg.CompanionID, msg.UserID, msg.CreatedAt.Format(timeFormat))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// Messages returns the messages between a user and a companion, oldest first.
func (s *SQLiteStore) Messages(ctx context.Context, companionID, userID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, companion_id, user_id, created_at FROM messages
		 WHERE companion_id = ? AND user_id = ?
		 ORDER BY created_at ASC, id ASC`, companionID, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		var role, createdAt string
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.CompanionID, &m.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = Role(role)
		m.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Categories returns all categories by name.
func (s *SQLiteStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory stores a category or returns the existing one with that name.
func (s *SQLiteStore) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Join(ErrInvalid, errors.New("category name is required"))
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		uuid.NewString(), name)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	var c Category
	err = s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = ?`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
