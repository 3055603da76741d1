package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/quillhq/quill/pkg/concurrent"
	"github.com/quillhq/quill/pkg/sqliteutil"
)

var (
	ErrEmptyID  = errors.New("session ID cannot be empty")
	ErrNotFound = errors.New("session not found")
)

// Summary contains lightweight session metadata for listing purposes.
// This is used instead of loading full Session objects with all messages.
type Summary struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Store defines the interface for session storage
type Store interface {
	AddSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	GetSessionSummaries(ctx context.Context) ([]Summary, error)
	DeleteSession(ctx context.Context, id string) error
	UpdateSessionTitle(ctx context.Context, id, title string) error

	// AddMessage appends a message to a session and returns the ID of the
	// created row.
	AddMessage(ctx context.Context, sessionID string, msg *Message) (int64, error)

	// UpdateMessage updates an existing message by its ID. This is used to
	// finalize streaming messages with complete content.
	UpdateMessage(ctx context.Context, messageID int64, msg *Message) error

	Close() error
}

type InMemoryStore struct {
	sessions  *concurrent.Map[string, *Session]
	messageID int64
}

func NewInMemoryStore() Store {
	return &InMemoryStore{
		sessions: concurrent.NewMap[string, *Session](),
	}
}

// copySession detaches a session from the caller. The store keeps its own
// copies so that callers appending to a live session do not write into the
// store behind its back.
func copySession(session *Session) *Session {
	c := *session
	c.Messages = append([]Message(nil), session.Messages...)
	return &c
}

func (s *InMemoryStore) AddSession(_ context.Context, session *Session) error {
	if session.ID == "" {
		return ErrEmptyID
	}
	s.sessions.Store(session.ID, copySession(session))
	return nil
}

func (s *InMemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	session, exists := s.sessions.Load(id)
	if !exists {
		return nil, ErrNotFound
	}
	return copySession(session), nil
}

func (s *InMemoryStore) GetSessionSummaries(_ context.Context) ([]Summary, error) {
	summaries := make([]Summary, 0, s.sessions.Length())
	s.sessions.Range(func(_ string, value *Session) bool {
		summaries = append(summaries, Summary{
			ID:        value.ID,
			Title:     value.Title,
			CreatedAt: value.CreatedAt,
		})
		return true
	})
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *InMemoryStore) DeleteSession(_ context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, exists := s.sessions.Load(id); !exists {
		return ErrNotFound
	}
	s.sessions.Delete(id)
	return nil
}

func (s *InMemoryStore) UpdateSessionTitle(_ context.Context, id, title string) error {
	if id == "" {
		return ErrEmptyID
	}
	session, exists := s.sessions.Load(id)
	if !exists {
		return ErrNotFound
	}
	session.Title = title
	s.sessions.Store(id, session)
	return nil
}

func (s *InMemoryStore) AddMessage(_ context.Context, sessionID string, msg *Message) (int64, error) {
	if sessionID == "" {
		return 0, ErrEmptyID
	}
	session, exists := s.sessions.Load(sessionID)
	if !exists {
		return 0, ErrNotFound
	}
	s.messageID++
	msg.ID = s.messageID
	session.AddMessage(*msg)
	return s.messageID, nil
}

func (s *InMemoryStore) UpdateMessage(_ context.Context, messageID int64, msg *Message) error {
	var found bool
	s.sessions.Range(func(_ string, session *Session) bool {
		for i := range session.Messages {
			if session.Messages[i].ID == messageID {
				msg.ID = messageID
				session.Messages[i] = *msg
				found = true
				return false
			}
		}
		return true
	})
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite session store. If the schema cannot be
// set up (e.g. the file is corrupt), the database is moved aside and a fresh
// one is created.
func NewSQLiteStore(path string) (Store, error) {
	store, err := openSQLiteStore(path)
	if err != nil {
		slog.Warn("Failed to open session store, attempting recovery", "error", err)

		if backupErr := backupDatabase(path); backupErr != nil {
			slog.Error("Failed to backup database for recovery", "error", backupErr)
			return nil, fmt.Errorf("opening session store: %w (backup also failed: %v)", err, backupErr)
		}

		store, err = openSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("opening session store even after database reset: %w", err)
		}

		slog.Info("Recovered session store with fresh database")
	}

	return store, nil
}

func openSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqliteutil.OpenDB(path)
	if err != nil {
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, position)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &SQLiteStore{db: db}, nil
}

// backupDatabase moves the database file (and related WAL files) to a backup
func backupDatabase(path string) error {
	backupPath := path + ".bak"

	slog.Info("Backing up database", "from", path, "to", backupPath)

	if err := os.Rename(path, backupPath); err != nil {
		if os.IsNotExist(err) {
			// No database file to backup, that's fine
			return nil
		}
		return fmt.Errorf("failed to move database file: %w", err)
	}

	// Also move WAL and SHM files if they exist
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(path + suffix); err == nil {
			if err := os.Rename(path+suffix, backupPath+suffix); err != nil {
				slog.Warn("Failed to move sidecar file", "suffix", suffix, "error", err)
			}
		}
	}

	return nil
}

func (s *SQLiteStore) AddSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		return ErrEmptyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, title, created_at) VALUES (?, ?, ?)",
		session.ID, session.Title, session.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for position, msg := range session.Messages {
		if _, err := insertMessage(ctx, tx, session.ID, position, &msg); err != nil {
			return fmt.Errorf("adding message at position %d: %w", position, err)
		}
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMessage(ctx context.Context, q execer, sessionID string, position int, msg *Message) (int64, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO messages (session_id, position, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		sessionID, position, string(msg.Role), msg.Content, msg.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	var (
		session   Session
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM sessions WHERE id = ?", id).
		Scan(&session.ID, &session.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	session.CreatedAt = parseTime(createdAt)

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg     Message
			role    string
			msgTime string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msgTime); err != nil {
			return nil, err
		}
		msg.Role = MessageRole(role)
		msg.CreatedAt = parseTime(msgTime)
		session.Messages = append(session.Messages, msg)
	}

	return &session, rows.Err()
}

func (s *SQLiteStore) GetSessionSummaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM sessions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary   Summary
			createdAt string
		)
		if err := rows.Scan(&summary.ID, &summary.Title, &createdAt); err != nil {
			return nil, err
		}
		summary.CreatedAt = parseTime(createdAt)
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateSessionTitle(ctx context.Context, id, title string) error {
	if id == "" {
		return ErrEmptyID
	}

	res, err := s.db.ExecContext(ctx, "UPDATE sessions SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AddMessage(ctx context.Context, sessionID string, msg *Message) (int64, error) {
	if sessionID == "" {
		return 0, ErrEmptyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrNotFound
	}

	var position int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position)+1, 0) FROM messages WHERE session_id = ?", sessionID).Scan(&position)
	if err != nil {
		return 0, err
	}

	id, err := insertMessage(ctx, tx, sessionID, position, msg)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	msg.ID = id
	return id, nil
}

func (s *SQLiteStore) UpdateMessage(ctx context.Context, messageID int64, msg *Message) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE messages SET role = ?, content = ? WHERE id = ?",
		string(msg.Role), msg.Content, messageID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
