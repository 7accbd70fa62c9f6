// Package history persists chat messages per session in SQLite.
// If opening the DB or executing queries fails, the store falls back to
// in-memory storage for the lifetime of the process.
package history

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/booking-go/internal/logger"
)

// Store keeps conversation history. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	messages []Message // in-memory fallback
}

// Open opens (creating if needed) the SQLite database at path. An empty
// path, or a database that cannot be opened, yields a memory-only store.
func Open(path string) *Store {
	s := &Store{}
	if path == "" {
		return s
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory history", "error", err)
		return s
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		role TEXT,
		content TEXT,
		created_at DATETIME
	);`); err != nil {
		logger.L.Warn("sqlite table creation failed; using in-memory history", "error", err)
		_ = db.Close()
		return s
	}
	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS messages_session ON messages (session_id, id);`); err != nil {
		logger.L.Warn("sqlite index creation failed", "error", err)
	}
	logger.L.Info("sqlite history DB initialized", "path", path)
	s.db = db
	return s
}

// Persistent reports whether messages reach the SQLite database.
func (s *Store) Persistent() bool { return s.db != nil }

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists a message to the SQLite database when available and always
// keeps an in-memory copy as fallback.
func (s *Store) Save(ctx context.Context, msg Message) {
	if s.db != nil {
		_, err := s.db.ExecContext(ctx, `INSERT INTO messages (session_id, role, content, created_at) VALUES (?,?,?,?);`,
			msg.SessionID, msg.Role, msg.Content, msg.CreatedAt)
		if err != nil {
			logger.L.Error("failed to store message in sqlite; falling back to memory", "error", err)
		}
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// List returns all messages of a session in chronological order.
func (s *Store) List(ctx context.Context, sessionID string) []Message {
	if s.db != nil {
		out, err := s.query(ctx, sessionID)
		if err == nil {
			return out
		}
		logger.L.Warn("sqlite history query failed; using memory", "error", err)
	}

	var out []Message
	s.mu.Lock()
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	s.mu.Unlock()
	return out
}

func (s *Store) query(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY id ASC;`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Clear forgets a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?;`, sessionID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.mu.Unlock()
	return nil
}
