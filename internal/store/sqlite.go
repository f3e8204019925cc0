// Package store provides persistence backends for AcolheBot.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/VidaNova/AcolheBot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore implements Store on top of a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetState retrieves the visitor's current conversation state.
func (s *SQLiteStore) GetState(phone string) (models.State, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM conversation_states WHERE phone = ?`, phone).Scan(&state)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetState not found", "phone", phone)
		return "", nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetState failed", "error", err, "phone", phone)
		return "", fmt.Errorf("failed to get state for %s: %w", phone, err)
	}
	return models.State(state), nil
}

// SetState stores or updates the visitor's conversation state.
func (s *SQLiteStore) SetState(phone string, state models.State) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO conversation_states (phone, state, updated_at) VALUES (?, ?, ?)`,
		phone, string(state), time.Now().Unix())
	if err != nil {
		slog.Error("SQLiteStore SetState failed", "error", err, "phone", phone, "state", state)
		return fmt.Errorf("failed to set state for %s: %w", phone, err)
	}
	slog.Debug("SQLiteStore SetState succeeded", "phone", phone, "state", state)
	return nil
}

// GetVisitor retrieves the visitor profile, or nil when absent.
func (s *SQLiteStore) GetVisitor(phone string) (*models.Visitor, error) {
	row := s.db.QueryRow(`SELECT `+visitorSelectColumns+` FROM visitors WHERE phone = ?`, phone)
	v, err := scanVisitorRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetVisitor failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to get visitor %s: %w", phone, err)
	}
	return v, nil
}

// CreateVisitor registers a visitor on first contact.
func (s *SQLiteStore) CreateVisitor(phone, name string) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`INSERT OR IGNORE INTO visitors (phone, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		phone, name, now, now)
	if err != nil {
		slog.Error("SQLiteStore CreateVisitor failed", "error", err, "phone", phone)
		return fmt.Errorf("failed to create visitor %s: %w", phone, err)
	}
	slog.Info("SQLiteStore visitor created", "phone", phone)
	return nil
}

// UpdateVisitorField mutates a single profile attribute.
func (s *SQLiteStore) UpdateVisitorField(phone string, field models.VisitorField, value string) error {
	column, ok := visitorColumns[field]
	if !ok {
		return models.ErrUnknownField
	}
	res, err := s.db.Exec(`UPDATE visitors SET `+column+` = ?, updated_at = ? WHERE phone = ?`,
		value, time.Now().Unix(), phone)
	if err != nil {
		slog.Error("SQLiteStore UpdateVisitorField failed", "error", err, "phone", phone, "field", field)
		return fmt.Errorf("failed to update %s for %s: %w", field, phone, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrVisitorNotFound
	}
	slog.Debug("SQLiteStore UpdateVisitorField succeeded", "phone", phone, "field", field)
	return nil
}

// LogMessage appends one entry to the conversation log.
func (s *SQLiteStore) LogMessage(msg models.Message) error {
	_, err := s.db.Exec(`INSERT INTO messages (phone, body, direction, provider_id, channel, time) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.Phone, msg.Body, string(msg.Direction), nilIfEmpty(msg.ProviderID), nilIfEmpty(string(msg.Channel)), msg.Time)
	if err != nil {
		slog.Error("SQLiteStore LogMessage failed", "error", err, "phone", msg.Phone, "direction", msg.Direction)
		return fmt.Errorf("failed to log message for %s: %w", msg.Phone, err)
	}
	return nil
}

// LogStat records a completed state transition.
func (s *SQLiteStore) LogStat(stat models.TransitionStat) error {
	_, err := s.db.Exec(`INSERT INTO transition_stats (phone, from_state, to_state, time) VALUES (?, ?, ?, ?)`,
		stat.Phone, string(stat.FromState), string(stat.ToState), stat.Time)
	if err != nil {
		slog.Error("SQLiteStore LogStat failed", "error", err, "phone", stat.Phone)
		return fmt.Errorf("failed to log stat for %s: %w", stat.Phone, err)
	}
	return nil
}

// LogUnansweredQuestion records a question the knowledge fallback missed.
func (s *SQLiteStore) LogUnansweredQuestion(phone, question string) error {
	_, err := s.db.Exec(`INSERT INTO unanswered_questions (phone, question, time) VALUES (?, ?, ?)`,
		phone, question, time.Now().Unix())
	if err != nil {
		slog.Error("SQLiteStore LogUnansweredQuestion failed", "error", err, "phone", phone)
		return fmt.Errorf("failed to log unanswered question for %s: %w", phone, err)
	}
	return nil
}

// MarkProviderMessage records a provider message id, reporting first-seen.
func (s *SQLiteStore) MarkProviderMessage(providerID string) (bool, error) {
	res, err := s.db.Exec(`INSERT OR IGNORE INTO processed_messages (provider_id, time) VALUES (?, ?)`,
		providerID, time.Now().Unix())
	if err != nil {
		slog.Error("SQLiteStore MarkProviderMessage failed", "error", err, "providerID", providerID)
		return false, fmt.Errorf("failed to mark provider message %s: %w", providerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
