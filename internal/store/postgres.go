// Package store provides persistence backends for AcolheBot.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/VidaNova/AcolheBot/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore implements Store on top of a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetState retrieves the visitor's current conversation state.
func (s *PostgresStore) GetState(phone string) (models.State, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM conversation_states WHERE phone = $1`, phone).Scan(&state)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("PostgresStore GetState failed", "error", err, "phone", phone)
		return "", fmt.Errorf("failed to get state for %s: %w", phone, err)
	}
	return models.State(state), nil
}

// SetState stores or updates the visitor's conversation state.
func (s *PostgresStore) SetState(phone string, state models.State) error {
	_, err := s.db.Exec(`INSERT INTO conversation_states (phone, state, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		phone, string(state), time.Now().Unix())
	if err != nil {
		slog.Error("PostgresStore SetState failed", "error", err, "phone", phone, "state", state)
		return fmt.Errorf("failed to set state for %s: %w", phone, err)
	}
	slog.Debug("PostgresStore SetState succeeded", "phone", phone, "state", state)
	return nil
}

// GetVisitor retrieves the visitor profile, or nil when absent.
func (s *PostgresStore) GetVisitor(phone string) (*models.Visitor, error) {
	row := s.db.QueryRow(`SELECT `+visitorSelectColumns+` FROM visitors WHERE phone = $1`, phone)
	v, err := scanVisitorRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetVisitor failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to get visitor %s: %w", phone, err)
	}
	return v, nil
}

// CreateVisitor registers a visitor on first contact.
func (s *PostgresStore) CreateVisitor(phone, name string) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`INSERT INTO visitors (phone, name, created_at, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone) DO NOTHING`, phone, name, now, now)
	if err != nil {
		slog.Error("PostgresStore CreateVisitor failed", "error", err, "phone", phone)
		return fmt.Errorf("failed to create visitor %s: %w", phone, err)
	}
	slog.Info("PostgresStore visitor created", "phone", phone)
	return nil
}

// UpdateVisitorField mutates a single profile attribute.
func (s *PostgresStore) UpdateVisitorField(phone string, field models.VisitorField, value string) error {
	column, ok := visitorColumns[field]
	if !ok {
		return models.ErrUnknownField
	}
	res, err := s.db.Exec(`UPDATE visitors SET `+column+` = $1, updated_at = $2 WHERE phone = $3`,
		value, time.Now().Unix(), phone)
	if err != nil {
		slog.Error("PostgresStore UpdateVisitorField failed", "error", err, "phone", phone, "field", field)
		return fmt.Errorf("failed to update %s for %s: %w", field, phone, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrVisitorNotFound
	}
	return nil
}

// LogMessage appends one entry to the conversation log.
func (s *PostgresStore) LogMessage(msg models.Message) error {
	_, err := s.db.Exec(`INSERT INTO messages (phone, body, direction, provider_id, channel, time)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.Phone, msg.Body, string(msg.Direction), nilIfEmpty(msg.ProviderID), nilIfEmpty(string(msg.Channel)), msg.Time)
	if err != nil {
		slog.Error("PostgresStore LogMessage failed", "error", err, "phone", msg.Phone, "direction", msg.Direction)
		return fmt.Errorf("failed to log message for %s: %w", msg.Phone, err)
	}
	return nil
}

// LogStat records a completed state transition.
func (s *PostgresStore) LogStat(stat models.TransitionStat) error {
	_, err := s.db.Exec(`INSERT INTO transition_stats (phone, from_state, to_state, time) VALUES ($1, $2, $3, $4)`,
		stat.Phone, string(stat.FromState), string(stat.ToState), stat.Time)
	if err != nil {
		slog.Error("PostgresStore LogStat failed", "error", err, "phone", stat.Phone)
		return fmt.Errorf("failed to log stat for %s: %w", stat.Phone, err)
	}
	return nil
}

// LogUnansweredQuestion records a question the knowledge fallback missed.
func (s *PostgresStore) LogUnansweredQuestion(phone, question string) error {
	_, err := s.db.Exec(`INSERT INTO unanswered_questions (phone, question, time) VALUES ($1, $2, $3)`,
		phone, question, time.Now().Unix())
	if err != nil {
		slog.Error("PostgresStore LogUnansweredQuestion failed", "error", err, "phone", phone)
		return fmt.Errorf("failed to log unanswered question for %s: %w", phone, err)
	}
	return nil
}

// MarkProviderMessage records a provider message id, reporting first-seen.
func (s *PostgresStore) MarkProviderMessage(providerID string) (bool, error) {
	res, err := s.db.Exec(`INSERT INTO processed_messages (provider_id, time) VALUES ($1, $2)
		ON CONFLICT (provider_id) DO NOTHING`, providerID, time.Now().Unix())
	if err != nil {
		slog.Error("PostgresStore MarkProviderMessage failed", "error", err, "providerID", providerID)
		return false, fmt.Errorf("failed to mark provider message %s: %w", providerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL database connection")
	return s.db.Close()
}
