// Package store provides persistence backends for AcolheBot.
//
// It defines the Store interface consumed by the dispatcher and ships
// SQLite, PostgreSQL and in-memory implementations.
package store

import "github.com/VidaNova/AcolheBot/internal/models"

// Store is the persistence collaborator consumed by the dispatcher.
// Phones are always in canonical national format (digits only).
type Store interface {
	// GetState returns the visitor's current conversation state, or ""
	// when the visitor has no stored state (unregistered).
	GetState(phone string) (models.State, error)
	// SetState persists the visitor's current conversation state.
	SetState(phone string, state models.State) error

	// GetVisitor returns the visitor profile, or nil when absent.
	GetVisitor(phone string) (*models.Visitor, error)
	// CreateVisitor registers a visitor on first contact.
	CreateVisitor(phone, name string) error
	// UpdateVisitorField mutates a single profile attribute.
	UpdateVisitorField(phone string, field models.VisitorField, value string) error

	// LogMessage appends one entry to the immutable conversation log.
	LogMessage(msg models.Message) error
	// LogStat records a completed state transition for reporting.
	LogStat(stat models.TransitionStat) error
	// LogUnansweredQuestion records a free-text question the knowledge
	// fallback could not answer, for later curation.
	LogUnansweredQuestion(phone, question string) error

	// MarkProviderMessage records a provider message id and reports whether
	// this is the first time it was seen. Duplicate ids mean the webhook
	// was retried and the turn must be skipped.
	MarkProviderMessage(providerID string) (bool, error)

	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store implementations.
type Option func(*Opts)

// WithSQLiteDSN configures a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}
