package store

import (
	"sync"
	"time"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// InMemoryStore is a Store kept entirely in memory, used when no database
// DSN is configured and throughout the test suites.
type InMemoryStore struct {
	mu         sync.RWMutex
	states     map[string]models.State
	visitors   map[string]*models.Visitor
	messages   []models.Message
	stats      []models.TransitionStat
	unanswered []models.Message
	processed  map[string]bool
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		states:    make(map[string]models.State),
		visitors:  make(map[string]*models.Visitor),
		processed: make(map[string]bool),
	}
}

// GetState retrieves the visitor's current conversation state.
func (s *InMemoryStore) GetState(phone string) (models.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[phone], nil
}

// SetState stores the visitor's conversation state.
func (s *InMemoryStore) SetState(phone string, state models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[phone] = state
	return nil
}

// GetVisitor retrieves the visitor profile, or nil when absent.
func (s *InMemoryStore) GetVisitor(phone string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[phone]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

// CreateVisitor registers a visitor on first contact.
func (s *InMemoryStore) CreateVisitor(phone, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.visitors[phone]; exists {
		return nil
	}
	now := time.Now().Unix()
	s.visitors[phone] = &models.Visitor{Phone: phone, Name: name, CreatedAt: now, UpdatedAt: now}
	return nil
}

// UpdateVisitorField mutates a single profile attribute.
func (s *InMemoryStore) UpdateVisitorField(phone string, field models.VisitorField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[phone]
	if !ok {
		return models.ErrVisitorNotFound
	}
	switch field {
	case models.FieldNome:
		v.Name = value
	case models.FieldEmail:
		v.Email = value
	case models.FieldDataNascimento:
		v.Birthdate = value
	case models.FieldCidade:
		v.City = value
	case models.FieldGenero:
		v.Gender = value
	case models.FieldEstadoCivil:
		v.MaritalStatus = value
	default:
		return models.ErrUnknownField
	}
	v.UpdatedAt = time.Now().Unix()
	return nil
}

// LogMessage appends one entry to the conversation log.
func (s *InMemoryStore) LogMessage(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// LogStat records a completed state transition.
func (s *InMemoryStore) LogStat(stat models.TransitionStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = append(s.stats, stat)
	return nil
}

// LogUnansweredQuestion records a question the knowledge fallback missed.
func (s *InMemoryStore) LogUnansweredQuestion(phone, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unanswered = append(s.unanswered, models.Message{Phone: phone, Body: question, Time: time.Now().Unix()})
	return nil
}

// MarkProviderMessage records a provider message id, reporting first-seen.
func (s *InMemoryStore) MarkProviderMessage(providerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed[providerID] {
		return false, nil
	}
	s.processed[providerID] = true
	return true, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

// Messages returns a copy of the logged messages (test helper).
func (s *InMemoryStore) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Stats returns a copy of the recorded transition stats (test helper).
func (s *InMemoryStore) Stats() []models.TransitionStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TransitionStat, len(s.stats))
	copy(out, s.stats)
	return out
}

// UnansweredQuestions returns a copy of the curation log (test helper).
func (s *InMemoryStore) UnansweredQuestions() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.unanswered))
	copy(out, s.unanswered)
	return out
}
