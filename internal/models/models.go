// Package models defines the core data structures for AcolheBot.
//
// It includes the visitor profile, the append-only message log entry, and
// the dispatch request/result types shared across modules.
package models

import "errors"

// Channel identifies which provider delivered an inbound message.
type Channel string

const (
	// ChannelTwilio marks messages received through the Twilio webhook.
	ChannelTwilio Channel = "twilio"
	// ChannelZAPI marks messages received through the Z-API webhook.
	ChannelZAPI Channel = "zapi"
	// ChannelWhatsApp marks messages received through the direct
	// whatsmeow connection.
	ChannelWhatsApp Channel = "whatsapp"
)

// Direction of a logged message.
type Direction string

const (
	// DirectionReceived marks an inbound visitor message.
	DirectionReceived Direction = "recebida"
	// DirectionSent marks an outbound reply.
	DirectionSent Direction = "enviada"
)

// Error variables shared across modules.
var (
	ErrEmptyPhone        = errors.New("phone number cannot be empty")
	ErrInvalidPhone      = errors.New("phone number has no digits")
	ErrVisitorNotFound   = errors.New("visitor not found")
	ErrQueueFull         = errors.New("delivery queue is full")
	ErrQueueStopped      = errors.New("delivery queue is stopped")
	ErrUnknownField      = errors.New("unknown visitor field")
	ErrEmptyFieldValue   = errors.New("field value cannot be empty")
	ErrInvalidBirthdate  = errors.New("birthdate must be in DD/MM/YYYY format")
	ErrInvalidEmail      = errors.New("email address is not valid")
	ErrProviderNotConfig = errors.New("messaging provider not configured")
)

// Visitor is a person identified by phone number interacting with the bot.
// The phone is stored in national format, digits only.
type Visitor struct {
	Phone          string `json:"phone"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Birthdate      string `json:"birthdate,omitempty"` // DD/MM/YYYY
	City           string `json:"city,omitempty"`
	Gender         string `json:"gender,omitempty"`
	MaritalStatus  string `json:"marital_status,omitempty"`
	HasChurch      bool   `json:"has_church"`
	ReferralSource string `json:"referral_source,omitempty"`
	Member         bool   `json:"member"`
	PrayerRequest  string `json:"prayer_request,omitempty"`
	ContactTime    string `json:"contact_time,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// VisitorField names a single mutable profile attribute for the update wizard.
type VisitorField string

const (
	FieldNome           VisitorField = "nome"
	FieldEmail          VisitorField = "email"
	FieldDataNascimento VisitorField = "data_nascimento"
	FieldCidade         VisitorField = "cidade"
	FieldGenero         VisitorField = "genero"
	FieldEstadoCivil    VisitorField = "estado_civil"
)

// Message is one entry in the append-only conversation log.
type Message struct {
	Phone      string    `json:"phone"`
	Body       string    `json:"body"`
	Direction  Direction `json:"direction"`
	ProviderID string    `json:"provider_id,omitempty"`
	Channel    Channel   `json:"channel,omitempty"`
	Time       int64     `json:"time"`
}

// InboundMessage is a normalized webhook payload handed to the dispatcher.
type InboundMessage struct {
	From       string  `json:"from"`
	Body       string  `json:"body"`
	ProviderID string  `json:"provider_id,omitempty"`
	Channel    Channel `json:"channel,omitempty"`
}

// OutboundJob is a queued (phone, body) pair awaiting delivery.
type OutboundJob struct {
	Phone string `json:"phone"`
	Body  string `json:"body"`
}

// KnowledgeAnswer is the answer/confidence pair returned by the knowledge
// fallback service. Confidence is in [0, 1].
type KnowledgeAnswer struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DispatchResult describes what the dispatcher decided for one turn.
type DispatchResult struct {
	Phone         string `json:"phone"`
	PreviousState State  `json:"previous_state"`
	NextState     State  `json:"next_state"`
	// Label is the classification reported to the caller. It is usually the
	// next state, but ministry/greeting/gratitude turns report the
	// transient labels instead.
	Label State `json:"label"`
	// Reply is the text queued for the visitor, empty when the turn was
	// ignored (empty body, duplicate provider id).
	Reply   string `json:"reply,omitempty"`
	Handled bool   `json:"handled"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates a request was processed.
	APIStatusOK APIStatus = "ok"
	// APIStatusIgnored indicates a request was deliberately not dispatched.
	APIStatusIgnored APIStatus = "ignored"
	// APIStatusError indicates a request failed.
	APIStatusError APIStatus = "error"
)

// APIResponse is the JSON envelope returned by webhook endpoints.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a processed API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Ignored creates a response for payloads that were filtered out.
func Ignored(message string) APIResponse {
	return APIResponse{Status: string(APIStatusIgnored), Message: message}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
