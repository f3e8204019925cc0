// Package dispatch implements the message dispatcher: the orchestrator that
// receives a normalized inbound message, classifies intent, advances the
// conversation state machine and queues the outbound reply.
//
// Dispatch is the fail-soft boundary of the pipeline: persistence and
// delivery failures are logged and degraded, never propagated, so the
// webhook caller can always acknowledge the provider.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VidaNova/AcolheBot/internal/flow"
	"github.com/VidaNova/AcolheBot/internal/intent"
	"github.com/VidaNova/AcolheBot/internal/knowledge"
	"github.com/VidaNova/AcolheBot/internal/models"
	"github.com/VidaNova/AcolheBot/internal/normalize"
	"github.com/VidaNova/AcolheBot/internal/store"
)

// DefaultKnowledgeThreshold is the minimum confidence for a knowledge
// fallback answer to be sent to the visitor.
const DefaultKnowledgeThreshold = 0.25

// Queue is the slice of the delivery queue the dispatcher needs.
type Queue interface {
	Enqueue(phone, body string) error
}

// Opts holds configuration for the dispatcher.
type Opts struct {
	// Intercessors receive forwarded prayer requests.
	Intercessors []string
	// Secretariat receives forwarded free-form messages.
	Secretariat string
	// KnowledgeThreshold gates knowledge fallback answers.
	KnowledgeThreshold float64
	// ForwardFinalState is the state written after a prayer or secretariat
	// forward. The upstream flows disagreed between FIM and INICIO, so it
	// is explicit configuration; FIM is the default.
	ForwardFinalState models.State
}

// Option defines a configuration option for the dispatcher.
type Option func(*Opts)

// WithIntercessors sets the prayer forwarding recipients.
func WithIntercessors(phones ...string) Option {
	return func(o *Opts) { o.Intercessors = phones }
}

// WithSecretariat sets the secretariat forwarding recipient.
func WithSecretariat(phone string) Option {
	return func(o *Opts) { o.Secretariat = phone }
}

// WithKnowledgeThreshold sets the knowledge confidence threshold.
func WithKnowledgeThreshold(t float64) Option {
	return func(o *Opts) { o.KnowledgeThreshold = t }
}

// WithForwardFinalState sets the state written after prayer/secretariat
// forwards.
func WithForwardFinalState(s models.State) Option {
	return func(o *Opts) { o.ForwardFinalState = s }
}

// Dispatcher advances visitors through the conversation state machine.
type Dispatcher struct {
	store     store.Store
	queue     Queue
	knowledge knowledge.Service
	cfg       Opts
}

// New creates a dispatcher. The knowledge service may be nil, in which case
// free text that matches no transition goes straight to the cordial default.
func New(st store.Store, q Queue, kb knowledge.Service, opts ...Option) *Dispatcher {
	cfg := Opts{
		KnowledgeThreshold: DefaultKnowledgeThreshold,
		ForwardFinalState:  models.StateFim,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.ForwardFinalState.IsPersistent() {
		cfg.ForwardFinalState = models.StateFim
	}
	slog.Debug("Dispatcher created",
		"intercessors", len(cfg.Intercessors),
		"secretariat_set", cfg.Secretariat != "",
		"knowledge_threshold", cfg.KnowledgeThreshold,
		"forward_final_state", cfg.ForwardFinalState)
	return &Dispatcher{store: st, queue: q, knowledge: kb, cfg: cfg}
}

// Dispatch processes one inbound message and returns what was decided.
// It never returns an error; all failures degrade to a logged warning and
// a safe reply, except the deliberate ignore cases (empty body, duplicate
// provider id) which produce no reply at all.
func (d *Dispatcher) Dispatch(ctx context.Context, in models.InboundMessage) models.DispatchResult {
	phone := normalize.Phone(in.From)
	result := models.DispatchResult{Phone: phone}
	if phone == "" {
		slog.Warn("Dispatch dropping message without usable phone", "from", in.From)
		return result
	}

	// Webhook retries redeliver the same provider message id; process once.
	if in.ProviderID != "" {
		first, err := d.store.MarkProviderMessage(in.ProviderID)
		if err != nil {
			slog.Error("Dispatch dedup check failed, continuing", "error", err, "providerID", in.ProviderID)
		} else if !first {
			slog.Info("Dispatch skipping duplicate provider message", "providerID", in.ProviderID, "phone", phone)
			return result
		}
	}

	// The inbound log write happens before any other logic so the audit
	// trail is complete even for turns that produce no reply. Only a
	// duplicate delivery skips it: the first delivery already logged the
	// identical message.
	d.logMessage(phone, in.Body, models.DirectionReceived, in.ProviderID, in.Channel)

	// Empty bodies are ignored by design: no reply, no state change.
	if strings.TrimSpace(in.Body) == "" {
		slog.Debug("Dispatch ignoring empty message body", "phone", phone)
		return result
	}

	text := normalize.Text(in.Body)

	state, err := d.store.GetState(phone)
	if err != nil {
		slog.Error("Dispatch state read failed, degrading to INICIO", "error", err, "phone", phone)
		state = models.StateInicio
	}
	result.PreviousState = state

	// Registration sub-dialog runs before any other classification.
	if state == "" {
		d.send(phone, flow.RenderState(models.StatePedirNome, ""), in.Channel, &result)
		d.transition(phone, state, models.StatePedirNome, &result)
		result.Label = models.StatePedirNome
		return result
	}
	if state == models.StatePedirNome {
		name := strings.TrimSpace(in.Body)
		if err := d.store.CreateVisitor(phone, name); err != nil {
			slog.Error("Dispatch visitor creation failed", "error", err, "phone", phone)
		}
		d.send(phone, flow.Render(flow.RegisteredReply, normalize.FirstName(name)), in.Channel, &result)
		d.transition(phone, state, models.StateInicio, &result)
		result.Label = models.StateInicio
		return result
	}

	visitor := d.loadVisitor(phone)
	first := ""
	if visitor != nil {
		first = normalize.FirstName(visitor.Name)
	}

	// Ministry keywords short-circuit regardless of conversational state
	// and leave the persisted state untouched.
	if resp, ok := intent.MatchMinistry(text); ok {
		d.send(phone, resp, in.Channel, &result)
		result.NextState = state
		result.Label = models.LabelMinisterio
		return result
	}

	if intent.IsGratitude(text) {
		d.send(phone, flow.Render(flow.GratitudeReply, first), in.Channel, &result)
		d.transition(phone, state, models.StateInicio, &result)
		result.Label = models.LabelAgradecimento
		return result
	}

	if intent.IsGreeting(text) {
		d.send(phone, flow.RenderState(models.StateInicio, first), in.Channel, &result)
		d.transition(phone, state, models.StateInicio, &result)
		result.Label = models.LabelSaudacao
		return result
	}

	// Terminal state: any later message re-engages with the distinct
	// welcome-back template.
	if state == models.StateFim {
		d.send(phone, flow.RenderState(models.StateFim, first), in.Channel, &result)
		d.transition(phone, state, models.StateInicio, &result)
		return result
	}

	if state == models.StatePedidoOracao {
		d.forwardPrayer(phone, first, visitor, in, &result)
		return result
	}

	if state == models.StateOutro {
		d.forwardToSecretariat(phone, first, visitor, in, &result)
		return result
	}

	if field, ok := wizardFields[state]; ok {
		d.applyFieldUpdate(phone, first, state, field, in, visitor, &result)
		return result
	}

	if next, ok := flow.Next(state, text); ok {
		body := flow.RenderState(next, first)
		if next == models.StateAtualizarCadastro {
			body = profileSummary(visitor) + "\n\n" + body
		}
		d.send(phone, body, in.Channel, &result)
		d.transition(phone, state, next, &result)
		return result
	}

	// No transition matched: try the knowledge fallback with the raw text.
	if d.knowledge != nil {
		answer, err := d.knowledge.Answer(ctx, in.Body)
		if err != nil {
			slog.Warn("Dispatch knowledge lookup failed, treating as no answer", "error", err, "phone", phone)
		} else if answer.Text != "" && answer.Confidence >= d.cfg.KnowledgeThreshold {
			slog.Info("Dispatch answered from knowledge base", "phone", phone, "confidence", answer.Confidence)
			d.send(phone, answer.Text, in.Channel, &result)
			d.transition(phone, state, models.StateInicio, &result)
			return result
		}
	}

	if err := d.store.LogUnansweredQuestion(phone, in.Body); err != nil {
		slog.Error("Dispatch failed to log unanswered question", "error", err, "phone", phone)
	}

	// Last-resort classifier pass. The earlier short-circuits make a match
	// here rare, but the fallback chain ends with the classifiers before
	// giving up.
	if resp, ok := intent.MatchMinistry(text); ok {
		d.send(phone, resp, in.Channel, &result)
		result.NextState = state
		result.Label = models.LabelMinisterio
		return result
	}
	if intent.IsGreeting(text) {
		d.send(phone, flow.RenderState(models.StateInicio, first), in.Channel, &result)
		d.transition(phone, state, models.StateInicio, &result)
		result.Label = models.LabelSaudacao
		return result
	}
	if intent.IsGratitude(text) {
		d.send(phone, flow.Render(flow.GratitudeReply, first), in.Channel, &result)
		d.transition(phone, state, models.StateInicio, &result)
		result.Label = models.LabelAgradecimento
		return result
	}

	// Cordial default: re-list the menu, keep the state unchanged.
	d.send(phone, flow.Render(flow.NotUnderstoodReply, first), in.Channel, &result)
	result.NextState = state
	result.Label = state
	return result
}

// wizardFields maps each profile update state to the field it edits.
var wizardFields = map[models.State]models.VisitorField{
	models.StateAtualizarNome:           models.FieldNome,
	models.StateAtualizarEmail:          models.FieldEmail,
	models.StateAtualizarDataNascimento: models.FieldDataNascimento,
	models.StateAtualizarCidade:         models.FieldCidade,
	models.StateAtualizarGenero:         models.FieldGenero,
	models.StateAtualizarEstadoCivil:    models.FieldEstadoCivil,
}

// forwardPrayer sends the verbatim request to every intercessor, confirms
// to the visitor and closes the flow.
func (d *Dispatcher) forwardPrayer(phone, first string, visitor *models.Visitor, in models.InboundMessage, result *models.DispatchResult) {
	name := "Visitante"
	if visitor != nil && visitor.Name != "" {
		name = visitor.Name
	}
	forwarded := fmt.Sprintf("🙏 Pedido de oração\nDe: %s (%s)\nEm: %s\n\n%s",
		name, phone, time.Now().Format("02/01/2006 15:04"), in.Body)

	for _, intercessor := range d.cfg.Intercessors {
		d.forward(intercessor, forwarded, in.Channel)
	}
	if len(d.cfg.Intercessors) == 0 {
		slog.Warn("Dispatch has no intercessors configured, prayer request not forwarded", "phone", phone)
	}

	d.send(phone, flow.Render(flow.PrayerConfirmReply, first), in.Channel, result)
	d.transition(phone, models.StatePedidoOracao, d.cfg.ForwardFinalState, result)
}

// forwardToSecretariat sends the verbatim message to the secretariat number
// and confirms to the visitor.
func (d *Dispatcher) forwardToSecretariat(phone, first string, visitor *models.Visitor, in models.InboundMessage, result *models.DispatchResult) {
	name := "Visitante"
	if visitor != nil && visitor.Name != "" {
		name = visitor.Name
	}
	forwarded := fmt.Sprintf("✉️ Mensagem para a secretaria\nDe: %s (%s)\nEm: %s\n\n%s",
		name, phone, time.Now().Format("02/01/2006 15:04"), in.Body)

	if d.cfg.Secretariat != "" {
		d.forward(d.cfg.Secretariat, forwarded, in.Channel)
	} else {
		slog.Warn("Dispatch has no secretariat configured, message not forwarded", "phone", phone)
	}

	d.send(phone, flow.Render(flow.SecretariatConfirmReply, first), in.Channel, result)
	d.transition(phone, models.StateOutro, d.cfg.ForwardFinalState, result)
}

// applyFieldUpdate validates and applies one profile field, then loops back
// to the field-choice state.
func (d *Dispatcher) applyFieldUpdate(phone, first string, state models.State, field models.VisitorField, in models.InboundMessage, visitor *models.Visitor, result *models.DispatchResult) {
	value := strings.TrimSpace(in.Body)

	switch field {
	case models.FieldDataNascimento:
		if !intent.IsValidBirthdate(value) {
			d.send(phone, "Data inválida. 😕 Use o formato DD/MM/AAAA, por exemplo 25/12/1990:", in.Channel, result)
			result.NextState = state
			result.Label = state
			return
		}
	case models.FieldEmail:
		if !strings.Contains(value, "@") {
			d.send(phone, "Esse e-mail não parece válido. 😕 Tente novamente:", in.Channel, result)
			result.NextState = state
			result.Label = state
			return
		}
	}

	if err := d.store.UpdateVisitorField(phone, field, value); err != nil {
		slog.Error("Dispatch field update failed", "error", err, "phone", phone, "field", field)
		d.send(phone, "Não consegui salvar agora. 😕 Pode tentar de novo em instantes?", in.Channel, result)
		result.NextState = state
		result.Label = state
		return
	}

	if field == models.FieldNome {
		first = normalize.FirstName(value)
	}
	updated := d.loadVisitor(phone)

	body := flow.FieldUpdatedReply + "\n\n" + profileSummary(updated) + "\n\n" + flow.RenderState(models.StateAtualizarCadastro, first)
	d.send(phone, body, in.Channel, result)
	d.transition(phone, state, models.StateAtualizarCadastro, result)
}

// send enqueues a reply for the visitor and appends it to the message log.
func (d *Dispatcher) send(phone, body string, channel models.Channel, result *models.DispatchResult) {
	if err := d.queue.Enqueue(phone, body); err != nil {
		slog.Error("Dispatch enqueue failed", "error", err, "phone", phone)
	}
	d.logMessage(phone, body, models.DirectionSent, uuid.NewString(), channel)
	if result.Reply == "" {
		result.Reply = body
	}
	result.Handled = true
}

// forward enqueues a message for a staff number and logs it, without
// touching the dispatch result.
func (d *Dispatcher) forward(phone, body string, channel models.Channel) {
	if err := d.queue.Enqueue(phone, body); err != nil {
		slog.Error("Dispatch forward enqueue failed", "error", err, "phone", phone)
	}
	d.logMessage(phone, body, models.DirectionSent, uuid.NewString(), channel)
}

// transition records the computed next state, persisting and counting it
// only when it actually changes.
func (d *Dispatcher) transition(phone string, from, to models.State, result *models.DispatchResult) {
	result.NextState = to
	if result.Label == "" {
		result.Label = to
	}
	if from == to {
		return
	}
	if err := d.store.SetState(phone, to); err != nil {
		slog.Error("Dispatch state write failed", "error", err, "phone", phone, "state", to)
	}
	if err := d.store.LogStat(models.TransitionStat{Phone: phone, FromState: from, ToState: to, Time: time.Now().Unix()}); err != nil {
		slog.Error("Dispatch stat write failed", "error", err, "phone", phone)
	}
	slog.Info("Dispatch transition", "phone", phone, "from", from, "to", to)
}

func (d *Dispatcher) logMessage(phone, body string, direction models.Direction, providerID string, channel models.Channel) {
	msg := models.Message{
		Phone:      phone,
		Body:       body,
		Direction:  direction,
		ProviderID: providerID,
		Channel:    channel,
		Time:       time.Now().Unix(),
	}
	if err := d.store.LogMessage(msg); err != nil {
		slog.Error("Dispatch message log failed", "error", err, "phone", phone, "direction", direction)
	}
}

func (d *Dispatcher) loadVisitor(phone string) *models.Visitor {
	visitor, err := d.store.GetVisitor(phone)
	if err != nil {
		slog.Error("Dispatch visitor read failed, continuing without profile", "error", err, "phone", phone)
		return nil
	}
	return visitor
}

// profileSummary renders the visitor's current data for the update wizard.
func profileSummary(v *models.Visitor) string {
	if v == nil {
		return "📋 Ainda não temos seus dados cadastrados."
	}
	dash := func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	}
	var b strings.Builder
	b.WriteString("📋 Seus dados atuais:\n")
	fmt.Fprintf(&b, "Nome: %s\n", dash(v.Name))
	fmt.Fprintf(&b, "E-mail: %s\n", dash(v.Email))
	fmt.Fprintf(&b, "Nascimento: %s\n", dash(v.Birthdate))
	fmt.Fprintf(&b, "Cidade: %s\n", dash(v.City))
	fmt.Fprintf(&b, "Gênero: %s\n", dash(v.Gender))
	fmt.Fprintf(&b, "Estado civil: %s", dash(v.MaritalStatus))
	return b.String()
}
