// Package api provides HTTP handlers for AcolheBot webhook endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// zapiPayload is the subset of the Z-API webhook body the dispatcher needs.
type zapiPayload struct {
	Phone     string `json:"phone"`
	FromMe    bool   `json:"fromMe"`
	IsGroup   bool   `json:"isGroup"`
	MessageID string `json:"messageId"`
	Text      struct {
		Message string `json:"message"`
	} `json:"text"`
}

// twilioWebhookHandler receives Twilio's form-encoded inbound message
// callback. Twilio retries on non-2xx, so dispatch failures still return 200
// and are only logged.
func (s *Server) twilioWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.twilioWebhookHandler: processing webhook", "method", r.Method, "path", r.URL.Path)

	if err := r.ParseForm(); err != nil {
		slog.Warn("Server.twilioWebhookHandler: failed to parse form", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid form payload"))
		return
	}

	from := strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:")
	body := r.PostFormValue("Body")
	if from == "" {
		slog.Warn("Server.twilioWebhookHandler: missing From field")
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing From field"))
		return
	}

	result := s.dispatcher.Dispatch(r.Context(), models.InboundMessage{
		From:       from,
		Body:       body,
		ProviderID: r.PostFormValue("MessageSid"),
		Channel:    models.ChannelTwilio,
	})
	slog.Info("Server.twilioWebhookHandler: dispatched", "phone", result.Phone, "label", result.Label, "handled", result.Handled)

	if !result.Handled {
		writeJSONResponse(w, http.StatusOK, models.Ignored("message not dispatched"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// zapiWebhookHandler receives the Z-API JSON webhook. Self-sent echoes and
// group messages are acknowledged but never dispatched.
func (s *Server) zapiWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.zapiWebhookHandler: processing webhook", "method", r.Method, "path", r.URL.Path)

	var p zapiPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		slog.Warn("Server.zapiWebhookHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if p.FromMe || p.IsGroup {
		slog.Debug("Server.zapiWebhookHandler: filtered payload", "fromMe", p.FromMe, "group", p.IsGroup)
		writeJSONResponse(w, http.StatusOK, models.Ignored("self or group message"))
		return
	}
	if p.Phone == "" {
		slog.Warn("Server.zapiWebhookHandler: missing phone field")
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing phone field"))
		return
	}

	result := s.dispatcher.Dispatch(r.Context(), models.InboundMessage{
		From:       p.Phone,
		Body:       p.Text.Message,
		ProviderID: p.MessageID,
		Channel:    models.ChannelZAPI,
	})
	slog.Info("Server.zapiWebhookHandler: dispatched", "phone", result.Phone, "label", result.Label, "handled", result.Handled)

	if !result.Handled {
		writeJSONResponse(w, http.StatusOK, models.Ignored("message not dispatched"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// healthHandler reports process liveness and the delivery queue depth.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"queue_depth": s.queue.Len(),
	}))
}
