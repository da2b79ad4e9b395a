package server

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/orderlink/internal/orderflow/domain"
)

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

// handleWebhook ingests a batch of chat events. The response is always a
// fast 200 "OK": the chat platform retries non-200 responses, and a retry
// would replay every event in the batch. One failing event is logged and
// never blocks its siblings.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "webhook")
	defer span.End()

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logf("webhook: decode request: %v", err)
		writeOK(w)
		return
	}
	span.SetAttributes(attribute.Int("webhook.events", len(req.Events)))

	for _, raw := range req.Events {
		event := domain.Event{
			Type:       domain.EventType(raw.Type),
			SubjectID:  raw.Source.UserID,
			ReplyToken: raw.ReplyToken,
			Text:       raw.Message.Text,
		}
		if event.Type == domain.EventMessage && raw.Message.Type != "text" {
			continue
		}
		if err := s.bot.HandleEvent(ctx, event); err != nil {
			s.logf("webhook: handle %s event from %s: %v", raw.Type, raw.Source.UserID, err)
		}
	}
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
