package payments

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// maxWebhookBody bounds what we read from Stripe; real events are small.
const maxWebhookBody = 65536

// WebhookHandler receives processor events. Signature verification happens
// before any payload field is trusted.
type WebhookHandler struct {
	svc           *Service
	signingSecret string
	log           *slog.Logger
}

func NewWebhookHandler(svc *Service, signingSecret string, log *slog.Logger) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{svc: svc, signingSecret: signingSecret, log: log}
}

// Handle is POST /api/v1/payments/webhook. A non-2xx response makes Stripe
// redeliver; the event id is only recorded once processing completes, so a
// redelivered event is reprocessed in full, and a replay of a completed one
// is a no-op.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.signingSecret)
	if err != nil {
		h.log.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var intent stripe.PaymentIntent
	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed",
		"payment_intent.requires_action", "payment_intent.processing":
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			h.log.Error("webhook payload decode failed", "type", event.Type, "error", err)
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
	default:
		// Not ours; acknowledge so Stripe stops sending it.
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	switch event.Type {
	case "payment_intent.succeeded":
		var chargeID string
		if intent.LatestCharge != nil {
			chargeID = intent.LatestCharge.ID
		}
		err = h.svc.HandleIntentSucceeded(ctx, event.ID, intent.ID, chargeID)
	case "payment_intent.payment_failed":
		var msg string
		if intent.LastPaymentError != nil {
			msg = intent.LastPaymentError.Msg
		}
		err = h.svc.HandleIntentFailed(ctx, event.ID, intent.ID, msg)
	case "payment_intent.requires_action":
		err = h.svc.HandleIntentStatus(ctx, event.ID, intent.ID, models.PaymentStatusRequiresAction)
	case "payment_intent.processing":
		err = h.svc.HandleIntentStatus(ctx, event.ID, intent.ID, models.PaymentStatusProcessing)
	}
	if err != nil {
		h.log.Error("webhook processing failed", "type", event.Type, "event_id", event.ID, "error", err)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
