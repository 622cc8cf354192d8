package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type PushNotificationArgs struct {
	UserID uuid.UUID       `json:"user_id"`
	Title  string          `json:"title"`
	Body   string          `json:"body"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (PushNotificationArgs) Kind() string { return "send_push_notification" }

// TokenSource resolves a user's registered push tokens.
type TokenSource interface {
	ListPushTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// PushWorker delivers one queued push through the push gateway. A user with
// no registered tokens is a successful no-op.
type PushWorker struct {
	river.WorkerDefaults[PushNotificationArgs]
	tokens     TokenSource
	gatewayURL string
	httpClient *http.Client
	log        *slog.Logger
}

func NewPushWorker(tokens TokenSource, gatewayURL string, log *slog.Logger) *PushWorker {
	if log == nil {
		log = slog.Default()
	}
	return &PushWorker{
		tokens:     tokens,
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type pushMessage struct {
	To    string          `json:"to"`
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (w *PushWorker) Work(ctx context.Context, job *river.Job[PushNotificationArgs]) error {
	args := job.Args

	tokens, err := w.tokens.ListPushTokens(ctx, args.UserID)
	if err != nil {
		return fmt.Errorf("list push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	messages := make([]pushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, pushMessage{To: token, Title: args.Title, Body: args.Body, Data: args.Data})
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	w.log.Info("push delivered", "user_id", args.UserID, "tokens", len(tokens))
	return nil
}
