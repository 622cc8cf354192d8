package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/money"
)

// Store persists notification rows and resolves a user's push tokens.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListPushTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
	RegisterPushToken(ctx context.Context, userID uuid.UUID, token string) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error)
}

// EnqueuePushFunc hands a push job to the queue. Wired to the River client
// in main; nil disables push delivery.
type EnqueuePushFunc func(ctx context.Context, args PushNotificationArgs) error

// Service writes notification rows and enqueues push delivery. The row is
// the source of truth; push is best-effort on top.
type Service struct {
	store   Store
	enqueue EnqueuePushFunc
	log     *slog.Logger
}

func NewService(store Store, enqueue EnqueuePushFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, enqueue: enqueue, log: log}
}

// Notify records a notification and queues its push.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ, title, body string) error {
	n := &models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.push(ctx, userID, title, body, nil)
	return nil
}

// PayoutSent tells a mechanic their weekly transfer went out.
func (s *Service) PayoutSent(ctx context.Context, mechanicID uuid.UUID, amountCents int64, jobCount int) {
	amount := money.FormatMoney(amountCents, money.FormatOptions{})
	body := fmt.Sprintf("%s for %d job(s) is on the way to your bank account.", amount, jobCount)
	n := &models.Notification{
		ID:     uuid.New(),
		UserID: mechanicID,
		Type:   models.NotificationTransferCreated,
		Title:  "Payout sent",
		Body:   body,
	}
	if data, err := json.Marshal(map[string]any{"amount_cents": amountCents, "job_count": jobCount}); err == nil {
		n.Data = data
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.log.Warn("payout notification insert failed", "mechanic_id", mechanicID, "error", err)
		return
	}
	s.push(ctx, mechanicID, n.Title, n.Body, n.Data)
}

// RegisterPushToken enrolls a device token for the user.
func (s *Service) RegisterPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.store.RegisterPushToken(ctx, userID, token)
}

// List returns a user's recent notifications.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListNotifications(ctx, userID, limit)
}

func (s *Service) push(ctx context.Context, userID uuid.UUID, title, body string, data json.RawMessage) {
	if s.enqueue == nil {
		return
	}
	err := s.enqueue(ctx, PushNotificationArgs{UserID: userID, Title: title, Body: body, Data: data})
	if err != nil {
		s.log.Warn("push enqueue failed", "user_id", userID, "error", err)
	}
}
