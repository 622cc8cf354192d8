package payments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// DefaultNavigateDelay is the pause between a successful payment and the
// navigation callback. Purely a UX affordance.
const DefaultNavigateDelay = 2 * time.Second

// Feed delivers status updates for a single payment row. Subscribe returns
// the update channel and an unsubscribe func; the channel closes when the
// feed shuts down.
type Feed interface {
	Subscribe(ctx context.Context, paymentID uuid.UUID) (<-chan string, func(), error)
}

// FetchFunc returns the payment's current status.
type FetchFunc func(ctx context.Context, paymentID uuid.UUID) (string, error)

// ObserverHandlers are the caller's reactions to status changes.
type ObserverHandlers struct {
	// OnStatus fires for every observed status, terminal or not.
	OnStatus func(status string)
	// Navigate fires once, NavigateDelay after a succeeded status.
	Navigate func()
}

// StatusObserver watches one payment until it reaches a terminal status.
// An initial fetch after subscribing covers the race where the status
// changed before the subscription was established. requires_action is
// intermediate: the observer reports it and keeps listening.
type StatusObserver struct {
	paymentID     uuid.UUID
	fetch         FetchFunc
	feed          Feed
	handlers      ObserverHandlers
	navigateDelay time.Duration
}

func NewStatusObserver(paymentID uuid.UUID, fetch FetchFunc, feed Feed, handlers ObserverHandlers) *StatusObserver {
	return &StatusObserver{
		paymentID:     paymentID,
		fetch:         fetch,
		feed:          feed,
		handlers:      handlers,
		navigateDelay: DefaultNavigateDelay,
	}
}

// Run blocks until the payment reaches succeeded or failed, or ctx is
// cancelled. The subscription is always torn down on return.
func (o *StatusObserver) Run(ctx context.Context) error {
	updates, unsubscribe, err := o.feed.Subscribe(ctx, o.paymentID)
	if err != nil {
		return err
	}
	defer unsubscribe()

	// Initial fetch after subscribing: anything that happened before the
	// subscription was live is caught here.
	status, err := o.fetch(ctx, o.paymentID)
	if err != nil {
		return err
	}
	if o.apply(ctx, status) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case status, ok := <-updates:
			if !ok {
				return nil
			}
			if o.apply(ctx, status) {
				return nil
			}
		}
	}
}

// apply reports the status and returns true when it is terminal.
func (o *StatusObserver) apply(ctx context.Context, status string) bool {
	if o.handlers.OnStatus != nil {
		o.handlers.OnStatus(status)
	}
	switch status {
	case models.PaymentStatusSucceeded:
		if o.handlers.Navigate != nil {
			timer := time.NewTimer(o.navigateDelay)
			go func() {
				defer timer.Stop()
				select {
				case <-timer.C:
					o.handlers.Navigate()
				case <-ctx.Done():
				}
			}()
		}
		return true
	case models.PaymentStatusFailed:
		return true
	}
	return false
}
