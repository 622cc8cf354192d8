package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// paymentChannel is the Postgres NOTIFY channel a trigger on payments fires
// on every status change.
const paymentChannel = "payment_status"

type paymentEvent struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
}

// Listener fans Postgres payment notifications out to per-payment
// subscribers. It implements Feed.
type Listener struct {
	pool *pgxpool.Pool
	log  *slog.Logger

	mu   sync.Mutex
	subs map[uuid.UUID][]chan string
}

func NewListener(pool *pgxpool.Pool, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{pool: pool, log: log, subs: make(map[uuid.UUID][]chan string)}
}

var _ Feed = (*Listener)(nil)

// Listen holds a dedicated connection on the payment channel until ctx ends.
// Run it in its own goroutine.
func (l *Listener) Listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+paymentChannel); err != nil {
		return err
	}
	l.log.Info("listening for payment status changes", "channel", paymentChannel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var ev paymentEvent
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			l.log.Warn("unparseable payment notification", "payload", notification.Payload)
			continue
		}
		l.publish(ev)
	}
}

func (l *Listener) publish(ev paymentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs[ev.PaymentID] {
		select {
		case ch <- ev.Status:
		default:
			// Slow subscriber; it will catch up from its next update.
		}
	}
}

// Subscribe registers interest in one payment's status changes.
func (l *Listener) Subscribe(_ context.Context, paymentID uuid.UUID) (<-chan string, func(), error) {
	ch := make(chan string, 8)
	l.mu.Lock()
	l.subs[paymentID] = append(l.subs[paymentID], ch)
	l.mu.Unlock()

	unsubscribe := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		chans := l.subs[paymentID]
		for i, c := range chans {
			if c == ch {
				l.subs[paymentID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(l.subs[paymentID]) == 0 {
			delete(l.subs, paymentID)
		}
		close(ch)
	}
	return ch, unsubscribe, nil
}
