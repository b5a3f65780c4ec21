// internal/app/system/notify/notifier.go
//
// Package notify turns booking events into outbound email.
//
// Every message is written to the notifications outbox first and then sent in
// its own goroutine, so a slow or failing SMTP relay never blocks or fails the
// HTTP request that triggered it. Failed sends are retried by RetryDue, which
// the background task runner calls on an interval.
package notify

import (
	"context"
	"sync"
	"time"

	notificationstore "github.com/dalemusser/reelfolio/internal/app/store/notifications"
	"github.com/dalemusser/reelfolio/internal/app/system/mailer"
	"github.com/dalemusser/reelfolio/internal/app/system/metrics"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/dalemusser/reelfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Outbox is the persistence the notifier needs. *notificationstore.Store satisfies it.
type Outbox interface {
	Enqueue(ctx context.Context, n notificationstore.Notification) (notificationstore.Notification, error)
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, cause string, next *time.Time) error
	ListDue(ctx context.Context, now time.Time, maxAttempts int, limit int64) ([]notificationstore.Notification, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int64) ([]notificationstore.Notification, error)
}

// Config controls addressing and retry behaviour.
type Config struct {
	AppName       string        // shown in email headers and signatures
	AdminEmail    string        // receives new-booking alerts; empty disables them
	AdminURL      string        // linked from the alert
	MaxAttempts   int           // total send attempts per message
	RetryInterval time.Duration // base delay; attempt n waits n*RetryInterval
	StaleAfter    time.Duration // pending records older than this are treated as lost
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 5 * time.Minute
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 15 * time.Minute
	}
	return c
}

// retryBatch bounds how many messages a single RetryDue pass handles.
const retryBatch = 50

// Notifier sends booking emails through an outbox.
type Notifier struct {
	outbox  Outbox
	sender  mailer.Sender
	metrics *metrics.Metrics
	log     *zap.Logger
	cfg     Config

	wg  sync.WaitGroup
	now func() time.Time
}

// New creates a Notifier. outbox may be nil, in which case messages are sent
// once with no record and no retry.
func New(outbox Outbox, sender mailer.Sender, m *metrics.Metrics, log *zap.Logger, cfg Config) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		outbox:  outbox,
		sender:  sender,
		metrics: m,
		log:     log,
		cfg:     cfg.withDefaults(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// BookingCreated queues the client acknowledgement and the studio alert.
// It returns immediately; delivery happens in the background.
func (n *Notifier) BookingCreated(ctx context.Context, b models.Booking) {
	if n == nil {
		return
	}
	data := mailer.NewBookingEmailData(n.cfg.AppName, b, "")
	text, html := mailer.BookingReceivedEmail(data)
	n.dispatch(ctx, notificationstore.Notification{
		Kind:      notificationstore.KindBookingReceived,
		BookingID: b.ID,
		To:        b.Email,
		Subject:   mailer.SubjectBookingReceived,
		TextBody:  text,
		HTMLBody:  html,
	})

	if n.cfg.AdminEmail == "" {
		n.log.Warn("no admin email configured; skipping booking alert",
			zap.String("booking_id", b.ID.Hex()))
		return
	}
	data.AdminURL = n.cfg.AdminURL
	text, html = mailer.BookingAlertEmail(data)
	n.dispatch(ctx, notificationstore.Notification{
		Kind:      notificationstore.KindBookingAlert,
		BookingID: b.ID,
		To:        n.cfg.AdminEmail,
		Subject:   mailer.SubjectBookingAlert,
		TextBody:  text,
		HTMLBody:  html,
	})
}

// BookingStatusChanged tells the client about a confirmation or rejection.
// Any other status sends nothing.
func (n *Notifier) BookingStatusChanged(ctx context.Context, b models.Booking) {
	if n == nil || !models.NotifiesClient(b.Status) {
		return
	}
	data := mailer.NewBookingEmailData(n.cfg.AppName, b, "")
	msg := notificationstore.Notification{BookingID: b.ID, To: b.Email}
	switch b.Status {
	case models.BookingConfirmed:
		msg.Kind = notificationstore.KindBookingConfirmed
		msg.Subject = mailer.SubjectBookingConfirmed
		msg.TextBody, msg.HTMLBody = mailer.BookingConfirmedEmail(data)
	case models.BookingRejected:
		msg.Kind = notificationstore.KindBookingRejected
		msg.Subject = mailer.SubjectBookingRejected
		msg.TextBody, msg.HTMLBody = mailer.BookingRejectedEmail(data)
	}
	n.dispatch(ctx, msg)
}

// dispatch records msg in the outbox and starts its delivery.
// If the outbox write fails the message is still sent once.
func (n *Notifier) dispatch(ctx context.Context, msg notificationstore.Notification) {
	if n.outbox != nil {
		stored, err := n.outbox.Enqueue(ctx, msg)
		if err != nil {
			n.log.Warn("outbox write failed; sending without retry",
				zap.String("kind", string(msg.Kind)),
				zap.String("booking_id", msg.BookingID.Hex()),
				zap.Error(err))
		} else {
			msg = stored
		}
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(msg)
	}()
}

// deliver performs one send attempt and records the outcome.
// It runs detached from any request context.
func (n *Notifier) deliver(msg notificationstore.Notification) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Mail())
	start := time.Now()
	err := n.sender.Send(ctx, mailer.Email{
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	cancel()
	took := time.Since(start)

	if err == nil {
		n.metrics.NotificationSent(string(msg.Kind), took)
		n.record(msg, nil)
		return true
	}

	n.metrics.NotificationFailed(string(msg.Kind), took)
	n.log.Warn("notification send failed",
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.To),
		zap.String("booking_id", msg.BookingID.Hex()),
		zap.Int("attempt", msg.Attempts+1),
		zap.Error(err))
	n.record(msg, err)
	return false
}

// record writes the attempt outcome to the outbox.
func (n *Notifier) record(msg notificationstore.Notification, sendErr error) {
	if n.outbox == nil || msg.ID.IsZero() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	var err error
	if sendErr == nil {
		err = n.outbox.MarkSent(ctx, msg.ID)
	} else {
		err = n.outbox.MarkFailed(ctx, msg.ID, sendErr.Error(), n.nextAttempt(msg.Attempts+1))
	}
	if err != nil {
		n.log.Error("failed to record notification outcome",
			zap.String("notification_id", msg.ID.Hex()),
			zap.Error(err))
	}
}

// nextAttempt returns when attempt number attempts+1 may run, or nil once
// the budget is spent.
func (n *Notifier) nextAttempt(attempts int) *time.Time {
	if attempts >= n.cfg.MaxAttempts {
		return nil
	}
	t := n.now().Add(time.Duration(attempts) * n.cfg.RetryInterval)
	return &t
}

// RetryDue resends failed messages whose retry time has passed, plus pending
// messages that were never resolved (the process stopped mid-send).
// Sends run sequentially. It returns how many succeeded.
func (n *Notifier) RetryDue(ctx context.Context) (int, error) {
	if n == nil || n.outbox == nil {
		return 0, nil
	}
	now := n.now()

	due, err := n.outbox.ListDue(ctx, now, n.cfg.MaxAttempts, retryBatch)
	if err != nil {
		return 0, err
	}
	stale, err := n.outbox.ListStalePending(ctx, now.Add(-n.cfg.StaleAfter), retryBatch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, msg := range append(due, stale...) {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if n.deliver(msg) {
			sent++
		}
	}
	if len(due)+len(stale) > 0 {
		n.log.Info("notification retry pass",
			zap.Int("due", len(due)),
			zap.Int("stale", len(stale)),
			zap.Int("sent", sent))
	}
	return sent, nil
}

// Wait blocks until in-flight sends finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	if n == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		n.log.Warn("notifier shutdown timed out with sends in flight")
		return ctx.Err()
	}
}
