package services

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sparechange679/toll-collection-system-sub001/config"
	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

type NotificationKind string

const (
	NotificationReceipt    NotificationKind = "receipt"
	NotificationLowBalance NotificationKind = "low_balance"
)

// NotificationEvent is the fire-and-forget message emitted after a passage
// settles. Delivery is best-effort and never part of the settlement
// transaction.
type NotificationEvent struct {
	Kind      NotificationKind
	PassageID uint
	AccountID uint
	Balance   decimal.Decimal
}

// Sender delivers one notification. The default sender logs the receipt;
// deployments plug in an SMTP or push implementation.
type Sender interface {
	Send(event NotificationEvent, passage *models.TollPassage, account *models.Account) error
}

// NotificationDispatcher drains a buffered event channel on a worker
// goroutine. A full buffer drops the event with a warning rather than
// blocking the authorizer.
type NotificationDispatcher struct {
	events chan NotificationEvent
	sender Sender
	stop   chan struct{}
	wg     sync.WaitGroup
}

var Dispatcher *NotificationDispatcher

func init() {
	Dispatcher = NewNotificationDispatcher(&logSender{}, 100)
}

func NewNotificationDispatcher(sender Sender, buffer int) *NotificationDispatcher {
	return &NotificationDispatcher{
		events: make(chan NotificationEvent, buffer),
		sender: sender,
		stop:   make(chan struct{}),
	}
}

// Enqueue hands off an event without blocking. Returns false when the buffer
// is full and the event was dropped.
func (d *NotificationDispatcher) Enqueue(event NotificationEvent) bool {
	select {
	case d.events <- event:
		return true
	default:
		logger.Log.Warn("notification buffer full, dropping event",
			zap.String("kind", string(event.Kind)),
			zap.Uint("passage_id", event.PassageID))
		return false
	}
}

// Start launches the delivery worker.
func (d *NotificationDispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case event := <-d.events:
				d.deliver(event)
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop signals the worker and waits for it to exit. Queued events that were
// not yet delivered are dropped, consistent with best-effort semantics.
func (d *NotificationDispatcher) Stop() {
	close(d.stop)
	d.wg.Wait()
}

func (d *NotificationDispatcher) deliver(event NotificationEvent) {
	var passage models.TollPassage
	if err := database.DB.First(&passage, event.PassageID).Error; err != nil {
		logger.Log.Warn("notification skipped, passage not found",
			zap.Uint("passage_id", event.PassageID), zap.Error(err))
		return
	}

	var account *models.Account
	if event.AccountID != 0 {
		if found, err := FindAccountByID(event.AccountID); err == nil {
			account = &found
		}
	}

	if err := d.sender.Send(event, &passage, account); err != nil {
		// Logged, never propagated: a failed receipt must not affect the
		// settled passage.
		logger.Log.Error("notification delivery failed",
			zap.String("kind", string(event.Kind)),
			zap.Uint("passage_id", event.PassageID),
			zap.Error(err))
	}
}

type logSender struct{}

func (s *logSender) Send(event NotificationEvent, passage *models.TollPassage, account *models.Account) error {
	fields := []zap.Field{
		zap.String("kind", string(event.Kind)),
		zap.Uint("passage_id", passage.ID),
		zap.String("total_amount", passage.TotalAmount.String()),
		zap.String("payment_method", string(passage.PaymentMethod)),
	}
	if account != nil {
		fields = append(fields, zap.Uint("account_id", account.ID))
	}
	if event.Kind == NotificationLowBalance {
		fields = append(fields, zap.String("balance", event.Balance.String()))
	}
	logger.Log.Info("notification dispatched", fields...)
	return nil
}

func lowBalanceThreshold() decimal.Decimal {
	cfg, err := config.LoadConfig()
	if err != nil {
		return decimal.NewFromInt(1000)
	}
	threshold, err := decimal.NewFromString(cfg.LowBalanceThreshold)
	if err != nil {
		return decimal.NewFromInt(1000)
	}
	return threshold
}
