package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

type captureSender struct {
	mu     sync.Mutex
	events []NotificationEvent
	fail   bool
}

func (s *captureSender) Send(event NotificationEvent, passage *models.TollPassage, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unreachable")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *captureSender) received() []NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NotificationEvent, len(s.events))
	copy(out, s.events)
	return out
}

func setupNotificationTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.Account{}, &models.TollPassage{})
	db.AutoMigrate(&models.Account{}, &models.TollPassage{})

	database.DB = db
	database.RedisClient = nil
	logger.Log = zap.NewNop()
}

func seedNotificationPassage() (models.Account, models.TollPassage) {
	account := models.Account{
		Username: "notify-driver",
		Password: "x",
		Role:     models.RoleDriver,
		Balance:  decimal.NewFromInt(9500),
		IsActive: true,
		Version:  1,
	}
	database.DB.Create(&account)

	passage := models.TollPassage{
		TollGateID:    1,
		AccountID:     &account.ID,
		RFIDTag:       "TAG-N1",
		ScannedAt:     time.Now(),
		TollAmount:    decimal.NewFromInt(500),
		TotalAmount:   decimal.NewFromInt(500),
		Status:        models.PassageStatusSuccessful,
		PaymentMethod: models.PaymentMethodWallet,
		Reference:     "notify-1",
	}
	database.DB.Create(&passage)

	return account, passage
}

func waitForEvents(t *testing.T, sender *captureSender, want int) []NotificationEvent {
	deadline := time.After(2 * time.Second)
	for {
		events := sender.received()
		if len(events) >= want {
			return events
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", want, len(events))
			return nil
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDispatcherDeliversReceipt(t *testing.T) {
	setupNotificationTestDB()
	account, passage := seedNotificationPassage()

	sender := &captureSender{}
	dispatcher := NewNotificationDispatcher(sender, 10)
	dispatcher.Start()
	defer dispatcher.Stop()

	ok := dispatcher.Enqueue(NotificationEvent{
		Kind:      NotificationReceipt,
		PassageID: passage.ID,
		AccountID: account.ID,
	})
	assert.True(t, ok)

	events := waitForEvents(t, sender, 1)
	assert.Equal(t, NotificationReceipt, events[0].Kind)
	assert.Equal(t, passage.ID, events[0].PassageID)
}

func TestDispatcherDropsWhenBufferFull(t *testing.T) {
	setupNotificationTestDB()
	_, passage := seedNotificationPassage()

	sender := &captureSender{}
	// Not started: the buffer fills and the overflow event is dropped.
	dispatcher := NewNotificationDispatcher(sender, 1)

	first := dispatcher.Enqueue(NotificationEvent{Kind: NotificationReceipt, PassageID: passage.ID})
	second := dispatcher.Enqueue(NotificationEvent{Kind: NotificationReceipt, PassageID: passage.ID})
	assert.True(t, first)
	assert.False(t, second)
}

func TestDispatcherSurvivesSendFailure(t *testing.T) {
	setupNotificationTestDB()
	account, passage := seedNotificationPassage()

	sender := &captureSender{fail: true}
	dispatcher := NewNotificationDispatcher(sender, 10)
	dispatcher.Start()
	defer dispatcher.Stop()

	dispatcher.Enqueue(NotificationEvent{
		Kind:      NotificationReceipt,
		PassageID: passage.ID,
		AccountID: account.ID,
	})

	// The worker keeps running: after the failure it still delivers.
	time.Sleep(50 * time.Millisecond)
	sender.mu.Lock()
	sender.fail = false
	sender.mu.Unlock()

	dispatcher.Enqueue(NotificationEvent{
		Kind:      NotificationLowBalance,
		PassageID: passage.ID,
		AccountID: account.ID,
		Balance:   decimal.NewFromInt(200),
	})

	events := waitForEvents(t, sender, 1)
	assert.Equal(t, NotificationLowBalance, events[0].Kind)
}
