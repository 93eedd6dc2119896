package services

import (
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

func setupReportTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.TollPassage{})
	db.AutoMigrate(&models.TollPassage{})

	database.DB = db
	database.RedisClient = nil
	logger.Log = zap.NewNop()
}

func seedReportPassage(gateID uint, status models.PassageStatus, method models.PaymentMethod, total int64, ref string, at time.Time) {
	database.DB.Create(&models.TollPassage{
		TollGateID:    gateID,
		RFIDTag:       "TAG-R",
		ScannedAt:     at,
		TollAmount:    decimal.NewFromInt(total),
		TotalAmount:   decimal.NewFromInt(total),
		Status:        status,
		PaymentMethod: method,
		Reference:     ref,
	})
}

func TestSummarizePassagesByGate(t *testing.T) {
	setupReportTestDB()
	now := time.Now()

	seedReportPassage(1, models.PassageStatusSuccessful, models.PaymentMethodWallet, 500, "r-1", now)
	seedReportPassage(1, models.PassageStatusSuccessful, models.PaymentMethodWallet, 1500, "r-2", now)
	seedReportPassage(1, models.PassageStatusSuccessful, models.PaymentMethodGovExemption, 0, "r-3", now)
	seedReportPassage(1, models.PassageStatusRejected, "", 500, "r-4", now)
	seedReportPassage(2, models.PassageStatusSuccessful, models.PaymentMethodCash, 500, "r-5", now)

	summaries, err := SummarizePassagesByGate(nil, nil)
	assert.NoError(t, err)
	assert.Len(t, summaries, 2)

	byGate := map[uint]GateSummary{}
	for _, s := range summaries {
		byGate[s.TollGateID] = s
	}

	gate1 := byGate[1]
	assert.Equal(t, int64(2), gate1.SuccessfulCount)
	assert.Equal(t, int64(1), gate1.RejectedCount)
	assert.Equal(t, int64(1), gate1.ExemptCount)
	// Exempt and rejected passages contribute no revenue.
	assert.Equal(t, "2000.00", gate1.Revenue.StringFixed(2))

	gate2 := byGate[2]
	assert.Equal(t, int64(1), gate2.SuccessfulCount)
	assert.Equal(t, "500.00", gate2.Revenue.StringFixed(2))
}

func TestSummarizePassagesByGateTimeWindow(t *testing.T) {
	setupReportTestDB()
	now := time.Now()

	seedReportPassage(1, models.PassageStatusSuccessful, models.PaymentMethodWallet, 500, "w-1", now.Add(-48*time.Hour))
	seedReportPassage(1, models.PassageStatusSuccessful, models.PaymentMethodWallet, 700, "w-2", now)

	start := now.Add(-time.Hour)
	summaries, err := SummarizePassagesByGate(&start, nil)
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].SuccessfulCount)
	assert.Equal(t, "700.00", summaries[0].Revenue.StringFixed(2))
}

func TestFindPassagesFiltering(t *testing.T) {
	setupReportTestDB()
	now := time.Now()

	seedReportPassage(1, models.PassageStatusSuccessful, models.PaymentMethodWallet, 500, "f-1", now)
	seedReportPassage(1, models.PassageStatusRejected, "", 500, "f-2", now)
	seedReportPassage(2, models.PassageStatusSuccessful, models.PaymentMethodWallet, 500, "f-3", now)

	status := models.PassageStatusRejected
	passages, total, err := FindPassages(PassageFilter{Status: &status, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, passages, 1)
	assert.Equal(t, "f-2", passages[0].Reference)

	gateID := uint(2)
	passages, total, err = FindPassages(PassageFilter{TollGateID: &gateID, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "f-3", passages[0].Reference)
}
