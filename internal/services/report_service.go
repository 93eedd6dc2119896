package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
)

// PassageFilter defines criteria for filtering toll passages
type PassageFilter struct {
	AccountID     *uint
	VehicleID     *uint
	TollGateID    *uint
	Status        *models.PassageStatus
	PaymentMethod *models.PaymentMethod
	StartTime     *time.Time
	EndTime       *time.Time
	Page          int
	Limit         int
}

// FindPassages retrieves a paginated list of passages with filtering
func FindPassages(filter PassageFilter) ([]models.TollPassage, int64, error) {
	var passages []models.TollPassage
	var total int64

	query := database.DB.Model(&models.TollPassage{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.TollGateID != nil {
		query = query.Where("toll_gate_id = ?", *filter.TollGateID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.StartTime != nil {
		query = query.Where("scanned_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("scanned_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("scanned_at desc").Limit(filter.Limit).Offset(offset).Find(&passages).Error; err != nil {
		return nil, 0, err
	}

	return passages, total, nil
}

// GateSummary aggregates passage outcomes and collected revenue for one gate.
type GateSummary struct {
	TollGateID      uint            `json:"toll_gate_id"`
	SuccessfulCount int64           `json:"successful_count"`
	RejectedCount   int64           `json:"rejected_count"`
	ExemptCount     int64           `json:"exempt_count"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// SummarizePassagesByGate computes per-gate totals over an optional time
// window. Revenue counts only successful, non-exempt passages.
func SummarizePassagesByGate(startTime, endTime *time.Time) ([]GateSummary, error) {
	query := database.DB.Model(&models.TollPassage{})
	if startTime != nil {
		query = query.Where("scanned_at >= ?", *startTime)
	}
	if endTime != nil {
		query = query.Where("scanned_at <= ?", *endTime)
	}

	var passages []models.TollPassage
	if err := query.Find(&passages).Error; err != nil {
		return nil, err
	}

	byGate := make(map[uint]*GateSummary)
	var order []uint
	for _, p := range passages {
		summary, ok := byGate[p.TollGateID]
		if !ok {
			summary = &GateSummary{TollGateID: p.TollGateID, Revenue: decimal.Zero}
			byGate[p.TollGateID] = summary
			order = append(order, p.TollGateID)
		}

		switch p.Status {
		case models.PassageStatusSuccessful:
			if p.PaymentMethod == models.PaymentMethodGovExemption {
				summary.ExemptCount++
			} else {
				summary.SuccessfulCount++
				summary.Revenue = summary.Revenue.Add(p.TotalAmount)
			}
		case models.PassageStatusRejected:
			summary.RejectedCount++
		}
	}

	summaries := make([]GateSummary, 0, len(order))
	for _, gateID := range order {
		summaries = append(summaries, *byGate[gateID])
	}
	return summaries, nil
}
