package services

import (
	"github.com/shopspring/decimal"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
)

// RateQuote is the priced outcome of one passage before settlement.
type RateQuote struct {
	TollAmount   decimal.Decimal
	FineAmount   decimal.Decimal
	TotalAmount  decimal.Decimal
	IsOverweight bool
	IsExempt     bool
}

// EvaluateRate prices a passage. Pure and deterministic: same gate, weight
// and category always yield the same quote.
//
// Government vehicles pay nothing regardless of weight. The toll is the
// gate's flat rate; only the overweight fine is weight-driven, and a weight
// exactly at the limit is not overweight. A nil weight (sensor offline or no
// reading) never fines.
func EvaluateRate(gate *models.TollGate, weightKg *float64, category models.VehicleCategory) RateQuote {
	if category == models.VehicleCategoryGovernment {
		return RateQuote{
			TollAmount:  decimal.Zero,
			FineAmount:  decimal.Zero,
			TotalAmount: decimal.Zero,
			IsExempt:    true,
		}
	}

	quote := RateQuote{
		TollAmount: gate.BaseTollRate,
		FineAmount: decimal.Zero,
	}

	if weightKg != nil && *weightKg > gate.WeightLimitKg {
		quote.IsOverweight = true
		quote.FineAmount = gate.OverweightFineRate
	}

	quote.TotalAmount = quote.TollAmount.Add(quote.FineAmount)
	return quote
}
