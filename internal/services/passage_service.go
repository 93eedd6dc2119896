package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

var ErrGateUnavailable = errors.New("toll gate is not operational")

// Rejection reasons stored on audit passages. The replay path maps them back
// to the matching error, so keep them stable.
const (
	reasonGateUnavailable     = "Gate unavailable"
	reasonRFIDNotFound        = "RFID tag not registered or vehicle inactive"
	reasonInsufficientBalance = "Insufficient balance"
)

// PassageRequest is one scan event as reported by the hardware gateway.
type PassageRequest struct {
	RFIDTag    string
	TollGateID uint
	WeightKg   *float64
	// Scan event idempotency token. Devices resend the same token on network
	// retry; an empty token gets a generated one (no replay protection).
	Reference string
	ScannedAt time.Time
}

// PassageResult is the settled outcome of one scan event.
type PassageResult struct {
	Passage     *models.TollPassage
	Transaction *models.Transaction
	NewBalance  *decimal.Decimal
	// Replayed is true when the reference matched an earlier event and the
	// stored outcome was returned instead of processing the scan again.
	Replayed bool
}

// VerifyPassage runs the passage authorization state machine:
// replay check, gate check, vehicle resolve, rate evaluation, then either the
// exemption or the wallet settlement branch. Exactly one passage row is
// written per new scan event and at most one ledger entry; the entry and its
// passage commit in the same transaction. Rejections are terminal, the
// hardware caller owns retry.
func VerifyPassage(req PassageRequest) (*PassageResult, error) {
	if req.Reference == "" {
		req.Reference = uuid.New().String()
	}
	if req.ScannedAt.IsZero() {
		req.ScannedAt = time.Now()
	}

	if result, err, replayed := replayByReference(req.Reference); replayed {
		return result, err
	}

	result, outcome, err := processPassage(req)
	if errors.Is(err, ErrDuplicateReference) {
		// Lost a race against a concurrent resend of the same event.
		if result, replayErr, replayed := replayByReference(req.Reference); replayed {
			return result, replayErr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if result.Transaction != nil {
		invalidateAccountCache(result.Transaction.AccountID)
	}

	if outcome == nil && result.Passage != nil && result.Passage.Status == models.PassageStatusSuccessful {
		dispatchPassageNotifications(result.Passage, result.Transaction)
	}

	return result, outcome
}

// processPassage runs the checks and writes for one new scan event. Gate and
// vehicle resolve through the cached read path before any transaction opens;
// a lookup inside the settlement transaction would need a second pool
// connection while the first is held open. The returned outcome error
// classifies a committed rejection.
func processPassage(req PassageRequest) (*PassageResult, error, error) {
	// GateCheck. A missing gate writes no audit row: there is no gate to
	// attach the passage to.
	gate, err := FindGateByID(req.TollGateID)
	if err != nil {
		if errors.Is(err, ErrGateNotFound) {
			return &PassageResult{}, ErrGateNotFound, nil
		}
		return nil, nil, err
	}

	if !gate.CanAuthorize() {
		passage, err := createPassageTx(database.DB, &models.TollPassage{
			TollGateID:      gate.ID,
			RFIDTag:         req.RFIDTag,
			WeightKg:        req.WeightKg,
			ScannedAt:       req.ScannedAt,
			Status:          models.PassageStatusRejected,
			RejectionReason: reasonGateUnavailable,
			Reference:       req.Reference,
		})
		if err != nil {
			return nil, nil, err
		}
		return &PassageResult{Passage: passage}, ErrGateUnavailable, nil
	}

	// VehicleResolve.
	vehicle, err := FindActiveVehicleByTag(req.RFIDTag)
	if err != nil {
		if errors.Is(err, ErrRFIDNotFound) {
			passage, err := createPassageTx(database.DB, &models.TollPassage{
				TollGateID:      gate.ID,
				RFIDTag:         req.RFIDTag,
				WeightKg:        req.WeightKg,
				ScannedAt:       req.ScannedAt,
				Status:          models.PassageStatusRejected,
				RejectionReason: reasonRFIDNotFound,
				Reference:       req.Reference,
			})
			if err != nil {
				return nil, nil, err
			}
			return &PassageResult{Passage: passage}, ErrRFIDNotFound, nil
		}
		return nil, nil, err
	}

	// RateEvaluate. A weight reading from a malfunctioning sensor is not
	// trustworthy enough to fine on.
	weight := req.WeightKg
	if gate.WeightSensorStatus != models.DeviceStatusOperational {
		weight = nil
	}
	quote := EvaluateRate(gate, weight, vehicle.Category)

	// Exemption branch: no ledger involvement at all.
	if quote.IsExempt {
		passage, err := createPassageTx(database.DB, &models.TollPassage{
			TollGateID:    gate.ID,
			AccountID:     &vehicle.AccountID,
			VehicleID:     &vehicle.ID,
			RFIDTag:       req.RFIDTag,
			WeightKg:      req.WeightKg,
			ScannedAt:     req.ScannedAt,
			Status:        models.PassageStatusSuccessful,
			PaymentMethod: models.PaymentMethodGovExemption,
			Reference:     req.Reference,
		})
		if err != nil {
			return nil, nil, err
		}
		return &PassageResult{Passage: passage}, nil, nil
	}

	return settlePassage(req, gate, vehicle, quote)
}

// settlePassage debits the wallet and writes the passage row in one
// transaction, retrying when a concurrent ledger write invalidates the
// balance check. An insufficient balance commits a rejected audit passage.
func settlePassage(req PassageRequest, gate *models.TollGate, vehicle *models.Vehicle, quote RateQuote) (*PassageResult, error, error) {
	var (
		passage *models.TollPassage
		entry   *models.Transaction
		outcome error
	)

	description := fmt.Sprintf("Toll payment at %s (gate %d)", gate.Name, gate.ID)

	for attempt := 0; ; attempt++ {
		passage, entry, outcome = nil, nil, nil

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			entry, txErr = AppendEntryTx(tx, vehicle.AccountID, quote.TotalAmount,
				models.TransactionTypeDebit, description, req.Reference, "system",
				map[string]interface{}{
					"toll_gate_id": gate.ID,
					"vehicle_id":   vehicle.ID,
					"rfid_tag":     req.RFIDTag,
					"toll_amount":  quote.TollAmount.String(),
					"fine_amount":  quote.FineAmount.String(),
				})
			if txErr != nil {
				if errors.Is(txErr, ErrInsufficientFunds) {
					entry = nil
					outcome = ErrInsufficientFunds
					passage, txErr = createPassageTx(tx, &models.TollPassage{
						TollGateID:      gate.ID,
						AccountID:       &vehicle.AccountID,
						VehicleID:       &vehicle.ID,
						RFIDTag:         req.RFIDTag,
						WeightKg:        req.WeightKg,
						IsOverweight:    quote.IsOverweight,
						TollAmount:      quote.TollAmount,
						FineAmount:      quote.FineAmount,
						TotalAmount:     quote.TotalAmount,
						ScannedAt:       req.ScannedAt,
						Status:          models.PassageStatusRejected,
						RejectionReason: reasonInsufficientBalance,
						Reference:       req.Reference,
					})
					return txErr
				}
				return txErr
			}

			passage, txErr = createPassageTx(tx, &models.TollPassage{
				TollGateID:    gate.ID,
				AccountID:     &vehicle.AccountID,
				VehicleID:     &vehicle.ID,
				RFIDTag:       req.RFIDTag,
				WeightKg:      req.WeightKg,
				IsOverweight:  quote.IsOverweight,
				TollAmount:    quote.TollAmount,
				FineAmount:    quote.FineAmount,
				TotalAmount:   quote.TotalAmount,
				ScannedAt:     req.ScannedAt,
				Status:        models.PassageStatusSuccessful,
				PaymentMethod: models.PaymentMethodWallet,
				Reference:     req.Reference,
			})
			return txErr
		})
		if errors.Is(err, ErrOptimisticLock) && attempt < ledgerMaxRetries {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		break
	}

	result := &PassageResult{Passage: passage, Transaction: entry}
	if entry != nil {
		result.NewBalance = &entry.BalanceAfter
	}
	return result, outcome, nil
}

func createPassageTx(tx *gorm.DB, passage *models.TollPassage) (*models.TollPassage, error) {
	if err := tx.Create(passage).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}
	return passage, nil
}

// replayByReference returns the stored outcome for an already-processed scan
// event, mapped to the same error the first invocation produced.
func replayByReference(reference string) (*PassageResult, error, bool) {
	var passage models.TollPassage
	err := database.DB.Where("reference = ?", reference).First(&passage).Error
	if err != nil {
		return nil, nil, false
	}

	result := &PassageResult{Passage: &passage, Replayed: true}

	if passage.Status == models.PassageStatusSuccessful {
		if passage.PaymentMethod == models.PaymentMethodWallet {
			var entry models.Transaction
			if err := database.DB.Where("reference = ?", reference).First(&entry).Error; err == nil {
				result.Transaction = &entry
				result.NewBalance = &entry.BalanceAfter
			}
		}
		return result, nil, true
	}

	switch passage.RejectionReason {
	case reasonGateUnavailable:
		return result, ErrGateUnavailable, true
	case reasonRFIDNotFound:
		return result, ErrRFIDNotFound, true
	case reasonInsufficientBalance:
		return result, ErrInsufficientFunds, true
	default:
		return result, ErrDuplicateReference, true
	}
}

func dispatchPassageNotifications(passage *models.TollPassage, entry *models.Transaction) {
	if Dispatcher == nil {
		return
	}

	if passage.AccountID != nil {
		Dispatcher.Enqueue(NotificationEvent{
			Kind:      NotificationReceipt,
			PassageID: passage.ID,
			AccountID: *passage.AccountID,
		})
	}

	if entry != nil && entry.BalanceAfter.LessThan(lowBalanceThreshold()) {
		Dispatcher.Enqueue(NotificationEvent{
			Kind:      NotificationLowBalance,
			PassageID: passage.ID,
			AccountID: entry.AccountID,
			Balance:   entry.BalanceAfter,
		})
	}
}

// RecordManualPassage writes a staff-recorded passage (cash payment at the
// booth or a manual barrier override). Reuses the passage audit trail but
// never touches the ledger.
func RecordManualPassage(gateID uint, vehicleID *uint, accountID *uint, method models.PaymentMethod, amount decimal.Decimal, operator string) (*models.TollPassage, error) {
	if method != models.PaymentMethodCash && method != models.PaymentMethodManualOverride {
		return nil, fmt.Errorf("unsupported manual payment method: %s", method)
	}

	gate, err := FindGateByID(gateID)
	if err != nil {
		return nil, err
	}

	passage := &models.TollPassage{
		TollGateID:    gate.ID,
		AccountID:     accountID,
		VehicleID:     vehicleID,
		ScannedAt:     time.Now(),
		TollAmount:    amount,
		TotalAmount:   amount,
		Status:        models.PassageStatusSuccessful,
		PaymentMethod: method,
		Reference:     uuid.New().String(),
	}
	if err := database.DB.Create(passage).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("manual passage recorded",
		zap.Uint("toll_gate_id", gateID),
		zap.String("payment_method", string(method)),
		zap.String("operator", operator))

	return passage, nil
}
