package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/config"
	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrDuplicateReference = errors.New("reference already used")
	ErrOptimisticLock     = errors.New("account was modified concurrently, retry")
)

// How many times a ledger operation re-runs after losing an optimistic-lock
// race on the account row before giving up.
const ledgerMaxRetries = 10

// Credit appends a positive ledger entry and increases the account balance.
// Reference is the caller's idempotency token; a reused reference fails with
// ErrDuplicateReference instead of applying twice.
func Credit(accountID uint, amount decimal.Decimal, description, reference, operator string, metadata map[string]interface{}) (*models.Transaction, error) {
	return applyEntry(accountID, amount, models.TransactionTypeCredit, description, reference, operator, metadata)
}

// Debit appends a negative ledger entry after verifying sufficiency. The
// balance check, balance update and entry insert commit as one unit; a
// concurrent debit against the same account re-checks against the fresh
// balance, so two debits can never both spend the same funds.
func Debit(accountID uint, amount decimal.Decimal, description, reference, operator string, metadata map[string]interface{}) (*models.Transaction, error) {
	return applyEntry(accountID, amount, models.TransactionTypeDebit, description, reference, operator, metadata)
}

// BalanceOf reads the current balance snapshot.
func BalanceOf(accountID uint) (decimal.Decimal, error) {
	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func applyEntry(accountID uint, amount decimal.Decimal, entryType models.TransactionType, description, reference, operator string, metadata map[string]interface{}) (*models.Transaction, error) {
	var entry *models.Transaction

	for attempt := 0; ; attempt++ {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			entry, txErr = AppendEntryTx(tx, accountID, amount, entryType, description, reference, operator, metadata)
			return txErr
		})
		if errors.Is(err, ErrOptimisticLock) && attempt < ledgerMaxRetries {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	invalidateAccountCache(accountID)
	return entry, nil
}

// AppendEntryTx runs the read-check-mutate-insert sequence inside the
// caller's transaction. Callers that need the ledger entry and other rows to
// commit together (passage settlement) use this directly; ErrOptimisticLock
// means the whole transaction must be retried.
func AppendEntryTx(tx *gorm.DB, accountID uint, amount decimal.Decimal, entryType models.TransactionType, description, reference, operator string, metadata map[string]interface{}) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if reference == "" {
		return nil, errors.New("reference is required")
	}

	var existing models.Transaction
	err := tx.Where("reference = ?", reference).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateReference
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var account models.Account
	if err := tx.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	signedAmount := amount
	if entryType == models.TransactionTypeDebit {
		if account.Balance.LessThan(amount) {
			return nil, ErrInsufficientFunds
		}
		signedAmount = amount.Neg()
	}

	balanceBefore := account.Balance
	balanceAfter := balanceBefore.Add(signedAmount)

	// Conditional update on the version column. RowsAffected == 0 means a
	// concurrent writer got there first and the sufficiency check above ran
	// against a stale balance.
	result := tx.Model(&models.Account{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]interface{}{
			"balance": balanceAfter,
			"version": account.Version + 1,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrOptimisticLock
	}

	entry := &models.Transaction{
		AccountID:     accountID,
		Type:          entryType,
		Amount:        signedAmount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   description,
		Reference:     reference,
		Operator:      operator,
	}

	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	cfg, _ := config.LoadConfig()
	secret := "default-secret"
	if cfg != nil && cfg.JWTSecret != "" {
		secret = cfg.JWTSecret
	}

	if err := tx.Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}

	// Hash covers CreatedAt, which the DB assigns on insert.
	entry.Hash = entry.GenerateHash(secret)
	if err := tx.Model(entry).Update("hash", entry.Hash).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
