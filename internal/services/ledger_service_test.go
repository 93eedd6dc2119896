package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

func setupLedgerTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	// sqlite allows a single writer; one connection keeps concurrent
	// transactions serialized instead of failing with SQLITE_BUSY.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	db.Migrator().DropTable(&models.Account{}, &models.Transaction{})
	db.AutoMigrate(&models.Account{}, &models.Transaction{})

	database.DB = db
	database.RedisClient = nil
	logger.Log = zap.NewNop()
}

func seedAccount(balance string) models.Account {
	account := models.Account{
		Username: fmt.Sprintf("acct-%s", balance),
		Password: "x",
		Role:     models.RoleDriver,
		Balance:  decimal.RequireFromString(balance),
		IsActive: true,
		Version:  1,
	}
	database.DB.Create(&account)
	return account
}

func TestCreditIncreasesBalance(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("0.00")

	entry, err := Credit(account.ID, decimal.NewFromInt(10000), "Wallet top-up", "topup-1", "tester", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionTypeCredit, entry.Type)
	assert.Equal(t, "10000.00", entry.Amount.StringFixed(2))
	assert.Equal(t, "0.00", entry.BalanceBefore.StringFixed(2))
	assert.Equal(t, "10000.00", entry.BalanceAfter.StringFixed(2))
	assert.NotEmpty(t, entry.Hash)

	balance, err := BalanceOf(account.ID)
	assert.NoError(t, err)
	assert.Equal(t, "10000.00", balance.StringFixed(2))
}

func TestDebitDecreasesBalance(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("10000.00")

	entry, err := Debit(account.ID, decimal.NewFromInt(500), "Toll payment", "toll-1", "system", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionTypeDebit, entry.Type)
	assert.Equal(t, "-500.00", entry.Amount.StringFixed(2))
	assert.Equal(t, "9500.00", entry.BalanceAfter.StringFixed(2))

	balance, _ := BalanceOf(account.ID)
	assert.Equal(t, "9500.00", balance.StringFixed(2))
}

func TestDebitInsufficientFunds(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("100.00")

	entry, err := Debit(account.ID, decimal.NewFromInt(500), "Toll payment", "toll-2", "system", nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, entry)

	// Balance unchanged and no ledger entry written.
	balance, _ := BalanceOf(account.ID)
	assert.Equal(t, "100.00", balance.StringFixed(2))

	var count int64
	database.DB.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("50.00")

	_, err := Credit(account.ID, decimal.Zero, "bad", "ref-zero", "tester", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Debit(account.ID, decimal.NewFromInt(-5), "bad", "ref-neg", "tester", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedgerUnknownAccount(t *testing.T) {
	setupLedgerTestDB()

	_, err := Credit(9999, decimal.NewFromInt(10), "x", "ref-unknown", "tester", nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = BalanceOf(9999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDuplicateReferenceRejected(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("1000.00")

	_, err := Debit(account.ID, decimal.NewFromInt(100), "Toll payment", "scan-42", "system", nil)
	assert.NoError(t, err)

	// A hardware retry with the same token must not apply twice.
	entry, err := Debit(account.ID, decimal.NewFromInt(100), "Toll payment", "scan-42", "system", nil)
	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.Nil(t, entry)

	balance, _ := BalanceOf(account.ID)
	assert.Equal(t, "900.00", balance.StringFixed(2))

	var count int64
	database.DB.Model(&models.Transaction{}).Where("reference = ?", "scan-42").Count(&count)
	assert.Equal(t, int64(1), count)
}

// Conservation: after any sequence of operations the balance equals the sum
// of signed amounts, and every entry chains on the previous balance.
func TestLedgerConservation(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("0.00")

	ops := []struct {
		credit bool
		amount int64
	}{
		{true, 5000}, {false, 1200}, {true, 300}, {false, 700}, {false, 100},
	}

	expected := decimal.Zero
	for i, op := range ops {
		ref := fmt.Sprintf("seq-%d", i)
		var err error
		if op.credit {
			_, err = Credit(account.ID, decimal.NewFromInt(op.amount), "credit", ref, "tester", nil)
			expected = expected.Add(decimal.NewFromInt(op.amount))
		} else {
			_, err = Debit(account.ID, decimal.NewFromInt(op.amount), "debit", ref, "tester", nil)
			expected = expected.Sub(decimal.NewFromInt(op.amount))
		}
		assert.NoError(t, err)

		balance, _ := BalanceOf(account.ID)
		assert.True(t, balance.Equal(expected), "balance %s != running sum %s", balance, expected)
	}

	var entries []models.Transaction
	database.DB.Where("account_id = ?", account.ID).Order("id").Find(&entries)
	assert.Len(t, entries, len(ops))

	sum := decimal.Zero
	for _, e := range entries {
		assert.True(t, e.BalanceAfter.Equal(e.BalanceBefore.Add(e.Amount)))
		sum = sum.Add(e.Amount)
	}
	assert.True(t, sum.Equal(expected))
}

// N concurrent debits that each need the full balance: at most
// floor(balance/amount) succeed and the account never overdrafts.
func TestConcurrentDebitsNoOverdraft(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("3000.00")

	const workers = 10
	amount := decimal.NewFromInt(1000)

	var mu sync.Mutex
	succeeded := 0
	insufficient := 0

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		ref := fmt.Sprintf("concurrent-%d", i)
		g.Go(func() error {
			_, err := Debit(account.ID, amount, "Toll payment", ref, "system", nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case err == ErrInsufficientFunds:
				insufficient++
			default:
				return err
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 7, insufficient)

	balance, _ := BalanceOf(account.ID)
	assert.Equal(t, "0.00", balance.StringFixed(2))
	assert.False(t, balance.IsNegative())
}
