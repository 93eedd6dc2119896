package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
)

func TestFindTransactionsFiltering(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("10000.00")
	other := seedAccount("5000.00")

	Credit(account.ID, decimal.NewFromInt(1000), "top-up", "ft-1", "tester", nil)
	Debit(account.ID, decimal.NewFromInt(500), "toll", "ft-2", "system", nil)
	Debit(other.ID, decimal.NewFromInt(200), "toll", "ft-3", "system", nil)

	entries, total, err := FindTransactions(TransactionFilter{
		AccountID: &account.ID, Page: 1, Limit: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	debit := models.TransactionTypeDebit
	entries, total, err = FindTransactions(TransactionFilter{
		AccountID: &account.ID, Type: &debit, Page: 1, Limit: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ft-2", entries[0].Reference)
}

func TestFindTransactionsPagination(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("0.00")

	for i := 0; i < 5; i++ {
		ref := strings.Repeat("p", i+1)
		Credit(account.ID, decimal.NewFromInt(100), "top-up", ref, "tester", nil)
	}

	entries, total, err := FindTransactions(TransactionFilter{
		AccountID: &account.ID, Page: 1, Limit: 2,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, entries, 2)

	entries, _, err = FindTransactions(TransactionFilter{
		AccountID: &account.ID, Page: 3, Limit: 2,
	})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateTransactionCSV(t *testing.T) {
	setupLedgerTestDB()
	account := seedAccount("1000.00")

	Debit(account.ID, decimal.NewFromInt(500), "Toll payment", "csv-1", "system", nil)

	var entries []models.Transaction
	database.DB.Where("account_id = ?", account.ID).Find(&entries)
	assert.Len(t, entries, 1)

	data, err := GenerateTransactionCSV(entries)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Balance Before")
	assert.Contains(t, lines[1], "-500.00")
	assert.Contains(t, lines[1], "csv-1")
	assert.Contains(t, lines[1], entries[0].Hash)
}
