package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

func setupAccountTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.Account{})
	db.AutoMigrate(&models.Account{})

	database.DB = db
	database.RedisClient = nil
	logger.Log = zap.NewNop()
}

func TestUpdateAccountNeverWritesBalance(t *testing.T) {
	setupAccountTestDB()
	account := seedAccount("5000.00")

	updated, err := UpdateAccount(account.ID, map[string]interface{}{
		"balance":   decimal.NewFromInt(999999),
		"is_active": false,
	}, "admin")
	assert.NoError(t, err)
	assert.False(t, updated.IsActive)
	// Balance belongs to the ledger; the update silently drops it.
	assert.Equal(t, "5000.00", updated.Balance.StringFixed(2))
}

func TestUpdateAccountHashesPassword(t *testing.T) {
	setupAccountTestDB()
	account := seedAccount("0.00")

	updated, err := UpdateAccount(account.ID, map[string]interface{}{
		"password": "newpassword1",
	}, "admin")
	assert.NoError(t, err)
	assert.NotEqual(t, "newpassword1", updated.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword1")))
}

func TestUpdateAccountBumpsVersion(t *testing.T) {
	setupAccountTestDB()
	account := seedAccount("0.00")

	updated, err := UpdateAccount(account.ID, map[string]interface{}{"role": models.RoleStaff}, "admin")
	assert.NoError(t, err)
	assert.Equal(t, account.Version+1, updated.Version)
	assert.Equal(t, models.RoleStaff, updated.Role)
}

func TestUpdateAccountNotFound(t *testing.T) {
	setupAccountTestDB()

	_, err := UpdateAccount(9999, map[string]interface{}{"is_active": false}, "admin")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestSoftDeleteAccountAnonymizes(t *testing.T) {
	setupAccountTestDB()
	account := seedAccount("0.00")

	assert.NoError(t, SoftDeleteAccount(account.ID))

	// Gone from normal queries.
	_, err := FindAccountByID(account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	// Still present for the audit trail, with the username anonymized.
	var raw models.Account
	assert.NoError(t, database.DB.Unscoped().First(&raw, account.ID).Error)
	assert.NotEqual(t, account.Username, raw.Username)
	assert.False(t, raw.IsActive)
}
