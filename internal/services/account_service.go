package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

func FindAccountByID(accountID uint) (models.Account, error) {
	// Try cache
	cacheKey := fmt.Sprintf("account:%d", accountID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var account models.Account
			if err := json.Unmarshal([]byte(val), &account); err == nil {
				return account, nil
			}
		}
	}

	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrAccountNotFound
		}
		return account, err
	}

	// Set cache
	if database.RedisClient != nil {
		if data, err := json.Marshal(account); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return account, nil
}

// FindAccounts retrieves a paginated list of accounts.
func FindAccounts(page, limit int) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	offset := (page - 1) * limit

	if err := database.DB.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := database.DB.Limit(limit).Offset(offset).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// UpdateAccount updates an account with optimistic locking and selective
// fields. Balance is never writable here; it belongs to the ledger.
func UpdateAccount(id uint, updates map[string]interface{}, operator string) (*models.Account, error) {
	delete(updates, "balance")

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var account models.Account
	if err := tx.First(&account, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	// Password handling
	if password, ok := updates["password"].(string); ok && password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		updates["password"] = string(hashedPassword)
	}

	// Optimistic lock check: the version predicate makes the update atomic.
	currentVersion := account.Version
	updates["version"] = currentVersion + 1

	result := tx.Model(&account).Where("version = ?", currentVersion).Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrOptimisticLock
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invalidateAccountCache(id)

	logger.Log.Info("account updated",
		zap.Uint("account_id", id),
		zap.String("operator", operator))

	database.DB.First(&account, id)
	return &account, nil
}

// SoftDeleteAccount anonymizes and soft-deletes an account. Ledger entries
// and passages keep referencing the row, so it is never hard-deleted.
func SoftDeleteAccount(id uint) error {
	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		anonymized := fmt.Sprintf("deleted-account-%d", id)
		if err := tx.Model(&account).Updates(map[string]interface{}{
			"username":  anonymized,
			"is_active": false,
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
	if err != nil {
		return err
	}

	invalidateAccountCache(id)
	return nil
}

func invalidateAccountCache(accountID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, fmt.Sprintf("account:%d", accountID))
	}
}
