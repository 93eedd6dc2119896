package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm" // Import gorm for ErrRecordNotFound

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

var ErrAccountAlreadyExists = errors.New("account with this username already exists")

// RegisterAccount creates a driver account. The very first account becomes
// the admin. GovernmentExempt mirrors the license classification supplied at
// registration.
func RegisterAccount(username, password string, governmentExempt bool) (*models.Account, error) {
	var existing models.Account
	result := database.DB.Where("username = ?", username).First(&existing)
	if result.Error == nil {
		return nil, ErrAccountAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var accountCount int64
	database.DB.Model(&models.Account{}).Count(&accountCount)

	role := models.RoleDriver
	if accountCount == 0 {
		role = models.RoleAdmin
	}

	account := &models.Account{
		Username:         username,
		Password:         string(hashedPassword),
		Role:             role,
		GovernmentExempt: governmentExempt,
		IsActive:         true,
	}

	if err := database.DB.Create(account).Error; err != nil {
		return nil, err
	}

	return account, nil
}

func LoginAccount(username, password string) (string, *models.Account, error) {
	var account models.Account
	if err := database.DB.Where("username = ?", username).First(&account).Error; err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := utils.GenerateToken(account.ID, string(account.Role))
	if err != nil {
		return "", nil, err
	}

	return token, &account, nil
}
