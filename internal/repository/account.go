package repository

import (
	"github.com/bopopescu/openlava-web/internal/db"
	"github.com/bopopescu/openlava-web/internal/model"
)

type AccountRepository struct{}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

func (r *AccountRepository) Add(username, passwordHash string) (model.Account, error) {
	account := model.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Active:       true,
	}

	return account, db.DB.Create(&account).Error
}

func (r *AccountRepository) GetAll() ([]model.Account, error) {
	var accounts []model.Account
	return accounts, db.DB.Order("username").Find(&accounts).Error
}

func (r *AccountRepository) GetByUsername(username string) (model.Account, error) {
	var account model.Account
	return account, db.DB.Where("username = ?", username).First(&account).Error
}

func (r *AccountRepository) SetActive(username string, active bool) error {
	return db.DB.Model(&model.Account{}).
		Where("username = ?", username).
		Update("active", active).Error
}

func (r *AccountRepository) SetPassword(username, passwordHash string) error {
	return db.DB.Model(&model.Account{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash).Error
}

func (r *AccountRepository) Delete(username string) error {
	return db.DB.Where("username = ?", username).Delete(&model.Account{}).Error
}
