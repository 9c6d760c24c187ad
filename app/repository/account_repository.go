package repository

import (
	"github.com/hearth-collective/hearth/app/models"
	"gorm.io/gorm"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account in the database
func (r *accountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByName retrieves an account by its unique username
func (r *accountRepository) GetByName(name string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("name = ?", name).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByEmail retrieves an account by its email address
func (r *accountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByRecordID retrieves the account owning a record-log document
func (r *accountRepository) GetByRecordID(recordID string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("record_id = ?", recordID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByResetToken retrieves an account by its password reset token
func (r *accountRepository) GetByResetToken(token string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("reset_token = ?", token).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByRecordIDs loads the accounts for a batch of record ids (index lookups)
func (r *accountRepository) GetByRecordIDs(recordIDs []string) ([]models.Account, error) {
	var accounts []models.Account
	if len(recordIDs) == 0 {
		return accounts, nil
	}
	err := r.db.Where("record_id IN ?", recordIDs).Order("name").Find(&accounts).Error
	return accounts, err
}

// Update persists changes to an account
func (r *accountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}

// Count returns the total number of accounts
func (r *accountRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Count(&count).Error
	return count, err
}
