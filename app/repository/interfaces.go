package repository

import (
	"github.com/hearth-collective/hearth/app/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for login-account database operations
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByName(name string) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	GetByRecordID(recordID string) (*models.Account, error)
	GetByResetToken(token string) (*models.Account, error)
	GetByRecordIDs(recordIDs []string) ([]models.Account, error)
	Update(account *models.Account) error
	Count() (int64, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Account AccountRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
	}
}
