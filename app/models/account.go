package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// Account is the login row for a user. Profile data lives in the record log
// as a UserRecord document; RecordID links the two.
type Account struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RecordID     string         `gorm:"uniqueIndex;type:varchar(36);not null" json:"record_id"`
	Name         string         `gorm:"uniqueIndex;type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email        string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password     string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role         string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	ResetToken   string         `gorm:"type:varchar(100);default:null;index" json:"-"`
	ResetSentAt  *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt  *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Account) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

func CreateAccount(recordID, username, email, password string) (*Account, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		RecordID: recordID,
		Name:     username,
		Email:    email,
		Password: pw,
		Role:     ROLE_USER,
	}

	err = a.Validate()
	if err != nil {
		return nil, err
	}

	return a, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the account's stored password
func (a *Account) CheckPassword(password string) bool {
	return CheckPasswordHash(password, a.Password)
}

// SetPassword hashes and sets a new password for the account
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.Password = hashedPassword
	return nil
}

// GenerateResetToken creates a random password reset token and stamps it
func (a *Account) GenerateResetToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	a.ResetToken = hex.EncodeToString(b)
	now := time.Now()
	a.ResetSentAt = &now
	return nil
}

// IsResetTokenValid checks if the reset token matches and is not expired (24 hours)
func (a *Account) IsResetTokenValid(token string) bool {
	if a.ResetToken == "" || a.ResetSentAt == nil {
		return false
	}
	if a.ResetToken != token {
		return false
	}
	return time.Since(*a.ResetSentAt) < 24*time.Hour
}

// ClearResetToken clears password reset state after use
func (a *Account) ClearResetToken() {
	a.ResetToken = ""
	a.ResetSentAt = nil
}

// IsAdmin reports whether the account holds the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == ROLE_ADMIN
}
