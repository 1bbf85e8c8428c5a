package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Account struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	IsAdmin   bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// AccountInput carries the fields accepted when creating an account.
// An empty Email is filled in by the store.
type AccountInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

type AccountPatch struct {
	Username *string
	Email    *string
	Password *string
	IsAdmin  *bool
}

// PublicAccount is the only account shape that leaves the process.
type PublicAccount struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		IsAdmin:   a.IsAdmin,
		CreatedAt: a.CreatedAt,
	}
}

func PublicAccounts(accounts []Account) []PublicAccount {
	out := make([]PublicAccount, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].Public())
	}
	return out
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (a *Account) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
}
