package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Account is a local sign-in identity. UID is the stable external identifier
// the document tree refers to.
type Account struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"-"`
	UID          string       `gorm:"size:64;not null;uniqueIndex" json:"uid"`
	Email        string       `gorm:"size:320;not null;uniqueIndex" json:"email"`
	DisplayName  string       `gorm:"size:255" json:"displayName,omitempty"`
	PasswordHash string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
	LastSignInAt *time.Time   `json:"last_sign_in_at,omitempty"`
}

func (Account) TableName() string { return "identity_accounts" }

// Session is the result of an interactive sign-in or sign-up.
type Session struct {
	Account   Account   `json:"user"`
	IDToken   string    `json:"id_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SignUpRequest struct {
	Email       string
	Password    string
	DisplayName string
}

type SignInRequest struct {
	Email    string
	Password string
	// ClientKey scopes sign-in throttling, typically the caller IP.
	ClientKey string
}

type CreateAccountRequest struct {
	Email       string
	Password    string
	DisplayName string
}
