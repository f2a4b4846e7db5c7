package domain

import (
	"context"
	"time"
)

// Provider is the identity backend used by the HTTP layer and by contractor
// provisioning.
//go:generate mockgen -destination=../mocks/provider_mock.go -package=mocks github.com/smallbiznis/branchops/internal/identity/domain Provider

type Provider interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)
	// CreateAccount provisions an account for someone else. It issues no
	// token, so the calling administrator's session is untouched.
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error)
	CurrentUser(ctx context.Context, idToken string) (*Account, error)
}

type Repository interface {
	Insert(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUID(ctx context.Context, uid string) (*Account, error)
	TouchSignIn(ctx context.Context, uid string, at time.Time) error
}
