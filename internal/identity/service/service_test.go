package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/identity/domain"
	"github.com/smallbiznis/branchops/internal/identity/repository"
	"github.com/smallbiznis/branchops/internal/identity/token"
	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubThrottle struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubThrottle) AllowSignIn(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func newTestProvider(t *testing.T, throttle Throttle) domain.Provider {
	t.Helper()
	conn, err := db.NewTest(&domain.Account{})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.New(conn),
		Tokens:   token.NewIssuer("test-secret", "branchops", time.Hour),
		Clock:    clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Throttle: throttle,
	})
}

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t, nil)

	session, err := provider.SignUp(ctx, domain.SignUpRequest{Email: " Ana@Acme.co ", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.co", session.Account.Email)
	assert.Equal(t, "ana", session.Account.DisplayName)
	assert.NotEmpty(t, session.IDToken)

	current, err := provider.CurrentUser(ctx, session.IDToken)
	require.NoError(t, err)
	assert.Equal(t, session.Account.UID, current.UID)

	signedIn, err := provider.SignIn(ctx, domain.SignInRequest{Email: "ana@acme.co", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, session.Account.UID, signedIn.Account.UID)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t, nil)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"invalid email", "not-an-email", "secreto1", domain.ErrInvalidEmail},
		{"empty email", "", "secreto1", domain.ErrInvalidEmail},
		{"weak password", "bob@acme.co", "12345", domain.ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.SignUp(ctx, domain.SignUpRequest{Email: tt.email, Password: tt.password})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateAccountRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t, nil)

	account, err := provider.CreateAccount(ctx, domain.CreateAccountRequest{Email: "admin@acme.co", Password: "secreto1", DisplayName: "Admin Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Admin Acme", account.DisplayName)

	_, err = provider.CreateAccount(ctx, domain.CreateAccountRequest{Email: "ADMIN@acme.co", Password: "secreto1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyInUse)
	assert.Equal(t, "Este correo ya está registrado.", domain.SignUpMessage(err))
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t, nil)
	_, err := provider.SignUp(ctx, domain.SignUpRequest{Email: "ana@acme.co", Password: "secreto1"})
	require.NoError(t, err)

	_, err = provider.SignIn(ctx, domain.SignInRequest{Email: "ana@acme.co", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)

	_, err = provider.SignIn(ctx, domain.SignInRequest{Email: "nobody@acme.co", Password: "secreto1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)

	_, err = provider.CurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestSignInThrottle(t *testing.T) {
	ctx := context.Background()

	denied := &stubThrottle{allowed: false}
	provider := newTestProvider(t, denied)
	_, err := provider.SignIn(ctx, domain.SignInRequest{Email: "ana@acme.co", Password: "secreto1", ClientKey: "10.0.0.1"})
	assert.ErrorIs(t, err, domain.ErrTooManyRequests)
	assert.Equal(t, []string{"10.0.0.1"}, denied.keys)
	assert.Equal(t, "Demasiados intentos. Intenta más tarde.", domain.Message(err))

	broken := &stubThrottle{err: errors.New("redis down")}
	provider = newTestProvider(t, broken)
	_, err = provider.SignUp(ctx, domain.SignUpRequest{Email: "ana@acme.co", Password: "secreto1"})
	require.NoError(t, err)
	_, err = provider.SignIn(ctx, domain.SignInRequest{Email: "ana@acme.co", Password: "secreto1"})
	assert.NoError(t, err)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "La contraseña es muy débil.", domain.SignUpMessage(domain.ErrWeakPassword))
	assert.Equal(t, "Correo inválido.", domain.SignUpMessage(domain.ErrInvalidEmail))
	assert.Equal(t, "No se pudo registrar. Intenta más tarde.", domain.SignUpMessage(errors.New("boom")))
	assert.Equal(t, "", domain.Code(errors.New("boom")))
}
