package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/identity/domain"
	"github.com/smallbiznis/branchops/internal/identity/password"
	"github.com/smallbiznis/branchops/internal/identity/token"
	obsmetrics "github.com/smallbiznis/branchops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// Throttle limits sign-in attempts per client key.
type Throttle interface {
	AllowSignIn(ctx context.Context, key string) (bool, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Tokens   *token.Issuer
	Clock    clock.Clock
	Throttle Throttle            `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	tokens   *token.Issuer
	clock    clock.Clock
	throttle Throttle
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Provider {
	return &Service{
		log:      p.Log.Named("identity.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		tokens:   p.Tokens,
		clock:    p.Clock,
		throttle: p.Throttle,
		metrics:  p.Metrics,
	}
}

func (s *Service) SignUp(ctx context.Context, req domain.SignUpRequest) (session *domain.Session, err error) {
	defer func() { s.metrics.RecordIdentityOperation(ctx, "sign_up", err) }()

	account, err := s.create(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

func (s *Service) SignIn(ctx context.Context, req domain.SignInRequest) (session *domain.Session, err error) {
	defer func() { s.metrics.RecordIdentityOperation(ctx, "sign_in", err) }()

	email, err := validateEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		key := strings.TrimSpace(req.ClientKey)
		if key == "" {
			key = email
		}
		allowed, terr := s.throttle.AllowSignIn(ctx, key)
		if terr != nil {
			// limiter errors fail open
			s.log.Warn("sign-in throttle unavailable", zap.Error(terr))
		} else if !allowed {
			s.metrics.RecordRateLimitDenied(ctx, "sign_in", "throttled")
			return nil, domain.ErrTooManyRequests
		}
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !password.Verify(req.Password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredential
	}
	if err := s.repo.TouchSignIn(ctx, account.UID, s.clock.Now()); err != nil {
		s.log.Warn("failed to record sign-in", zap.String("uid", account.UID), zap.Error(err))
	}
	return s.issue(account)
}

func (s *Service) CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (account *domain.Account, err error) {
	defer func() { s.metrics.RecordIdentityOperation(ctx, "create_account", err) }()
	return s.create(ctx, req.Email, req.Password, req.DisplayName)
}

func (s *Service) CurrentUser(ctx context.Context, idToken string) (*domain.Account, error) {
	claims, err := s.tokens.Verify(idToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	account, err := s.repo.FindByUID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrInvalidToken
	}
	return account, nil
}

func (s *Service) create(ctx context.Context, rawEmail, rawPassword, displayName string) (*domain.Account, error) {
	email, err := validateEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	if len(rawPassword) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyInUse
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}

	now := s.clock.Now()
	account := &domain.Account{
		ID:           s.genID.Generate(),
		UID:          strings.ReplaceAll(uuid.NewString(), "-", ""),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("identity account created", zap.String("uid", account.UID))
	return account, nil
}

func (s *Service) issue(account *domain.Account) (*domain.Session, error) {
	idToken, expiresAt, err := s.tokens.Issue(account.UID, account.Email)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Account:   *account,
		IDToken:   idToken,
		ExpiresAt: expiresAt,
	}, nil
}

func validateEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
