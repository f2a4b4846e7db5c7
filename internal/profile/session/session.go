// Package session holds the per-request view of the signed-in user: the
// identity account plus its profile document.
package session

import (
	"context"
	"sync"

	"github.com/smallbiznis/branchops/internal/profile/domain"
)

type Session struct {
	uid   string
	email string
	repo  domain.Repository

	mu      sync.RWMutex
	profile *domain.Profile
}

func New(uid, email string, repo domain.Repository) *Session {
	return &Session{uid: uid, email: email, repo: repo}
}

// Load builds a session and reads the profile once.
func Load(ctx context.Context, uid, email string, repo domain.Repository) (*Session, error) {
	s := New(uid, email, repo)
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) UID() string   { return s.uid }
func (s *Session) Email() string { return s.email }

// Profile returns a copy of the current profile, or nil before the user has one.
func (s *Session) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Refresh re-reads users/{uid}. On failure the previous profile is kept.
func (s *Session) Refresh(ctx context.Context) error {
	p, err := s.repo.Get(ctx, s.uid)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return nil
}

// ApplyLocalPatch merges fields into the cached profile without touching the store.
func (s *Session) ApplyLocalPatch(apply func(p *domain.Profile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		s.profile = &domain.Profile{UID: s.uid, Email: s.email}
	}
	apply(s.profile)
}

func (s *Session) IsGlobalAdmin() bool {
	p := s.Profile()
	return p != nil && p.IsGlobalAdmin
}

func (s *Session) IsContractor() bool {
	p := s.Profile()
	return p != nil && p.Role.IsContractor()
}

// Role reports the effective authorization role. Global admins map to
// "global_admin" regardless of the stored role.
func (s *Session) Role() string {
	p := s.Profile()
	switch {
	case p == nil:
		return string(domain.RoleViewer)
	case p.IsGlobalAdmin:
		return "global_admin"
	case p.Role.Valid():
		return string(p.Role)
	default:
		return string(domain.RoleViewer)
	}
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
