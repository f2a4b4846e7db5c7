package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/profile/domain"
)

const usersCollection = "users"

type repo struct {
	store docstore.Store
	clock clock.Clock
}

func New(store docstore.Store, clk clock.Clock) domain.Repository {
	return &repo{store: store, clock: clk}
}

// Path is the users/{uid} document path.
func Path(uid string) (string, error) {
	return docstore.Join(usersCollection, uid)
}

func (r *repo) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	path, err := Path(uid)
	if err != nil {
		return nil, domain.ErrInvalidUID
	}
	doc, err := r.store.Get(ctx, path)
	if err != nil || doc == nil {
		return nil, err
	}
	var p domain.Profile
	if err := docstore.Decode(doc, &p); err != nil {
		return nil, err
	}
	p.UID = uid
	return &p, nil
}

func (r *repo) Create(ctx context.Context, profile domain.Profile) error {
	path, err := Path(profile.UID)
	if err != nil {
		return domain.ErrInvalidUID
	}
	now := clock.Millis(r.clock.Now())
	if profile.CreatedAt == 0 {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	doc, err := docstore.Encode(profile)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, doc)
}

func (r *repo) Update(ctx context.Context, uid string, patch map[string]any) error {
	path, err := Path(uid)
	if err != nil {
		return domain.ErrInvalidUID
	}
	clean := docstore.Patch{}
	for k, v := range patch {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
			if v == "" {
				continue
			}
		}
		if v == nil {
			continue
		}
		clean[k] = v
	}
	clean["updated_at"] = clock.Millis(r.clock.Now())
	return r.store.Merge(ctx, path, clean)
}
