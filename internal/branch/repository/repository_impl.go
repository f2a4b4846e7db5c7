package repository

import (
	"context"
	"sort"

	"github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/docstore"
)

// Collection is the root of the branch tree.
const Collection = "branches"

type repo struct {
	store docstore.Store
}

func New(store docstore.Store) domain.Repository {
	return &repo{store: store}
}

func Path(id string) (string, error) {
	return docstore.Join(Collection, id)
}

func (r *repo) Get(ctx context.Context, id string) (*domain.Branch, error) {
	path, err := Path(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	doc, err := r.store.Get(ctx, path)
	if err != nil || doc == nil {
		return nil, err
	}
	return decode(id, doc)
}

func (r *repo) Exists(ctx context.Context, id string) (bool, error) {
	b, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

func (r *repo) List(ctx context.Context) ([]domain.Branch, error) {
	docs, err := r.store.Children(ctx, Collection)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Branch, 0, len(docs))
	for id, doc := range docs {
		b, err := decode(id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *repo) Insert(ctx context.Context, branch domain.Branch) error {
	path, err := Path(branch.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	doc, err := docstore.Encode(branch)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, doc)
}

func (r *repo) Merge(ctx context.Context, id string, patch docstore.Patch) error {
	path, err := Path(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	return r.store.Merge(ctx, path, patch)
}

// decode trusts the path key over any stored id.
func decode(id string, doc docstore.Document) (*domain.Branch, error) {
	var b domain.Branch
	if err := docstore.Decode(doc, &b); err != nil {
		return nil, err
	}
	b.ID = id
	return &b, nil
}
