package repository

import (
	"context"

	contractorrepo "github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/worksite/domain"
)

const (
	centrosCollection    = "centros"
	subcentrosCollection = "subcentros"
	vehiculosCollection  = "vehiculos"
)

func CentrosPath(s domain.Scope) (string, error) {
	base, err := contractorrepo.CopyPath(s.BranchID, s.ContractorID)
	if err != nil {
		return "", domain.ErrInvalidScope
	}
	return base + "/" + centrosCollection, nil
}

func SubcentrosPath(s domain.Scope) (string, error) {
	base, err := CentrosPath(s)
	if err != nil {
		return "", err
	}
	p, err := docstore.Join(s.CentroID, subcentrosCollection)
	if err != nil {
		return "", domain.ErrInvalidScope
	}
	return base + "/" + p, nil
}

func VehiculosPath(s domain.Scope) (string, error) {
	base, err := SubcentrosPath(s)
	if err != nil {
		return "", err
	}
	p, err := docstore.Join(s.SubcentroID, vehiculosCollection)
	if err != nil {
		return "", domain.ErrInvalidScope
	}
	return base + "/" + p, nil
}

type repo struct {
	store docstore.Store
}

func New(store docstore.Store) domain.Repository {
	return &repo{store: store}
}

func (r *repo) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	path, err := child(collection, id)
	if err != nil {
		return nil, err
	}
	return r.store.Get(ctx, path)
}

func (r *repo) List(ctx context.Context, collection string) (map[string]docstore.Document, error) {
	return r.store.Children(ctx, collection)
}

func (r *repo) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	path, err := child(collection, id)
	if err != nil {
		return err
	}
	delete(doc, "id")
	return r.store.Set(ctx, path, doc)
}

func (r *repo) Merge(ctx context.Context, collection, id string, patch docstore.Patch) error {
	path, err := child(collection, id)
	if err != nil {
		return err
	}
	return r.store.Merge(ctx, path, patch)
}

func (r *repo) Remove(ctx context.Context, collection, id string) error {
	path, err := child(collection, id)
	if err != nil {
		return err
	}
	return r.store.Remove(ctx, path)
}

func child(collection, id string) (string, error) {
	key, err := docstore.Join(id)
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return collection + "/" + key, nil
}
