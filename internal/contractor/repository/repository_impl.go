package repository

import (
	"context"
	"sort"

	branchrepo "github.com/smallbiznis/branchops/internal/branch/repository"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/docstore"
)

const (
	contractorsCollection = "contractors"
	PendingCollection     = "contractors_pending"
	MembershipCollection  = "memberships"
	AdminLinkCollection   = "contractorAdmins"
)

func CopiesPath(branchID string) (string, error) {
	return docstore.Join(branchrepo.Collection, branchID, contractorsCollection)
}

func CopyPath(branchID, contractorID string) (string, error) {
	return docstore.Join(branchrepo.Collection, branchID, contractorsCollection, contractorID)
}

func PendingPath(contractorID string) (string, error) {
	return docstore.Join(PendingCollection, contractorID)
}

// MembershipPath is the index entry recording that branchID holds a copy.
func MembershipPath(contractorID, branchID string) (string, error) {
	return docstore.Join(MembershipCollection, contractorID, branchID)
}

func AdminLinkPath(uid string) (string, error) {
	return docstore.Join(AdminLinkCollection, uid)
}

// Encode renders a copy for storage. The id lives in the path only.
func Encode(c domain.Contractor) (docstore.Document, error) {
	doc, err := docstore.Encode(c)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	return doc, nil
}

type repo struct {
	store docstore.Store
}

func New(store docstore.Store) domain.Repository {
	return &repo{store: store}
}

func (r *repo) Get(ctx context.Context, branchID, contractorID string) (*domain.Contractor, error) {
	path, err := CopyPath(branchID, contractorID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.read(ctx, path, contractorID)
}

func (r *repo) ListByBranch(ctx context.Context, branchID string) ([]domain.Contractor, error) {
	path, err := CopiesPath(branchID)
	if err != nil {
		return nil, domain.ErrInvalidBranch
	}
	return r.list(ctx, path)
}

func (r *repo) GetPending(ctx context.Context, contractorID string) (*domain.Contractor, error) {
	path, err := PendingPath(contractorID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.read(ctx, path, contractorID)
}

func (r *repo) ListPending(ctx context.Context) ([]domain.Contractor, error) {
	return r.list(ctx, PendingCollection)
}

func (r *repo) GetAdminLink(ctx context.Context, uid string) (*domain.AdminLink, error) {
	path, err := AdminLinkPath(uid)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	doc, err := r.store.Get(ctx, path)
	if err != nil || doc == nil {
		return nil, err
	}
	var link domain.AdminLink
	if err := docstore.Decode(doc, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) BranchIDs(ctx context.Context, contractorID string) ([]string, error) {
	path, err := docstore.Join(MembershipCollection, contractorID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	entries, err := r.store.Children(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for branchID := range entries {
		out = append(out, branchID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *repo) Apply(ctx context.Context, updates docstore.Updates) error {
	return r.store.Update(ctx, updates)
}

func (r *repo) read(ctx context.Context, path, id string) (*domain.Contractor, error) {
	doc, err := r.store.Get(ctx, path)
	if err != nil || doc == nil {
		return nil, err
	}
	return decode(id, doc)
}

func (r *repo) list(ctx context.Context, path string) ([]domain.Contractor, error) {
	docs, err := r.store.Children(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Contractor, 0, len(docs))
	for id, doc := range docs {
		c, err := decode(id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func decode(id string, doc docstore.Document) (*domain.Contractor, error) {
	var c domain.Contractor
	if err := docstore.Decode(doc, &c); err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}
