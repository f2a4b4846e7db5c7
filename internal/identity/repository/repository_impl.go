package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/branchops/internal/identity/domain"
	"github.com/smallbiznis/branchops/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(conn *gorm.DB) domain.Repository {
	return &repo{db: conn}
}

func (r *repo) Insert(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrEmailAlreadyInUse
	}
	return err
}

func (r *repo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *repo) FindByUID(ctx context.Context, uid string) (*domain.Account, error) {
	return r.findOne(ctx, "uid = ?", uid)
}

func (r *repo) TouchSignIn(ctx context.Context, uid string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("uid = ?", uid).
		Update("last_sign_in_at", at).Error
}

func (r *repo) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where(query, arg).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
