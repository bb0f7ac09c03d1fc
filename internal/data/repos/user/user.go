package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	if len(users) == 0 {
		return []*domain.User{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("empty external id: %w", domain.ErrNotFound)
	}

	var u domain.User
	err := transaction.WithContext(ctx).Where("external_id = ?", externalID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", externalID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
