package services

import (
	"context"
	"fmt"

	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/ctxutil"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetMe(ctx context.Context) (*domain.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		us.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("request data not set in context: %w", domain.ErrUnauthorized)
	}
	return us.userRepo.GetByExternalID(ctx, nil, rd.UserID)
}
