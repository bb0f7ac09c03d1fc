package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/ctxutil"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

// IdentityClaims are the claims read from a bearer token. The subject is the
// identity provider's user id and maps to domain.User.ExternalID.
type IdentityClaims struct {
	jwt.RegisteredClaims
}

type IdentityService interface {
	// Authenticate verifies tokenString and returns ctx carrying the caller's
	// request data.
	Authenticate(ctx context.Context, tokenString string) (context.Context, error)
	// RequireAdmin checks the stored role of the caller in ctx.
	RequireAdmin(ctx context.Context) (*domain.User, error)
}

type identityService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	secretKey []byte
	issuer    string
}

func NewIdentityService(log *logger.Logger, userRepo repos.UserRepo, secretKey, issuer string) IdentityService {
	return &identityService{
		log:       log.With("service", "IdentityService"),
		userRepo:  userRepo,
		secretKey: []byte(secretKey),
		issuer:    strings.TrimSpace(issuer),
	}
}

func (s *identityService) Authenticate(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
	}
	if len(s.secretKey) == 0 {
		return ctx, fmt.Errorf("token verification not configured: %w", domain.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		return ctx, fmt.Errorf("parse token: %v: %w", err, domain.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return ctx, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}

	rd := &ctxutil.RequestData{UserID: sub}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (s *identityService) RequireAdmin(ctx context.Context) (*domain.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == "" {
		return nil, fmt.Errorf("request data not set in context: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.GetByExternalID(ctx, nil, rd.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unknown user: %w", domain.ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsAdmin() {
		s.log.Warn("admin route denied", "user_id", rd.UserID, "role", u.Role)
		return nil, fmt.Errorf("admin role required: %w", domain.ErrForbidden)
	}
	return u, nil
}
