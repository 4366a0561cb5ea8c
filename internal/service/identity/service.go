package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/util"
)

// Principal is what the external identity provider asserts about the
// caller. The core never validates credentials itself.
type Principal struct {
	ExternalID string
	Email      string
	Name       string
}

// Provider extracts the authenticated principal from a request.
type Provider interface {
	FromRequest(r *http.Request) (Principal, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrLookupFailed and ErrCreateFailed keep store failures distinct:
	// callers must not assume a user exists after either.
	ErrLookupFailed = errors.New("identity lookup failed")
	ErrCreateFailed = errors.New("identity create failed")
)

// JWTProvider verifies HS256 bearer tokens minted by the identity
// provider, with sub/email/name claims.
type JWTProvider struct {
	secret string
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: secret}
}

func (p *JWTProvider) FromRequest(r *http.Request) (Principal, error) {
	token := util.ExtractToken(r)
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	claims, err := util.ParseJWT(token, p.secret)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return Principal{ExternalID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// StaticProvider returns a fixed development principal for every
// request. It replaces scattered auth-bypass conditionals with an
// injectable provider implementation.
type StaticProvider struct {
	principal Principal
}

func NewStaticProvider(email, name string) *StaticProvider {
	return &StaticProvider{principal: Principal{
		ExternalID: "dev-user",
		Email:      email,
		Name:       name,
	}}
}

func (p *StaticProvider) FromRequest(_ *http.Request) (Principal, error) {
	return p.principal, nil
}

// UserStore is the slice of the user repository the resolver needs.
type UserStore interface {
	FindByAuthID(ctx context.Context, authID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, u *model.User) error
	Relink(ctx context.Context, id, authID, name string) (*model.User, error)
}

type Service struct {
	users  UserStore
	logger *zap.Logger
	now    func() time.Time
}

func NewService(users UserStore, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger, now: time.Now}
}

// Resolve maps an external principal to the internal user, creating one
// on first sight. A principal whose email matches an existing user is
// re-linked to the new external id instead of duplicated, which covers
// re-registration across auth-provider migrations.
func (s *Service) Resolve(ctx context.Context, p Principal) (*model.User, error) {
	user, err := s.users.FindByAuthID(ctx, p.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	user, err = s.users.FindByEmail(ctx, p.Email)
	if err == nil {
		relinked, err := s.users.Relink(ctx, user.ID, p.ExternalID, p.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
		}
		s.logger.Info("Relinked user to new auth subject",
			zap.String("user_id", relinked.ID),
			zap.String("auth_id", p.ExternalID),
		)
		return relinked, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	newUser := &model.User{
		ID:        uuid.NewString(),
		AuthID:    p.ExternalID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      model.RoleUser,
		CreatedAt: s.now(),
	}
	if err := s.users.Insert(ctx, newUser); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	s.logger.Info("Created user on first sight",
		zap.String("user_id", newUser.ID),
		zap.String("auth_id", p.ExternalID),
	)
	return newUser, nil
}
