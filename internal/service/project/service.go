package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// Store is the slice of the project repository the service needs.
type Store interface {
	Insert(ctx context.Context, p *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	ListForUser(ctx context.Context, userID string) ([]model.Project, error)
	ListByClient(ctx context.Context, clientName, clientToken string) ([]model.Project, error)
}

// MemberStore creates the owner membership for new projects.
type MemberStore interface {
	Insert(ctx context.Context, m *model.ProjectMember) error
}

type Service struct {
	projects Store
	members  MemberStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(projects Store, members MemberStore, logger *zap.Logger) *Service {
	return &Service{
		projects: projects,
		members:  members,
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a project and makes the creator its owner. The client
// token is generated server-side and acts as a bearer capability for the
// read-only client view.
func (s *Service) Create(ctx context.Context, name, clientName, ownerID string) (*model.Project, error) {
	p := &model.Project{
		ID:          uuid.NewString(),
		Name:        name,
		ClientName:  clientName,
		ClientToken: uuid.NewString(),
		CreatedAt:   s.now(),
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}

	member := &model.ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		UserID:    ownerID,
		Role:      model.MemberRoleOwner,
		CreatedAt: s.now(),
	}
	if err := s.members.Insert(ctx, member); err != nil {
		// The project row exists without an owner membership; surface
		// the error so the caller retries rather than hiding it.
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", p.ID),
		zap.String("owner_id", ownerID),
	)
	return p, nil
}

// ListForUser returns the projects the user belongs to. A user with no
// memberships gets a starter project provisioned on first access, so the
// board is never empty.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]model.Project, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(projects) > 0 {
		return projects, nil
	}

	first, err := s.Create(ctx, "My First Project", "", userID)
	if err != nil {
		return nil, err
	}
	return []model.Project{*first}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.projects.FindByID(ctx, id)
}

// ListByClient resolves the read-only client view. The token must match
// verbatim; an unknown pair simply yields an empty list.
func (s *Service) ListByClient(ctx context.Context, clientName, clientToken string) ([]model.Project, error) {
	return s.projects.ListByClient(ctx, clientName, clientToken)
}
