package sharing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

var (
	// ErrAlreadyMember and ErrInviteExists guard the disjointness
	// invariant: per (project, email) at most one of membership or
	// pending invitation may exist.
	ErrAlreadyMember      = errors.New("email already belongs to a project member")
	ErrInviteExists       = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrForbidden          = errors.New("only a project owner may do this")
	ErrInvalidRole        = errors.New("invalid role")
)

// MemberStore is the slice of the member repository the service needs.
type MemberStore interface {
	Insert(ctx context.Context, m *model.ProjectMember) error
	FindByID(ctx context.Context, id string) (*model.ProjectMember, error)
	FindByProjectAndUser(ctx context.Context, projectID, userID string) (*model.ProjectMember, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ProjectMember, error)
	EmailIsMember(ctx context.Context, projectID, email string) (bool, error)
	UpdateRole(ctx context.Context, id, role string) (*model.ProjectMember, error)
	Delete(ctx context.Context, id string) error
}

// InvitationStore is the slice of the invitation repository the service needs.
type InvitationStore interface {
	Insert(ctx context.Context, inv *model.ProjectInvitation) error
	FindByToken(ctx context.Context, token string) (*model.ProjectInvitation, error)
	FindByProjectAndEmail(ctx context.Context, projectID, email string) (*model.ProjectInvitation, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ProjectInvitation, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	members     MemberStore
	invitations InvitationStore
	inviteTTL   time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(members MemberStore, invitations InvitationStore, inviteTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		members:     members,
		invitations: invitations,
		inviteTTL:   inviteTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// Invite creates a time-limited invitation. It refuses when the email
// already has a membership or a pending invitation in the project, so
// the two sets stay disjoint.
func (s *Service) Invite(ctx context.Context, projectID, email, role, invitedBy string) (*model.ProjectInvitation, error) {
	if role != model.MemberRoleEditor && role != model.MemberRoleViewer {
		return nil, ErrInvalidRole
	}

	isMember, err := s.members.EmailIsMember(ctx, projectID, email)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	_, err = s.invitations.FindByProjectAndEmail(ctx, projectID, email)
	if err == nil {
		return nil, ErrInviteExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	inv := &model.ProjectInvitation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.inviteTTL),
		CreatedBy: invitedBy,
		CreatedAt: s.now(),
	}
	if err := s.invitations.Insert(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Invitation created",
		zap.String("project_id", projectID),
		zap.String("role", role),
	)
	return inv, nil
}

// Accept consumes an invitation token for a user. Expiry is re-checked
// against the wall clock here, not at fetch time. A user who is already
// a member just has the invitation deleted; membership creation is
// idempotent.
func (s *Service) Accept(ctx context.Context, token, userID string) error {
	inv, err := s.invitations.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvitationNotFound
	}
	if err != nil {
		return err
	}

	if s.now().After(inv.ExpiresAt) {
		return ErrInvitationExpired
	}

	_, err = s.members.FindByProjectAndUser(ctx, inv.ProjectID, userID)
	if err == nil {
		// Already a member: consume the invitation and report success.
		return s.invitations.Delete(ctx, inv.ID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	member := &model.ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: inv.ProjectID,
		UserID:    userID,
		Role:      inv.Role,
		CreatedAt: s.now(),
	}
	if err := s.members.Insert(ctx, member); err != nil {
		return err
	}
	if err := s.invitations.Delete(ctx, inv.ID); err != nil {
		// The membership exists; a second accept will hit the
		// already-member path and retry the delete.
		s.logger.Error("Failed to delete accepted invitation",
			zap.Error(err),
			zap.String("invitation_id", inv.ID),
		)
	}

	s.logger.Info("Invitation accepted",
		zap.String("project_id", inv.ProjectID),
		zap.String("user_id", userID),
		zap.String("role", inv.Role),
	)
	return nil
}

// RevokeInvitation deletes a pending invitation.
func (s *Service) RevokeInvitation(ctx context.Context, invitationID string) error {
	err := s.invitations.Delete(ctx, invitationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvitationNotFound
	}
	return err
}

// UpdateMemberRole changes a membership role. Only an owner of the
// member's project may call it.
func (s *Service) UpdateMemberRole(ctx context.Context, memberID, newRole, actingUserID string) (*model.ProjectMember, error) {
	if newRole != model.MemberRoleOwner && newRole != model.MemberRoleEditor && newRole != model.MemberRoleViewer {
		return nil, ErrInvalidRole
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	acting, err := s.members.FindByProjectAndUser(ctx, member.ProjectID, actingUserID)
	if err != nil || acting.Role != model.MemberRoleOwner {
		return nil, ErrForbidden
	}

	return s.members.UpdateRole(ctx, memberID, newRole)
}

// RemoveMember deletes a membership.
func (s *Service) RemoveMember(ctx context.Context, memberID string) error {
	return s.members.Delete(ctx, memberID)
}

// ListSharing returns the combined members + pending invitations view.
func (s *Service) ListSharing(ctx context.Context, projectID string) ([]model.ProjectMember, []model.ProjectInvitation, error) {
	members, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	invitations, err := s.invitations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	// Tokens are capability secrets; the listing view never includes them.
	for i := range invitations {
		invitations[i].Token = ""
	}
	return members, invitations, nil
}
