package journal

import (
	"context"

	"team-journal/internal/errors"
	"team-journal/internal/models"
	"team-journal/internal/security"
)

// ListProfiles returns every profile, oldest first. Mentor only.
func (s *Service) ListProfiles(ctx context.Context, actor models.Actor) ([]models.Profile, error) {
	if err := s.requireMentor(ctx, actor, "list_profiles"); err != nil {
		return nil, err
	}
	return s.listProfiles(ctx)
}

// SetMemberActive deactivates or reactivates a member. Only mentors may do this,
// and only to member-role profiles other than themselves. Profiles are never deleted.
func (s *Service) SetMemberActive(ctx context.Context, actor models.Actor, memberID string, active bool) (*models.Profile, error) {
	action := "deactivate_member"
	if active {
		action = "reactivate_member"
	}
	if err := s.requireMentor(ctx, actor, action); err != nil {
		return nil, err
	}
	if memberID == actor.UserID {
		return nil, s.deny(ctx, actor, action, errors.NewAuthorizationError(action, actor.UserID, nil))
	}

	p, err := s.getProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleMember {
		return nil, errors.NewValidationError("member_id", memberID, "only member profiles can change active status")
	}
	if p.IsActive == active {
		return p, nil
	}

	p.IsActive = active
	if err := s.updateProfile(ctx, p); err != nil {
		return nil, errors.Wrap(err, "updating profile")
	}

	s.record(ctx, security.MemberStatusEvent(actor.UserID, memberID, active))
	logger := s.log(ctx)
	logger.Info().
		Str("mentor_id", actor.UserID).
		Str("member_id", memberID).
		Bool("active", active).
		Msg("Member status changed")
	return p, nil
}
