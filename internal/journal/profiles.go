package journal

import (
	"context"

	"team-journal/internal/errors"
	"team-journal/internal/ids"
	"team-journal/internal/models"
	"team-journal/internal/security"
)

// ResolveActor loads the profile for an authenticated user id.
func (s *Service) ResolveActor(ctx context.Context, userID string) (models.Actor, error) {
	if userID == "" {
		return models.Actor{}, errors.ErrNotAuthenticated
	}
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			s.record(ctx, security.AuditEvent{
				EventType: security.AuditAuthFailed,
				UserID:    userID,
				Success:   false,
				ErrorMsg:  "unknown profile",
			})
			return models.Actor{}, errors.Wrap(errors.ErrNotAuthenticated, "unknown profile")
		}
		return models.Actor{}, err
	}
	return p.Actor(), nil
}

// Profile returns the caller's own profile.
func (s *Service) Profile(ctx context.Context, actor models.Actor) (*models.Profile, error) {
	if actor.UserID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	return s.getProfile(ctx, actor.UserID)
}

// UpdateDisplayName changes the caller's display name. Role and active flag are not editable here.
func (s *Service) UpdateDisplayName(ctx context.Context, actor models.Actor, name string) (*models.Profile, error) {
	if actor.UserID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	name = security.SanitizeText(name)
	if err := s.validator.ValidateDisplayName(name); err != nil {
		s.record(ctx, security.InputValidationEvent(actor.UserID, "display_name", name, err.Error()))
		return nil, err
	}

	p, err := s.getProfile(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	p.DisplayName = name
	if err := s.updateProfile(ctx, p); err != nil {
		return nil, errors.Wrap(err, "updating profile")
	}

	s.record(ctx, security.AuditEvent{
		EventType: security.AuditProfileUpdated,
		UserID:    actor.UserID,
		TargetID:  actor.UserID,
		Success:   true,
		Details:   map[string]interface{}{"display_name": name},
	})
	return p, nil
}

// ProvisionProfile creates an active profile. It backs operator tooling, so no actor is checked.
func (s *Service) ProvisionProfile(ctx context.Context, displayName string, role models.Role) (*models.Profile, error) {
	displayName = security.SanitizeText(displayName)
	if err := s.validator.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errors.NewValidationError("role", role, "role must be member or mentor")
	}

	p := &models.Profile{
		ID:          ids.NewProfileID(),
		DisplayName: displayName,
		Role:        role,
		IsActive:    true,
		CreatedAt:   s.now(),
	}
	if err := s.insertProfile(ctx, p); err != nil {
		return nil, errors.Wrap(err, "creating profile")
	}

	s.record(ctx, security.AuditEvent{
		EventType: security.AuditMemberAdded,
		TargetID:  p.ID,
		Success:   true,
		Details:   map[string]interface{}{"role": string(role), "display_name": displayName},
	})
	s.logger.Info().Str("profile_id", p.ID).Str("role", string(role)).Msg("Profile provisioned")
	return p, nil
}
