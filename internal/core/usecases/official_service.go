package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/ports"
)

// OfficialService administers the officials directory.
type OfficialService struct {
	profiles ports.ProfileRepository
	matcher  *MatchService
}

// NewOfficialService creates a new OfficialService.
func NewOfficialService(profiles ports.ProfileRepository, matcher *MatchService) *OfficialService {
	return &OfficialService{profiles: profiles, matcher: matcher}
}

// ListVerified returns the officials currently eligible for matching.
func (s *OfficialService) ListVerified(ctx context.Context) ([]domain.Profile, error) {
	officials, err := s.profiles.ListVerifiedOfficials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return officials, nil
}

// Get returns one profile.
func (s *OfficialService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// SetVerified toggles whether an official takes part in matching.
func (s *OfficialService) SetVerified(ctx context.Context, userID string, verified bool) error {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if p.Role != domain.RoleOfficial {
		return validationErr("user %s is not an official", userID)
	}
	if err := s.profiles.SetVerified(ctx, userID, verified); err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	s.matcher.InvalidateDirectory(ctx)
	return nil
}

// Import upserts a batch of profiles and refreshes the directory.
func (s *OfficialService) Import(ctx context.Context, profiles []domain.Profile) error {
	for i, p := range profiles {
		if p.UserID == "" || p.FullName == "" {
			return validationErr("profile %d: user_id and full_name are required", i)
		}
		if p.Role != domain.RoleCitizen && p.Role != domain.RoleOfficial {
			return validationErr("profile %d: unknown role %q", i, p.Role)
		}
		if p.GeoBounds != nil && !p.GeoBounds.Complete() {
			return validationErr("profile %d: geo_bounds needs all four sides", i)
		}
	}
	if err := s.profiles.UpsertBatch(ctx, profiles); err != nil {
		return fmt.Errorf("upsert profiles: %w", err)
	}
	s.matcher.InvalidateDirectory(ctx)
	return nil
}
