package domain

import (
	"time"

	"github.com/samirrijal/civicfix/internal/core/matching"
)

// Role distinguishes citizens from government officials.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
)

// Profile is a user of the portal. Profiles with role "official" carry a
// jurisdiction; only verified officials take part in matching.
type Profile struct {
	UserID     string              `json:"user_id"`
	FullName   string              `json:"full_name"`
	Email      string              `json:"email,omitempty"`
	Phone      string              `json:"phone,omitempty"`
	Role       Role                `json:"role"`
	IsVerified bool                `json:"is_verified"`
	Location   Location            `json:"location"`
	GeoBounds  *matching.GeoBounds `json:"geo_bounds,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Eligible reports whether the profile may be offered as a match.
func (o *Profile) Eligible() bool {
	return o.Role == RoleOfficial && o.IsVerified
}

// Candidate converts the profile's jurisdiction into matcher input.
func (o *Profile) Candidate() matching.Candidate {
	return matching.Candidate{
		OfficialID: o.UserID,
		FullName:   o.FullName,
		City:       optional(o.Location.City),
		State:      optional(o.Location.State),
		District:   optional(o.Location.District),
		Pincode:    optional(o.Location.Pincode),
		Ward:       optional(o.Location.Ward),
		Area:       optional(o.Location.Area),
		GeoBounds:  o.GeoBounds,
	}
}

// OfficialRating aggregates citizen reviews of issues handled by an official.
type OfficialRating struct {
	OfficialID string  `json:"official_id"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
