package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/matching"
)

// ProfileRepo implements ports.ProfileRepository with pgx.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `
	user_id, full_name, COALESCE(email, ''), COALESCE(phone, ''), role, is_verified,
	COALESCE(city, ''), COALESCE(state, ''), COALESCE(district, ''),
	COALESCE(pincode, ''), COALESCE(ward, ''), COALESCE(area, ''),
	geo_bounds, created_at, updated_at`

const upsertProfileSQL = `
	INSERT INTO profiles (user_id, full_name, email, phone, role, is_verified,
	                      city, state, district, pincode, ward, area, geo_bounds)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (user_id) DO UPDATE
	SET full_name = EXCLUDED.full_name, email = EXCLUDED.email, phone = EXCLUDED.phone,
	    role = EXCLUDED.role, is_verified = EXCLUDED.is_verified,
	    city = EXCLUDED.city, state = EXCLUDED.state, district = EXCLUDED.district,
	    pincode = EXCLUDED.pincode, ward = EXCLUDED.ward, area = EXCLUDED.area,
	    geo_bounds = EXCLUDED.geo_bounds, updated_at = now()`

func profileArgs(p *domain.Profile) []any {
	return []any{
		p.UserID, p.FullName, nullable(p.Email), nullable(p.Phone), string(p.Role), p.IsVerified,
		nullable(p.Location.City), nullable(p.Location.State), nullable(p.Location.District),
		nullable(p.Location.Pincode), nullable(p.Location.Ward), nullable(p.Location.Area),
		p.GeoBounds,
	}
}

// Upsert inserts or updates a single profile.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.Pool.Exec(ctx, upsertProfileSQL, profileArgs(p)...)
	return mapErr(err)
}

// UpsertBatch inserts many profiles using pgx.Batch.
func (r *ProfileRepo) UpsertBatch(ctx context.Context, profiles []domain.Profile) error {
	batch := &pgx.Batch{}
	for i := range profiles {
		batch.Queue(upsertProfileSQL, profileArgs(&profiles[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range profiles {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", mapErr(err))
		}
	}
	return nil
}

// GetByUserID returns a profile by its auth user id.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// ListVerifiedOfficials returns every verified official in creation order.
func (r *ProfileRepo) ListVerifiedOfficials(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE role = 'official' AND is_verified
		ORDER BY created_at, user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// SetVerified flips the verification flag of a profile.
func (r *ProfileRepo) SetVerified(ctx context.Context, userID string, verified bool) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE profiles SET is_verified = $2, updated_at = now() WHERE user_id = $1
	`, userID, verified)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	var bounds *matching.GeoBounds
	if err := row.Scan(
		&p.UserID, &p.FullName, &p.Email, &p.Phone, &role, &p.IsVerified,
		&p.Location.City, &p.Location.State, &p.Location.District,
		&p.Location.Pincode, &p.Location.Ward, &p.Location.Area,
		&bounds, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	p.GeoBounds = bounds
	return &p, nil
}
