package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Profile carries the public-facing attributes of a business account.
type Profile struct {
	ID           string
	DisplayName  string
	BusinessName string
	PublicSlug   string
	LogoURL      string
	BannerURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BusinessLabel returns the name shown on the public page.
func (p *Profile) BusinessLabel() string {
	if p.BusinessName != "" {
		return p.BusinessName
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return "Business"
}

// EnsureProfile creates an empty profile row for the user if none
// exists. Identity is managed upstream; the first authenticated request
// materializes the row here.
func (db *DB) EnsureProfile(ctx context.Context, userID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING`, userID)
	return err
}

// GetProfile returns a profile by user ID.
func (db *DB) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, display_name, business_name, public_slug, logo_url, banner_url,
		       created_at, updated_at
		FROM profiles WHERE id = ?`, userID)
	return scanProfile(row)
}

// GetProfileBySlug resolves a public slug to its owning profile.
func (db *DB) GetProfileBySlug(ctx context.Context, slug string) (*Profile, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, display_name, business_name, public_slug, logo_url, banner_url,
		       created_at, updated_at
		FROM profiles WHERE public_slug = ?`, slug)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*Profile, error) {
	var p Profile
	var displayName, businessName, publicSlug, logoURL, bannerURL sql.NullString
	err := row.Scan(&p.ID, &displayName, &businessName, &publicSlug,
		&logoURL, &bannerURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if displayName.Valid {
		p.DisplayName = displayName.String
	}
	if businessName.Valid {
		p.BusinessName = businessName.String
	}
	if publicSlug.Valid {
		p.PublicSlug = publicSlug.String
	}
	if logoURL.Valid {
		p.LogoURL = logoURL.String
	}
	if bannerURL.Valid {
		p.BannerURL = bannerURL.String
	}
	return &p, nil
}

// UpdateProfile sets the editable profile fields.
func (db *DB) UpdateProfile(ctx context.Context, userID, displayName, businessName, logoURL, bannerURL string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE profiles
		SET display_name = ?, business_name = ?, logo_url = ?, banner_url = ?, updated_at = ?
		WHERE id = ?`,
		displayName, businessName, logoURL, bannerURL, time.Now(), userID)
	return err
}

// SetPublicSlug assigns a slug to a profile. Fails on the unique index
// if the slug was claimed concurrently.
func (db *DB) SetPublicSlug(ctx context.Context, userID, slug string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE profiles SET public_slug = ?, updated_at = ? WHERE id = ?`,
		slug, time.Now(), userID)
	return err
}

// IsSlugTaken reports whether any profile already owns the slug.
func (db *DB) IsSlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM profiles WHERE public_slug = ?", slug).Scan(&count)
	return count > 0, err
}
