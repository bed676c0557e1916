package postgres

import (
	"context"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileReader {
	return &profileRepository{db: db}
}

type profileRow struct {
	UserID             string         `db:"user_id"`
	AccountStatus      *string        `db:"account_status"`
	IsVerified         *bool          `db:"is_verified"`
	VerificationStatus *string        `db:"verification_status"`
	PhotoURLs          pq.StringArray `db:"photo_urls"`
	IsIncognito        *bool          `db:"is_incognito"`
	IncognitoExpiry    *time.Time     `db:"incognito_expiry"`
	DateOfBirth        *string        `db:"date_of_birth"`
	IsTraveler         *bool          `db:"is_traveler"`
	TravelerExpiry     *time.Time     `db:"traveler_expiry"`
	TravelerLat        *float64       `db:"traveler_lat"`
	TravelerLng        *float64       `db:"traveler_lng"`
	TravelerCountry    *string        `db:"traveler_country"`
	LocationLat        *float64       `db:"location_lat"`
	LocationLng        *float64       `db:"location_lng"`
	Country            *string        `db:"country"`
	Gender             *string        `db:"gender"`
	Interests          pq.StringArray `db:"interests"`
	Languages          pq.StringArray `db:"languages"`
	IsBoosted          *bool          `db:"is_boosted"`
	BoostExpiry        *time.Time     `db:"boost_expiry"`
	IsOnline           *bool          `db:"is_online"`
	LastSeen           *time.Time     `db:"last_seen"`
	SexualOrientation  *string        `db:"sexual_orientation"`
}

const scanProfilesQuery = `
	SELECT user_id, account_status, is_verified, verification_status, photo_urls,
	       is_incognito, incognito_expiry, date_of_birth,
	       is_traveler, traveler_expiry, traveler_lat, traveler_lng, traveler_country,
	       location_lat, location_lng, country, gender,
	       interests, languages,
	       is_boosted, boost_expiry, is_online, last_seen, sexual_orientation
	FROM profiles
	WHERE user_id > $1
	ORDER BY user_id
	LIMIT $2
`

// ScanPage uses keyset pagination on the primary key. Each page is its own
// statement, so rows written between pages may or may not be observed.
func (r *profileRepository) ScanPage(ctx context.Context, afterUserID string, limit int) ([]*domain.ProfileRecord, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidPageSize
	}

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, scanProfilesQuery, afterUserID, limit); err != nil {
		return nil, domain.NewStoreError("scan profiles", err)
	}

	records := make([]*domain.ProfileRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toDomain())
	}
	return records, nil
}

func (row *profileRow) toDomain() *domain.ProfileRecord {
	rec := &domain.ProfileRecord{
		UserID:             row.UserID,
		AccountStatus:      deref(row.AccountStatus),
		IsVerified:         deref(row.IsVerified),
		VerificationStatus: row.VerificationStatus,
		PhotoURLs:          []string(row.PhotoURLs),
		IsIncognito:        deref(row.IsIncognito),
		IncognitoExpiry:    row.IncognitoExpiry,
		DateOfBirth:        deref(row.DateOfBirth),
		IsTraveler:         deref(row.IsTraveler),
		TravelerExpiry:     row.TravelerExpiry,
		Gender:             deref(row.Gender),
		Interests:          []string(row.Interests),
		Languages:          []string(row.Languages),
		IsBoosted:          deref(row.IsBoosted),
		BoostExpiry:        row.BoostExpiry,
		IsOnline:           deref(row.IsOnline),
		LastSeen:           row.LastSeen,
		SexualOrientation:  row.SexualOrientation,
	}
	if row.TravelerLat != nil || row.TravelerLng != nil || row.TravelerCountry != nil {
		rec.TravelerLocation = &domain.Location{Lat: row.TravelerLat, Lng: row.TravelerLng, Country: row.TravelerCountry}
	}
	if row.LocationLat != nil || row.LocationLng != nil || row.Country != nil {
		rec.Location = &domain.Location{Lat: row.LocationLat, Lng: row.LocationLng, Country: row.Country}
	}
	return rec
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
