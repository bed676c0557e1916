package pool

import (
	"strings"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
)

const (
	minAge = 18
	maxAge = 120
)

// isoMillis matches the timestamp format discovery clients already parse.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Exclusion names the rule that removed a profile from the pools.
type Exclusion string

const (
	Included           Exclusion = ""
	ExcludedStatus     Exclusion = "account_status"
	ExcludedUnverified Exclusion = "unverified"
	ExcludedNoPhotos   Exclusion = "no_photos"
	ExcludedIncognito  Exclusion = "incognito"
	ExcludedBirthDate  Exclusion = "bad_birth_date"
	ExcludedAge        Exclusion = "age_out_of_range"
	ExcludedNoBucket   Exclusion = "no_age_bucket"
)

// Candidate is an eligible profile: its projection plus where it belongs.
type Candidate struct {
	Member  domain.PoolMember
	Country string
	Gender  string
}

var birthDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
}

// ParseDateOfBirth accepts the date formats the profile service has written over time.
func ParseDateOfBirth(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CalculateAge returns completed years between dob and now, in UTC.
func CalculateAge(dob, now time.Time) int {
	dob = dob.UTC()
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// Evaluate applies the eligibility rules in order and projects the profile.
// Malformed data never produces an error, only an exclusion.
func Evaluate(rec *domain.ProfileRecord, now time.Time) (*Candidate, Exclusion) {
	switch strings.ToLower(strings.TrimSpace(rec.AccountStatus)) {
	case domain.AccountStatusSuspended, domain.AccountStatusBanned, domain.AccountStatusDeleted:
		return nil, ExcludedStatus
	}

	approved := rec.VerificationStatus != nil && *rec.VerificationStatus == domain.VerificationStatusApproved
	if !rec.IsVerified && !approved {
		return nil, ExcludedUnverified
	}

	if len(rec.PhotoURLs) == 0 {
		return nil, ExcludedNoPhotos
	}

	if rec.IsIncognito && (rec.IncognitoExpiry == nil || rec.IncognitoExpiry.After(now)) {
		return nil, ExcludedIncognito
	}

	dob, ok := ParseDateOfBirth(rec.DateOfBirth)
	if !ok {
		return nil, ExcludedBirthDate
	}
	age := CalculateAge(dob, now)
	if age < minAge || age > maxAge {
		return nil, ExcludedAge
	}

	lat, lng, country := effectiveLocation(rec, now)

	gender := rec.Gender
	if gender == "" {
		gender = domain.UnknownValue
	}

	member := domain.PoolMember{
		UserID:            rec.UserID,
		Age:               age,
		Lat:               lat,
		Lng:               lng,
		Interests:         nonNil(rec.Interests),
		Languages:         nonNil(rec.Languages),
		IsVerified:        true,
		IsBoosted:         rec.IsBoosted,
		BoostExpiry:       formatTime(rec.BoostExpiry),
		IsOnline:          rec.IsOnline,
		LastActive:        formatTime(rec.LastSeen),
		SexualOrientation: nonEmpty(rec.SexualOrientation),
		HasPhotos:         true,
	}
	return &Candidate{Member: member, Country: country, Gender: gender}, Included
}

// travelerActive reports whether traveler mode overrides the home location.
// Traveler mode without an expiry is treated as inactive.
func travelerActive(rec *domain.ProfileRecord, now time.Time) bool {
	return rec.IsTraveler && rec.TravelerExpiry != nil && rec.TravelerExpiry.After(now)
}

func effectiveLocation(rec *domain.ProfileRecord, now time.Time) (lat, lng float64, country string) {
	country = domain.UnknownValue
	traveling := travelerActive(rec, now) && rec.TravelerLocation != nil

	if traveling {
		lat, lng = coords(rec.TravelerLocation)
	} else if rec.Location != nil {
		lat, lng = coords(rec.Location)
	}

	switch {
	case traveling && hasCountry(rec.TravelerLocation):
		country = *rec.TravelerLocation.Country
	case hasCountry(rec.Location):
		country = *rec.Location.Country
	}
	return lat, lng, country
}

func coords(l *domain.Location) (float64, float64) {
	var lat, lng float64
	if l.Lat != nil {
		lat = *l.Lat
	}
	if l.Lng != nil {
		lng = *l.Lng
	}
	return lat, lng
}

func hasCountry(l *domain.Location) bool {
	return l != nil && l.Country != nil && *l.Country != ""
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(isoMillis)
	return &s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
