package domain

import "time"

// Account statuses that remove a profile from discovery.
const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusBanned    = "banned"
	AccountStatusDeleted   = "deleted"
)

const VerificationStatusApproved = "approved"

// Location is a point with an optional country, as written by the profile service.
type Location struct {
	Lat     *float64 `json:"lat" bson:"latitude,omitempty"`
	Lng     *float64 `json:"lng" bson:"longitude,omitempty"`
	Country *string  `json:"country" bson:"country,omitempty"`
}

// ProfileRecord is the subset of a profile the pool builder consumes.
// The profile service owns these records; this service only reads them.
type ProfileRecord struct {
	UserID             string     `json:"user_id"`
	AccountStatus      string     `json:"account_status"`
	IsVerified         bool       `json:"is_verified"`
	VerificationStatus *string    `json:"verification_status"`
	PhotoURLs          []string   `json:"photo_urls"`
	IsIncognito        bool       `json:"is_incognito"`
	IncognitoExpiry    *time.Time `json:"incognito_expiry"`
	// DateOfBirth is kept as written upstream; it may be malformed.
	DateOfBirth       string     `json:"date_of_birth"`
	IsTraveler        bool       `json:"is_traveler"`
	TravelerExpiry    *time.Time `json:"traveler_expiry"`
	TravelerLocation  *Location  `json:"traveler_location"`
	Location          *Location  `json:"location"`
	Gender            string     `json:"gender"`
	Interests         []string   `json:"interests"`
	Languages         []string   `json:"languages"`
	IsBoosted         bool       `json:"is_boosted"`
	BoostExpiry       *time.Time `json:"boost_expiry"`
	IsOnline          bool       `json:"is_online"`
	LastSeen          *time.Time `json:"last_seen"`
	SexualOrientation *string    `json:"sexual_orientation"`
}
