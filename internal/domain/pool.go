package domain

import (
	"fmt"
	"time"
)

// MaxPoolSize caps the members stored in one pool document.
const MaxPoolSize = 5000

// UnknownValue replaces a country or gender that is missing or sanitizes to nothing.
const UnknownValue = "Unknown"

// AgeBucket is an inclusive age range.
type AgeBucket struct {
	Min int
	Max int
}

func (b AgeBucket) Contains(age int) bool {
	return age >= b.Min && age <= b.Max
}

// String renders the bucket the way it appears in pool keys, e.g. "25-34".
func (b AgeBucket) String() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// AgeBuckets are fixed and non-overlapping.
var AgeBuckets = []AgeBucket{
	{Min: 18, Max: 24},
	{Min: 25, Max: 34},
	{Min: 35, Max: 44},
	{Min: 45, Max: 54},
	{Min: 55, Max: 64},
	{Min: 65, Max: 99},
}

// PoolMember is the lightweight projection of a profile used by client-side scoring.
type PoolMember struct {
	UserID            string   `json:"userId" bson:"userId"`
	Age               int      `json:"age" bson:"age"`
	Lat               float64  `json:"lat" bson:"lat"`
	Lng               float64  `json:"lng" bson:"lng"`
	Interests         []string `json:"interests" bson:"interests"`
	Languages         []string `json:"languages" bson:"languages"`
	IsVerified        bool     `json:"isVerified" bson:"isVerified"`
	IsBoosted         bool     `json:"isBoosted" bson:"isBoosted"`
	BoostExpiry       *string  `json:"boostExpiry" bson:"boostExpiry"`
	IsOnline          bool     `json:"isOnline" bson:"isOnline"`
	LastActive        *string  `json:"lastActive" bson:"lastActive"`
	SexualOrientation *string  `json:"sexualOrientation" bson:"sexualOrientation"`
	HasPhotos         bool     `json:"hasPhotos" bson:"hasPhotos"`
}

// Pool is one persisted country/gender/age-bucket partition.
type Pool struct {
	PoolKey   string       `json:"poolKey" bson:"poolKey"`
	Country   string       `json:"country" bson:"country"`
	Gender    string       `json:"gender" bson:"gender"`
	AgeBucket string       `json:"ageBucket" bson:"ageBucket"`
	Members   []PoolMember `json:"members" bson:"members"`
	Count     int          `json:"count" bson:"count"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// PoolStat is the metadata projection of a pool; members are never loaded.
type PoolStat struct {
	PoolKey   string     `json:"poolKey" db:"pool_key" bson:"poolKey"`
	Count     int        `json:"count" db:"count" bson:"count"`
	UpdatedAt *time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// PoolStats is the response of the stats read path.
type PoolStats struct {
	TotalPools   int        `json:"totalPools"`
	TotalMembers int        `json:"totalMembers"`
	Pools        []PoolStat `json:"pools"`
}

// BuildResult summarizes one pipeline run.
type BuildResult struct {
	PoolCount   int `json:"poolCount"`
	MemberCount int `json:"memberCount"`
	Scanned     int `json:"scanned"`
}
