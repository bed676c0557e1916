package mongodb

import (
	"context"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profilesCollection = "profiles"

type profileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) repository.ProfileReader {
	return &profileRepository{col: db.Collection(profilesCollection)}
}

// profileDoc mirrors the documents written by the profile service. The
// birth date is stored either as a string or a BSON date depending on
// which client wrote it.
type profileDoc struct {
	UserID             string           `bson:"_id"`
	AccountStatus      string           `bson:"accountStatus"`
	IsVerified         bool             `bson:"isVerified"`
	VerificationStatus *string          `bson:"verificationStatus"`
	PhotoURLs          []string         `bson:"photoUrls"`
	IsIncognito        bool             `bson:"isIncognito"`
	IncognitoExpiry    *time.Time       `bson:"incognitoExpiry"`
	DateOfBirth        bson.RawValue    `bson:"dateOfBirth"`
	IsTraveler         bool             `bson:"isTraveler"`
	TravelerExpiry     *time.Time       `bson:"travelerExpiry"`
	TravelerLocation   *domain.Location `bson:"travelerLocation"`
	Location           *domain.Location `bson:"location"`
	Gender             string           `bson:"gender"`
	Interests          []string         `bson:"interests"`
	Languages          []string         `bson:"languages"`
	IsBoosted          bool             `bson:"isBoosted"`
	BoostExpiry        *time.Time       `bson:"boostExpiry"`
	IsOnline           bool             `bson:"isOnline"`
	LastSeen           *time.Time       `bson:"lastSeen"`
	SexualOrientation  *string          `bson:"sexualOrientation"`
}

// ScanPage pages by _id. Like the SQL reader it has no snapshot isolation
// across pages.
func (r *profileRepository) ScanPage(ctx context.Context, afterUserID string, limit int) ([]*domain.ProfileRecord, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidPageSize
	}

	filter := bson.M{}
	if afterUserID != "" {
		filter["_id"] = bson.M{"$gt": afterUserID}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewStoreError("scan profiles", err)
	}
	defer cur.Close(ctx)

	records := make([]*domain.ProfileRecord, 0, limit)
	for cur.Next(ctx) {
		var doc profileDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, domain.NewStoreError("decode profile", err)
		}
		records = append(records, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, domain.NewStoreError("scan profiles", err)
	}
	return records, nil
}

func (d *profileDoc) toDomain() *domain.ProfileRecord {
	return &domain.ProfileRecord{
		UserID:             d.UserID,
		AccountStatus:      d.AccountStatus,
		IsVerified:         d.IsVerified,
		VerificationStatus: d.VerificationStatus,
		PhotoURLs:          d.PhotoURLs,
		IsIncognito:        d.IsIncognito,
		IncognitoExpiry:    d.IncognitoExpiry,
		DateOfBirth:        rawDateOfBirth(d.DateOfBirth),
		IsTraveler:         d.IsTraveler,
		TravelerExpiry:     d.TravelerExpiry,
		TravelerLocation:   d.TravelerLocation,
		Location:           d.Location,
		Gender:             d.Gender,
		Interests:          d.Interests,
		Languages:          d.Languages,
		IsBoosted:          d.IsBoosted,
		BoostExpiry:        d.BoostExpiry,
		IsOnline:           d.IsOnline,
		LastSeen:           d.LastSeen,
		SexualOrientation:  d.SexualOrientation,
	}
}

// rawDateOfBirth renders a stored birth date as text for the eligibility
// parser. Unsupported BSON types yield "" and the profile is excluded later.
func rawDateOfBirth(v bson.RawValue) string {
	switch v.Type {
	case bsontype.String:
		s, _ := v.StringValueOK()
		return s
	case bsontype.DateTime:
		ms, _ := v.DateTimeOK()
		return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}
