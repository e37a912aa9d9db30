package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"votegate/internal/biometric/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

const enrollmentCollection = "biometric_enrollments"

// enrollment is the one document kept per voter. Replacing it is a single-document
// write, so the active template swaps atomically.
type enrollment struct {
	VoterID   string           `bson:"_id"`
	Active    models.Template  `bson:"active"`
	Previous  *models.Template `bson:"previous,omitempty"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// MongoStore persists enrollments in MongoDB.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongo prepares the enrollment collection and its indexes.
func NewMongo(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	coll := db.Collection(enrollmentCollection)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "active.template_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("create enrollment indexes: %w", err)
	}
	return &MongoStore{coll: coll}, nil
}

// Activate replaces the voter's enrollment with t active and the old active template
// demoted to previous. Concurrent enrollments race on a compare-and-swap of the
// current active template id and the loser retries.
func (s *MongoStore) Activate(ctx context.Context, t *models.Template) (*models.Template, error) {
	next := *t
	next.IsActive = true

	for attempt := 0; attempt < 3; attempt++ {
		var current enrollment
		err := s.coll.FindOne(ctx, bson.M{"_id": string(t.VoterID)}).Decode(&current)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			_, err = s.coll.InsertOne(ctx, enrollment{
				VoterID:   string(t.VoterID),
				Active:    next,
				UpdatedAt: next.CreatedAt,
			})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("insert enrollment: %w", err)
			}
			return nil, nil
		case err != nil:
			return nil, fmt.Errorf("load enrollment: %w", err)
		}

		prev := current.Active
		prev.IsActive = false
		res, err := s.coll.ReplaceOne(ctx,
			bson.M{"_id": string(t.VoterID), "active.template_id": current.Active.ID},
			enrollment{
				VoterID:   string(t.VoterID),
				Active:    next,
				Previous:  &prev,
				UpdatedAt: next.CreatedAt,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("replace enrollment: %w", err)
		}
		if res.MatchedCount == 1 {
			return &prev, nil
		}
	}
	return nil, fmt.Errorf("activate template for %s: %w", t.VoterID, sentinel.ErrConflict)
}

func (s *MongoStore) FindActive(ctx context.Context, voterID id.VoterID) (*models.Template, error) {
	var doc enrollment
	err := s.coll.FindOne(ctx, bson.M{"_id": string(voterID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("template for %s: %w", voterID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &doc.Active, nil
}

// FindPrevious returns the template replaced by the latest re-enrollment.
func (s *MongoStore) FindPrevious(ctx context.Context, voterID id.VoterID) (*models.Template, error) {
	var doc enrollment
	err := s.coll.FindOne(ctx, bson.M{"_id": string(voterID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && doc.Previous == nil) {
		return nil, fmt.Errorf("previous template for %s: %w", voterID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return doc.Previous, nil
}
