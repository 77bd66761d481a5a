package services

import (
	"context"
	"time"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSweepStore backs the escalation sweep with the complaints collection.
type MongoSweepStore struct {
	collection *mongo.Collection
}

func NewMongoSweepStore(collection *mongo.Collection) *MongoSweepStore {
	return &MongoSweepStore{collection: collection}
}

func (s *MongoSweepStore) UnresolvedComplaints(ctx context.Context) ([]models.Complaint, error) {
	cursor, err := s.collection.Find(ctx, bson.M{
		"status": bson.M{"$ne": models.StatusResolved},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *MongoSweepStore) SavePriorityScore(ctx context.Context, c *models.Complaint, score int) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": c.ID},
		bson.M{"$set": bson.M{
			"priorityScore": score,
			"updatedAt":     time.Now(),
		}},
	)
	return err
}

// EscalationFilter is the Mongo filter behind the escalation query:
// unresolved, score at or above threshold, pending longer than the window.
func EscalationFilter(now time.Time, days, threshold int) bson.M {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	return bson.M{
		"status":        bson.M{"$ne": models.StatusResolved},
		"priorityScore": bson.M{"$gte": threshold},
		"createdAt":     bson.M{"$lte": cutoff},
	}
}
