package services

import (
	"context"
	"time"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VoteStore is the slice of persistence the voting operations need. The
// unique (complaint, user) index behind InsertVote is the atomicity
// guarantee against duplicate votes.
type VoteStore interface {
	// InsertVote stores a vote, returning ErrDuplicateVote when the user
	// has already voted on the complaint.
	InsertVote(ctx context.Context, vote models.Vote) error
	// DeleteVote removes the user's vote, reporting whether one existed.
	DeleteVote(ctx context.Context, complaintID, userID primitive.ObjectID) (bool, error)
	CountVotes(ctx context.Context, complaintID primitive.ObjectID) (int64, error)
	SetUpvoteCount(ctx context.Context, complaintID primitive.ObjectID, count int64) error
}

// CastVote records an upvote and resets the cached counter from the live
// vote count. A race between two attempts from the same user admits exactly
// one vote; the loser gets ErrDuplicateVote. Returns the refreshed count.
func CastVote(ctx context.Context, store VoteStore, complaintID, userID primitive.ObjectID, now time.Time) (int64, error) {
	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		Complaint: complaintID,
		User:      userID,
		CreatedAt: now,
	}
	if err := store.InsertVote(ctx, vote); err != nil {
		return 0, err
	}
	return syncUpvoteCount(ctx, store, complaintID)
}

// RetractVote removes an upvote. Removing a vote that does not exist is
// rejected with ErrVoteNotFound rather than decrementing, so the counter
// can never underflow.
func RetractVote(ctx context.Context, store VoteStore, complaintID, userID primitive.ObjectID) (int64, error) {
	deleted, err := store.DeleteVote(ctx, complaintID, userID)
	if err != nil {
		return 0, err
	}
	if !deleted {
		return 0, ErrVoteNotFound
	}
	return syncUpvoteCount(ctx, store, complaintID)
}

// syncUpvoteCount resets the cached counter from the vote collection, which
// is the source of truth.
func syncUpvoteCount(ctx context.Context, store VoteStore, complaintID primitive.ObjectID) (int64, error) {
	count, err := store.CountVotes(ctx, complaintID)
	if err != nil {
		return 0, err
	}
	if err := store.SetUpvoteCount(ctx, complaintID, count); err != nil {
		return 0, err
	}
	return count, nil
}

// MongoVoteStore backs voting with the votes and complaints collections.
type MongoVoteStore struct {
	votes      *mongo.Collection
	complaints *mongo.Collection
}

func NewMongoVoteStore(votes, complaints *mongo.Collection) *MongoVoteStore {
	return &MongoVoteStore{votes: votes, complaints: complaints}
}

func (s *MongoVoteStore) InsertVote(ctx context.Context, vote models.Vote) error {
	_, err := s.votes.InsertOne(ctx, vote)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateVote
	}
	return err
}

func (s *MongoVoteStore) DeleteVote(ctx context.Context, complaintID, userID primitive.ObjectID) (bool, error) {
	result, err := s.votes.DeleteOne(ctx, bson.M{
		"complaint": complaintID,
		"user":      userID,
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (s *MongoVoteStore) CountVotes(ctx context.Context, complaintID primitive.ObjectID) (int64, error) {
	return s.votes.CountDocuments(ctx, bson.M{"complaint": complaintID})
}

func (s *MongoVoteStore) SetUpvoteCount(ctx context.Context, complaintID primitive.ObjectID, count int64) error {
	_, err := s.complaints.UpdateOne(ctx,
		bson.M{"_id": complaintID},
		bson.M{"$set": bson.M{
			"upvoteCount": count,
			"updatedAt":   time.Now(),
		}},
	)
	return err
}
