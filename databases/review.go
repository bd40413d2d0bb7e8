package databases

// go generate: mockery --name ReviewDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

const reviewName = "reviews"

// ReviewDatabase contains the methods to use with the review database
type ReviewDatabase interface {
	Find(ctx context.Context, filter interface{}) ([]models.Review, error)
	InsertOne(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
}

type reviewDatabase struct {
	db DatabaseHelper
}

// NewReviewDatabase initializes a new instance of review database with the provided db connection
func NewReviewDatabase(db DatabaseHelper) ReviewDatabase {
	return &reviewDatabase{
		db: db,
	}
}

// Find returns the matching reviews, newest first
func (r *reviewDatabase) Find(ctx context.Context, filter interface{}) ([]models.Review, error) {
	var reviews []models.Review
	err := findAll(ctx, r.db.Collection(reviewName), filter, &reviews, newestFirst("createdAt"))
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewDatabase) InsertOne(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	res, err := r.db.Collection(reviewName).InsertOne(ctx, review)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res), nil
}
