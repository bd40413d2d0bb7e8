package databases

// go generate: mockery --name RCDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

const rcName = "rcs"

// RCDatabase contains the methods to use with the registration certificate database
type RCDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.RC, error)
	Find(ctx context.Context, filter interface{}) ([]models.RC, error)
	InsertOne(ctx context.Context, rc *models.RC) (primitive.ObjectID, error)
}

type rcDatabase struct {
	db DatabaseHelper
}

// NewRCDatabase initializes a new instance of rc database with the provided db connection
func NewRCDatabase(db DatabaseHelper) RCDatabase {
	return &rcDatabase{
		db: db,
	}
}

// FindOne returns the most recently uploaded RC matching filter
func (r *rcDatabase) FindOne(ctx context.Context, filter interface{}) (*models.RC, error) {
	rc := &models.RC{}
	opts := options.FindOne().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})
	err := r.db.Collection(rcName).FindOne(ctx, filter, opts).Decode(&rc)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *rcDatabase) Find(ctx context.Context, filter interface{}) ([]models.RC, error) {
	var rcs []models.RC
	err := findAll(ctx, r.db.Collection(rcName), filter, &rcs)
	if err != nil {
		return nil, err
	}
	return rcs, nil
}

func (r *rcDatabase) InsertOne(ctx context.Context, rc *models.RC) (primitive.ObjectID, error) {
	res, err := r.db.Collection(rcName).InsertOne(ctx, rc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res), nil
}
