package databases

//go generate: mockery --name VehicleDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

const vehicleName = "vehicles"

// VehicleDatabase contains the methods to use with the vehicle database
type VehicleDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Vehicle, error)
	Find(ctx context.Context, filter interface{}) ([]models.Vehicle, error)
	InsertOne(ctx context.Context, vehicle *models.Vehicle) (primitive.ObjectID, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Vehicle, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
}

type vehicleDatabase struct {
	db DatabaseHelper
}

// NewVehicleDatabase initializes a new instance of vehicle database with the provided db connection
func NewVehicleDatabase(db DatabaseHelper) VehicleDatabase {
	return &vehicleDatabase{
		db: db,
	}
}

func (c *vehicleDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := c.db.Collection(vehicleName).FindOne(ctx, filter).Decode(&vehicle)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

// Find returns the matching vehicles, newest listing first
func (c *vehicleDatabase) Find(ctx context.Context, filter interface{}) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := findAll(ctx, c.db.Collection(vehicleName), filter, &vehicles, newestFirst("createdAt"))
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *vehicleDatabase) InsertOne(ctx context.Context, vehicle *models.Vehicle) (primitive.ObjectID, error) {
	res, err := c.db.Collection(vehicleName).InsertOne(ctx, vehicle)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res), nil
}

func (c *vehicleDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := c.db.Collection(vehicleName).FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&vehicle)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (c *vehicleDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(vehicleName).DeleteOne(ctx, filter)
}
