package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds of a review
const (
	MinRating = 1
	MaxRating = 5
)

// Review holds the structure for the reviews collection in mongo. Reviews are never updated.
type Review struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	UserName   string             `json:"userName" bson:"userName"`
	VehicleID  primitive.ObjectID `json:"vehicleId" bson:"vehicleId"`
	ReviewText string             `json:"reviewText" bson:"reviewText"`
	Rating     int                `json:"rating" bson:"rating"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// ValidRating reports whether r is within [MinRating, MaxRating]
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
