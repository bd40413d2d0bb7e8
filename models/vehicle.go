package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FuelType of a listed vehicle
type FuelType string

// Accepted fuel types
const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelGas      FuelType = "Gas"
)

// MaxVehicleImages is the number of images a listing may carry
const MaxVehicleImages = 5

// Vehicle holds the structure for the vehicle collection in mongo
type Vehicle struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title            string             `json:"title" bson:"title" validate:"required"`
	Brand            string             `json:"brand" bson:"brand" validate:"required"`
	Model            string             `json:"model" bson:"model" validate:"required"`
	Variant          string             `json:"variant,omitempty" bson:"variant,omitempty"`
	Year             int                `json:"year" bson:"year" validate:"required,min=1886"`
	FuelType         FuelType           `json:"fuelType" bson:"fuelType" validate:"required,oneof=Petrol Diesel Electric Gas"`
	KilometersDriven float64            `json:"kilometersDriven" bson:"kilometersDriven" validate:"min=0"`
	Mileage          float64            `json:"mileage,omitempty" bson:"mileage,omitempty" validate:"min=0"`
	NumberOfOwners   int                `json:"numberOfOwners" bson:"numberOfOwners" validate:"min=0"`
	ReasonForSelling string             `json:"reasonForSelling,omitempty" bson:"reasonForSelling,omitempty"`
	Price            float64            `json:"price" bson:"price" validate:"required,gt=0"`
	Images           []string           `json:"images" bson:"images"`
	SellerID         primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

// VehicleUpdate holds the fields a seller may change on their own listing. The seller, id,
// images and creation time are not part of it so they can never be reassigned.
type VehicleUpdate struct {
	Title            *string   `json:"title" validate:"omitempty,min=1"`
	Brand            *string   `json:"brand" validate:"omitempty,min=1"`
	Model            *string   `json:"model" validate:"omitempty,min=1"`
	Variant          *string   `json:"variant"`
	Year             *int      `json:"year" validate:"omitempty,min=1886"`
	FuelType         *FuelType `json:"fuelType" validate:"omitempty,oneof=Petrol Diesel Electric Gas"`
	KilometersDriven *float64  `json:"kilometersDriven" validate:"omitempty,min=0"`
	Mileage          *float64  `json:"mileage" validate:"omitempty,min=0"`
	NumberOfOwners   *int      `json:"numberOfOwners" validate:"omitempty,min=0"`
	ReasonForSelling *string   `json:"reasonForSelling"`
	Price            *float64  `json:"price" validate:"omitempty,gt=0"`
}

// SetFields returns the $set document for the provided fields only
func (u VehicleUpdate) SetFields() bson.M {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Brand != nil {
		set["brand"] = *u.Brand
	}
	if u.Model != nil {
		set["model"] = *u.Model
	}
	if u.Variant != nil {
		set["variant"] = *u.Variant
	}
	if u.Year != nil {
		set["year"] = *u.Year
	}
	if u.FuelType != nil {
		set["fuelType"] = *u.FuelType
	}
	if u.KilometersDriven != nil {
		set["kilometersDriven"] = *u.KilometersDriven
	}
	if u.Mileage != nil {
		set["mileage"] = *u.Mileage
	}
	if u.NumberOfOwners != nil {
		set["numberOfOwners"] = *u.NumberOfOwners
	}
	if u.ReasonForSelling != nil {
		set["reasonForSelling"] = *u.ReasonForSelling
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	return set
}
