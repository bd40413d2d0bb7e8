package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDType is the kind of government ID a user uploads for verification
type IDType string

// Accepted government ID types
const (
	IDTypeAadhaar        IDType = "Aadhaar"
	IDTypePAN            IDType = "PAN"
	IDTypeDriversLicense IDType = "Driver's License"
)

// ParseIDType validates a raw id type. The typographic apostrophe some clients send
// for "Driver’s License" is normalized.
func ParseIDType(s string) (IDType, bool) {
	t := IDType(strings.ReplaceAll(strings.TrimSpace(s), "’", "'"))
	switch t {
	case IDTypeAadhaar, IDTypePAN, IDTypeDriversLicense:
		return t, true
	}
	return "", false
}

// User holds the structure for the user collection in mongo
type User struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name         string               `json:"name" bson:"name"`
	Email        string               `json:"email" bson:"email"`
	Phone        string               `json:"phone" bson:"phone"`
	Password     string               `json:"-" bson:"password"`
	Role         Role                 `json:"role" bson:"role"`
	Bio          string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Favorites    []primitive.ObjectID `json:"favorites" bson:"favorites"`
	GovernmentID string               `json:"governmentId,omitempty" bson:"governmentId,omitempty"`
	IDType       IDType               `json:"idType,omitempty" bson:"idType,omitempty"`
	IsVerified   bool                 `json:"isVerified" bson:"isVerified"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the public slice of a user embedded in chat responses
type UserSummary struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email,omitempty" bson:"email"`
}

// Summary returns the public view of u
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// HasFavorite reports whether vehicleID is in the user's favorites
func (u User) HasFavorite(vehicleID primitive.ObjectID) bool {
	for _, id := range u.Favorites {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// ToggleFavorite flips the membership of vehicleID in favs. It returns a new slice, leaving
// favs untouched, and whether the vehicle was added. Order of the remaining ids is kept and
// duplicates already present for vehicleID are all removed.
func ToggleFavorite(favs []primitive.ObjectID, vehicleID primitive.ObjectID) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(favs)+1)
	found := false
	for _, id := range favs {
		if id == vehicleID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if found {
		return out, false
	}
	return append(out, vehicleID), true
}
