package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RC holds the structure for the rcs collection in mongo (registration certificates)
type RC struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	RegNumber  string             `json:"regNumber" bson:"regNumber"`
	RCBookPath string             `json:"rcBookPath" bson:"rcBookPath"`
	UploadedAt time.Time          `json:"uploadedAt" bson:"uploadedAt"`
}
