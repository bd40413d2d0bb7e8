package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/models"
)

// Review exported for testing purposes
type Review struct {
	DB  databases.ReviewDatabase
	UDB databases.UserDatabase
	VDB databases.VehicleDatabase
}

type createReviewRequest struct {
	VehicleID  string `json:"vehicleId"`
	ReviewText string `json:"reviewText"`
	Rating     *int   `json:"rating"`
}

type reviewResponse struct {
	Message string         `json:"message"`
	Review  *models.Review `json:"review"`
}

type reviewsResponse struct {
	Count   int             `json:"count"`
	Reviews []models.Review `json:"reviews"`
}

// CreateReviewHandler adds a review of a vehicle by the calling buyer
func (rv Review) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	req.ReviewText = strings.TrimSpace(req.ReviewText)
	if req.VehicleID == "" || req.ReviewText == "" || req.Rating == nil {
		config.ErrorStatus("All fields are required", http.StatusBadRequest, w, nil)
		return
	}
	if !models.ValidRating(*req.Rating) {
		config.ErrorStatus("Rating must be between 1 and 5", http.StatusBadRequest, w, nil)
		return
	}
	vehicleID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		config.ErrorStatus("invalid id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := rv.UDB.FindOne(ctx, bson.M{"_id": uid})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("User not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	if _, err = rv.VDB.FindOne(ctx, bson.M{"_id": vehicleID}); err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			config.ErrorStatus("Vehicle not found", http.StatusNotFound, w, nil)
			return
		}
		serverError(w, err)
		return
	}

	review := &models.Review{
		UserID:     uid,
		UserName:   user.Name,
		VehicleID:  vehicleID,
		ReviewText: req.ReviewText,
		Rating:     *req.Rating,
		CreatedAt:  time.Now(),
	}
	id, err := rv.DB.InsertOne(ctx, review)
	if err != nil {
		serverError(w, err)
		return
	}
	review.ID = id

	writeJSON(w, http.StatusCreated, reviewResponse{Message: "Review added successfully", Review: review})
}

// ReviewsByVehicleIDHandler lists the reviews of a vehicle, newest first
func (rv Review) ReviewsByVehicleIDHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reviews, err := rv.DB.Find(ctx, bson.M{"vehicleId": vehicleID})
	if err != nil {
		serverError(w, err)
		return
	}
	if len(reviews) == 0 {
		config.ErrorStatus("No reviews found for this vehicle", http.StatusNotFound, w, nil)
		return
	}
	writeJSON(w, http.StatusOK, reviewsResponse{Count: len(reviews), Reviews: reviews})
}
