package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/api/handlers"
	"github.com/pranaou2005/Wheelhub-backend/api/testhelpers"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/databases/mocks"
	"github.com/pranaou2005/Wheelhub-backend/models"
)

func reviewRequest(t *testing.T, uid primitive.ObjectID, body map[string]interface{}) *http.Request {
	return testhelpers.AsUser(testhelpers.JSONRequest(t, "POST", "/api/reviews/add", body, nil), uid, models.RoleBuyer)
}

func TestReview_CreateReviewHandlerRatingBounds(t *testing.T) {
	tests := []struct {
		rating int
		status int
	}{
		{0, http.StatusBadRequest},
		{1, http.StatusCreated},
		{5, http.StatusCreated},
		{6, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("rating %d", tt.rating), func(t *testing.T) {
			uid := primitive.NewObjectID()
			vid := primitive.NewObjectID()
			db := &mocks.ReviewDatabase{}
			udb := &mocks.UserDatabase{}
			vdb := &mocks.VehicleDatabase{}
			udb.On("FindOne", mock.Anything, bson.M{"_id": uid}).Return(&models.User{ID: uid, Name: "Ravi"}, nil)
			vdb.On("FindOne", mock.Anything, bson.M{"_id": vid}).Return(&models.Vehicle{ID: vid}, nil)
			db.On("InsertOne", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
				return r.UserID == uid && r.UserName == "Ravi" && r.VehicleID == vid && r.Rating == tt.rating
			})).Return(primitive.NewObjectID(), nil)

			rv := handlers.Review{DB: db, UDB: udb, VDB: vdb}
			rr := httptest.NewRecorder()
			http.HandlerFunc(rv.CreateReviewHandler).ServeHTTP(rr, reviewRequest(t, uid, map[string]interface{}{
				"vehicleId": vid.Hex(), "reviewText": "Smooth ride", "rating": tt.rating,
			}))

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusBadRequest {
				assert.Contains(t, rr.Body.String(), "Rating must be between 1 and 5")
				db.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
			} else {
				assert.Contains(t, rr.Body.String(), "Review added successfully")
			}
		})
	}
}

func TestReview_CreateReviewHandlerMissingFields(t *testing.T) {
	vid := primitive.NewObjectID().Hex()
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing vehicle", map[string]interface{}{"reviewText": "ok", "rating": 3}},
		{"blank text", map[string]interface{}{"vehicleId": vid, "reviewText": "  ", "rating": 3}},
		{"missing rating", map[string]interface{}{"vehicleId": vid, "reviewText": "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv := handlers.Review{DB: &mocks.ReviewDatabase{}, UDB: &mocks.UserDatabase{}, VDB: &mocks.VehicleDatabase{}}
			rr := httptest.NewRecorder()
			http.HandlerFunc(rv.CreateReviewHandler).ServeHTTP(rr, reviewRequest(t, primitive.NewObjectID(), tt.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"message":"All fields are required"}`, rr.Body.String())
		})
	}
}

func TestReview_CreateReviewHandlerUnknownVehicle(t *testing.T) {
	uid := primitive.NewObjectID()
	db := &mocks.ReviewDatabase{}
	udb := &mocks.UserDatabase{}
	vdb := &mocks.VehicleDatabase{}
	udb.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{ID: uid}, nil)
	vdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, databases.ErrNotFound)

	rv := handlers.Review{DB: db, UDB: udb, VDB: vdb}
	rr := httptest.NewRecorder()
	http.HandlerFunc(rv.CreateReviewHandler).ServeHTTP(rr, reviewRequest(t, uid, map[string]interface{}{
		"vehicleId": primitive.NewObjectID().Hex(), "reviewText": "ok", "rating": 4,
	}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Vehicle not found")
	db.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestReview_CreateReviewHandlerInvalidVehicleID(t *testing.T) {
	rv := handlers.Review{DB: &mocks.ReviewDatabase{}, UDB: &mocks.UserDatabase{}, VDB: &mocks.VehicleDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(rv.CreateReviewHandler).ServeHTTP(rr, reviewRequest(t, primitive.NewObjectID(), map[string]interface{}{
		"vehicleId": "1234", "reviewText": "ok", "rating": 4,
	}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid id")
}

func TestReview_ReviewsByVehicleIDHandler(t *testing.T) {
	vid := primitive.NewObjectID()
	db := &mocks.ReviewDatabase{}
	db.On("Find", mock.Anything, bson.M{"vehicleId": vid}).Return([]models.Review{
		{VehicleID: vid, Rating: 5, ReviewText: "great"},
		{VehicleID: vid, Rating: 3, ReviewText: "fine"},
	}, nil)

	rv := handlers.Review{DB: db}
	rr := httptest.NewRecorder()
	http.HandlerFunc(rv.ReviewsByVehicleIDHandler).ServeHTTP(rr, testhelpers.JSONRequest(t, "GET", "/", nil, map[string]string{"vehicleId": vid.Hex()}))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Count   int             `json:"count"`
		Reviews []models.Review `json:"reviews"`
	}
	testhelpers.DecodeBody(t, rr, &body)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "great", body.Reviews[0].ReviewText)
}

func TestReview_ReviewsByVehicleIDHandlerNone(t *testing.T) {
	db := &mocks.ReviewDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return([]models.Review{}, nil)

	rv := handlers.Review{DB: db}
	rr := httptest.NewRecorder()
	http.HandlerFunc(rv.ReviewsByVehicleIDHandler).ServeHTTP(rr, testhelpers.JSONRequest(t, "GET", "/", nil, map[string]string{"vehicleId": primitive.NewObjectID().Hex()}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"No reviews found for this vehicle"}`, rr.Body.String())
}
