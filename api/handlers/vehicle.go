package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/models"
	"github.com/pranaou2005/Wheelhub-backend/storage"
)

// Vehicle exported for testing purposes
type Vehicle struct {
	DB    databases.VehicleDatabase
	Store storage.Store
}

type vehiclesResponse struct {
	Count    int              `json:"count"`
	Vehicles []models.Vehicle `json:"vehicles"`
}

type vehicleResponse struct {
	Message string          `json:"message"`
	Vehicle *models.Vehicle `json:"vehicle"`
}

// requiredVehicleFields must be present on the create form
var requiredVehicleFields = []string{
	"title", "brand", "model", "year", "fuelType", "kilometersDriven", "numberOfOwners", "price",
}

// VehiclesHandler returns every listing, newest first
func (v Vehicle) VehiclesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicles, err := v.DB.Find(ctx, bson.M{})
	if err != nil {
		serverError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehiclesResponse{Count: len(vehicles), Vehicles: vehicles})
}

// VehicleByIDHandler returns a vehicle given its id
func (v Vehicle) VehicleByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicle, err := v.DB.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("Vehicle not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// vehicleFromForm reads the listing fields of a multipart create request
func vehicleFromForm(form *multipart.Form) (*models.Vehicle, error) {
	value := func(key string) string {
		if vals := form.Value[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}
	for _, key := range requiredVehicleFields {
		if value(key) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	vehicle := &models.Vehicle{
		Title:            value("title"),
		Brand:            value("brand"),
		Model:            value("model"),
		Variant:          value("variant"),
		FuelType:         models.FuelType(value("fuelType")),
		ReasonForSelling: value("reasonForSelling"),
	}

	var err error
	if vehicle.Year, err = strconv.Atoi(value("year")); err != nil {
		return nil, fmt.Errorf("year must be a whole number")
	}
	if vehicle.NumberOfOwners, err = strconv.Atoi(value("numberOfOwners")); err != nil {
		return nil, fmt.Errorf("numberOfOwners must be a whole number")
	}
	if vehicle.KilometersDriven, err = strconv.ParseFloat(value("kilometersDriven"), 64); err != nil {
		return nil, fmt.Errorf("kilometersDriven must be a number")
	}
	if vehicle.Price, err = strconv.ParseFloat(value("price"), 64); err != nil {
		return nil, fmt.Errorf("price must be a number")
	}
	if m := value("mileage"); m != "" {
		if vehicle.Mileage, err = strconv.ParseFloat(m, 64); err != nil {
			return nil, fmt.Errorf("mileage must be a number")
		}
	}
	if err = validate.Struct(vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// CreateVehicleHandler posts a new listing owned by the calling seller
func (v Vehicle) CreateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > models.MaxVehicleImages {
		config.ErrorStatus(fmt.Sprintf("A maximum of %d images is allowed", models.MaxVehicleImages), http.StatusBadRequest, w, nil)
		return
	}

	vehicle, err := vehicleFromForm(r.MultipartForm)
	if err != nil {
		config.ErrorStatus("Invalid vehicle details", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicle.Images = make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := v.Store.Save(ctx, storage.FolderVehicles, fh)
		if err != nil {
			v.removeImages(ctx, vehicle.Images)
			serverError(w, err)
			return
		}
		vehicle.Images = append(vehicle.Images, ref)
	}
	vehicle.SellerID = uid
	vehicle.CreatedAt = time.Now()

	id, err := v.DB.InsertOne(ctx, vehicle)
	if err != nil {
		v.removeImages(ctx, vehicle.Images)
		serverError(w, err)
		return
	}
	vehicle.ID = id

	writeJSON(w, http.StatusCreated, vehicleResponse{Message: "Vehicle posted successfully", Vehicle: vehicle})
}

// loadOwned loads the vehicle named by the path and checks the caller owns it. It writes the
// error response itself and reports whether the caller may go on.
func (v Vehicle) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request, action string) (*models.Vehicle, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	_, uid, ok := caller(w, r)
	if !ok {
		return nil, false
	}

	vehicle, err := v.DB.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("Vehicle not found", http.StatusNotFound, w, nil)
		return nil, false
	}
	if err != nil {
		serverError(w, err)
		return nil, false
	}
	if vehicle.SellerID != uid {
		config.ErrorStatus("Unauthorized: You can only "+action+" your own vehicle", http.StatusForbidden, w, nil)
		return nil, false
	}
	return vehicle, true
}

// UpdateVehicleHandler changes the provided fields of a listing owned by the caller
func (v Vehicle) UpdateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicle, ok := v.loadOwned(ctx, w, r, "update")
	if !ok {
		return
	}

	var update models.VehicleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(update); err != nil {
		config.ErrorStatus("Invalid vehicle details", http.StatusBadRequest, w, err)
		return
	}

	set := update.SetFields()
	if len(set) > 0 {
		updated, err := v.DB.FindOneAndUpdate(ctx,
			bson.M{"_id": vehicle.ID, "sellerId": vehicle.SellerID},
			bson.M{"$set": set},
		)
		if errors.Is(err, databases.ErrNotFound) {
			config.ErrorStatus("Vehicle not found", http.StatusNotFound, w, nil)
			return
		}
		if err != nil {
			serverError(w, err)
			return
		}
		vehicle = updated
	}

	writeJSON(w, http.StatusOK, vehicleResponse{Message: "Vehicle updated successfully", Vehicle: vehicle})
}

// DeleteVehicleHandler removes a listing owned by the caller along with its images
func (v Vehicle) DeleteVehicleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicle, ok := v.loadOwned(ctx, w, r, "delete")
	if !ok {
		return
	}

	deleted, err := v.DB.DeleteOne(ctx, bson.M{"_id": vehicle.ID, "sellerId": vehicle.SellerID})
	if err != nil {
		serverError(w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("Vehicle not found", http.StatusNotFound, w, nil)
		return
	}
	v.removeImages(ctx, vehicle.Images)

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Vehicle deleted successfully"})
}

func (v Vehicle) removeImages(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := v.Store.Remove(ctx, ref); err != nil {
			zap.S().Warnw("failed to remove vehicle image", "ref", ref, "error", err)
		}
	}
}
