package handlers

import (
	"errors"
	"net/http"
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

// RC exported for testing purposes
type RC struct {
	DB    databases.RCDatabase
	Store storage.Store
}

type rcResponse struct {
	Message string     `json:"message"`
	RC      *models.RC `json:"rc"`
}

// UploadRCHandler stores a registration certificate for the caller
func (rc RC) UploadRCHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	regNumber := strings.TrimSpace(r.FormValue("regNumber"))
	if regNumber == "" {
		config.ErrorStatus("Registration number is required", http.StatusBadRequest, w, nil)
		return
	}
	_, fh, err := r.FormFile("rcBook")
	if err != nil {
		config.ErrorStatus("RC book file is required", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = rc.DB.FindOne(ctx, bson.M{"regNumber": regNumber})
	if err == nil {
		config.ErrorStatus("RC Number already exists", http.StatusBadRequest, w, nil)
		return
	}
	if !errors.Is(err, databases.ErrNotFound) {
		serverError(w, err)
		return
	}

	ref, err := rc.Store.Save(ctx, storage.FolderRCBooks, fh)
	if err != nil {
		serverError(w, err)
		return
	}

	doc := &models.RC{
		UserID:     uid,
		RegNumber:  regNumber,
		RCBookPath: ref,
		UploadedAt: time.Now(),
	}
	id, err := rc.DB.InsertOne(ctx, doc)
	if err != nil {
		if rmErr := rc.Store.Remove(ctx, ref); rmErr != nil {
			zap.S().Warnw("failed to remove orphaned upload", "ref", ref, "error", rmErr)
		}
		if errors.Is(err, databases.ErrDuplicateKey) {
			config.ErrorStatus("RC Number already exists", http.StatusBadRequest, w, nil)
			return
		}
		serverError(w, err)
		return
	}
	doc.ID = id

	writeJSON(w, http.StatusCreated, rcResponse{Message: "RC Book uploaded successfully", RC: doc})
}

// MyRCHandler returns the caller's most recently uploaded registration certificate
func (rc RC) MyRCHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := rc.DB.FindOne(ctx, bson.M{"userId": uid})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("No RC book found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
