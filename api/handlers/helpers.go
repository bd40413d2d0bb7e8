package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/config"
)

// maxUploadSize caps multipart request bodies
const maxUploadSize = 50 << 20

var validate = validator.New()

// writeJSON marshals v and writes it with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func serverError(w http.ResponseWriter, err error) {
	config.ErrorStatus("Server error", http.StatusInternalServerError, w, err)
}

// pathID parses the named path variable as an ObjectID, writing a 400 when it is not one
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		config.ErrorStatus("invalid id", http.StatusBadRequest, w, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// caller returns the authenticated identity and its id, writing a 401 when there is none
func caller(w http.ResponseWriter, r *http.Request) (api.Identity, primitive.ObjectID, bool) {
	id, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("Invalid or missing token", http.StatusUnauthorized, w, nil)
		return api.Identity{}, primitive.NilObjectID, false
	}
	oid, err := id.ObjectID()
	if err != nil {
		config.ErrorStatus("Invalid or missing token", http.StatusUnauthorized, w, nil)
		return api.Identity{}, primitive.NilObjectID, false
	}
	return id, oid, true
}

// parseMultipart limits and parses a multipart body, writing a 400 on failure
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return false
	}
	return true
}
