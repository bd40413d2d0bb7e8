package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/models"
	"github.com/pranaou2005/Wheelhub-backend/storage"
	templates "github.com/pranaou2005/Wheelhub-backend/templates/html"
)

// bcryptCost is the work factor used for password hashes
const bcryptCost = 10

// maxFavoriteAttempts bounds the compare-and-set retries of a favorites toggle
const maxFavoriteAttempts = 3

// User exported for testing purposes
type User struct {
	DB         databases.UserDatabase
	VDB        databases.VehicleDatabase
	Tokens     *api.TokenService
	Store      storage.Store
	Mailer     Mailer
	AdminEmail string
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Role models.Role        `json:"role"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

type profileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
	Bio   string `json:"bio"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type favoritesToggleResponse struct {
	Message   string               `json:"message"`
	Favorites []primitive.ObjectID `json:"favorites"`
	Count     int                  `json:"count"`
}

type favoritesResponse struct {
	Count     int              `json:"count"`
	Favorites []models.Vehicle `json:"favorites"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterHandler creates a seller or buyer account
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		config.ErrorStatus("Invalid role. Choose 'seller' or 'buyer'.", http.StatusBadRequest, w, nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("All fields are required", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// check if the user already exists
	_, err := u.DB.FindOne(ctx, bson.M{"email": req.Email})
	if err == nil {
		config.ErrorStatus("User already exists", http.StatusBadRequest, w, nil)
		return
	}
	if !errors.Is(err, databases.ErrNotFound) {
		serverError(w, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		serverError(w, err)
		return
	}

	now := time.Now()
	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashedPassword),
		Role:      role,
		Favorites: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err = u.DB.InsertOne(ctx, user); err != nil {
		if errors.Is(err, databases.ErrDuplicateKey) {
			config.ErrorStatus("User already exists", http.StatusBadRequest, w, nil)
			return
		}
		serverError(w, err)
		return
	}

	zap.S().Infow("user registered", "email", user.Email, "role", user.Role)
	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "User registered successfully"})
}

// LoginHandler exchanges an email and password for a token. Unknown e-mails and wrong
// passwords produce the same response.
func (u User) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("Invalid Credentials", http.StatusBadRequest, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("Invalid Credentials", http.StatusBadRequest, w, nil)
		return
	}

	token, err := u.Tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    loginUser{ID: user.ID, Name: user.Name, Role: user.Role},
	})
}

// UpdateProfileHandler overwrites the non-empty profile fields of the caller
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("Invalid email", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		set["phone"] = phone
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.Bio != "" {
		set["bio"] = req.Bio
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOneAndUpdate(ctx, bson.M{"_id": uid}, bson.M{"$set": set})
	switch {
	case errors.Is(err, databases.ErrNotFound):
		config.ErrorStatus("User not found", http.StatusNotFound, w, nil)
		return
	case errors.Is(err, databases.ErrDuplicateKey):
		config.ErrorStatus("User already exists", http.StatusBadRequest, w, nil)
		return
	case err != nil:
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "Profile updated successfully", User: user})
}

// favoritesFilter matches a favorites array that still equals prev
func favoritesFilter(prev []primitive.ObjectID) interface{} {
	if len(prev) == 0 {
		return bson.M{"$in": bson.A{nil, bson.A{}}}
	}
	return prev
}

// ToggleFavoriteHandler adds the vehicle to the caller's favorites, or removes it when
// already present. The write only applies if the list did not change since it was read.
func (u User) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicleChecked := false
	for attempt := 0; attempt < maxFavoriteAttempts; attempt++ {
		user, err := u.DB.FindOne(ctx, bson.M{"_id": uid})
		if errors.Is(err, databases.ErrNotFound) {
			config.ErrorStatus("User not found", http.StatusNotFound, w, nil)
			return
		}
		if err != nil {
			serverError(w, err)
			return
		}

		favorites, added := models.ToggleFavorite(user.Favorites, vehicleID)
		if added && !vehicleChecked {
			_, err = u.VDB.FindOne(ctx, bson.M{"_id": vehicleID})
			if errors.Is(err, databases.ErrNotFound) {
				config.ErrorStatus("Vehicle not found", http.StatusNotFound, w, nil)
				return
			}
			if err != nil {
				serverError(w, err)
				return
			}
			vehicleChecked = true
		}

		matched, err := u.DB.UpdateOne(ctx,
			bson.M{"_id": uid, "favorites": favoritesFilter(user.Favorites)},
			bson.M{"$set": bson.M{"favorites": favorites, "updatedAt": time.Now()}},
		)
		if err != nil {
			serverError(w, err)
			return
		}
		if matched == 0 {
			zap.S().Debugw("favorites changed concurrently, retrying", "userId", uid.Hex(), "attempt", attempt)
			continue
		}

		message := "Vehicle removed from favorites"
		if added {
			message = "Vehicle added to favorites"
		}
		writeJSON(w, http.StatusOK, favoritesToggleResponse{
			Message:   message,
			Favorites: favorites,
			Count:     len(favorites),
		})
		return
	}

	config.ErrorStatus("Favorites changed concurrently, please retry", http.StatusConflict, w, nil)
}

// FavoritesHandler returns the caller's favorite vehicles in the order they were added
func (u User) FavoritesHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": uid})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("User not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	favorites := []models.Vehicle{}
	if len(user.Favorites) > 0 {
		vehicles, err := u.VDB.Find(ctx, bson.M{"_id": bson.M{"$in": user.Favorites}})
		if err != nil {
			serverError(w, err)
			return
		}
		byID := make(map[primitive.ObjectID]models.Vehicle, len(vehicles))
		for _, v := range vehicles {
			byID[v.ID] = v
		}
		for _, id := range user.Favorites {
			if v, found := byID[id]; found {
				favorites = append(favorites, v)
			}
		}
	}

	writeJSON(w, http.StatusOK, favoritesResponse{Count: len(favorites), Favorites: favorites})
}

// UploadIDHandler stores a government id document for admin verification
func (u User) UploadIDHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": uid})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("User not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	idType, ok := models.ParseIDType(r.FormValue("idType"))
	if !ok {
		config.ErrorStatus("Invalid ID type", http.StatusBadRequest, w, nil)
		return
	}
	_, fh, err := r.FormFile("governmentId")
	if err != nil {
		config.ErrorStatus("Government ID file is required", http.StatusBadRequest, w, err)
		return
	}

	ref, err := u.Store.Save(ctx, storage.FolderGovernmentIDs, fh)
	if err != nil {
		serverError(w, err)
		return
	}

	updated, err := u.DB.FindOneAndUpdate(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"governmentId": ref,
		"idType":       idType,
		"updatedAt":    time.Now(),
	}})
	if err != nil {
		if rmErr := u.Store.Remove(ctx, ref); rmErr != nil {
			zap.S().Warnw("failed to remove orphaned upload", "ref", ref, "error", rmErr)
		}
		serverError(w, err)
		return
	}

	u.requestVerification(updated)
	writeJSON(w, http.StatusOK, userResponse{Message: "ID uploaded successfully", User: updated})
}

// requestVerification notifies the admin mailbox. Failures are only logged.
func (u User) requestVerification(user *models.User) {
	if u.Mailer == nil || u.AdminEmail == "" {
		return
	}
	subject, plain, htmlContent := templates.RenderVerificationRequest(templates.VerificationRequest{
		UserID:      user.ID.Hex(),
		Name:        user.Name,
		Email:       user.Email,
		IDType:      string(user.IDType),
		DocumentURL: user.GovernmentID,
	})
	if err := u.Mailer.Send("Wheelhub admin", u.AdminEmail, subject, plain, htmlContent); err != nil {
		zap.S().Errorw("failed to send verification request", "userId", user.ID.Hex(), "error", err)
	}
}
