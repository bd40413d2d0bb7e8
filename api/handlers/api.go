package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/models"
	"github.com/pranaou2005/Wheelhub-backend/storage"
)

// authWindow is the fixed window used to rate limit register and login
const authWindow = time.Minute

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Store    storage.Store
	Mailer   Mailer
	Hub      *ChatHub
	Limiter  api.Counter
	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.Hub == nil {
		a.Hub = NewChatHub()
	}
	if a.Store == nil {
		a.Store = storage.NewDisk(a.Config.UploadDir)
	}

	tokens := api.NewTokenService(a.Config.JWTSecret, a.Config.TokenTTL)
	gate := api.NewAuthGate(tokens)
	buyer := api.RequireRole(models.RoleBuyer)
	seller := api.RequireRole(models.RoleSeller)
	proxies := api.ParseTrustedProxies(a.Config.TrustedProxies)
	authLimit := func(prefix string) func(http.Handler) http.Handler {
		return api.RateLimit(a.Limiter, proxies, prefix, a.Config.AuthRateLimit, authWindow)
	}

	u := User{
		DB:         databases.NewUserDatabase(a.dbHelper),
		VDB:        databases.NewVehicleDatabase(a.dbHelper),
		Tokens:     tokens,
		Store:      a.Store,
		Mailer:     a.Mailer,
		AdminEmail: a.Config.AdminEmail,
	}
	v := Vehicle{DB: databases.NewVehicleDatabase(a.dbHelper), Store: a.Store}
	c := Chat{DB: databases.NewChatDatabase(a.dbHelper), UDB: databases.NewUserDatabase(a.dbHelper), Hub: a.Hub}
	rc := RC{DB: databases.NewRCDatabase(a.dbHelper), Store: a.Store}
	rv := Review{
		DB:  databases.NewReviewDatabase(a.dbHelper),
		UDB: databases.NewUserDatabase(a.dbHelper),
		VDB: databases.NewVehicleDatabase(a.dbHelper),
	}

	r := mux.NewRouter()
	r.Use(api.RequestLogger)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	r.PathPrefix(storage.PublicPrefix).Handler(
		http.StripPrefix(storage.PublicPrefix, storage.FileServer(a.Config.UploadDir))).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/test", testHandler).Methods("GET")

	apiRouter.Handle("/auth/register", authLimit("register")(http.HandlerFunc(u.RegisterHandler))).Methods("POST")
	apiRouter.Handle("/auth/login", authLimit("login")(http.HandlerFunc(u.LoginHandler))).Methods("POST")
	apiRouter.Handle("/auth/profile", gate.Middleware(http.HandlerFunc(u.UpdateProfileHandler))).Methods("PUT")
	apiRouter.Handle("/auth/favorites/{vehicleId}", gate.Middleware(buyer(http.HandlerFunc(u.ToggleFavoriteHandler)))).Methods("POST")
	apiRouter.Handle("/auth/favorites", gate.Middleware(buyer(http.HandlerFunc(u.FavoritesHandler)))).Methods("GET")
	apiRouter.Handle("/auth/upload-id", gate.Middleware(http.HandlerFunc(u.UploadIDHandler))).Methods("POST")

	apiRouter.HandleFunc("/vehicles", v.VehiclesHandler).Methods("GET")
	apiRouter.Handle("/vehicles/add", gate.Middleware(seller(http.HandlerFunc(v.CreateVehicleHandler)))).Methods("POST")
	apiRouter.HandleFunc("/vehicles/{id}", v.VehicleByIDHandler).Methods("GET")
	apiRouter.Handle("/vehicles/{id}", gate.Middleware(seller(http.HandlerFunc(v.UpdateVehicleHandler)))).Methods("PUT")
	apiRouter.Handle("/vehicles/{id}", gate.Middleware(seller(http.HandlerFunc(v.DeleteVehicleHandler)))).Methods("DELETE")

	apiRouter.Handle("/chats/start", gate.Middleware(http.HandlerFunc(c.StartChatHandler))).Methods("POST")
	apiRouter.Handle("/chats/send/{chatId}", gate.Middleware(http.HandlerFunc(c.SendMessageHandler))).Methods("POST")
	apiRouter.Handle("/chats/important/{chatId}/{messageId}", gate.Middleware(http.HandlerFunc(c.MarkImportantHandler))).Methods("PUT")
	apiRouter.Handle("/chats", gate.Middleware(http.HandlerFunc(c.ChatsHandler))).Methods("GET")
	apiRouter.Handle("/chats/{chatId}/ws", api.TokenFromQuery(gate.Middleware(http.HandlerFunc(c.ChatSocketHandler)))).Methods("GET")
	apiRouter.Handle("/chats/{chatId}", gate.Middleware(http.HandlerFunc(c.ChatByIDHandler))).Methods("GET")
	apiRouter.Handle("/chats/{chatId}", gate.Middleware(http.HandlerFunc(c.DeleteChatHandler))).Methods("DELETE")

	apiRouter.Handle("/rc/upload", gate.Middleware(http.HandlerFunc(rc.UploadRCHandler))).Methods("POST")
	apiRouter.Handle("/rc/my-rc", gate.Middleware(http.HandlerFunc(rc.MyRCHandler))).Methods("GET")

	apiRouter.Handle("/reviews/add", gate.Middleware(buyer(http.HandlerFunc(rv.CreateReviewHandler)))).Methods("POST")
	apiRouter.HandleFunc("/reviews/{vehicleId}", rv.ReviewsByVehicleIDHandler).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	if a.Config.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	if err = client.Ping(ctx); err != nil {
		zap.S().With(err).Error("failed to ping database")
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	zap.S().Info("wheelhub-backend has connected to the database")

	if err = databases.EnsureIndexes(ctx, a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to create indexes")
		return err
	}

	if a.Store, err = storage.New(ctx, &a.Config); err != nil {
		zap.S().With(err).Error("failed to set up upload storage")
		return err
	}
	zap.S().Infow("upload storage ready", "driver", a.Config.StorageDriver)

	if a.Config.SendGridAPIKey != "" && a.Config.AdminEmail != "" {
		a.Mailer = SendGridMailer{APIKey: a.Config.SendGridAPIKey, From: a.Config.MailFrom}
	} else {
		zap.S().Info("sendgrid not configured, verification e-mails disabled")
	}

	if counter := api.NewRedisCounter(a.Config.RedisURL); counter != nil {
		a.Limiter = counter
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Database returns the database the app is connected to
func (a *App) Database() databases.DatabaseHelper {
	return a.dbHelper
}

// Close disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{
		Alive: true,
	})
}

func testHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Server is working!"})
}
