package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

// Config holds the project config values
type Config struct {
	URL             string
	DatabaseName    string
	BaseURL         string
	Port            string
	Env             string
	JWTSecret       string
	TokenTTL        time.Duration
	UploadDir       string
	StorageDriver   string
	AWSRegion       string
	AWSBucket       string
	CloudinaryURL   string
	SendGridAPIKey  string
	MailFrom        string
	AdminEmail      string
	RedisURL        string
	AuthRateLimit   int
	JanitorSchedule string
	TrustedProxies  []string
}

// New sets up all config related services
func New() *Config {
	if err := godotenv.Load(); err != nil {
		// a missing .env is fine, the process environment still applies
		zap.S().Debugw("no .env file loaded", "error", err)
	}

	env := os.Getenv("APP_ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	url := os.Getenv("MONGO_URI")
	if url == "" {
		url = os.Getenv("DB_URI")
	}

	return &Config{
		URL:             url,
		DatabaseName:    getEnv("DB_NAME", "wheelhub"),
		BaseURL:         os.Getenv("BASE_URL"),
		Port:            getEnv("PORT", "4000"),
		Env:             env,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getDuration("TOKEN_TTL", time.Hour),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		StorageDriver:   getEnv("STORAGE_DRIVER", "disk"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		AWSBucket:       os.Getenv("AWS_BUCKET"),
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFrom:        getEnv("MAIL_FROM", "no-reply@wheelhub.app"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AuthRateLimit:   getInt("AUTH_RATE_LIMIT", 20),
		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "@hourly"),
		TrustedProxies:  getList("TRUSTED_PROXIES"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err. The error detail is only included when err is set.
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	resp := models.ErrorMessageResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
		zap.S().With(err).Error(message)
	} else {
		zap.S().Debugw(message, "status", httpStatusCode)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(resp)
	w.Write(b)
}
