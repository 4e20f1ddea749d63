package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDriver = "mongo"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDatabase  = "storefront"
	defaultJWTSecret      = "change-me-in-production"
	defaultJWTTTLHours    = 720
	defaultAppPort        = "8080"
	defaultAppEnv         = "local"
	defaultCurrency       = "usd"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, then .env, then the process environment over
// the built-in defaults. Later sources win.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "mongo", "memory":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

// RedisAddr is empty unless Redis is configured; callers fall back to
// process memory.
func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", "")
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func defaultValues() map[string]string {
	return map[string]string{
		"DB_DRIVER":        defaultDatabaseDriver,
		"MONGO_URI":        defaultMongoURI,
		"MONGO_DATABASE":   defaultMongoDatabase,
		"REDIS_ADDR":       "",
		"REDIS_PASSWORD":   "",
		"JWT_SECRET":       defaultJWTSecret,
		"JWT_TTL_HOURS":    strconv.Itoa(defaultJWTTTLHours),
		"APP_PORT":         defaultAppPort,
		"APP_ENV":          defaultAppEnv,
		"PAYMENT_CURRENCY": defaultCurrency,
	}
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// TokenTTL is the validity window of a session token (30 days by default).
func TokenTTL() time.Duration {
	_ = Load()
	hours, err := strconv.Atoi(get("JWT_TTL_HOURS", ""))
	if err != nil || hours <= 0 {
		hours = defaultJWTTTLHours
	}
	return time.Duration(hours) * time.Hour
}

// CookieSecret signs the session cookie. Falls back to JWT_SECRET.
func CookieSecret() string {
	_ = Load()
	return get("COOKIE_SECRET", JWTSecret())
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// IsLocal reports whether the app runs in a development-like environment,
// where cookies are not marked Secure.
func IsLocal() bool {
	switch strings.ToLower(AppEnv()) {
	case "local", "dev", "development", "test", "testing":
		return true
	}
	return false
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "public")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Payment ──────────────────────────────────────────────────────────────────

func PaymentURL() string      { _ = Load(); return get("PAYMENT_URL", "") }
func PaymentKey() string      { _ = Load(); return get("PAYMENT_KEY", "") }
func PaymentCurrency() string { _ = Load(); return get("PAYMENT_CURRENCY", defaultCurrency) }

func LogMongoURI() string { _ = Load(); return get("LOG_MONGO_URI", "") }

// RatingsReconcileInterval is how often every product rating is recomputed
// from its reviews. Zero disables the job.
func RatingsReconcileInterval() time.Duration {
	_ = Load()
	minutes, err := strconv.Atoi(get("RATINGS_RECONCILE_MINUTES", "60"))
	if err != nil || minutes < 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return statErr
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
