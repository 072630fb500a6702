package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Ingest     IngestConfig
	Dialogue   DialogueConfig
	WorkerPool WorkerPoolConfig
	Notifier   NotifierConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	TrustedProxies     []string
	CorsAllowedOrigins []string
	StoragePath        string
	ServerID           string
}

type DatabaseConfig struct {
	Driver          string // sqlite | postgres | mongo
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres and Mongo
	MongoURI        string
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type IngestConfig struct {
	RateLimitMax    int
	RateLimitWindow time.Duration
	DedupWindow     time.Duration
	DedupRetention  time.Duration
	MaxBodyLength   int
	ValidatePhone   bool
}

type DialogueConfig struct {
	SiteWindow      time.Duration
	SiteLimit       int
	ReferenceWindow time.Duration
	DefaultLanguage string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// NotifierConfig enables the outbound SMS reply through Twilio when all fields are set.
type NotifierConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// Enabled reports whether the SMS reply notifier has credentials.
func (n NotifierConfig) Enabled() bool {
	return n.TwilioAccountSID != "" && n.TwilioAuthToken != "" && n.TwilioFromNumber != ""
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	debug := getEnvBool("APP_DEBUG", false) || getEnvBool("DEBUG", false)

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = splitList(v)
	}

	corsOrigins := []string{"*"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = splitList(v)
	}

	storage := getEnv("APP_STORAGE_PATH", "storages")

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		CorsAllowedOrigins: corsOrigins,
		StoragePath:        storage,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = splitList(v)
	}

	dbDriver := getEnv("DB_DRIVER", "sqlite")
	dbName := getEnv("DB_NAME", "")
	if dbName == "" {
		switch dbDriver {
		case "sqlite", "":
			dbName = filepath.Join(storage, "smsgate.db")
		default:
			dbName = "shipliyo_sms"
		}
	}

	dbCfg := DatabaseConfig{
		Driver:          dbDriver,
		Name:            dbName,
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017/"),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "smsgate:"),
	}

	ingestCfg := IngestConfig{
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		DedupWindow:     getEnvDuration("DEDUP_WINDOW", 5*time.Second),
		DedupRetention:  getEnvDuration("DEDUP_RETENTION", 60*time.Second),
		MaxBodyLength:   getEnvInt("SMS_MAX_BODY_LENGTH", 1000),
		ValidatePhone:   getEnvBool("SMS_VALIDATE_PHONE", true),
	}

	dialogueCfg := DialogueConfig{
		SiteWindow:      getEnvDuration("DIALOGUE_SITE_WINDOW", 120*time.Second),
		SiteLimit:       getEnvInt("DIALOGUE_SITE_LIMIT", 10),
		ReferenceWindow: getEnvDuration("DIALOGUE_REFERENCE_WINDOW", 2*time.Hour),
		DefaultLanguage: getEnv("DIALOGUE_DEFAULT_LANGUAGE", "tr"),
	}

	cfg := &Config{
		App:        appCfg,
		Database:   dbCfg,
		Ingest:     ingestCfg,
		Dialogue:   dialogueCfg,
		WorkerPool: WorkerPoolConfig{Size: getEnvInt("DISPATCH_WORKER_POOL_SIZE", 8), QueueSize: getEnvInt("DISPATCH_WORKER_QUEUE_SIZE", 500)},
		Notifier: NotifierConfig{
			TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Global = cfg
	return cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
