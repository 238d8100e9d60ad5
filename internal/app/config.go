package app

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/nexovate-backend/internal/data/db"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

const (
	TextEngineSubprocess = "subprocess"
	TextEngineGenAI      = "genai"

	LockMemory = "memory"
	LockRedis  = "redis"
)

type Config struct {
	HTTPAddr       string
	ServiceName    string
	Environment    string
	AllowedOrigins []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB db.Config

	GeneratorInterpreter string
	GeneratorScript      string
	GeneratorWorkDir     string
	GeneratorTimeout     time.Duration
	TextEngine           string
	GeminiAPIKey         string
	GeminiModel          string

	DraftCache     string
	DraftCacheSize int
	DraftCacheTTL  time.Duration

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	UserLock    string
	UserLockTTL time.Duration

	ArtifactStorageMode string
	UploadsDir          string
	ArtifactBucket      string
	ArtifactPrefix      string
	StorageEmulatorHost string

	ReconcileInterval   time.Duration
	ReconcileStaleAfter time.Duration

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	SeedCatalog bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SERVICE_NAME", "nexovate-backend")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("JWT_SECRET_KEY", "defaultsecret")
	v.SetDefault("ACCESS_TOKEN_TTL", "24h")

	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_NAME", "nexovate")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "nexovate.db")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_HEALTH_INTERVAL", "5m")

	v.SetDefault("GENERATOR_INTERPRETER", "python3")
	v.SetDefault("GENERATOR_SCRIPT", "generator/generate_doc.py")
	v.SetDefault("GENERATOR_WORK_DIR", "")
	v.SetDefault("GENERATOR_TIMEOUT", "3m")
	v.SetDefault("GENERATOR_TEXT_ENGINE", TextEngineSubprocess)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")

	v.SetDefault("DRAFT_CACHE", "db")
	v.SetDefault("DRAFT_CACHE_SIZE", 1024)
	v.SetDefault("DRAFT_CACHE_TTL", "24h")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "nexovate")

	v.SetDefault("USER_LOCK", LockMemory)
	v.SetDefault("USER_LOCK_TTL", "30s")

	v.SetDefault("ARTIFACT_STORAGE_MODE", "")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("ARTIFACT_BUCKET", "")
	v.SetDefault("ARTIFACT_PREFIX", "documents")
	v.SetDefault("STORAGE_EMULATOR_HOST", "")

	v.SetDefault("RECONCILE_INTERVAL", "15m")
	v.SetDefault("RECONCILE_STALE_AFTER", "24h")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("SENDGRID_FROM_EMAIL", "")
	v.SetDefault("SENDGRID_FROM_NAME", "Nexovate")

	v.SetDefault("SEED_CATALOG", true)
}

// LoadConfig resolves defaults, then the optional config file, then the environment.
// An empty configFile looks for ./config.yaml and tolerates its absence.
func LoadConfig(log *logger.Logger, configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, err
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Info("Loaded config file", "path", used)
	}

	cfg := Config{
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		ServiceName:    v.GetString("SERVICE_NAME"),
		Environment:    v.GetString("APP_ENV"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		JWTSecretKey:   v.GetString("JWT_SECRET_KEY"),
		AccessTokenTTL: durationOrSeconds(v, "ACCESS_TOKEN_TTL"),

		DB: db.Config{
			Driver:           v.GetString("DB_DRIVER"),
			PostgresHost:     v.GetString("POSTGRES_HOST"),
			PostgresPort:     v.GetString("POSTGRES_PORT"),
			PostgresUser:     v.GetString("POSTGRES_USER"),
			PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
			PostgresName:     v.GetString("POSTGRES_NAME"),
			PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),
			SQLitePath:       v.GetString("SQLITE_PATH"),
			ConnectTimeout:   durationOrSeconds(v, "DB_CONNECT_TIMEOUT"),
			Retries:          v.GetInt("DB_CONNECT_RETRIES"),
			HealthInterval:   durationOrSeconds(v, "DB_HEALTH_INTERVAL"),
		},

		GeneratorInterpreter: v.GetString("GENERATOR_INTERPRETER"),
		GeneratorScript:      v.GetString("GENERATOR_SCRIPT"),
		GeneratorWorkDir:     v.GetString("GENERATOR_WORK_DIR"),
		GeneratorTimeout:     durationOrSeconds(v, "GENERATOR_TIMEOUT"),
		TextEngine:           strings.ToLower(v.GetString("GENERATOR_TEXT_ENGINE")),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),

		DraftCache:     strings.ToLower(v.GetString("DRAFT_CACHE")),
		DraftCacheSize: v.GetInt("DRAFT_CACHE_SIZE"),
		DraftCacheTTL:  durationOrSeconds(v, "DRAFT_CACHE_TTL"),

		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		RedisKeyPrefix: v.GetString("REDIS_KEY_PREFIX"),

		UserLock:    strings.ToLower(v.GetString("USER_LOCK")),
		UserLockTTL: durationOrSeconds(v, "USER_LOCK_TTL"),

		ArtifactStorageMode: v.GetString("ARTIFACT_STORAGE_MODE"),
		UploadsDir:          v.GetString("UPLOADS_DIR"),
		ArtifactBucket:      v.GetString("ARTIFACT_BUCKET"),
		ArtifactPrefix:      v.GetString("ARTIFACT_PREFIX"),
		StorageEmulatorHost: v.GetString("STORAGE_EMULATOR_HOST"),

		ReconcileInterval:   durationOrSeconds(v, "RECONCILE_INTERVAL"),
		ReconcileStaleAfter: durationOrSeconds(v, "RECONCILE_STALE_AFTER"),

		SendGridAPIKey:    v.GetString("SENDGRID_API_KEY"),
		SendGridFromEmail: v.GetString("SENDGRID_FROM_EMAIL"),
		SendGridFromName:  v.GetString("SENDGRID_FROM_NAME"),

		SeedCatalog: v.GetBool("SEED_CATALOG"),
	}

	log.Debug("Resolved config",
		"http_addr", cfg.HTTPAddr,
		"db_driver", cfg.DB.Driver,
		"jwt_secret", mask(cfg.JWTSecretKey),
		"access_token_ttl", cfg.AccessTokenTTL,
		"generator_script", cfg.GeneratorScript,
		"generator_timeout", cfg.GeneratorTimeout,
		"text_engine", cfg.TextEngine,
		"gemini_api_key", mask(cfg.GeminiAPIKey),
		"draft_cache", cfg.DraftCache,
		"user_lock", cfg.UserLock,
		"redis_addr", cfg.RedisAddr,
		"artifact_storage_mode", cfg.ArtifactStorageMode,
		"uploads_dir", cfg.UploadsDir,
		"artifact_bucket", cfg.ArtifactBucket,
		"reconcile_interval", cfg.ReconcileInterval,
		"sendgrid_api_key", mask(cfg.SendGridAPIKey),
		"seed_catalog", cfg.SeedCatalog,
	)
	return cfg, nil
}

// durationOrSeconds accepts "90s" style strings or bare integers as seconds.
func durationOrSeconds(v *viper.Viper, key string) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs := v.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
