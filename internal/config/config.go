package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port           string   `mapstructure:"port"`
		Env            string   `mapstructure:"env"`
		PublicURL      string   `mapstructure:"public_url"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"app"`
	DB struct {
		DSN        string `mapstructure:"dsn"`
		Migrations string `mapstructure:"migrations"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Storage struct {
		Provider string `mapstructure:"provider"`
	} `mapstructure:"storage"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
		Folder    string `mapstructure:"folder"`
	} `mapstructure:"cloudinary"`
	MinIO struct {
		Endpoint        string `mapstructure:"endpoint"`
		PublicEndpoint  string `mapstructure:"public_endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		Bucket          string `mapstructure:"bucket"`
		Region          string `mapstructure:"region"`
		UseSSL          bool   `mapstructure:"use_ssl"`
	} `mapstructure:"minio"`
	Contact struct {
		RelayURL   string        `mapstructure:"relay_url"`
		RateLimit  int           `mapstructure:"rate_limit"`
		RateWindow time.Duration `mapstructure:"rate_window"`
	} `mapstructure:"contact"`
	Content struct {
		FallbackEnabled bool          `mapstructure:"fallback_enabled"`
		ResyncInterval  time.Duration `mapstructure:"resync_interval"`
	} `mapstructure:"content"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	Backup struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"backup"`
}

const (
	StorageCloudinary = "cloudinary"
	StorageMinIO      = "minio"
)

// LoadConfig reads .env, then config.yaml from each path (default "."), then
// the environment. Later sources win.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, strings.TrimSuffix(p, "/")+"/.env")
	}
	if err = godotenv.Load(envFiles...); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.public_url", "APP_PUBLIC_URL")
	v.BindEnv("app.allowed_origins", "APP_ALLOWED_ORIGINS")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.migrations", "DB_MIGRATIONS")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")

	v.BindEnv("storage.provider", "STORAGE_PROVIDER")
	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")
	v.BindEnv("cloudinary.folder", "CLOUDINARY_FOLDER")
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.public_endpoint", "MINIO_PUBLIC_ENDPOINT")
	v.BindEnv("minio.access_key_id", "MINIO_ACCESS_KEY_ID")
	v.BindEnv("minio.secret_access_key", "MINIO_SECRET_ACCESS_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")
	v.BindEnv("minio.region", "MINIO_REGION")
	v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")

	v.BindEnv("contact.relay_url", "CONTACT_RELAY_URL")
	v.BindEnv("contact.rate_limit", "CONTACT_RATE_LIMIT")
	v.BindEnv("contact.rate_window", "CONTACT_RATE_WINDOW")
	v.BindEnv("content.fallback_enabled", "CONTENT_FALLBACK_ENABLED")
	v.BindEnv("content.resync_interval", "CONTENT_RESYNC_INTERVAL")
	v.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")
	v.BindEnv("backup.interval", "BACKUP_INTERVAL")

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.public_url", "http://localhost:3000")
	v.SetDefault("db.migrations", "file://migrations")
	v.SetDefault("kafka.group_id", "content-events-worker")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("storage.provider", StorageCloudinary)
	v.SetDefault("cloudinary.folder", "portfolio")
	v.SetDefault("minio.bucket", "portfolio")
	v.SetDefault("contact.rate_limit", 5)
	v.SetDefault("contact.rate_window", time.Hour)
	v.SetDefault("content.fallback_enabled", true)
	v.SetDefault("content.resync_interval", 0)
}

// Validate fails fast on settings the server cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn (DB_DSN) is required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr (REDIS_ADDR) is required"))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) must be at least 16 characters"))
	}
	if c.Auth.TokenLifespan <= 0 {
		errs = append(errs, errors.New("auth.token_lifespan (TOKEN_LIFESPAN) must be positive"))
	}
	switch c.Storage.Provider {
	case StorageCloudinary, StorageMinIO:
	default:
		errs = append(errs, errors.New("storage.provider must be 'cloudinary' or 'minio'"))
	}
	if c.Contact.RelayURL == "" {
		errs = append(errs, errors.New("contact.relay_url (CONTACT_RELAY_URL) is required"))
	}
	return errors.Join(errs...)
}
