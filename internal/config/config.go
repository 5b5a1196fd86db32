package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"cors_origins"`
		RateLimit   int      `yaml:"rate_limit"` // requests per minute per IP, 0 disables
		EnableDocs  bool     `yaml:"enable_docs"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		TemplatesDir string `yaml:"templates_dir"`
		AppURL       string `yaml:"app_url"`
	} `yaml:"email"`

	Storage struct {
		Type          string `yaml:"type"`      // local, s3, cloudflare_r2, cloudinary
		BasePath      string `yaml:"base_path"` // local
		BaseURL       string `yaml:"base_url"`  // public URL prefix
		Bucket        string `yaml:"bucket"`
		Region        string `yaml:"region"`
		AccessKey     string `yaml:"access_key"`
		SecretKey     string `yaml:"secret_key"`
		Endpoint      string `yaml:"endpoint"`
		CloudinaryURL string `yaml:"cloudinary_url"`
	} `yaml:"storage"`

	Upload struct {
		MaxMediaSize  int64 `yaml:"max_media_size"`
		MaxAvatarSize int64 `yaml:"max_avatar_size"`
		MaxProofSize  int64 `yaml:"max_proof_size"`
		ImageQuality  int   `yaml:"image_quality"`
		AvatarPixels  int   `yaml:"avatar_pixels"`
	} `yaml:"upload"`

	Presence struct {
		TTLSeconds   int `yaml:"ttl_seconds"`
		SweepSeconds int `yaml:"sweep_seconds"`
	} `yaml:"presence"`

	Push struct {
		VAPIDPublicKey  string `yaml:"vapid_public_key"`
		VAPIDPrivateKey string `yaml:"vapid_private_key"`
		Subscriber      string `yaml:"subscriber"`
	} `yaml:"push"`

	Realtime struct {
		Driver string `yaml:"driver"` // memory, postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"realtime"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

// PresenceTTL is the liveness window after which a silent member is
// considered offline.
func (c *Config) PresenceTTL() time.Duration {
	return time.Duration(c.Presence.TTLSeconds) * time.Second
}

func (c *Config) PresenceSweepInterval() time.Duration {
	return time.Duration(c.Presence.SweepSeconds) * time.Second
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "test"
}

// Default returns a configuration that runs locally with sqlite and local
// file storage.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	cfg.Server.RateLimit = 120

	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "barterly.db"

	cfg.JWT.TTL = 60 * 24 * 7

	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "onboarding@barterly.app"
	cfg.Email.FromName = "Barterly"
	cfg.Email.AppURL = "http://localhost:5173"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	cfg.Upload.MaxMediaSize = 10 * 1024 * 1024
	cfg.Upload.MaxAvatarSize = 5 * 1024 * 1024
	cfg.Upload.MaxProofSize = 10 * 1024 * 1024
	cfg.Upload.ImageQuality = 85
	cfg.Upload.AvatarPixels = 400

	cfg.Presence.TTLSeconds = 60
	cfg.Presence.SweepSeconds = 15

	cfg.Push.Subscriber = "admin@barterly.app"

	cfg.Realtime.Driver = "memory"

	return &cfg
}

// Load reads one configuration. A missing file is not an error; defaults
// and the environment are used instead.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			log.Printf("config file %s not found, using defaults and environment", path)
		default:
			return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}

	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setInt(&cfg.JWT.TTL, "JWT_TTL")

	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "SMTP_FROM")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.CloudinaryURL, "CLOUDINARY_URL")

	setString(&cfg.Push.VAPIDPublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.VAPIDPrivateKey, "VAPID_PRIVATE_KEY")

	setString(&cfg.Realtime.Driver, "REALTIME_DRIVER")

	setString(&cfg.FirstAdminEmail, "FIRST_ADMIN_EMAIL")
	setString(&cfg.FirstAdminPassword, "FIRST_ADMIN_PASSWORD")
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("jwt secret is required outside development")
		}
		c.JWT.Secret = "barterly-development-secret"
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.Realtime.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported realtime driver: %s", c.Realtime.Driver)
	}
	if c.Presence.TTLSeconds <= 0 || c.Presence.SweepSeconds <= 0 {
		return errors.New("presence ttl and sweep interval must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
