package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App     AppConfig     `toml:"app"`
	Session SessionConfig `toml:"session"`
	Redis   RedisConfig   `toml:"redis"`
	MySQL   MySQLConfig   `toml:"mysql"`
	Model   ModelConfig   `toml:"model"`
	Vision  VisionConfig  `toml:"vision"`
	Catalog CatalogConfig `toml:"catalog"`
}

type AppConfig struct {
	Name           string   `toml:"name"`
	Env            string   `toml:"env"`
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	GinMode        string   `toml:"gin_mode"`
	LogLevel       string   `toml:"log_level"`
	MaxUploadBytes int      `toml:"max_upload_bytes"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// SessionConfig selects where per-visitor state lives. Store is "redis" or "memory";
// MemoryMaxEntries caps sessions held by the memory store.
type SessionConfig struct {
	Store            string `toml:"store"`
	CookieName       string `toml:"cookie_name"`
	TokenSecret      string `toml:"token_secret"`
	TTLMinutes       int    `toml:"ttl_minutes"`
	SecureCookie     bool   `toml:"secure_cookie"`
	RedisKeySpace    string `toml:"redis_key_space"`
	MemoryMaxEntries int    `toml:"memory_max_entries"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

// ModelConfig describes where the model artifact comes from and where it is cached.
// Source is "http" or "s3".
type ModelConfig struct {
	Source           string   `toml:"source"`
	ArtifactID       string   `toml:"artifact_id"`
	Path             string   `toml:"path"`
	LabelsArtifactID string   `toml:"labels_artifact_id"`
	LabelsPath       string   `toml:"labels_path"`
	HTTP             HTTPBlob `toml:"http"`
	S3               S3Blob   `toml:"s3"`
}

type HTTPBlob struct {
	URLTemplate    string `toml:"url_template"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type S3Blob struct {
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

type VisionConfig struct {
	ONNXSharedLibPath string `toml:"onnx_shared_lib_path"`
	ImageSize         int    `toml:"image_size"`
	ApplySoftmax      bool   `toml:"apply_softmax"`
}

// CatalogConfig selects the label content source. Source is "file" or "mysql";
// an empty Path with the file source uses the built-in catalog.
type CatalogConfig struct {
	Source           string `toml:"source"`
	Path             string `toml:"path"`
	MaxImageRefBytes int    `toml:"max_image_ref_bytes"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func (c *Config) validate() error {
	switch c.Model.Source {
	case "http", "s3":
	default:
		return fmt.Errorf("unknown model source %q", c.Model.Source)
	}
	switch c.Session.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	switch c.Catalog.Source {
	case "file", "mysql":
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if strings.TrimSpace(c.Model.Path) == "" {
		return fmt.Errorf("model path is empty")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:           "photolabel",
			Env:            "dev",
			Host:           "0.0.0.0",
			Port:           8080,
			GinMode:        "debug",
			LogLevel:       "info",
			MaxUploadBytes: 10 << 20,
		},
		Session: SessionConfig{
			Store:            "memory",
			CookieName:       "photolabel_session",
			TokenSecret:      "change-me-in-production",
			TTLMinutes:       24 * 60,
			RedisKeySpace:    "photolabel:session",
			MemoryMaxEntries: 1000,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		MySQL: MySQLConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "root",
			DB:     "photolabel",
			Params: "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Model: ModelConfig{
			Source:     "http",
			ArtifactID: "",
			Path:       "model.onnx",
			LabelsPath: "labels.txt",
			HTTP: HTTPBlob{
				URLTemplate:    "https://drive.google.com/uc?export=download&confirm=t&id=%s",
				TimeoutSeconds: 300,
			},
			S3: S3Blob{
				Region: "us-east-1",
			},
		},
		Vision: VisionConfig{
			ImageSize:    224,
			ApplySoftmax: true,
		},
		Catalog: CatalogConfig{
			Source: "file",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.MaxUploadBytes = getEnvAsInt("APP_MAX_UPLOAD_BYTES", cfg.App.MaxUploadBytes)
	if raw := getEnv("APP_ALLOWED_ORIGINS", ""); raw != "" {
		cfg.App.AllowedOrigins = splitList(raw)
	}

	cfg.Session.Store = getEnv("SESSION_STORE", cfg.Session.Store)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.TokenSecret = getEnv("SESSION_TOKEN_SECRET", cfg.Session.TokenSecret)
	cfg.Session.TTLMinutes = getEnvAsInt("SESSION_TTL_MINUTES", cfg.Session.TTLMinutes)
	cfg.Session.SecureCookie = getEnvAsBool("SESSION_SECURE_COOKIE", cfg.Session.SecureCookie)
	cfg.Session.MemoryMaxEntries = getEnvAsInt("SESSION_MEMORY_MAX_ENTRIES", cfg.Session.MemoryMaxEntries)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Model.Source = getEnv("MODEL_SOURCE", cfg.Model.Source)
	cfg.Model.ArtifactID = getEnv("MODEL_ARTIFACT_ID", cfg.Model.ArtifactID)
	cfg.Model.Path = getEnv("MODEL_PATH", cfg.Model.Path)
	cfg.Model.LabelsArtifactID = getEnv("MODEL_LABELS_ARTIFACT_ID", cfg.Model.LabelsArtifactID)
	cfg.Model.LabelsPath = getEnv("MODEL_LABELS_PATH", cfg.Model.LabelsPath)
	cfg.Model.HTTP.URLTemplate = getEnv("MODEL_HTTP_URL_TEMPLATE", cfg.Model.HTTP.URLTemplate)
	cfg.Model.HTTP.TimeoutSeconds = getEnvAsInt("MODEL_HTTP_TIMEOUT_SECONDS", cfg.Model.HTTP.TimeoutSeconds)
	cfg.Model.S3.Bucket = getEnv("MODEL_S3_BUCKET", cfg.Model.S3.Bucket)
	cfg.Model.S3.Prefix = getEnv("MODEL_S3_PREFIX", cfg.Model.S3.Prefix)
	cfg.Model.S3.Region = getEnv("MODEL_S3_REGION", cfg.Model.S3.Region)
	cfg.Model.S3.Endpoint = getEnv("MODEL_S3_ENDPOINT", cfg.Model.S3.Endpoint)
	cfg.Model.S3.AccessKeyID = getEnv("MODEL_S3_ACCESS_KEY_ID", cfg.Model.S3.AccessKeyID)
	cfg.Model.S3.SecretAccessKey = getEnv("MODEL_S3_SECRET_ACCESS_KEY", cfg.Model.S3.SecretAccessKey)
	cfg.Model.S3.UsePathStyle = getEnvAsBool("MODEL_S3_USE_PATH_STYLE", cfg.Model.S3.UsePathStyle)

	cfg.Vision.ONNXSharedLibPath = getEnv("VISION_ONNX_LIB", cfg.Vision.ONNXSharedLibPath)
	cfg.Vision.ImageSize = getEnvAsInt("VISION_IMAGE_SIZE", cfg.Vision.ImageSize)
	cfg.Vision.ApplySoftmax = getEnvAsBool("VISION_APPLY_SOFTMAX", cfg.Vision.ApplySoftmax)

	cfg.Catalog.Source = getEnv("CATALOG_SOURCE", cfg.Catalog.Source)
	cfg.Catalog.Path = getEnv("CATALOG_PATH", cfg.Catalog.Path)
	cfg.Catalog.MaxImageRefBytes = getEnvAsInt("CATALOG_MAX_IMAGE_REF_BYTES", cfg.Catalog.MaxImageRefBytes)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
