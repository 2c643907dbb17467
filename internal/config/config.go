package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for the AWS S3 storage driver.
type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// StorageConfig selects the storage driver and its public addressing.
type StorageConfig struct {
	Driver        string // local, minio or s3
	LocalRoot     string
	PublicBaseURL string
	PresignExpiry time.Duration
}

// UploadConfig bounds what the upload endpoint accepts.
type UploadConfig struct {
	MaxBytes int64
	PageSize int
}

// ConverterConfig drives the conversion strategy chain.
type ConverterConfig struct {
	SofficeBin     string
	BrowserBin     string
	SofficeTimeout time.Duration
	RenderTimeout  time.Duration
	MaxImageDim    int
	MaxHTMLBytes   int
	MaxImagePixels int
	TempDir        string
	WordOrder      []string
	ExcelOrder     []string
	ImageOrder     []string
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	S3        S3Config
	Storage   StorageConfig
	Upload    UploadConfig
	Converter ConverterConfig
	Log       LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Bucket:    getEnv("AWS_S3_BUCKET", ""),
			Region:    getEnv("AWS_REGION", "us-east-1"),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:  getEnv("AWS_S3_ENDPOINT", ""),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "local"),
			LocalRoot:     getEnv("STORAGE_LOCAL_ROOT", "./storage/public"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_URL", "/storage"),
			PresignExpiry: getEnvDuration("STORAGE_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 20*1024*1024)),
			PageSize: getEnvInt("UPLOAD_PAGE_SIZE", 20),
		},
		Converter: ConverterConfig{
			SofficeBin:     getEnv("CONVERTER_SOFFICE_BIN", "soffice"),
			BrowserBin:     getEnv("CONVERTER_BROWSER_BIN", ""),
			SofficeTimeout: getEnvDuration("CONVERTER_SOFFICE_TIMEOUT", 2*time.Minute),
			RenderTimeout:  getEnvDuration("CONVERTER_RENDER_TIMEOUT", time.Minute),
			MaxImageDim:    getEnvInt("CONVERTER_MAX_IMAGE_DIM", 2000),
			MaxHTMLBytes:   getEnvInt("CONVERTER_MAX_HTML_BYTES", 64*1024*1024),
			MaxImagePixels: getEnvInt("CONVERTER_MAX_IMAGE_PIXELS", 2000*2000),
			TempDir:        getEnv("CONVERTER_TEMP_DIR", os.TempDir()),
			WordOrder:      getEnvList("CONVERTER_WORD_ORDER", []string{"image", "soffice", "native", "html"}),
			ExcelOrder:     getEnvList("CONVERTER_EXCEL_ORDER", []string{"image", "soffice", "native", "html"}),
			ImageOrder:     getEnvList("CONVERTER_IMAGE_ORDER", []string{"html", "native"}),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("TZ", "UTC"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

// getEnvList parses a comma separated list, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
