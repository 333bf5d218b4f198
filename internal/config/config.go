package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int           `envconfig:"SERVER_PORT" default:"8080" validate:"min=1,max=65535"`
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true" validate:"required"`
	JWTExpire      time.Duration `envconfig:"JWT_EXPIRE" default:"24h" validate:"gt=0"`
	CookieName     string        `envconfig:"COOKIE_NAME" default:"token" validate:"required"`
	CookieSecure   bool          `envconfig:"COOKIE_SECURE" default:"false"`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"postgres" validate:"oneof=memory postgres mongo"`
	DatabaseURL   string `envconfig:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	MongoURL      string `envconfig:"MONGO_URL" validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"codeshare"`

	BlobDriver     string `envconfig:"BLOB_DRIVER" default:"disk" validate:"oneof=disk s3 minio"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads" validate:"required_if=BlobDriver disk"`
	AWSBucketName  string `envconfig:"AWS_BUCKET_NAME" validate:"required_if=BlobDriver s3"`
	AWSRegion      string `envconfig:"AWS_REGION" validate:"required_if=BlobDriver s3"`
	AWSEndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" validate:"required_if=BlobDriver minio"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" validate:"required_if=BlobDriver minio"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY" validate:"required_if=BlobDriver minio"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" validate:"required_if=BlobDriver minio"`
}

// Load reads the configuration from environment variables and validates it.
func Load(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks driver-specific requirements that envconfig cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
