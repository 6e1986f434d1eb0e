package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string   `mapstructure:"address"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config describes the bucket holding exercise demonstration clips.
// Leaving BucketName empty disables media storage.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	Issuer     string        `mapstructure:"issuer"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

const minJWTSecretLength = 16

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// No file; defaults and env vars only.
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	// Duration strings ("168h") and comma separated origin lists decode
	// through viper's default hooks.
	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_tracker")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	// Bound so JWT_SECRET is picked up by Unmarshal without a config file.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "168h")
	v.SetDefault("jwt.issuer", "workout-tracker")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret must be set")
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("config: jwt.secret must be at least %d bytes", minJWTSecretLength)
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("config: jwt.expiration must be positive")
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return errors.New("config: database.uri and database.name must be set")
	}
	return nil
}
