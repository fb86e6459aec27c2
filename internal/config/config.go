package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/garyjia/ar-reminder/internal/history"
	"github.com/garyjia/ar-reminder/internal/reminder"
	"github.com/garyjia/ar-reminder/internal/report"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Report   ReportConfig   `mapstructure:"report"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
}

// ReminderConfig controls generated reminder emails
type ReminderConfig struct {
	Brand       string `mapstructure:"brand" validate:"required"`
	Signature   string `mapstructure:"signature"`
	SenderEmail string `mapstructure:"sender_email" validate:"omitempty,email"`
}

// ReportConfig controls AR report runs
type ReportConfig struct {
	TopCustomers int `mapstructure:"top_customers" validate:"min=1"`
	MaxHistory   int `mapstructure:"max_history" validate:"min=1"`
}

// UploadConfig bounds multipart uploads
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" validate:"min=1"`
}

// ExportConfig holds where exported files are written
type ExportConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Load loads configuration from an optional YAML file, a .env file and
// environment variables. An empty configPath uses defaults plus env only.
func Load(configPath string) (*Config, error) {
	return load(configPath, ".env")
}

func load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := gotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("reminder.brand", reminder.DefaultBrand)
	v.SetDefault("reminder.signature", "")

	v.SetDefault("report.top_customers", report.DefaultTopCustomers)
	v.SetDefault("report.max_history", history.DefaultMaxEntries)

	v.SetDefault("upload.max_bytes", 32<<20)

	v.SetDefault("export.dir", "exports")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"server.port":           "PORT",
		"logger.level":          "LOG_LEVEL",
		"reminder.brand":        "AR_BRAND",
		"reminder.signature":    "AR_SIGNATURE",
		"reminder.sender_email": "AR_SENDER_EMAIL",
		"export.dir":            "AR_EXPORT_DIR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch {
		case fe.Tag() == "required":
			msgs = append(msgs, field+" is required")
		case fe.Param() != "":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must be a valid %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
