package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Apportionment ApportionmentConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path string
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret string
}

// ApportionmentConfig holds the engine's cutoff and the caller-side feature
// toggle. The go-live date is the single eligibility cutoff: fees and payments
// created before it are never apportioned.
type ApportionmentConfig struct {
	Enabled    bool
	GoLiveDate time.Time
}

const goLiveDateLayout = "2006-01-02"

// Load reads configuration from an optional config file and the environment.
// Environment variables use the APPORTION prefix with underscores, e.g.
// APPORTION_APPORTIONMENT_GO_LIVE_DATE.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("APPORTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	goLive, err := time.Parse(goLiveDateLayout, v.GetString("apportionment.go_live_date"))
	if err != nil {
		return nil, fmt.Errorf("invalid apportionment go-live date: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
		},
		Apportionment: ApportionmentConfig{
			Enabled:    v.GetBool("apportionment.enabled"),
			GoLiveDate: goLive,
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "apportionment-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.path", "apportionment.db")

	v.SetDefault("jwt.secret", "apportionment-secret-key")

	v.SetDefault("apportionment.enabled", true)
	v.SetDefault("apportionment.go_live_date", "2020-02-12")
}
