package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	NATSAlertSubject  string
	JWTSecret         string
	CORSOrigins       string
	ModelArtifactPath string
	LabelPolicy       string
	TrainingSeed      int64
	AnalysisCacheTTL  time.Duration
	AlertTTL          time.Duration
	SeedEnabled       bool
	SeedToken         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DROPSAFE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "DropSafe API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.alert_subject", "dropsafe.alerts.high")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("model.artifact_path", "data/model_artifact.json")
	v.SetDefault("label.policy", "weighted")
	v.SetDefault("training.seed", 42)
	v.SetDefault("analysis.cache_ttl", "2m")
	v.SetDefault("alert.ttl", "24h")

	cacheTTL, err := time.ParseDuration(v.GetString("analysis.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid analysis cache ttl: %w", err)
	}
	alertTTL, err := time.ParseDuration(v.GetString("alert.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid alert ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		NATSAlertSubject:  v.GetString("nats.alert_subject"),
		JWTSecret:         v.GetString("jwt.secret"),
		CORSOrigins:       v.GetString("cors.origins"),
		ModelArtifactPath: v.GetString("model.artifact_path"),
		LabelPolicy:       strings.ToLower(v.GetString("label.policy")),
		TrainingSeed:      v.GetInt64("training.seed"),
		AnalysisCacheTTL:  cacheTTL,
		AlertTTL:          alertTTL,
		SeedEnabled:       v.GetBool("seed.enabled"),
		SeedToken:         v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.LabelPolicy != "weighted" && cfg.LabelPolicy != "threshold" {
		return Config{}, fmt.Errorf("unknown label policy %q", cfg.LabelPolicy)
	}

	return cfg, nil
}
