package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Env  string
	Port string

	// Weather upstream.
	WeatherProvider string
	WeatherAPIKey   string
	WeatherBaseURL  string // empty = provider default

	// Routing upstream.
	RoutingProvider  string
	GoogleMapsAPIKey string
	GoogleMapsSecret string // optional URL-signing secret
	RoutingBaseURL   string

	UpstreamTimeout  time.Duration
	ProbeInterval    time.Duration // 0 disables the probe
	CORSAllowOrigins string
}

// Load reads configuration from the environment, after merging a .env file
// if one exists.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", "8080")
	v.SetDefault("WEATHER_PROVIDER", "openweather")
	v.SetDefault("ROUTING_PROVIDER", "google")
	v.SetDefault("ROUTING_BASE_URL", "https://maps.googleapis.com")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("PROBE_INTERVAL", "0")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	// The first variable that is set wins.
	if err := v.BindEnv("weather_api_key", "WEATHER_API_KEY", "OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind weather key: %w", err)
	}

	cfg := &AppConfig{
		Env:              v.GetString("APP_ENV"),
		Port:             v.GetString("PORT"),
		WeatherProvider:  strings.ToLower(strings.TrimSpace(v.GetString("WEATHER_PROVIDER"))),
		WeatherAPIKey:    strings.TrimSpace(v.GetString("weather_api_key")),
		WeatherBaseURL:   v.GetString("WEATHER_BASE_URL"),
		RoutingProvider:  strings.ToLower(strings.TrimSpace(v.GetString("ROUTING_PROVIDER"))),
		GoogleMapsAPIKey: strings.TrimSpace(v.GetString("GOOGLE_MAPS_API_KEY")),
		GoogleMapsSecret: strings.TrimSpace(v.GetString("GOOGLE_MAPS_SIGNING_SECRET")),
		RoutingBaseURL:   v.GetString("ROUTING_BASE_URL"),
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
	}

	timeout, err := parseDuration(v, "UPSTREAM_TIMEOUT")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: must be positive")
	}
	cfg.UpstreamTimeout = timeout

	probe, err := parseDuration(v, "PROBE_INTERVAL")
	if err != nil {
		return nil, err
	}
	if probe < 0 {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: must not be negative")
	}
	cfg.ProbeInterval = probe

	return cfg, nil
}

// parseDuration reads key as a Go duration. viper's GetDuration turns bad
// input into 0, which would silently disable the timeout.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
