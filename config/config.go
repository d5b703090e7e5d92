// Package config loads the quiz pipeline's configuration from environment
// variables, an optional .env file, and an optional config.yaml of
// non-secret tunables.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved, validated configuration for the service.
type Config struct {
	ServerPort string

	StreamingClientID     string
	StreamingClientSecret string
	CatalogAPIToken       string
	KVRestAPIURL          string
	KVRestAPIToken        string
	QueueToken            string

	PollInterval      time.Duration
	JobTTL            time.Duration
	StreamMaxLifetime time.Duration
	ResolverMinScore  int
	CatalogPageSize   int
	CatalogRetryPage  int
	StreamingPageSize int

	// StreamingTokenURL and QueuePublishURL are non-secret endpoints, not
	// credentials, so they are tunable defaults rather than required vars.
	StreamingTokenURL string
	QueuePublishURL   string
}

// Load reads configuration from the environment (and, if present, a .env
// file and config.yaml) and returns it. It fails fast, exactly like
// spec.md's "absent secret is a configuration error surfaced at startup",
// when any required secret is missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it. Using environment variables as-is.")
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("poll.interval_ms", 1000)
	viper.SetDefault("job.ttl_seconds", 3600)
	viper.SetDefault("stream.max_lifetime_s", 60)
	viper.SetDefault("resolver.min_score", 80)
	viper.SetDefault("catalog.page_size", 10)
	viper.SetDefault("catalog.retry_page_size", 20)
	viper.SetDefault("streaming.page_size", 50)
	viper.SetDefault("streaming.token_url", "https://accounts.streaming.example/api/token")
	viper.SetDefault("queue.publish_url", "https://queue.example/v2/publish")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		log.Println("Config file not found, using defaults and environment variables")
	} else {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	required := map[string]string{
		"streaming.client_id":     "STREAMING_CLIENT_ID",
		"streaming.client_secret": "STREAMING_CLIENT_SECRET",
		"catalog.api_token":       "CATALOG_API_TOKEN",
		"kv.rest_api_url":         "KV_REST_API_URL",
		"kv.rest_api_token":       "KV_REST_API_TOKEN",
		"queue.token":             "QUEUE_TOKEN",
	}
	var missing []string
	for key, envName := range required {
		if !viper.IsSet(key) || viper.GetString(key) == "" {
			missing = append(missing, envName)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required configuration variables not set: %s", strings.Join(missing, ", "))
	}

	return &Config{
		ServerPort: viper.GetString("server.port"),

		StreamingClientID:     viper.GetString("streaming.client_id"),
		StreamingClientSecret: viper.GetString("streaming.client_secret"),
		CatalogAPIToken:       viper.GetString("catalog.api_token"),
		KVRestAPIURL:          viper.GetString("kv.rest_api_url"),
		KVRestAPIToken:        viper.GetString("kv.rest_api_token"),
		QueueToken:            viper.GetString("queue.token"),

		PollInterval:      time.Duration(viper.GetInt("poll.interval_ms")) * time.Millisecond,
		JobTTL:            time.Duration(viper.GetInt("job.ttl_seconds")) * time.Second,
		StreamMaxLifetime: time.Duration(viper.GetInt("stream.max_lifetime_s")) * time.Second,
		ResolverMinScore:  viper.GetInt("resolver.min_score"),
		CatalogPageSize:   viper.GetInt("catalog.page_size"),
		CatalogRetryPage:  viper.GetInt("catalog.retry_page_size"),
		StreamingPageSize: viper.GetInt("streaming.page_size"),

		StreamingTokenURL: viper.GetString("streaming.token_url"),
		QueuePublishURL:   viper.GetString("queue.publish_url"),
	}, nil
}
