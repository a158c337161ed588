// Package config loads the service configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID" required:"true"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" required:"true"`

	// LLMProvider selects the completion backend: "openai" or "ollama".
	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL"`
	OllamaHost   string `envconfig:"OLLAMA_HOST"`
	OllamaModel  string `envconfig:"OLLAMA_MODEL"`

	// StorageDriver selects the credential store: "sqlite" or "mongo".
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"moodika.db"`
	MongoURL      string `envconfig:"MONGO_URL"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"moodika"`

	AppName        string        `envconfig:"APP_NAME" default:"Moodika"`
	SearchLimit    int           `envconfig:"SEARCH_LIMIT" default:"20"`
	GapThreshold   float64       `envconfig:"GAP_THRESHOLD" default:"2.0"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	Workers        int           `envconfig:"WORKERS" default:"2"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
