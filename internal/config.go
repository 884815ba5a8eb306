package internal

import (
	"fmt"
	"time"

	"global-chat/ai"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	StoragePath     string        `env:"STORAGE_PATH,default=./data/origin"`
	HubSocket       string        `env:"HUB_SOCKET,default=/tmp/global-chat.sock"`
	BroadcastTopic  string        `env:"BROADCAST_TOPIC,default=global_minecraft_chat"`
	BufferSize      int           `env:"BUFFER_SIZE,default=64"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=500ms"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	StorageTimeout  time.Duration `env:"STORAGE_TIMEOUT,default=2s"`
	ShutdownGrace   time.Duration `env:"SHUTDOWN_GRACE,default=5s"`
	DebugAddr       string        `env:"DEBUG_ADDR"`
	Standalone      bool          `env:"STANDALONE,default=false"`

	APIKey           string        `env:"API_KEY"`
	AIModel          string        `env:"AI_MODEL,default=gemini-2.5-flash"`
	AIBaseURL        string        `env:"AI_BASE_URL"`
	AITemperature    float64       `env:"AI_TEMPERATURE,default=0.7"`
	AIStreamTimeout  time.Duration `env:"AI_STREAM_TIMEOUT,default=60s"`
	AIConnectTimeout time.Duration `env:"AI_CONNECT_TIMEOUT,default=15s"`
}

// LoadConfig reads the optional .env files, then the environment.
// Variables already set in the environment win over the files.
func LoadConfig(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if config.BufferSize <= 0 {
		return Config{}, fmt.Errorf("BUFFER_SIZE must be positive, got %d", config.BufferSize)
	}
	if config.AIStreamTimeout <= 0 {
		return Config{}, fmt.Errorf("AI_STREAM_TIMEOUT must be positive, got %s", config.AIStreamTimeout)
	}
	return config, nil
}

// AIEnabled reports whether a provider credential is configured.
func (c Config) AIEnabled() bool {
	return c.APIKey != ""
}

func (c Config) ProviderConfig() ai.Config {
	return ai.Config{
		APIKey:         c.APIKey,
		BaseURL:        c.AIBaseURL,
		Model:          c.AIModel,
		ConnectTimeout: c.AIConnectTimeout,
	}
}
