package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_HUB_SOCKET targets a running hub; empty starts one in process
	HubSocket string `envconfig:"E2E_HUB_SOCKET"`
	Topic     string `envconfig:"E2E_TOPIC" default:"global_minecraft_chat"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
