package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("API_KEY", "")

	config, err := LoadConfig("does-not-exist.env")

	req.NoError(err)
	req.Equal("global_minecraft_chat", config.BroadcastTopic)
	req.Equal("gemini-2.5-flash", config.AIModel)
	req.Equal(0.7, config.AITemperature)
	req.Equal(60*time.Second, config.AIStreamTimeout)
	req.False(config.AIEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("BROADCAST_TOPIC", "lobby")
	t.Setenv("STANDALONE", "true")

	config, err := LoadConfig("does-not-exist.env")

	req.NoError(err)
	req.True(config.AIEnabled())
	req.True(config.Standalone)
	req.Equal("lobby", config.BroadcastTopic)
	req.Equal("secret", config.ProviderConfig().APIKey)
}

func TestLoadConfig_Rejects_Buffer_Size(t *testing.T) {
	t.Setenv("BUFFER_SIZE", "0")
	_, err := LoadConfig("does-not-exist.env")
	require.Error(t, err)
}

func TestLoadConfig_Rejects_Stream_Timeout(t *testing.T) {
	req := require.New(t)
	for _, value := range []string{"0s", "-1s"} {
		t.Setenv("AI_STREAM_TIMEOUT", value)
		_, err := LoadConfig("does-not-exist.env")
		req.Error(err, value)
	}
}
