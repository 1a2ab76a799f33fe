package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Address = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAddress)
}

func TestConfigPassword(t *testing.T) {
	cfg := NewConfig()
	cfg.Password = "inline"
	assert.Equal(t, "inline", cfg.password())

	t.Setenv("REDIS_TEST_PASSWORD", "from-env")
	cfg.PasswordEnvVar = "REDIS_TEST_PASSWORD"
	assert.Equal(t, "from-env", cfg.password())
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "prefixed", client.Key("prefixed"))

	client.config.KeyPrefix = "app:"
	assert.Equal(t, "app:key", client.Key("key"))

	_, err = NewClient(&Config{})
	assert.ErrorIs(t, err, ErrMissingAddress)
}
