package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyagiab3/user-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "user-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, "user-registration-events", cfg.Kafka.RegistrationTopic)
	assert.Equal(t, "user-login-events", cfg.Kafka.LoginTopic)
	assert.Equal(t, 5*time.Second, cfg.Kafka.WriteTimeout())
}

func TestSigningKeyGeneratedPerProcess(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	first, err := config.Load()
	require.NoError(t, err)
	second, err := config.Load()
	require.NoError(t, err)

	// Each generated key is fresh: a restart invalidates outstanding tokens.
	assert.NotEmpty(t, first.Auth.SigningKey)
	assert.NotEqual(t, first.Auth.SigningKey, second.Auth.SigningKey)
}

func TestSigningKeyFromEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "fixed-secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "fixed-secret", cfg.Auth.SigningKey)
}
