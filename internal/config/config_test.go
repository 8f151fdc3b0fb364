package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Port:      "18920",
		Env:       "development",
		DBBackend: "bolt",
		JWTSecret: "dev-secret-change-in-production",
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid development config", func(t *testing.T) {
		c := validConfig()
		assert.NoError(t, c.Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		c := validConfig()
		c.Port = ""
		assert.Error(t, c.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		c := validConfig()
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := validConfig()
		c.DBBackend = "postgres"
		assert.Error(t, c.Validate())
	})

	t.Run("sqlite backend accepted", func(t *testing.T) {
		c := validConfig()
		c.DBBackend = "sqlite"
		assert.NoError(t, c.Validate())
	})

	t.Run("production rejects default secret", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		assert.Error(t, c.Validate())
	})

	t.Run("production rejects short secret", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = "short"
		assert.Error(t, c.Validate())
	})

	t.Run("production accepts strong secret", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, c.Validate())
	})
}
