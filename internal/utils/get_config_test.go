package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigOrDefault(t *testing.T) {
	t.Cleanup(func() { SetConfig(Config{}) })

	SetConfig(Config{DBHost: "db", OrderStore: "memory"})
	assert.Equal(t, "db", GetConfig("DB_HOST"))
	assert.Equal(t, "disable", GetConfigOrDefault("DB_SSLMODE", "disable"))
	assert.Equal(t, "memory", GetConfigOrDefault("ORDER_STORE", "postgres"))

	SetConfig(Config{DBSSLMode: "require"})
	assert.Equal(t, "require", GetConfigOrDefault("DB_SSLMODE", "disable"))
	assert.Empty(t, GetConfig("NOT_A_KEY"))
}
