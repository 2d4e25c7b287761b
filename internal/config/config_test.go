package config

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
}

func TestFromEnvMemoryDriverNeedsNoDatabase(t *testing.T) {
	setBase(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, "admin@campus.edu", cfg.AdminEmail)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestFromEnvReportsEveryMissingKey(t *testing.T) {
	setBase(t)
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")

	_, err := FromEnv()
	require.Error(t, err)
	for _, key := range []string{"JWT_SECRET", "DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestFromEnvRejectsBadInt(t *testing.T) {
	setBase(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL_MIN")
}

func TestLoadRateLimitConfigNormalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())

	client := NewRedisClient(RedisOptions())
	require.NotNil(t, client)
	_ = client.Close()

	mr.Close()
	assert.Nil(t, NewRedisClient(RedisOptions()))
}
