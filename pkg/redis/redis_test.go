package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shenikar/fleet_location_core/internal/config"
)

func TestOptions_FromConfig(t *testing.T) {
	cfg := &config.Config{RedisAddr: "cache:6379", RedisPass: "secret", RedisDB: 3, RedisPoolSize: 40}

	opts := Options(cfg)

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 40, opts.PoolSize)
}
