package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig("postgres://localhost/ptv")

	assert.Equal(t, "postgres://localhost/ptv", cfg.DSN)
	assert.Equal(t, "ptv", cfg.ApplicationName)
	assert.Greater(t, cfg.MaxConns, cfg.MinConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
}

func TestPoolStats_Saturated(t *testing.T) {
	assert.False(t, PoolStats{AcquireCount: 40}.Saturated())
	assert.True(t, PoolStats{AcquireCount: 40, EmptyAcquireCount: 2}.Saturated())
}
