package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/persistence"
)

func TestNewRedisWithoutAddressIsDisabled(t *testing.T) {
	r := persistence.NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())

	assert.False(t, r.Enabled())
	assert.ErrorIs(t, r.Ping(context.Background()), persistence.ErrRedisDisabled)
	r.Close()

	var missing *persistence.Redis
	assert.False(t, missing.Enabled())
	assert.ErrorIs(t, missing.Ping(context.Background()), persistence.ErrRedisDisabled)
}

func TestNewRedisKeepsUnreachableClient(t *testing.T) {
	r := persistence.NewRedis(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	defer r.Close()

	require.True(t, r.Enabled())
	assert.Error(t, r.Ping(context.Background()))
}
