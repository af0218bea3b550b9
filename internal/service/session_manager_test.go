package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenKV 读写都失败
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errors.New("io error") }
func (brokenKV) Set(context.Context, string, string, time.Duration) error {
	return errors.New("io error")
}
func (brokenKV) Delete(context.Context, ...string) error { return errors.New("io error") }
func (brokenKV) ScanKeys(context.Context, string) ([]string, error) {
	return nil, errors.New("io error")
}

func TestSessionManager_Onboarding(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(store.NewMemoryKV(), zap.NewNop())

	assert.False(t, m.IsOnboardingCompleted(ctx, "u1"))

	require.NoError(t, m.SetOnboardingCompleted(ctx, "u1", true))
	assert.True(t, m.IsOnboardingCompleted(ctx, "u1"))
	assert.False(t, m.IsOnboardingCompleted(ctx, "u2"))

	require.NoError(t, m.SetOnboardingCompleted(ctx, "u1", false))
	assert.False(t, m.IsOnboardingCompleted(ctx, "u1"))
}

func TestSessionManager_ClearAll(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	m := NewSessionManager(kv, zap.NewNop())

	require.NoError(t, m.SetOnboardingCompleted(ctx, "u1", true))
	require.NoError(t, m.SetOnboardingCompleted(ctx, "u2", true))
	require.NoError(t, kv.Set(ctx, "heartrate:stats:u1", "{}", 0))

	require.NoError(t, m.ClearAll(ctx, "u1"))
	assert.False(t, m.IsOnboardingCompleted(ctx, "u1"))
	assert.True(t, m.IsOnboardingCompleted(ctx, "u2"))

	// 只清偏好，不动其它键
	_, err := kv.Get(ctx, "heartrate:stats:u1")
	assert.NoError(t, err)

	// 没有偏好时也成功
	assert.NoError(t, m.ClearAll(ctx, "u3"))
	assert.ErrorIs(t, m.ClearAll(ctx, ""), ErrMissingUser)
}

func TestSessionManager_StorageErrors(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(brokenKV{}, zap.NewNop())

	assert.False(t, m.IsOnboardingCompleted(ctx, "u1"))
	assert.Error(t, m.SetOnboardingCompleted(ctx, "u1", true))
	assert.Error(t, m.ClearAll(ctx, "u1"))
}
