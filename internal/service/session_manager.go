package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Samuel009-alt/heart-rate-app/internal/store"

	"go.uber.org/zap"
)

// SessionManager 每个用户的会话偏好（目前只有引导页完成标记）
type SessionManager struct {
	kv     store.KV
	logger *zap.Logger
}

func NewSessionManager(kv store.KV, logger *zap.Logger) *SessionManager {
	return &SessionManager{kv: kv, logger: logger}
}

func prefsPattern(uid string) string {
	return fmt.Sprintf("heartrate:prefs:%s:*", uid)
}

func onboardingKey(uid string) string {
	return fmt.Sprintf("heartrate:prefs:%s:onboarding", uid)
}

func (m *SessionManager) SetOnboardingCompleted(ctx context.Context, uid string, completed bool) error {
	if uid == "" {
		return ErrMissingUser
	}
	if err := m.kv.Set(ctx, onboardingKey(uid), strconv.FormatBool(completed), 0); err != nil {
		m.logger.Error("Failed to save onboarding flag", zap.String("user_id", uid), zap.Error(err))
		return err
	}
	return nil
}

// IsOnboardingCompleted 未设置或读取失败时为 false
func (m *SessionManager) IsOnboardingCompleted(ctx context.Context, uid string) bool {
	raw, err := m.kv.Get(ctx, onboardingKey(uid))
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			m.logger.Warn("Failed to read onboarding flag", zap.String("user_id", uid), zap.Error(err))
		}
		return false
	}
	completed, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return completed
}

// ClearAll 删除该用户的全部会话偏好
func (m *SessionManager) ClearAll(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrMissingUser
	}
	keys, err := m.kv.ScanKeys(ctx, prefsPattern(uid))
	if err != nil {
		return fmt.Errorf("failed to scan session prefs: %w", err)
	}
	if err := m.kv.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to clear session prefs: %w", err)
	}
	return nil
}
