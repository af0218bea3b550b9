package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Samuel009-alt/heart-rate-app/internal/auth"
	"github.com/Samuel009-alt/heart-rate-app/internal/media"
	"github.com/Samuel009-alt/heart-rate-app/internal/models"
	"github.com/Samuel009-alt/heart-rate-app/internal/repository"

	"go.uber.org/zap"
)

var ErrMediaDisabled = errors.New("avatar upload is not configured")

const defaultFullName = "User"

// AccountService 注册、登录和个人资料
type AccountService struct {
	gateway auth.AuthGateway
	users   repository.UserRepository
	media   media.Uploader // 未配置图床时为 nil
	logger  *zap.Logger
}

func NewAccountService(gateway auth.AuthGateway, users repository.UserRepository, uploader media.Uploader, logger *zap.Logger) *AccountService {
	return &AccountService{
		gateway: gateway,
		users:   users,
		media:   uploader,
		logger:  logger,
	}
}

// AccountSession 登录结果
type AccountSession struct {
	Session auth.Session     `json:"session"`
	User    *models.UserData `json:"user,omitempty"`
}

// SignUp 创建账号并写入资料；资料写入失败视为注册失败
func (s *AccountService) SignUp(ctx context.Context, fullName, email, password string) (*AccountSession, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = defaultFullName
	}

	session, err := s.gateway.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := models.UserData{UID: session.UserID, FullName: fullName, Email: email}
	if err := s.users.SaveUser(ctx, user); err != nil {
		s.logger.Error("Failed to save profile after sign-up", zap.String("user_id", session.UserID), zap.Error(err))
		// 回滚：吊销会话并删除刚建的账号，允许用户重试注册
		_ = s.gateway.SignOut(ctx, session.Token)
		if derr := s.gateway.DeleteAccount(ctx, session.UserID); derr != nil {
			s.logger.Error("Failed to roll back account after sign-up", zap.String("user_id", session.UserID), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return &AccountSession{Session: session, User: &user}, nil
}

// SignIn 登录；资料不存在时补建默认资料
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*AccountSession, error) {
	email = strings.TrimSpace(email)
	session, err := s.gateway.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user = &models.UserData{UID: session.UserID, FullName: defaultFullName, Email: email}
		if err := s.users.SaveUser(ctx, *user); err != nil {
			s.logger.Warn("Failed to create default profile", zap.String("user_id", session.UserID), zap.Error(err))
			user = nil
		}
	default:
		s.logger.Warn("Failed to load profile on sign-in", zap.String("user_id", session.UserID), zap.Error(err))
		user = nil
	}

	return &AccountSession{Session: session, User: user}, nil
}

func (s *AccountService) SignOut(ctx context.Context, token string) error {
	return s.gateway.SignOut(ctx, token)
}

func (s *AccountService) Profile(ctx context.Context, uid string) (*models.UserData, error) {
	if uid == "" {
		return nil, ErrMissingUser
	}
	return s.users.GetUser(ctx, uid)
}

// UpdateProfile 只更新 patch 中非 nil 的字段
func (s *AccountService) UpdateProfile(ctx context.Context, uid string, patch models.ProfilePatch) (*models.UserData, error) {
	if uid == "" {
		return nil, ErrMissingUser
	}
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return nil, fmt.Errorf("full_name cannot be empty")
	}
	if patch.Age != nil && (*patch.Age < 0 || *patch.Age > 150) {
		return nil, fmt.Errorf("age must be between 0 and 150")
	}
	return s.users.UpdateProfile(ctx, uid, patch)
}

// UploadAvatar 上传头像并更新 profile_image_url
func (s *AccountService) UploadAvatar(ctx context.Context, uid string, image []byte) (*models.UserData, error) {
	if uid == "" {
		return nil, ErrMissingUser
	}
	if s.media == nil {
		return nil, ErrMediaDisabled
	}

	url, err := s.media.UploadProfileImage(ctx, image)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Profile image uploaded", zap.String("user_id", uid))

	return s.users.UpdateProfile(ctx, uid, models.ProfilePatch{ProfileImageURL: &url})
}
