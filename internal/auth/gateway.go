package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/repository"
	"github.com/Samuel009-alt/heart-rate-app/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

const (
	minPasswordLen   = 6
	revokedKeyPrefix = "heartrate:session:revoked:"
	tokenIssuer      = "heart-rate-app"
)

// Session 登录会话
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthGateway 身份服务
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUserID(ctx context.Context, token string) (string, bool)
	IsLoggedIn(ctx context.Context, token string) bool
	// DeleteAccount 删除账号凭据，用于注册流程回滚
	DeleteAccount(ctx context.Context, userID string) error
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Gateway 基于 CredentialStore + HS256 JWT 的实现；登出通过 KV 记录吊销的 jti
type Gateway struct {
	creds  *CredentialStore
	kv     store.KV
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewGateway(creds *CredentialStore, kv store.KV, secret string, ttl time.Duration, logger *zap.Logger) *Gateway {
	return &Gateway{
		creds:  creds,
		kv:     kv,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

var _ AuthGateway = (*Gateway)(nil)

func (g *Gateway) SignUp(ctx context.Context, email, password string) (Session, error) {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return Session{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return Session{}, ErrWeakPassword
	}

	cred, err := g.creds.Create(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	g.logger.Info("User signed up", zap.String("user_id", cred.UserID))
	return g.issue(cred)
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (Session, error) {
	cred, err := g.creds.Verify(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return g.issue(cred)
}

func (g *Gateway) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := g.creds.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	g.logger.Info("User account deleted", zap.String("user_id", userID))
	return nil
}

// SignOut 吊销 token；token 本身无效时视为已登出
func (g *Gateway) SignOut(ctx context.Context, token string) error {
	claims, err := g.parse(token)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(g.now())
	if ttl <= 0 {
		return nil
	}
	if err := g.kv.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (g *Gateway) CurrentUserID(ctx context.Context, token string) (string, bool) {
	claims, err := g.parse(token)
	if err != nil {
		return "", false
	}

	_, err = g.kv.Get(ctx, revokedKeyPrefix+claims.ID)
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, store.ErrMiss):
		return claims.Subject, true
	default:
		g.logger.Warn("Failed to check session revocation", zap.Error(err))
		return "", false
	}
}

func (g *Gateway) IsLoggedIn(ctx context.Context, token string) bool {
	_, ok := g.CurrentUserID(ctx, token)
	return ok
}

func (g *Gateway) issue(cred repository.Credential) (Session, error) {
	now := g.now()
	exp := now.Add(g.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   cred.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: cred.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return Session{Token: signed, UserID: cred.UserID, ExpiresAt: exp}, nil
}

func (g *Gateway) parse(token string) (*sessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
