package httpapi

import (
	"net/http"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/auth"

	"go.uber.org/zap"
)

// AuthedHandler 已登录请求的处理函数
type AuthedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// Authenticator 校验 bearer token
type Authenticator struct {
	gateway auth.AuthGateway
	logger  *zap.Logger
}

func NewAuthenticator(gateway auth.AuthGateway, logger *zap.Logger) *Authenticator {
	return &Authenticator{gateway: gateway, logger: logger}
}

// Require 未登录或会话失效时返回 HTTP 401 + code 60401
func (a *Authenticator) Require(h AuthedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.gateway.CurrentUserID(r.Context(), bearerToken(r))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, TokenExpired())
			return
		}
		h(w, r, userID)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog 记录请求方法、路径、状态码和耗时
func accessLog(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
