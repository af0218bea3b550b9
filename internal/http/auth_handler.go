package httpapi

import (
	"errors"
	"net/http"

	"github.com/Samuel009-alt/heart-rate-app/internal/auth"
	"github.com/Samuel009-alt/heart-rate-app/internal/repository"
	"github.com/Samuel009-alt/heart-rate-app/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 注册、登录、登出
type AuthHandler struct {
	accounts *service.AccountService
	logger   *zap.Logger
}

func NewAuthHandler(accounts *service.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

type signUpRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	res, err := h.accounts.SignUp(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(authErrorMessage(err, "sign up failed")))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// SignIn POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusOK, Fail("email and password are required"))
		return
	}

	res, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(authErrorMessage(err, "sign in failed")))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// SignOut POST /api/v1/auth/signout（token 无效时也返回成功）
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context(), bearerToken(r)); err != nil {
		h.logger.Error("Failed to sign out", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("sign out failed"))
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusOK, Fail("profile not found"))
			return
		}
		h.logger.Error("Failed to load profile", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load profile"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(user))
}

// authErrorMessage 只把可预期的认证错误透出给客户端
func authErrorMessage(err error, fallback string) string {
	for _, known := range []error{
		auth.ErrInvalidCredentials,
		auth.ErrEmailTaken,
		auth.ErrInvalidEmail,
		auth.ErrWeakPassword,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}
