package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/Samuel009-alt/heart-rate-app/internal/media"
	"github.com/Samuel009-alt/heart-rate-app/internal/models"
	"github.com/Samuel009-alt/heart-rate-app/internal/repository"
	"github.com/Samuel009-alt/heart-rate-app/internal/service"

	"go.uber.org/zap"
)

const maxAvatarBytes = 5 << 20

// ProfileHandler 个人资料、头像、引导页标记
type ProfileHandler struct {
	accounts *service.AccountService
	sessions *service.SessionManager
	logger   *zap.Logger
}

func NewProfileHandler(accounts *service.AccountService, sessions *service.SessionManager, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, sessions: sessions, logger: logger}
}

// Get GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		h.writeProfileError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(user))
}

// Update PUT /api/v1/profile，只更新请求里出现的字段
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, userID string) {
	var patch models.ProfilePatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	// 头像只能通过上传接口修改
	patch.ProfileImageURL = nil

	user, err := h.accounts.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		h.writeProfileError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(user))
}

// UploadAvatar POST /api/v1/profile/avatar（multipart，字段名 file）
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request, userID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+(1<<20))
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("file is required"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to read file"))
		return
	}
	if len(image) > maxAvatarBytes {
		writeJSON(w, http.StatusOK, Fail("image too large"))
		return
	}

	user, err := h.accounts.UploadAvatar(r.Context(), userID, image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMediaDisabled):
			writeJSON(w, http.StatusOK, Fail(err.Error()))
		case errors.Is(err, media.ErrEmptyImage):
			writeJSON(w, http.StatusOK, Fail("file is empty"))
		default:
			h.writeProfileError(w, userID, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, Ok(user))
}

type onboardingBody struct {
	Completed bool `json:"completed"`
}

// GetOnboarding GET /api/v1/onboarding
func (h *ProfileHandler) GetOnboarding(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, Ok(onboardingBody{Completed: h.sessions.IsOnboardingCompleted(r.Context(), userID)}))
}

// SetOnboarding PUT /api/v1/onboarding {completed}
func (h *ProfileHandler) SetOnboarding(w http.ResponseWriter, r *http.Request, userID string) {
	var body onboardingBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	if err := h.sessions.SetOnboardingCompleted(r.Context(), userID, body.Completed); err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to save onboarding state"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(body))
}

// ClearOnboarding DELETE /api/v1/onboarding
func (h *ProfileHandler) ClearOnboarding(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.sessions.ClearAll(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear session prefs", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to clear session data"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(onboardingBody{Completed: false}))
}

func (h *ProfileHandler) writeProfileError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, Fail("profile not found"))
		return
	}
	h.logger.Warn("Profile request failed", zap.String("user_id", userID), zap.Error(err))
	writeJSON(w, http.StatusOK, Fail(err.Error()))
}
