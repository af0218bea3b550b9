package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/common/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrEmptyImage = errors.New("empty image")

// Uploader 头像上传
type Uploader interface {
	UploadProfileImage(ctx context.Context, image []byte) (string, error)
}

// uploadResponse 图床返回（只关心 secure_url 和 error.message）
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client Cloudinary 风格 unsigned upload 客户端
type Client struct {
	httpClient *resty.Client
	cfg        config.MediaConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewClient 创建图床客户端
func NewClient(cfg config.MediaConfig, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(60 * time.Second). // 图片上传可能较慢
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

var _ Uploader = (*Client)(nil)

// UploadProfileImage 先走 multipart，失败再用 base64 data URI 表单兜底
func (c *Client) UploadProfileImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	publicID := fmt.Sprintf("profile_%d", c.now().Unix())

	url, err := c.uploadMultipart(ctx, image, publicID)
	if err == nil {
		return url, nil
	}
	c.logger.Warn("Multipart upload failed, trying base64",
		zap.String("public_id", publicID),
		zap.Error(err),
	)

	url, err2 := c.uploadBase64(ctx, image, publicID)
	if err2 != nil {
		c.logger.Error("Both upload methods failed",
			zap.String("public_id", publicID),
			zap.Error(err2),
		)
		return "", fmt.Errorf("failed to upload profile image: %w", errors.Join(err, err2))
	}
	return url, nil
}

func (c *Client) uploadMultipart(ctx context.Context, image []byte, publicID string) (string, error) {
	var result uploadResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", "image.jpg", bytes.NewReader(image)).
		SetFormData(c.formFields(publicID)).
		SetResult(&result).
		SetError(&result).
		Post(c.cfg.UploadPath())
	if err != nil {
		return "", fmt.Errorf("multipart request failed: %w", err)
	}
	return c.secureURL(resp, &result)
}

func (c *Client) uploadBase64(ctx context.Context, image []byte, publicID string) (string, error) {
	fields := c.formFields(publicID)
	fields["file"] = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	var result uploadResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(fields).
		SetResult(&result).
		SetError(&result).
		Post(c.cfg.UploadPath())
	if err != nil {
		return "", fmt.Errorf("base64 request failed: %w", err)
	}
	return c.secureURL(resp, &result)
}

func (c *Client) formFields(publicID string) map[string]string {
	return map[string]string{
		"upload_preset": c.cfg.UploadPreset,
		"public_id":     publicID,
		"folder":        c.cfg.Folder,
	}
}

func (c *Client) secureURL(resp *resty.Response, result *uploadResponse) (string, error) {
	if resp.IsError() {
		msg := resp.Status()
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode(), msg)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}

	c.logger.Info("Profile image uploaded",
		zap.String("public_id", result.PublicID),
		zap.Int("status_code", resp.StatusCode()),
	)
	return result.SecureURL, nil
}
