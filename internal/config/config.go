package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/common/config"

	"github.com/joho/godotenv"
)

// Config heart-rate-app 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	DBEnabled bool
	Database  config.DatabaseConfig

	RedisEnabled bool
	Redis        config.RedisConfig

	// 穿戴设备通过 MQTT 上报心率（默认关闭）
	MQTT struct {
		Enabled bool
		// TrustTopic 不校验设备 token，只按主题中的 user_id 入库
		TrustTopic bool
		config.MQTTConfig
	}

	Stats struct {
		CacheTTL      time.Duration // 统计结果缓存时间
		WindowDays    int           // 趋势图天数
		ReadingStream string        // reading.saved 事件流
		Location      *time.Location
	}

	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}

	Media struct {
		Enabled bool
		config.MediaConfig
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置；当前目录存在 .env 时先加载（不覆盖已有环境变量）
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// DB 不可用时回落到内存 repo
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "heartrate",
		SSLMode:  "disable",
	}
	cfg.Database.LoadFromEnv("DB")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.MQTTConfig = config.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "heart-rate-app",
		Topic:    "heartrate/+/reading",
	}
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.MQTT.QoS = 1
	cfg.MQTT.TrustTopic = getEnv("MQTT_TRUST_TOPIC", "false") == "true"

	cfg.Stats.CacheTTL = time.Duration(parseInt(getEnv("STATS_CACHE_TTL", "60"), 60)) * time.Second
	cfg.Stats.WindowDays = parseInt(getEnv("STATS_WINDOW_DAYS", "7"), 7)
	if cfg.Stats.WindowDays <= 0 {
		cfg.Stats.WindowDays = 7
	}
	cfg.Stats.ReadingStream = getEnv("READING_STREAM", "heartrate:readings:stream")

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}
	cfg.Stats.Location = loc

	// 必须显式配置签名密钥；AUTH_DEV_MODE=true 时允许使用开发默认值
	cfg.Auth.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	if cfg.Auth.JWTSecret == "" || cfg.Auth.JWTSecret == devJWTSecret {
		if getEnv("AUTH_DEV_MODE", "false") != "true" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET must be set (or AUTH_DEV_MODE=true for local development)")
		}
		cfg.Auth.JWTSecret = devJWTSecret
	}
	cfg.Auth.TokenTTL = time.Duration(parseInt(getEnv("AUTH_TOKEN_TTL", "24"), 24)) * time.Hour

	cfg.Media.Enabled = getEnv("MEDIA_ENABLED", "false") == "true"
	cfg.Media.MediaConfig = config.MediaConfig{
		BaseURL:      "https://api.cloudinary.com",
		UploadPreset: "mobile_uploads",
		Folder:       "profile_images",
	}
	cfg.Media.LoadFromEnv("MEDIA")
	if cfg.Media.Enabled && cfg.Media.CloudName == "" {
		return nil, fmt.Errorf("MEDIA_CLOUD_NAME is required when MEDIA_ENABLED=true")
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

const devJWTSecret = "change-me-in-production"

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
