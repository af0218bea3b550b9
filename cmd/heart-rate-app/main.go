package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/common/database"
	"github.com/Samuel009-alt/heart-rate-app/common/logger"
	mqttcommon "github.com/Samuel009-alt/heart-rate-app/common/mqtt"
	rediscommon "github.com/Samuel009-alt/heart-rate-app/common/redis"
	"github.com/Samuel009-alt/heart-rate-app/internal/auth"
	"github.com/Samuel009-alt/heart-rate-app/internal/config"
	"github.com/Samuel009-alt/heart-rate-app/internal/consumer"
	httpapi "github.com/Samuel009-alt/heart-rate-app/internal/http"
	"github.com/Samuel009-alt/heart-rate-app/internal/media"
	"github.com/Samuel009-alt/heart-rate-app/internal/repository"
	"github.com/Samuel009-alt/heart-rate-app/internal/service"
	"github.com/Samuel009-alt/heart-rate-app/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "heart-rate-app")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis 不可用时回落到进程内 KV（统计缓存、会话吊销、引导页标记）
	var kv store.KV = store.NewMemoryKV()
	var redisClient *rediscommon.Client
	var events service.EventPublisher
	if cfg.RedisEnabled {
		c := rediscommon.NewRedisClient(&cfg.Redis)
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		err := rediscommon.Ping(pingCtx, c)
		pingCancel()
		if err == nil {
			redisClient = c
			kv = store.NewRedisKV(c)
			events = service.NewStreamPublisher(c, cfg.Stats.ReadingStream)
			log.Info("Redis enabled", zap.String("addr", cfg.Redis.Addr))
		} else {
			_ = c.Close()
			log.Warn("Redis enabled but connection failed, falling back to in-memory KV", zap.Error(err))
		}
	}

	// DB 未就绪：使用内存 repo
	var db *sql.DB
	var readingStore repository.ReadingStore = repository.NewMemoryReadingStore()
	var userRepo repository.UserRepository = repository.NewMemoryUserRepository()
	var credRepo repository.CredentialRepository = repository.NewMemoryCredentialRepository()
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			if err := database.EnsureSchema(ctx, d); err != nil {
				log.Warn("Failed to apply schema, falling back to memory repos", zap.Error(err))
				_ = d.Close()
			} else {
				db = d
				readingStore = repository.NewPostgresReadingStore(db)
				userRepo = repository.NewPostgresUserRepository(db)
				credRepo = repository.NewPostgresCredentialRepository(db)
				log.Info("DB enabled for heart-rate-app")
			}
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	var uploader media.Uploader
	if cfg.Media.Enabled {
		uploader = media.NewClient(cfg.Media.MediaConfig, log)
	}

	gateway := auth.NewGateway(auth.NewCredentialStore(credRepo), kv, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	readings := service.NewReadingService(readingStore, kv, events, service.NewSimulator(nil),
		service.ReadingServiceConfig{
			CacheTTL:   cfg.Stats.CacheTTL,
			WindowDays: cfg.Stats.WindowDays,
			Location:   cfg.Stats.Location,
		}, log)
	accounts := service.NewAccountService(gateway, userRepo, uploader, log)
	sessions := service.NewSessionManager(kv, log)

	authn := httpapi.NewAuthenticator(gateway, log)
	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(accounts, log), authn)
	router.RegisterReadingRoutes(httpapi.NewReadingsHandler(readings, log), authn)
	router.RegisterProfileRoutes(httpapi.NewProfileHandler(accounts, sessions, log), authn)

	// 穿戴设备上报（可选）
	var mqttClient *mqttcommon.Client
	var mqttConsumer *consumer.MQTTConsumer
	if cfg.MQTT.Enabled {
		c, err := mqttcommon.NewClient(&cfg.MQTT.MQTTConfig, log)
		if err != nil {
			log.Warn("MQTT enabled but connection failed, device ingestion disabled", zap.Error(err))
		} else {
			mqttClient = c
			var verifier consumer.TokenVerifier = gateway
			if cfg.MQTT.TrustTopic {
				verifier = nil
				log.Warn("MQTT_TRUST_TOPIC=true: device readings are not token-checked, broker ACLs must restrict heartrate/{user_id}/reading")
			}
			mqttConsumer = consumer.NewMQTTConsumer(c, readings, verifier, cfg.MQTT.Topic, cfg.MQTT.QoS, log)
			go func() {
				if err := mqttConsumer.Start(ctx); err != nil {
					log.Error("MQTT consumer failed", zap.Error(err))
				}
			}()
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	if mqttConsumer != nil {
		mqttConsumer.Stop()
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = rediscommon.Close(redisClient)
	_ = database.Close(db)
}
