package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Samuel009-alt/heart-rate-app/internal/service"

	mqttcommon "github.com/Samuel009-alt/heart-rate-app/common/mqtt"
	"go.uber.org/zap"
)

// Subscriber MQTT 订阅（common/mqtt.Client 实现）
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// ReadingIngester 设备读数入库（service.ReadingService 实现）
type ReadingIngester interface {
	Ingest(ctx context.Context, userID string, bpm int, timestamp int64) (*service.SaveResult, error)
}

// TokenVerifier 校验设备携带的会话 token（auth.Gateway 实现）
type TokenVerifier interface {
	CurrentUserID(ctx context.Context, token string) (string, bool)
}

// DevicePayload 穿戴设备上报的消息体；timestamp 为毫秒，可省略
// token 为该用户的会话 token，启用校验时必须与主题中的 user_id 一致
type DevicePayload struct {
	BPM       *int   `json:"bpm"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Token     string `json:"token,omitempty"`
}

// MQTTConsumer 订阅 heartrate/{user_id}/reading 并写入心率记录
type MQTTConsumer struct {
	subscriber Subscriber
	readings   ReadingIngester
	verifier   TokenVerifier // nil 时信任主题（依赖 broker ACL）
	topic      string
	qos        byte
	logger     *zap.Logger
	ctx        context.Context
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(subscriber Subscriber, readings ReadingIngester, verifier TokenVerifier, topic string, qos byte, logger *zap.Logger) *MQTTConsumer {
	return &MQTTConsumer{
		subscriber: subscriber,
		readings:   readings,
		verifier:   verifier,
		topic:      topic,
		qos:        qos,
		logger:     logger,
		ctx:        context.Background(),
	}
}

// Start 订阅主题并阻塞到 ctx 取消
func (c *MQTTConsumer) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.subscriber.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to reading topic: %w", err)
	}

	c.logger.Info("MQTT consumer started", zap.String("topic", c.topic))

	<-ctx.Done()
	return nil
}

// Stop 取消订阅
func (c *MQTTConsumer) Stop() {
	if err := c.subscriber.Unsubscribe(c.topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("MQTT consumer stopped")
}

// handleMessage 无效消息返回错误（由 mqtt client 记录后丢弃）
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	userID, err := userIDFromTopic(topic)
	if err != nil {
		return err
	}

	var msg DevicePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.BPM == nil {
		return fmt.Errorf("missing bpm in message from %s", topic)
	}
	if c.verifier != nil {
		uid, ok := c.verifier.CurrentUserID(c.ctx, msg.Token)
		if !ok || uid != userID {
			return fmt.Errorf("unauthorized reading for user %s on %s", userID, topic)
		}
	}

	res, err := c.readings.Ingest(c.ctx, userID, *msg.BPM, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to ingest reading: %w", err)
	}

	c.logger.Info("Ingested device reading",
		zap.String("user_id", userID),
		zap.String("reading_id", res.Reading.ID),
		zap.Int("bpm", res.Reading.BPM),
	)
	return nil
}

// userIDFromTopic 主题格式: heartrate/{user_id}/reading
func userIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "heartrate" || parts[2] != "reading" || parts[1] == "" {
		return "", fmt.Errorf("invalid topic format: %s", topic)
	}
	return parts[1], nil
}
