package service

import (
	"context"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	commonredis "github.com/Samuel009-alt/heart-rate-app/common/redis"
)

const EventReadingSaved = "reading.saved"

// ReadingSavedEvent 写入 Redis Stream 的 reading.saved 事件
type ReadingSavedEvent struct {
	Type      string          `json:"type"`
	UserID    string          `json:"user_id"`
	ReadingID string          `json:"reading_id"`
	BPM       int             `json:"bpm"`
	Timestamp int64           `json:"timestamp"`
	Category  models.Category `json:"category"`
}

// EventPublisher 读数保存后的事件出口（失败不影响保存结果）
type EventPublisher interface {
	PublishReadingSaved(ctx context.Context, userID string, r models.Reading) error
}

// StreamPublisher 基于 Redis Streams 的 EventPublisher
type StreamPublisher struct {
	client *commonredis.Client
	stream string
}

func NewStreamPublisher(client *commonredis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) PublishReadingSaved(ctx context.Context, userID string, r models.Reading) error {
	_, err := commonredis.PublishJSONToStream(ctx, p.client, p.stream, newReadingSavedEvent(userID, r))
	return err
}

func newReadingSavedEvent(userID string, r models.Reading) ReadingSavedEvent {
	return ReadingSavedEvent{
		Type:      EventReadingSaved,
		UserID:    userID,
		ReadingID: r.ID,
		BPM:       r.BPM,
		Timestamp: r.Timestamp,
		Category:  r.Category(),
	}
}
