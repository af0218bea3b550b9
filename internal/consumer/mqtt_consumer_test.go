package consumer

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/auth"
	"github.com/Samuel009-alt/heart-rate-app/internal/repository"
	"github.com/Samuel009-alt/heart-rate-app/internal/service"
	"github.com/Samuel009-alt/heart-rate-app/internal/store"

	mqttcommon "github.com/Samuel009-alt/heart-rate-app/common/mqtt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSubscriber 记录订阅的 handler，供测试直接投递消息
type fakeSubscriber struct {
	mu           sync.Mutex
	topic        string
	qos          byte
	handler      mqttcommon.MessageHandler
	unsubscribed []string
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topic, f.qos, f.handler = topic, qos, handler
	return nil
}

func (f *fakeSubscriber) handlerSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

func (f *fakeSubscriber) Unsubscribe(topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, topics...)
	return nil
}

func newTestConsumer(t *testing.T) (*MQTTConsumer, *repository.MemoryReadingStore) {
	t.Helper()
	readings := repository.NewMemoryReadingStore()
	svc := service.NewReadingService(readings, store.NewMemoryKV(), nil,
		service.NewSimulator(rand.New(rand.NewSource(1))),
		service.ReadingServiceConfig{CacheTTL: time.Minute, WindowDays: 7, Location: time.UTC},
		zap.NewNop())
	return NewMQTTConsumer(&fakeSubscriber{}, svc, nil, "heartrate/+/reading", 1, zap.NewNop()), readings
}

func TestUserIDFromTopic(t *testing.T) {
	uid, err := userIDFromTopic("heartrate/u-123/reading")
	require.NoError(t, err)
	assert.Equal(t, "u-123", uid)

	for _, topic := range []string{
		"heartrate//reading",
		"heartrate/u1",
		"heartrate/u1/reading/extra",
		"radar/u1/data",
		"heartrate/u1/status",
	} {
		_, err := userIDFromTopic(topic)
		assert.Error(t, err, topic)
	}
}

func TestHandleMessage_Valid(t *testing.T) {
	c, readings := newTestConsumer(t)

	err := c.handleMessage("heartrate/u1/reading", []byte(`{"bpm":72,"timestamp":1700000000000}`))
	require.NoError(t, err)

	history, err := readings.FetchHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 72, history[0].BPM)
	assert.Equal(t, int64(1700000000000), history[0].Timestamp)
}

func TestHandleMessage_MissingTimestampUsesNow(t *testing.T) {
	c, readings := newTestConsumer(t)

	before := time.Now().UnixMilli()
	require.NoError(t, c.handleMessage("heartrate/u1/reading", []byte(`{"bpm":95}`)))

	history, err := readings.FetchHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.GreaterOrEqual(t, history[0].Timestamp, before)
}

func TestHandleMessage_InvalidDropped(t *testing.T) {
	c, readings := newTestConsumer(t)

	cases := []struct {
		topic   string
		payload string
	}{
		{"heartrate/u1/reading", `not json`},
		{"heartrate/u1/reading", `{"timestamp":1700000000000}`},
		{"heartrate/u1/reading", `{"bpm":0}`},
		{"heartrate/u1/reading", `{"bpm":400}`},
		{"heartrate/u1", `{"bpm":72}`},
	}
	for _, tc := range cases {
		assert.Error(t, c.handleMessage(tc.topic, []byte(tc.payload)), tc.payload)
	}

	history, err := readings.FetchHistory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMQTTConsumer_StartStop(t *testing.T) {
	sub := &fakeSubscriber{}
	readings := repository.NewMemoryReadingStore()
	svc := service.NewReadingService(readings, store.NewMemoryKV(), nil, nil,
		service.ReadingServiceConfig{Location: time.UTC}, zap.NewNop())
	c := NewMQTTConsumer(sub, svc, nil, "heartrate/+/reading", 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return sub.handlerSet() }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "heartrate/+/reading", sub.topic)
	assert.Equal(t, byte(1), sub.qos)

	cancel()
	require.NoError(t, <-done)

	c.Stop()
	assert.Equal(t, []string{"heartrate/+/reading"}, sub.unsubscribed)

	// 订阅后投递的消息走同一个 handler
	require.NoError(t, sub.handler("heartrate/u9/reading", []byte(`{"bpm":64}`)))
	history, err := readings.FetchHistory(context.Background(), "u9")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHandleMessage_TokenMustMatchTopicUser(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	gw := auth.NewGateway(auth.NewCredentialStore(repository.NewMemoryCredentialRepository()), kv, "test-secret", time.Hour, zap.NewNop())
	alice, err := gw.SignUp(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	bob, err := gw.SignUp(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)

	readings := repository.NewMemoryReadingStore()
	svc := service.NewReadingService(readings, kv, nil, nil,
		service.ReadingServiceConfig{Location: time.UTC}, zap.NewNop())
	c := NewMQTTConsumer(&fakeSubscriber{}, svc, gw, "heartrate/+/reading", 1, zap.NewNop())

	topic := "heartrate/" + alice.UserID + "/reading"

	// 无 token、他人 token、伪造 token 都拒绝
	assert.Error(t, c.handleMessage(topic, []byte(`{"bpm":72}`)))
	assert.Error(t, c.handleMessage(topic, []byte(`{"bpm":72,"token":"`+bob.Token+`"}`)))
	assert.Error(t, c.handleMessage(topic, []byte(`{"bpm":72,"token":"forged"}`)))

	history, err := readings.FetchHistory(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, c.handleMessage(topic, []byte(`{"bpm":72,"token":"`+alice.Token+`"}`)))

	// 登出后 token 失效
	require.NoError(t, gw.SignOut(ctx, alice.Token))
	assert.Error(t, c.handleMessage(topic, []byte(`{"bpm":80,"token":"`+alice.Token+`"}`)))

	history, err = readings.FetchHistory(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 72, history[0].BPM)
}
