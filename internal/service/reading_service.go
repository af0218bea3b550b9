package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"
	"github.com/Samuel009-alt/heart-rate-app/internal/repository"
	"github.com/Samuel009-alt/heart-rate-app/internal/stats"
	"github.com/Samuel009-alt/heart-rate-app/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrMissingUser = errors.New("user id is required")

const (
	statsKeyPrefix    = "heartrate:stats:"
	statsGenKeyPrefix = "heartrate:stats:gen:"
)

// statsCacheEntry 缓存的统计结果；Gen 与当前代号不一致时视为过期
type statsCacheEntry struct {
	Gen   string            `json:"gen"`
	Stats models.Statistics `json:"stats"`
}

// ReadingServiceConfig 统计相关参数
type ReadingServiceConfig struct {
	CacheTTL   time.Duration
	WindowDays int
	Location   *time.Location
}

// ReadingService 心率记录：测量、保存、历史、统计、趋势
type ReadingService struct {
	readings repository.ReadingStore
	kv       store.KV
	events   EventPublisher // 可为 nil
	sim      *Simulator
	cfg      ReadingServiceConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewReadingService 创建记录服务
func NewReadingService(readings repository.ReadingStore, kv store.KV, events EventPublisher, sim *Simulator, cfg ReadingServiceConfig, logger *zap.Logger) *ReadingService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = stats.DefaultWindowDays
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if sim == nil {
		sim = NewSimulator(nil)
	}
	return &ReadingService{
		readings: readings,
		kv:       kv,
		events:   events,
		sim:      sim,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// SaveResult 保存结果：新记录和保存后重新拉取的历史（按时间倒序）
type SaveResult struct {
	Reading models.Reading   `json:"reading"`
	History []models.Reading `json:"history"`
}

// Measurement 一次模拟测量
type Measurement struct {
	Samples []int            `json:"samples"`
	Reading models.Reading   `json:"reading"`
	History []models.Reading `json:"history"`
}

// Measure 运行模拟测量并保存最终读数
func (s *ReadingService) Measure(ctx context.Context, userID string) (*Measurement, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	samples, bpm := s.sim.Run()
	res, err := s.SaveReading(ctx, userID, bpm)
	if err != nil {
		return nil, err
	}
	return &Measurement{Samples: samples, Reading: res.Reading, History: res.History}, nil
}

// SaveReading 以当前时间保存一条读数
func (s *ReadingService) SaveReading(ctx context.Context, userID string, bpm int) (*SaveResult, error) {
	return s.save(ctx, userID, bpm, s.now().UnixMilli())
}

// Ingest 保存设备上报的读数；timestamp <= 0 时取当前时间
func (s *ReadingService) Ingest(ctx context.Context, userID string, bpm int, timestamp int64) (*SaveResult, error) {
	if timestamp <= 0 {
		timestamp = s.now().UnixMilli()
	}
	return s.save(ctx, userID, bpm, timestamp)
}

// save 保存失败时直接返回错误，不在本地追加（以存储为准）
func (s *ReadingService) save(ctx context.Context, userID string, bpm int, timestamp int64) (*SaveResult, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	reading, err := models.NewReading(bpm, timestamp)
	if err != nil {
		return nil, err
	}

	saved, err := s.readings.SaveReading(ctx, userID, reading)
	if err != nil {
		s.logger.Error("Failed to save reading",
			zap.String("user_id", userID),
			zap.Int("bpm", bpm),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}

	s.invalidateStats(ctx, userID)

	if s.events != nil {
		if err := s.events.PublishReadingSaved(ctx, userID, saved); err != nil {
			s.logger.Warn("Failed to publish reading event",
				zap.String("user_id", userID),
				zap.String("reading_id", saved.ID),
				zap.Error(err),
			)
		}
	}

	return &SaveResult{Reading: saved, History: s.History(ctx, userID)}, nil
}

// History 按时间倒序返回全部记录；读取失败时记录日志并返回空列表
func (s *ReadingService) History(ctx context.Context, userID string) []models.Reading {
	readings, err := s.fetch(ctx, userID)
	if err != nil {
		return []models.Reading{}
	}
	return stats.SortedByRecency(readings)
}

// Recent 最近 n 条
func (s *ReadingService) Recent(ctx context.Context, userID string, n int) []models.Reading {
	history := s.History(ctx, userID)
	if n < 0 {
		n = 0
	}
	if n < len(history) {
		history = history[:n]
	}
	return history
}

// Statistics 统计结果带 KV 缓存；缓存读写失败不影响结果
// 每次保存都会更换该用户的缓存代号，并发保存前算出的结果不会再被读到
func (s *ReadingService) Statistics(ctx context.Context, userID string) models.Statistics {
	key := statsKeyPrefix + userID
	gen, genOK := s.statsGeneration(ctx, userID)

	if genOK {
		if raw, err := s.kv.Get(ctx, key); err == nil {
			var cached statsCacheEntry
			switch {
			case json.Unmarshal([]byte(raw), &cached) != nil:
				s.logger.Warn("Discarding malformed statistics cache", zap.String("user_id", userID))
			case cached.Gen == gen:
				return cached.Stats
			}
		} else if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Failed to read statistics cache", zap.String("user_id", userID), zap.Error(err))
		}
	}

	readings, err := s.fetch(ctx, userID)
	if err != nil {
		// 不缓存失败时的空结果
		return models.Statistics{}
	}
	result := stats.ComputeStatistics(stats.Measured(readings))

	if !genOK {
		return result
	}
	if b, err := json.Marshal(statsCacheEntry{Gen: gen, Stats: result}); err == nil {
		if err := s.kv.Set(ctx, key, string(b), s.cfg.CacheTTL); err != nil {
			s.logger.Warn("Failed to write statistics cache", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return result
}

// Snapshot 一次拉取同时得到倒序历史和统计，保证两者一致（导出用，不走缓存）
func (s *ReadingService) Snapshot(ctx context.Context, userID string) ([]models.Reading, models.Statistics) {
	readings, err := s.fetch(ctx, userID)
	if err != nil {
		return []models.Reading{}, models.Statistics{}
	}
	return stats.SortedByRecency(readings), stats.ComputeStatistics(stats.Measured(readings))
}

// Trend 最近 WindowDays 天的日均值及星期标签，旧 -> 新
func (s *ReadingService) Trend(ctx context.Context, userID string) models.Trend {
	now := s.now().In(s.cfg.Location)
	readings, err := s.fetch(ctx, userID)
	if err != nil {
		readings = nil
	}
	return models.Trend{
		Labels:   stats.DayLabels(s.cfg.WindowDays, now),
		Averages: stats.DailyAverages(stats.Measured(readings), s.cfg.WindowDays, now),
	}
}

// Location 日界所用时区
func (s *ReadingService) Location() *time.Location {
	return s.cfg.Location
}

func (s *ReadingService) fetch(ctx context.Context, userID string) ([]models.Reading, error) {
	readings, err := s.readings.FetchHistory(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch reading history", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return readings, nil
}

// statsGeneration 当前缓存代号；从未保存过时为空串
func (s *ReadingService) statsGeneration(ctx context.Context, userID string) (string, bool) {
	gen, err := s.kv.Get(ctx, statsGenKeyPrefix+userID)
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, store.ErrMiss):
		return "", true
	default:
		s.logger.Warn("Failed to read statistics cache generation", zap.String("user_id", userID), zap.Error(err))
		return "", false
	}
}

func (s *ReadingService) invalidateStats(ctx context.Context, userID string) {
	if err := s.kv.Set(ctx, statsGenKeyPrefix+userID, uuid.NewString(), 0); err != nil {
		s.logger.Warn("Failed to rotate statistics cache generation", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.kv.Delete(ctx, statsKeyPrefix+userID); err != nil {
		s.logger.Warn("Failed to invalidate statistics cache", zap.String("user_id", userID), zap.Error(err))
	}
}
