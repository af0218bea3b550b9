package models

import (
	"errors"
	"fmt"
	"time"
)

// MaxBPM 生理上允许的最大心率（超出视为无效输入）
const MaxBPM = 300

// ErrInvalidReading 录入时 bpm 不在 (0, MaxBPM] 范围内
var ErrInvalidReading = errors.New("invalid heart rate reading")

const (
	dateLayout  = "Jan 02"
	timeLayout  = "15:04"
	labelLayout = "Jan 02, 15:04"
)

// Reading 一次心率测量
// Timestamp 为采集时间（毫秒，Unix epoch），日期/时间字符串不落库，按需从 Timestamp 推导
type Reading struct {
	ID        string `json:"reading_id,omitempty"`
	BPM       int    `json:"bpm"`
	Timestamp int64  `json:"timestamp"`
}

// NewReading 校验并构造一条记录
func NewReading(bpm int, timestamp int64) (Reading, error) {
	if bpm <= 0 || bpm > MaxBPM {
		return Reading{}, fmt.Errorf("%w: bpm=%d", ErrInvalidReading, bpm)
	}
	return Reading{BPM: bpm, Timestamp: timestamp}, nil
}

// IsMeasured bpm<=0 表示尚未测量，不参与统计
func (r Reading) IsMeasured() bool {
	return r.BPM > 0
}

// CapturedAt 采集时间（指定时区）
func (r Reading) CapturedAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(r.Timestamp).In(loc)
}

// Date "MMM dd"
func (r Reading) Date(loc *time.Location) string {
	return r.CapturedAt(loc).Format(dateLayout)
}

// Time "HH:mm"
func (r Reading) Time(loc *time.Location) string {
	return r.CapturedAt(loc).Format(timeLayout)
}

// Label "MMM dd, HH:mm"
func (r Reading) Label(loc *time.Location) string {
	return r.CapturedAt(loc).Format(labelLayout)
}

// Category 根据 bpm 计算的分类
func (r Reading) Category() Category {
	return CategoryFromBPM(r.BPM)
}
