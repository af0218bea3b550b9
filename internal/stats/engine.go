// Package stats 心率统计：分类、汇总、按天均值、按时间排序。
// 所有函数都是纯函数，不修改入参，可在多个 goroutine 中对独立快照并发调用。
package stats

import (
	"sort"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"
)

// DefaultWindowDays 趋势图默认天数
const DefaultWindowDays = 7

// Categorize 计算单条记录的分类（只看 bpm）
func Categorize(r models.Reading) models.Category {
	return models.CategoryFromBPM(r.BPM)
}

// ComputeStatistics 汇总统计；空列表返回全 0
// AverageBPM 为整数截断（74.9 -> 74）
func ComputeStatistics(readings []models.Reading) models.Statistics {
	if len(readings) == 0 {
		return models.Statistics{}
	}

	out := models.Statistics{
		MinBPM:        readings[0].BPM,
		MaxBPM:        readings[0].BPM,
		TotalReadings: len(readings),
	}

	var sum int64
	for _, r := range readings {
		sum += int64(r.BPM)
		if r.BPM < out.MinBPM {
			out.MinBPM = r.BPM
		}
		if r.BPM > out.MaxBPM {
			out.MaxBPM = r.BPM
		}
		switch Categorize(r) {
		case models.CategoryResting:
			out.RestingCount++
		case models.CategoryModerate:
			out.ModerateCount++
		case models.CategoryVigorous:
			out.VigorousCount++
		case models.CategoryMaximum:
			out.MaximumCount++
		}
	}
	out.AverageBPM = int(sum / int64(len(readings)))

	return out
}

// DailyAverages 最近 windowDays 天（含今天）每天的平均 bpm，旧 -> 新
// 日界按 now 所在时区的本地日历计算；不同时区的机器结果可能不同
// 某天无数据时为 0.0
func DailyAverages(readings []models.Reading, windowDays int, now time.Time) []float64 {
	if windowDays <= 0 {
		return []float64{}
	}

	averages := make([]float64, windowDays)
	sums := make([]int64, windowDays)
	counts := make([]int, windowDays)

	loc := now.Location()
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(windowDays - 1))

	for _, r := range readings {
		ts := time.UnixMilli(r.Timestamp).In(loc)
		if ts.Before(first) {
			continue
		}
		idx := dayIndex(first, ts, windowDays)
		if idx < 0 {
			continue
		}
		sums[idx] += int64(r.BPM)
		counts[idx]++
	}

	for i := range averages {
		if counts[i] > 0 {
			averages[i] = float64(sums[i]) / float64(counts[i])
		}
	}
	return averages
}

// DayLabels 与 DailyAverages 对齐的星期标签（"Mon" ...）
func DayLabels(windowDays int, now time.Time) []string {
	if windowDays <= 0 {
		return []string{}
	}
	labels := make([]string, 0, windowDays)
	today := startOfDay(now)
	for i := windowDays - 1; i >= 0; i-- {
		labels = append(labels, today.AddDate(0, 0, -i).Format("Mon"))
	}
	return labels
}

// SortedByRecency 按 Timestamp 倒序的稳定排序，返回新切片
func SortedByRecency(readings []models.Reading) []models.Reading {
	out := make([]models.Reading, len(readings))
	copy(out, readings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Measured 过滤掉 bpm<=0 的未测量记录
func Measured(readings []models.Reading) []models.Reading {
	out := make([]models.Reading, 0, len(readings))
	for _, r := range readings {
		if r.IsMeasured() {
			out = append(out, r)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayIndex 用日历日期而不是 24h 换算，夏令时切换当天也不会错位
func dayIndex(first, ts time.Time, windowDays int) int {
	day := startOfDay(ts)
	for i := 0; i < windowDays; i++ {
		if first.AddDate(0, 0, i).Equal(day) {
			return i
		}
	}
	return -1
}
