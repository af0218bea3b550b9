package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bpms(values ...int) []models.Reading {
	out := make([]models.Reading, 0, len(values))
	for i, v := range values {
		out = append(out, models.Reading{BPM: v, Timestamp: int64(i)})
	}
	return out
}

func TestCategorize_Table(t *testing.T) {
	cases := []struct {
		bpm  int
		want models.Category
	}{
		{60, models.CategoryResting},
		{80, models.CategoryResting},
		{81, models.CategoryModerate},
		{120, models.CategoryModerate},
		{121, models.CategoryVigorous},
		{160, models.CategoryVigorous},
		{161, models.CategoryMaximum},
		{220, models.CategoryMaximum},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Categorize(models.Reading{BPM: c.bpm}), "bpm=%d", c.bpm)
	}
}

func TestCategorize_OutOfRangeFallsBackToResting(t *testing.T) {
	for _, bpm := range []int{-5, 0, 40, 59, 221, 300, 1 << 20} {
		assert.Equal(t, models.CategoryResting, Categorize(models.Reading{BPM: bpm}), "bpm=%d", bpm)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	assert.Equal(t, models.Statistics{}, ComputeStatistics(nil))
	assert.Equal(t, models.Statistics{}, ComputeStatistics([]models.Reading{}))
}

func TestComputeStatistics_Scenario(t *testing.T) {
	got := ComputeStatistics(bpms(65, 95, 130, 200, 72))

	assert.Equal(t, models.Statistics{
		AverageBPM:    112,
		MinBPM:        65,
		MaxBPM:        200,
		TotalReadings: 5,
		RestingCount:  2,
		ModerateCount: 1,
		VigorousCount: 1,
		MaximumCount:  1,
	}, got)
}

func TestComputeStatistics_AverageTruncates(t *testing.T) {
	assert.Equal(t, 70, ComputeStatistics(bpms(70, 71, 71)).AverageBPM)
	// 74.9 -> 74
	assert.Equal(t, 74, ComputeStatistics(bpms(74, 74, 74, 74, 74, 74, 74, 74, 74, 83)).AverageBPM)
}

func TestComputeStatistics_CountsSumToTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 1; n < 50; n++ {
		values := make([]int, n)
		for i := range values {
			values[i] = rng.Intn(320) - 10
		}
		s := ComputeStatistics(bpms(values...))
		sum := s.RestingCount + s.ModerateCount + s.VigorousCount + s.MaximumCount
		require.Equal(t, s.TotalReadings, sum)
		require.Equal(t, n, s.TotalReadings)
	}
}

func TestComputeStatistics_OrderIndependent(t *testing.T) {
	readings := bpms(65, 95, 130, 200, 72, 88, 150, 61)
	want := ComputeStatistics(readings)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Reading(nil), readings...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, ComputeStatistics(shuffled))
	}
}

func TestComputeStatistics_DoesNotMutateInput(t *testing.T) {
	readings := bpms(90, 60, 150)
	before := append([]models.Reading(nil), readings...)
	_ = ComputeStatistics(readings)
	assert.Equal(t, before, readings)
}

func TestDailyAverages_EmptyHistory(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0}, DailyAverages(nil, DefaultWindowDays, now))
}

func TestDailyAverages_BucketsByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, loc)
	at := func(day, hour, min int) int64 {
		return time.Date(2026, 3, day, hour, min, 0, 0, loc).UnixMilli()
	}
	endOfDay := time.Date(2026, 3, 9, 23, 59, 59, int(999*time.Millisecond), loc).UnixMilli()

	readings := []models.Reading{
		{BPM: 70, Timestamp: at(10, 0, 0)},  // today, start of day
		{BPM: 81, Timestamp: at(10, 9, 0)},  // today
		{BPM: 90, Timestamp: endOfDay},      // yesterday, last millisecond
		{BPM: 60, Timestamp: at(4, 0, 0)},   // oldest day in window
		{BPM: 100, Timestamp: at(3, 23, 0)}, // outside window
		{BPM: 120, Timestamp: at(11, 1, 0)}, // future
	}

	got := DailyAverages(readings, DefaultWindowDays, now)

	require.Len(t, got, 7)
	assert.Equal(t, []float64{60, 0, 0, 0, 0, 90, 75.5}, got)
}

func TestDailyAverages_AlwaysWindowLength(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var readings []models.Reading
	for i := 0; i < 500; i++ {
		readings = append(readings, models.Reading{BPM: 60 + i%100, Timestamp: now.Add(-time.Duration(i) * time.Hour).UnixMilli()})
	}
	for _, w := range []int{1, 3, 7, 30} {
		assert.Len(t, DailyAverages(readings, w, now), w)
	}
	assert.Empty(t, DailyAverages(readings, 0, now))
}

func TestDayLabels(t *testing.T) {
	// 2026-03-10 是周二
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"Wed", "Thu", "Fri", "Sat", "Sun", "Mon", "Tue"}, DayLabels(7, now))
}

func TestSortedByRecency_StableAndDescending(t *testing.T) {
	readings := []models.Reading{
		{ID: "a", BPM: 70, Timestamp: 100},
		{ID: "b", BPM: 71, Timestamp: 300},
		{ID: "c", BPM: 72, Timestamp: 200},
		{ID: "d", BPM: 73, Timestamp: 300},
		{ID: "e", BPM: 74, Timestamp: 100},
	}

	got := SortedByRecency(readings)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "d", "c", "a", "e"}, ids)
	// 入参不变
	assert.Equal(t, "a", readings[0].ID)
}

func TestMeasured_DropsUnset(t *testing.T) {
	got := Measured(bpms(0, 72, -1, 90))
	require.Len(t, got, 2)
	assert.Equal(t, 72, got[0].BPM)
	assert.Equal(t, 90, got[1].BPM)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusLow, Status(59))
	assert.Equal(t, StatusNormal, Status(60))
	assert.Equal(t, StatusNormal, Status(100))
	assert.Equal(t, StatusHigh, Status(101))
}
