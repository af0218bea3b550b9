package httpapi

import (
	"errors"
	"net/http"

	"github.com/Samuel009-alt/heart-rate-app/internal/chart"
	"github.com/Samuel009-alt/heart-rate-app/internal/export"
	"github.com/Samuel009-alt/heart-rate-app/internal/models"
	"github.com/Samuel009-alt/heart-rate-app/internal/service"
	"github.com/Samuel009-alt/heart-rate-app/internal/stats"

	"go.uber.org/zap"
)

const defaultRecentLimit = 3

// ReadingsHandler 心率记录、统计、趋势、导出
type ReadingsHandler struct {
	readings *service.ReadingService
	logger   *zap.Logger
}

func NewReadingsHandler(readings *service.ReadingService, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{readings: readings, logger: logger}
}

// readingItem 列表项（日期、时间、分类、状态由 timestamp/bpm 推导）
type readingItem struct {
	ReadingID     string             `json:"reading_id"`
	BPM           int                `json:"bpm"`
	Timestamp     int64              `json:"timestamp"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Category      models.Category    `json:"category"`
	CategoryColor string             `json:"category_color"`
	Status        stats.HealthStatus `json:"status"`
}

type createReadingRequest struct {
	BPM *int `json:"bpm"`
}

func (h *ReadingsHandler) toItems(readings []models.Reading) []readingItem {
	loc := h.readings.Location()
	items := make([]readingItem, 0, len(readings))
	for _, r := range readings {
		c := r.Category()
		items = append(items, readingItem{
			ReadingID:     r.ID,
			BPM:           r.BPM,
			Timestamp:     r.Timestamp,
			Date:          r.Date(loc),
			Time:          r.Time(loc),
			Category:      c,
			CategoryColor: c.Color(),
			Status:        stats.Status(r.BPM),
		})
	}
	return items
}

// List GET /api/v1/readings（最新在前）
func (h *ReadingsHandler) List(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, Ok(h.toItems(h.readings.History(r.Context(), userID))))
}

// Recent GET /api/v1/readings/recent?limit=3
func (h *ReadingsHandler) Recent(w http.ResponseWriter, r *http.Request, userID string) {
	limit := parseInt(r.URL.Query().Get("limit"), defaultRecentLimit)
	if limit < 0 {
		limit = defaultRecentLimit
	}
	writeJSON(w, http.StatusOK, Ok(h.toItems(h.readings.Recent(r.Context(), userID, limit))))
}

// Create POST /api/v1/readings {bpm}
func (h *ReadingsHandler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	var req createReadingRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil || req.BPM == nil {
		writeJSON(w, http.StatusOK, Fail("bpm is required"))
		return
	}

	res, err := h.readings.SaveReading(r.Context(), userID, *req.BPM)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(saveErrorMessage(err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"reading": h.toItems([]models.Reading{res.Reading})[0],
		"history": h.toItems(res.History),
	}))
}

// Measure POST /api/v1/readings/measure
func (h *ReadingsHandler) Measure(w http.ResponseWriter, r *http.Request, userID string) {
	m, err := h.readings.Measure(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(saveErrorMessage(err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"samples": m.Samples,
		"reading": h.toItems([]models.Reading{m.Reading})[0],
		"history": h.toItems(m.History),
	}))
}

// Stats GET /api/v1/stats
func (h *ReadingsHandler) Stats(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, Ok(h.readings.Statistics(r.Context(), userID)))
}

// Trend GET /api/v1/stats/trend
func (h *ReadingsHandler) Trend(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, Ok(h.readings.Trend(r.Context(), userID)))
}

// TrendChart GET /api/v1/stats/trend/chart（HTML）
func (h *ReadingsHandler) TrendChart(w http.ResponseWriter, r *http.Request, userID string) {
	trend := h.readings.Trend(r.Context(), userID)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.RenderWeeklyTrend(w, trend, "Weekly Trend"); err != nil {
		h.logger.Error("Failed to render trend chart", zap.String("user_id", userID), zap.Error(err))
	}
}

// Export GET /api/v1/readings/export（xlsx）
func (h *ReadingsHandler) Export(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	history, summary := h.readings.Snapshot(ctx, userID)
	data, err := export.HistoryWorkbook(history, summary, h.readings.Location())
	if err != nil {
		h.logger.Error("Failed to generate export", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate export"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="heart-rate-history.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func saveErrorMessage(err error) string {
	if errors.Is(err, models.ErrInvalidReading) {
		return "bpm must be between 1 and 300"
	}
	return "failed to save reading"
}
