package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"
	"github.com/Samuel009-alt/heart-rate-app/internal/stats"

	"github.com/xuri/excelize/v2"
)

const (
	HistorySheet    = "Heart Rate History"
	StatisticsSheet = "Statistics"
)

// HistoryHeader 历史表表头
var HistoryHeader = []string{
	"Date",
	"Time",
	"BPM",
	"Category",
	"Status",
}

// HistoryWorkbook 生成心率历史导出 Excel：历史表（按传入顺序）+ 统计表
func HistoryWorkbook(readings []models.Reading, summary models.Statistics, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	index, err := f.NewSheet(HistorySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(StatisticsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 分类列按分类颜色着色
	categoryStyles := make(map[models.Category]int, len(models.Categories()))
	for _, c := range models.Categories() {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: c.Color()},
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create category style: %w", err)
		}
		categoryStyles[c] = style
	}

	if err := writeHeader(f, HistorySheet, HistoryHeader, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, width := range []float64{12, 10, 8, 14, 10} {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(HistorySheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, r := range readings {
		row := rowIdx + 2 // 从第2行开始（第1行是表头）
		category := r.Category()
		values := []interface{}{
			r.Date(loc),
			r.Time(loc),
			r.BPM,
			category.Label(),
			string(stats.Status(r.BPM)),
		}
		for colIdx, value := range values {
			if err := setCellValue(f, HistorySheet, colIdx+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(HistorySheet, cell, cell, categoryStyles[category]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set category style: %w", err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(HistorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeStatistics(f, summary, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}

// writeStatistics 统计表：汇总值 + 各分类计数
func writeStatistics(f *excelize.File, summary models.Statistics, headerStyle int) error {
	if err := writeHeader(f, StatisticsSheet, []string{"Metric", "Value"}, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(StatisticsSheet, "A", "A", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	rows := [][2]interface{}{
		{"Average BPM", summary.AverageBPM},
		{"Min BPM", summary.MinBPM},
		{"Max BPM", summary.MaxBPM},
		{"Total Readings", summary.TotalReadings},
	}
	for _, c := range models.Categories() {
		lo, hi := c.Range()
		rows = append(rows, [2]interface{}{
			fmt.Sprintf("%s (%d-%d BPM)", c.Label(), lo, hi),
			summary.CategoryCount(c),
		})
	}

	for i, kv := range rows {
		row := i + 2
		if err := setCellValue(f, StatisticsSheet, 1, row, kv[0]); err != nil {
			return fmt.Errorf("failed to set statistics cell: %w", err)
		}
		if err := setCellValue(f, StatisticsSheet, 2, row, kv[1]); err != nil {
			return fmt.Errorf("failed to set statistics cell: %w", err)
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

// setCellValue 设置单元格值
func setCellValue(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
