package chart

import (
	"io"
	"math"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const seriesName = "Average BPM"

// WeeklyTrend 最近 N 天日均心率柱状图；柱子颜色取该均值所在分类的颜色
func WeeklyTrend(trend models.Trend, title string) *charts.Bar {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     "macarons",
			PageTitle: title,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Daily average heart rate",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         "BPM",
			NameLocation: "middle",
			NameGap:      40,
			Min:          0,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
			BackgroundColor: "rgba(255, 255, 255, 0.9)",
			BorderColor:     "#ccc",
		}),
	)

	bar.SetXAxis(trend.Labels)
	bar.AddSeries(seriesName, generateBarItems(trend.Averages))

	return bar
}

// RenderWeeklyTrend 输出完整 HTML 页面
func RenderWeeklyTrend(w io.Writer, trend models.Trend, title string) error {
	return WeeklyTrend(trend, title).Render(w)
}

// generateBarItems 0 表示当天无数据，不着色
func generateBarItems(averages []float64) []opts.BarData {
	items := make([]opts.BarData, 0, len(averages))
	for _, v := range averages {
		v = math.Round(v*10) / 10
		item := opts.BarData{Value: v}
		if v > 0 {
			item.ItemStyle = &opts.ItemStyle{
				Color: models.CategoryFromBPM(int(v)).Color(),
			}
		}
		items = append(items, item)
	}
	return items
}
