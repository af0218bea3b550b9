package models

// Statistics 一组记录的聚合结果（按需重算，不落库）
type Statistics struct {
	AverageBPM    int `json:"average_bpm"`
	MinBPM        int `json:"min_bpm"`
	MaxBPM        int `json:"max_bpm"`
	TotalReadings int `json:"total_readings"`
	RestingCount  int `json:"resting_count"`
	ModerateCount int `json:"moderate_count"`
	VigorousCount int `json:"vigorous_count"`
	MaximumCount  int `json:"maximum_count"`
}

// CategoryCount 返回某分类的计数
func (s Statistics) CategoryCount(c Category) int {
	switch c {
	case CategoryResting:
		return s.RestingCount
	case CategoryModerate:
		return s.ModerateCount
	case CategoryVigorous:
		return s.VigorousCount
	case CategoryMaximum:
		return s.MaximumCount
	default:
		return 0
	}
}

// Trend 最近 N 天的日均心率，0 表示当天无数据
type Trend struct {
	Labels   []string  `json:"labels"`
	Averages []float64 `json:"averages"`
}
