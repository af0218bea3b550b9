package stats

// HealthStatus 单条记录的提示标签
type HealthStatus string

const (
	StatusLow    HealthStatus = "Low"
	StatusNormal HealthStatus = "Normal"
	StatusHigh   HealthStatus = "High"
)

// Status <60 Low，>100 High，其余 Normal
func Status(bpm int) HealthStatus {
	switch {
	case bpm < 60:
		return StatusLow
	case bpm > 100:
		return StatusHigh
	default:
		return StatusNormal
	}
}
