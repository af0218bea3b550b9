package service

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// SampleCount 一次测量过程中的进度采样数
	SampleCount = 50

	sampleMin  = 65
	sampleSpan = 30 // [65, 95)
	finalMin   = 70
	finalSpan  = 15 // [70, 85)
)

// Simulator 模拟测量：没有真实传感器时生成进度采样和最终读数
type Simulator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator rnd 为 nil 时使用按当前时间播种的随机源
func NewSimulator(rnd *rand.Rand) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{rnd: rnd}
}

// Run 返回 SampleCount 个进度采样和最终 bpm
func (s *Simulator) Run() ([]int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := make([]int, SampleCount)
	for i := range samples {
		samples[i] = sampleMin + s.rnd.Intn(sampleSpan)
	}
	return samples, finalMin + s.rnd.Intn(finalSpan)
}
