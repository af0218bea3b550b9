package models

import "encoding/json"

// Category 心率区间分类（封闭枚举，不落库）
type Category int

const (
	CategoryResting Category = iota
	CategoryModerate
	CategoryVigorous
	CategoryMaximum
)

type categoryInfo struct {
	label string
	min   int
	max   int
	color string
}

// 表顺序即匹配顺序
var categoryTable = [...]categoryInfo{
	CategoryResting:  {label: "Resting", min: 60, max: 80, color: "#4CAF50"},
	CategoryModerate: {label: "Moderate", min: 81, max: 120, color: "#FF9800"},
	CategoryVigorous: {label: "Vigorous", min: 121, max: 160, color: "#F44336"},
	CategoryMaximum:  {label: "Maximum", min: 161, max: 220, color: "#9C27B0"},
}

// Categories 按表顺序返回全部分类
func Categories() []Category {
	return []Category{CategoryResting, CategoryModerate, CategoryVigorous, CategoryMaximum}
}

// CategoryFromBPM 按表顺序取第一个包含 bpm 的区间；都不命中时回落到 Resting
func CategoryFromBPM(bpm int) Category {
	for _, c := range Categories() {
		lo, hi := c.Range()
		if bpm >= lo && bpm <= hi {
			return c
		}
	}
	return CategoryResting
}

func (c Category) valid() bool {
	return c >= CategoryResting && c <= CategoryMaximum
}

// Label 显示名
func (c Category) Label() string {
	if !c.valid() {
		return "Unknown"
	}
	return categoryTable[c].label
}

// Range 闭区间 [min, max]
func (c Category) Range() (int, int) {
	if !c.valid() {
		return 0, 0
	}
	info := categoryTable[c]
	return info.min, info.max
}

// Color 前端展示色
func (c Category) Color() string {
	if !c.valid() {
		return "#9E9E9E"
	}
	return categoryTable[c].color
}

func (c Category) String() string {
	return c.Label()
}

// MarshalJSON 输出 label
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Label())
}
