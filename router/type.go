package router

import (
	"fmt"
	"math"

	"git.fiblab.net/sim/transit-catalogue/catalogue"
)

type Settings struct {
	BusWaitTime float64 `json:"bus_wait_time"` // 候车时间（分钟）
	BusVelocity float64 `json:"bus_velocity"`  // 公交速度（km/h）
}

func (s Settings) Validate() error {
	// NaN与任何值比较均为false
	if !(s.BusWaitTime >= 0) || math.IsInf(s.BusWaitTime, 0) {
		return fmt.Errorf("%w: bus_wait_time %v is not a finite non-negative number", ErrInvalidSettings, s.BusWaitTime)
	}
	if !(s.BusVelocity > 0) || math.IsInf(s.BusVelocity, 0) {
		return fmt.Errorf("%w: bus_velocity %v is not a finite positive number", ErrInvalidSettings, s.BusVelocity)
	}
	return nil
}

// 米/分钟
func (s Settings) metersPerMinute() float64 {
	return s.BusVelocity * 1000 / 60
}

// 公交图中边的属性
type BusEdgeAttr struct {
	LineID    catalogue.LineID
	SpanCount int // 不换乘连续经过的站间段数
}

type SegmentKind int

const (
	SegmentWait SegmentKind = iota
	SegmentRide
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentWait:
		return "Wait"
	case SegmentRide:
		return "Bus"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// 行程中的一段：在StopName候车，或乘LineName经过SpanCount段
type Segment struct {
	Kind      SegmentKind
	StopName  string
	LineName  string
	SpanCount int
	Time      float64 // 分钟
}

type Itinerary struct {
	TotalTime float64
	Segments  []Segment
}
