package catalogue

import (
	"slices"
	"sort"

	"github.com/paulmach/orb"
)

type StopID int
type LineID int

type Stop struct {
	ID   StopID
	Name string
	Lat  float64
	Lng  float64

	// 经过此车站的线路名，保持有序
	lines []string
}

// orb的点坐标顺序为[lng, lat]
func (s *Stop) Point() orb.Point {
	return orb.Point{s.Lng, s.Lat}
}

// 返回副本
func (s *Stop) Lines() []string {
	return slices.Clone(s.lines)
}

func (s *Stop) addLine(name string) {
	i := sort.SearchStrings(s.lines, name)
	if i < len(s.lines) && s.lines[i] == name {
		return
	}
	s.lines = append(s.lines, "")
	copy(s.lines[i+1:], s.lines[i:])
	s.lines[i] = name
}

type BusLine struct {
	ID       LineID
	Name     string
	Stops    []StopID
	Circular bool // 环线的车站列表首尾相接，非环线需要原路返回
}

type BusStat struct {
	StopCount       int     // 完整行驶一趟经过的车站数
	UniqueStopCount int     // 不同车站数
	RoadLength      int     // 道路长度（米）
	Curvature       float64 // 道路长度与球面直线距离之比
}

// 有向距离，Explicit为false表示由反方向镜像而来
type DistanceFact struct {
	From     StopID
	To       StopID
	Meters   int
	Explicit bool
}

type stopPair struct {
	from, to StopID
}

type distance struct {
	meters   int
	explicit bool
}
