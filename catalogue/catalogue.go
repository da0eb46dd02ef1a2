package catalogue

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb/geo"
	"github.com/samber/lo"
)

// Catalogue 保存车站、线路与站间距离。
// 车站和线路按id存放在切片中，所有交叉引用都通过id完成。
type Catalogue struct {
	stops     []*Stop
	stopIndex map[string]StopID

	lines     []*BusLine
	lineIndex map[string]LineID
	stats     []BusStat // 与lines一一对应

	distances map[stopPair]distance
}

func New() *Catalogue {
	return &Catalogue{
		stops:     make([]*Stop, 0),
		stopIndex: make(map[string]StopID),
		lines:     make([]*BusLine, 0),
		lineIndex: make(map[string]LineID),
		stats:     make([]BusStat, 0),
		distances: make(map[stopPair]distance),
	}
}

// ingestion

func (c *Catalogue) AddStop(name string, lat, lng float64) (StopID, error) {
	if _, ok := c.stopIndex[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateStop, name)
	}
	id := StopID(len(c.stops))
	c.stops = append(c.stops, &Stop{ID: id, Name: name, Lat: lat, Lng: lng})
	c.stopIndex[name] = id
	return id, nil
}

func (c *Catalogue) AddDistance(from, to string, meters int) error {
	fromID, ok := c.stopIndex[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStop, from)
	}
	toID, ok := c.stopIndex[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStop, to)
	}
	c.setDistance(fromID, toID, meters)
	return nil
}

func (c *Catalogue) setDistance(from, to StopID, meters int) {
	c.distances[stopPair{from, to}] = distance{meters: meters, explicit: true}
	// 反方向没有显式给出时按对称处理
	if rev, ok := c.distances[stopPair{to, from}]; !ok || !rev.explicit {
		c.distances[stopPair{to, from}] = distance{meters: meters}
	}
}

// 添加线路，失败时catalogue保持不变
func (c *Catalogue) AddBusLine(name string, stopNames []string, circular bool) (LineID, error) {
	if _, ok := c.lineIndex[name]; ok {
		return 0, fmt.Errorf("%w: duplicate bus line %q", ErrInvalidTopology, name)
	}
	if len(stopNames) == 0 {
		return 0, fmt.Errorf("%w: bus line %q has no stops", ErrInvalidTopology, name)
	}
	stops := make([]StopID, len(stopNames))
	for i, stopName := range stopNames {
		id, ok := c.stopIndex[stopName]
		if !ok {
			return 0, fmt.Errorf("%w: bus line %q references unknown stop %q", ErrInvalidTopology, name, stopName)
		}
		stops[i] = id
	}
	stat, err := c.computeStat(stops, circular)
	if err != nil {
		return 0, fmt.Errorf("bus line %q: %w", name, err)
	}
	id := LineID(len(c.lines))
	c.commitLine(&BusLine{ID: id, Name: name, Stops: stops, Circular: circular}, stat)
	return id, nil
}

func (c *Catalogue) commitLine(line *BusLine, stat BusStat) {
	c.lines = append(c.lines, line)
	c.stats = append(c.stats, stat)
	c.lineIndex[line.Name] = line.ID
	for _, id := range line.Stops {
		c.stops[id].addLine(line.Name)
	}
}

// 统计线路的车站数、道路长度与曲折度
func (c *Catalogue) computeStat(stops []StopID, circular bool) (BusStat, error) {
	stat := BusStat{
		StopCount:       len(stops),
		UniqueStopCount: len(lo.Uniq(stops)),
	}
	geoLength := 0.0
	for i := 1; i < len(stops); i++ {
		geoLength += geo.DistanceHaversine(c.stops[stops[i-1]].Point(), c.stops[stops[i]].Point())
		d, err := c.DistanceByID(stops[i-1], stops[i])
		if err != nil {
			return BusStat{}, err
		}
		stat.RoadLength += d
	}
	if !circular {
		// 原路返回，返程的距离可能与去程不同
		stat.StopCount = 2*len(stops) - 1
		geoLength *= 2
		for i := len(stops) - 1; i > 0; i-- {
			d, err := c.DistanceByID(stops[i], stops[i-1])
			if err != nil {
				return BusStat{}, err
			}
			stat.RoadLength += d
		}
	}
	if geoLength > 0 {
		stat.Curvature = float64(stat.RoadLength) / geoLength
	} else {
		stat.Curvature = 1
	}
	return stat, nil
}

// query

func (c *Catalogue) GetStopsDistance(from, to string) (int, error) {
	fromID, ok := c.stopIndex[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStop, from)
	}
	toID, ok := c.stopIndex[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStop, to)
	}
	return c.DistanceByID(fromID, toID)
}

// 优先取正方向距离，否则取反方向
func (c *Catalogue) DistanceByID(from, to StopID) (int, error) {
	if d, ok := c.distances[stopPair{from, to}]; ok {
		return d.meters, nil
	}
	if d, ok := c.distances[stopPair{to, from}]; ok {
		return d.meters, nil
	}
	return 0, fmt.Errorf("%w: %q -> %q", ErrNoDistance, c.stops[from].Name, c.stops[to].Name)
}

func (c *Catalogue) GetLineStats(name string) (BusStat, bool) {
	id, ok := c.lineIndex[name]
	if !ok {
		return BusStat{}, false
	}
	return c.stats[id], true
}

func (c *Catalogue) GetLinesThroughStop(name string) ([]string, bool) {
	id, ok := c.stopIndex[name]
	if !ok {
		return nil, false
	}
	return c.stops[id].Lines(), true
}

// getter

func (c *Catalogue) StopCount() int {
	return len(c.stops)
}

func (c *Catalogue) Stop(id StopID) *Stop {
	return c.stops[id]
}

func (c *Catalogue) StopByName(name string) (*Stop, bool) {
	id, ok := c.stopIndex[name]
	if !ok {
		return nil, false
	}
	return c.stops[id], true
}

// 按id顺序
func (c *Catalogue) Stops() []*Stop {
	return c.stops
}

func (c *Catalogue) LineCount() int {
	return len(c.lines)
}

func (c *Catalogue) BusLine(id LineID) *BusLine {
	return c.lines[id]
}

func (c *Catalogue) BusLineByName(name string) (*BusLine, bool) {
	id, ok := c.lineIndex[name]
	if !ok {
		return nil, false
	}
	return c.lines[id], true
}

// 按id顺序
func (c *Catalogue) BusLines() []*BusLine {
	return c.lines
}

// 所有有向距离，按(from, to)排序
func (c *Catalogue) DistanceFacts() []DistanceFact {
	facts := lo.MapToSlice(c.distances, func(p stopPair, d distance) DistanceFact {
		return DistanceFact{From: p.from, To: p.to, Meters: d.meters, Explicit: d.explicit}
	})
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].From != facts[j].From {
			return facts[i].From < facts[j].From
		}
		return facts[i].To < facts[j].To
	})
	return facts
}
