package catalogue

import (
	"fmt"
)

// Restore 按持久化的id重建catalogue，与原先的插入顺序无关。
// 车站与线路的id必须恰好覆盖0..N-1。
func Restore(stops []Stop, lines []BusLine, facts []DistanceFact) (*Catalogue, error) {
	c := New()
	c.stops = make([]*Stop, len(stops))
	for i := range stops {
		s := stops[i]
		if s.ID < 0 || int(s.ID) >= len(stops) {
			return nil, fmt.Errorf("stop %q has id %d out of range [0,%d)", s.Name, s.ID, len(stops))
		}
		if c.stops[s.ID] != nil {
			return nil, fmt.Errorf("stop id %d is used twice", s.ID)
		}
		if _, ok := c.stopIndex[s.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStop, s.Name)
		}
		c.stops[s.ID] = &Stop{ID: s.ID, Name: s.Name, Lat: s.Lat, Lng: s.Lng}
		c.stopIndex[s.Name] = s.ID
	}

	for _, f := range facts {
		if !c.hasStop(f.From) || !c.hasStop(f.To) {
			return nil, fmt.Errorf("%w: distance %d -> %d", ErrUnknownStop, f.From, f.To)
		}
		c.distances[stopPair{f.From, f.To}] = distance{meters: f.Meters, explicit: f.Explicit}
	}

	ordered := make([]*BusLine, len(lines))
	for i := range lines {
		l := lines[i]
		if l.ID < 0 || int(l.ID) >= len(lines) {
			return nil, fmt.Errorf("bus line %q has id %d out of range [0,%d)", l.Name, l.ID, len(lines))
		}
		if ordered[l.ID] != nil {
			return nil, fmt.Errorf("bus line id %d is used twice", l.ID)
		}
		if len(l.Stops) == 0 {
			return nil, fmt.Errorf("%w: bus line %q has no stops", ErrInvalidTopology, l.Name)
		}
		for _, id := range l.Stops {
			if !c.hasStop(id) {
				return nil, fmt.Errorf("%w: bus line %q references stop id %d", ErrInvalidTopology, l.Name, id)
			}
		}
		ordered[l.ID] = &BusLine{ID: l.ID, Name: l.Name, Stops: append([]StopID(nil), l.Stops...), Circular: l.Circular}
	}
	for _, line := range ordered {
		if _, ok := c.lineIndex[line.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate bus line %q", ErrInvalidTopology, line.Name)
		}
		// 统计量只依赖已恢复的车站与距离
		stat, err := c.computeStat(line.Stops, line.Circular)
		if err != nil {
			return nil, fmt.Errorf("bus line %q: %w", line.Name, err)
		}
		c.commitLine(line, stat)
	}
	log.Debugf("restored %d stops, %d bus lines, %d distances", len(c.stops), len(c.lines), len(c.distances))
	return c, nil
}

func (c *Catalogue) hasStop(id StopID) bool {
	return id >= 0 && int(id) < len(c.stops)
}
