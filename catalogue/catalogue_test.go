package catalogue_test

import (
	"math"
	"testing"

	"git.fiblab.net/sim/transit-catalogue/catalogue"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newABC(t *testing.T) *catalogue.Catalogue {
	c := catalogue.New()
	for i, name := range []string{"A", "B", "C"} {
		id, err := c.AddStop(name, 55.6, 37.2+0.01*float64(i))
		require.NoError(t, err)
		assert.Equal(t, catalogue.StopID(i), id)
	}
	return c
}

func TestAddStop(t *testing.T) {
	c := newABC(t)
	_, err := c.AddStop("B", 0, 0)
	assert.ErrorIs(t, err, catalogue.ErrDuplicateStop)
	assert.Equal(t, 3, c.StopCount())

	// id连续且不复用
	id, err := c.AddStop("D", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, catalogue.StopID(3), id)
	s, ok := c.StopByName("D")
	require.True(t, ok)
	assert.Equal(t, id, s.ID)
}

func TestDistanceFallback(t *testing.T) {
	c := newABC(t)
	assert.ErrorIs(t, c.AddDistance("A", "X", 10), catalogue.ErrUnknownStop)
	assert.ErrorIs(t, c.AddDistance("X", "A", 10), catalogue.ErrUnknownStop)

	// 只给出正方向时两个方向相等
	require.NoError(t, c.AddDistance("A", "B", 100))
	ab, err := c.GetStopsDistance("A", "B")
	require.NoError(t, err)
	ba, err := c.GetStopsDistance("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 100, ab)
	assert.Equal(t, ab, ba)

	// 之后显式给出的反方向覆盖镜像值，但不影响正方向
	require.NoError(t, c.AddDistance("B", "A", 150))
	ab, _ = c.GetStopsDistance("A", "B")
	ba, _ = c.GetStopsDistance("B", "A")
	assert.Equal(t, 100, ab)
	assert.Equal(t, 150, ba)

	// 先给出的显式反方向不会被镜像覆盖
	require.NoError(t, c.AddDistance("C", "B", 300))
	require.NoError(t, c.AddDistance("B", "C", 200))
	cb, _ := c.GetStopsDistance("C", "B")
	bc, _ := c.GetStopsDistance("B", "C")
	assert.Equal(t, 300, cb)
	assert.Equal(t, 200, bc)

	_, err = c.GetStopsDistance("A", "C")
	assert.ErrorIs(t, err, catalogue.ErrNoDistance)
	_, err = c.GetStopsDistance("A", "X")
	assert.ErrorIs(t, err, catalogue.ErrUnknownStop)

	facts := c.DistanceFacts()
	assert.Len(t, facts, 4)
	for _, f := range facts {
		assert.True(t, f.Explicit)
	}
}

func TestMirroredFactIsNotExplicit(t *testing.T) {
	c := newABC(t)
	require.NoError(t, c.AddDistance("B", "A", 70))
	facts := c.DistanceFacts()
	require.Len(t, facts, 2)
	assert.Equal(t, catalogue.DistanceFact{From: 0, To: 1, Meters: 70, Explicit: false}, facts[0])
	assert.Equal(t, catalogue.DistanceFact{From: 1, To: 0, Meters: 70, Explicit: true}, facts[1])
}

func TestLinearLineStats(t *testing.T) {
	c := newABC(t)
	require.NoError(t, c.AddDistance("A", "B", 1000))
	require.NoError(t, c.AddDistance("B", "C", 2000))
	require.NoError(t, c.AddDistance("C", "B", 3000))

	_, err := c.AddBusLine("14", []string{"A", "B", "C"}, false)
	require.NoError(t, err)
	stat, ok := c.GetLineStats("14")
	require.True(t, ok)
	assert.Equal(t, 5, stat.StopCount)
	assert.Equal(t, 3, stat.UniqueStopCount)
	// 去程1000+2000，返程3000+1000
	assert.Equal(t, 7000, stat.RoadLength)

	a, b, cc := c.Stop(0).Point(), c.Stop(1).Point(), c.Stop(2).Point()
	geoLength := 2 * (geo.DistanceHaversine(a, b) + geo.DistanceHaversine(b, cc))
	assert.InDelta(t, 7000/geoLength, stat.Curvature, 1e-9)
}

func TestCircularLineStats(t *testing.T) {
	c := newABC(t)
	require.NoError(t, c.AddDistance("A", "B", 1000))
	require.NoError(t, c.AddDistance("B", "C", 2000))

	_, err := c.AddBusLine("loop", []string{"A", "B", "C"}, true)
	require.NoError(t, err)
	stat, ok := c.GetLineStats("loop")
	require.True(t, ok)
	assert.Equal(t, 3, stat.StopCount)
	assert.Equal(t, 3, stat.UniqueStopCount)
	assert.Equal(t, 3000, stat.RoadLength)

	require.NoError(t, c.AddDistance("C", "A", 1500))
	_, err = c.AddBusLine("ring", []string{"A", "B", "C", "A"}, true)
	require.NoError(t, err)
	stat, _ = c.GetLineStats("ring")
	assert.Equal(t, 4, stat.StopCount)
	assert.Equal(t, 3, stat.UniqueStopCount)
	assert.Equal(t, 4500, stat.RoadLength)
}

func TestCurvatureOfWellFormedNetwork(t *testing.T) {
	c := catalogue.New()
	points := []orb.Point{{37.61, 55.75}, {37.63, 55.76}, {37.60, 55.79}, {37.58, 55.74}}
	names := []string{"P0", "P1", "P2", "P3"}
	for i, p := range points {
		_, err := c.AddStop(names[i], p.Lat(), p.Lon())
		require.NoError(t, err)
	}
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			straight := geo.DistanceHaversine(points[i], points[j])
			require.NoError(t, c.AddDistance(names[i], names[j], int(math.Ceil(straight))+j))
			require.NoError(t, c.AddDistance(names[j], names[i], int(math.Ceil(straight*1.3))))
		}
	}
	_, err := c.AddBusLine("lin", names, false)
	require.NoError(t, err)
	_, err = c.AddBusLine("circ", append(names, names[0]), true)
	require.NoError(t, err)
	for _, name := range []string{"lin", "circ"} {
		stat, ok := c.GetLineStats(name)
		require.True(t, ok)
		assert.GreaterOrEqual(t, stat.Curvature, 1.0, name)
	}
}

func TestAddBusLineFailureKeepsStore(t *testing.T) {
	c := newABC(t)
	require.NoError(t, c.AddDistance("A", "B", 100))

	_, err := c.AddBusLine("bad", []string{"A", "X"}, false)
	assert.ErrorIs(t, err, catalogue.ErrInvalidTopology)

	// B -> C 没有距离
	_, err = c.AddBusLine("nodist", []string{"A", "B", "C"}, false)
	assert.ErrorIs(t, err, catalogue.ErrNoDistance)

	_, err = c.AddBusLine("empty", nil, true)
	assert.ErrorIs(t, err, catalogue.ErrInvalidTopology)

	for _, name := range []string{"bad", "nodist", "empty"} {
		_, ok := c.GetLineStats(name)
		assert.False(t, ok)
	}
	lines, ok := c.GetLinesThroughStop("A")
	assert.True(t, ok)
	assert.Empty(t, lines)
	assert.Equal(t, 0, c.LineCount())

	_, err = c.AddBusLine("ok", []string{"A", "B"}, false)
	require.NoError(t, err)
	_, err = c.AddBusLine("ok", []string{"A", "B"}, true)
	assert.ErrorIs(t, err, catalogue.ErrInvalidTopology)
}

func TestLinesThroughStop(t *testing.T) {
	c := newABC(t)
	require.NoError(t, c.AddDistance("A", "B", 100))
	require.NoError(t, c.AddDistance("B", "C", 100))
	_, err := c.AddBusLine("750", []string{"A", "B"}, false)
	require.NoError(t, err)
	_, err = c.AddBusLine("256", []string{"B", "C", "B"}, true)
	require.NoError(t, err)

	lines, ok := c.GetLinesThroughStop("B")
	require.True(t, ok)
	assert.Equal(t, []string{"256", "750"}, lines)
	lines, ok = c.GetLinesThroughStop("C")
	require.True(t, ok)
	assert.Equal(t, []string{"256"}, lines)

	// 修改返回值不影响catalogue
	lines[0] = "changed"
	lines, ok = c.GetLinesThroughStop("C")
	require.True(t, ok)
	assert.Equal(t, []string{"256"}, lines)
	stop, ok := c.StopByName("B")
	require.True(t, ok)
	stop.Lines()[0] = "changed"
	assert.Equal(t, []string{"256", "750"}, stop.Lines())

	_, ok = c.GetLinesThroughStop("nowhere")
	assert.False(t, ok)
	_, ok = c.GetLineStats("nothing")
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	c := newABC(t)
	require.NoError(t, c.AddDistance("A", "B", 100))
	require.NoError(t, c.AddDistance("C", "B", 250))
	require.NoError(t, c.AddDistance("B", "C", 200))
	_, err := c.AddBusLine("1", []string{"A", "B", "C"}, false)
	require.NoError(t, err)
	_, err = c.AddBusLine("2", []string{"C", "B", "C"}, true)
	require.NoError(t, err)

	// 打乱顺序输入，按持久化的id恢复
	stops := []catalogue.Stop{*c.Stop(2), *c.Stop(0), *c.Stop(1)}
	lines := []catalogue.BusLine{*c.BusLine(1), *c.BusLine(0)}
	restored, err := catalogue.Restore(stops, lines, c.DistanceFacts())
	require.NoError(t, err)

	assert.Equal(t, c.StopCount(), restored.StopCount())
	for _, s := range c.Stops() {
		r := restored.Stop(s.ID)
		assert.Equal(t, s.Name, r.Name)
		assert.Equal(t, s.Lines(), r.Lines())
	}
	for _, name := range []string{"1", "2"} {
		want, _ := c.GetLineStats(name)
		got, ok := restored.GetLineStats(name)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, c.DistanceFacts(), restored.DistanceFacts())

	_, err = catalogue.Restore([]catalogue.Stop{{ID: 1, Name: "A"}}, nil, nil)
	assert.Error(t, err)
	_, err = catalogue.Restore([]catalogue.Stop{{ID: 0, Name: "A"}, {ID: 0, Name: "B"}}, nil, nil)
	assert.Error(t, err)
	_, err = catalogue.Restore(
		[]catalogue.Stop{{ID: 0, Name: "A"}},
		[]catalogue.BusLine{{ID: 0, Name: "x", Stops: []catalogue.StopID{0, 5}}},
		nil,
	)
	assert.ErrorIs(t, err, catalogue.ErrInvalidTopology)
}
