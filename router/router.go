package router

import (
	"fmt"

	"git.fiblab.net/sim/transit-catalogue/catalogue"
	"git.fiblab.net/sim/transit-catalogue/router/algo"
	"github.com/samber/lo"
)

// Router只读访问的catalogue接口
type Catalogue interface {
	StopCount() int
	Stop(id catalogue.StopID) *catalogue.Stop
	StopByName(name string) (*catalogue.Stop, bool)
	LineCount() int
	BusLine(id catalogue.LineID) *catalogue.BusLine
	BusLines() []*catalogue.BusLine
	DistanceByID(from, to catalogue.StopID) (int, error)
}

type Router struct {
	// busGraph Topo
	// 1. 拓扑中的点为车站，点id即车站id
	// 2. 同一条线路同一行驶方向上任意两站i<j之间都有一条边，
	//    乘客上车后不换乘直接到达j，因此每条边只包含一次候车时间
	// 3. cost为候车时间+各站间距离/公交速度，单位为分钟
	cat      Catalogue
	settings Settings

	busGraph *algo.Graph[BusEdgeAttr]
	router   *algo.Router[BusEdgeAttr]
}

func New(cat Catalogue, settings Settings) (*Router, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	r := &Router{cat: cat, settings: settings}
	if err := r.buildBusGraph(); err != nil {
		return nil, err
	}
	r.router = algo.NewRouter(r.busGraph)
	return r, nil
}

// 使用已有的图与最短路表，不重新建图
func Restore(cat Catalogue, settings Settings, busGraph *algo.Graph[BusEdgeAttr], table [][]algo.RouteInternalData) (*Router, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if busGraph.VertexCount() != cat.StopCount() {
		return nil, fmt.Errorf("%w: %d vertices for %d stops", algo.ErrMalformedGraph, busGraph.VertexCount(), cat.StopCount())
	}
	for id, e := range busGraph.Edges() {
		if e.Attr.LineID < 0 || int(e.Attr.LineID) >= cat.LineCount() {
			return nil, fmt.Errorf("%w: edge %d references bus line %d", algo.ErrMalformedGraph, id, e.Attr.LineID)
		}
		if e.Attr.SpanCount <= 0 {
			return nil, fmt.Errorf("%w: edge %d has span count %d", algo.ErrMalformedGraph, id, e.Attr.SpanCount)
		}
	}
	router, err := algo.RestoreRouter(busGraph, table)
	if err != nil {
		return nil, err
	}
	return &Router{cat: cat, settings: settings, busGraph: busGraph, router: router}, nil
}

func (r *Router) buildBusGraph() error {
	busGraph := algo.NewGraph[BusEdgeAttr](r.cat.StopCount())
	speed := r.settings.metersPerMinute()
	// 按线路id遍历，保证边id稳定
	for _, line := range r.cat.BusLines() {
		directions := [][]catalogue.StopID{line.Stops}
		if !line.Circular {
			// 非环线按原路返回
			directions = append(directions, lo.Reverse(append([]catalogue.StopID(nil), line.Stops...)))
		}
		for _, stops := range directions {
			for i := 0; i < len(stops)-1; i++ {
				cost := r.settings.BusWaitTime
				for j := i + 1; j < len(stops); j++ {
					d, err := r.cat.DistanceByID(stops[j-1], stops[j])
					if err != nil {
						return fmt.Errorf("bus line %q: %w", line.Name, err)
					}
					cost += float64(d) / speed
					busGraph.AddEdge(int(stops[i]), int(stops[j]), cost, BusEdgeAttr{
						LineID:    line.ID,
						SpanCount: j - i,
					})
				}
			}
		}
	}
	log.Infof("bus graph: %d nodes and %d edges", busGraph.VertexCount(), busGraph.EdgeCount())
	r.busGraph = busGraph
	return nil
}

// getter

func (r *Router) Settings() Settings {
	return r.settings
}

func (r *Router) Graph() *algo.Graph[BusEdgeAttr] {
	return r.busGraph
}

// 完整的最短路表，未计算的行会先计算
func (r *Router) Table() [][]algo.RouteInternalData {
	return r.router.Table()
}

func (r *Router) ComputeAll() {
	r.router.ComputeAll()
}

// 查询两站之间用时最短的行程
// 车站不存在或不可达时返回false；起终点相同时返回空行程
func (r *Router) BuildItinerary(from, to string) (Itinerary, bool) {
	fromStop, ok := r.cat.StopByName(from)
	if !ok {
		return Itinerary{}, false
	}
	toStop, ok := r.cat.StopByName(to)
	if !ok {
		return Itinerary{}, false
	}
	if fromStop.ID == toStop.ID {
		return Itinerary{Segments: []Segment{}}, true
	}
	route, ok := r.router.BuildRoute(int(fromStop.ID), int(toStop.ID))
	if !ok {
		log.Debugf("no route from %q to %q", from, to)
		return Itinerary{}, false
	}
	it := Itinerary{
		TotalTime: route.Weight,
		Segments:  make([]Segment, 0, 2*len(route.Edges)),
	}
	for _, id := range route.Edges {
		edge := r.busGraph.Edge(id)
		it.Segments = append(it.Segments,
			Segment{
				Kind:     SegmentWait,
				StopName: r.cat.Stop(catalogue.StopID(edge.From)).Name,
				Time:     r.settings.BusWaitTime,
			},
			Segment{
				Kind:      SegmentRide,
				LineName:  r.cat.BusLine(edge.Attr.LineID).Name,
				SpanCount: edge.Attr.SpanCount,
				Time:      edge.Weight - r.settings.BusWaitTime,
			},
		)
	}
	return it, true
}
