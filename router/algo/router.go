package algo

import (
	"container/heap"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

// 最短路表中的一项
// Reached为false表示从起点不可达；起点自身Reached为true但没有PrevEdge
type RouteInternalData struct {
	Reached     bool
	Weight      float64
	PrevEdge    int
	HasPrevEdge bool
}

type RouteInfo struct {
	Weight float64
	Edges  []int
}

// Router 以起点为单位计算并缓存整行最短路表
type Router[ET any] struct {
	graph *Graph[ET]
	// 起点 -> 按终点下标的最短路表
	// 图在运行期间不变，每行只需算一次
	rows *xsync.MapOf[int, []RouteInternalData]
}

func NewRouter[ET any](g *Graph[ET]) *Router[ET] {
	return &Router[ET]{
		graph: g,
		rows:  xsync.NewMapOf[int, []RouteInternalData](),
	}
}

// 直接装载完整的最短路表，不运行最短路算法
func RestoreRouter[ET any](g *Graph[ET], table [][]RouteInternalData) (*Router[ET], error) {
	n := g.VertexCount()
	if len(table) != n {
		return nil, fmt.Errorf("%w: %d rows for %d vertices", ErrMalformedTable, len(table), n)
	}
	r := NewRouter(g)
	for source, row := range table {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries for %d vertices", ErrMalformedTable, source, len(row), n)
		}
		for target, data := range row {
			if data.HasPrevEdge && (data.PrevEdge < 0 || data.PrevEdge >= g.EdgeCount() || g.edges[data.PrevEdge].To != target) {
				return nil, fmt.Errorf("%w: row %d target %d has prev edge %d", ErrMalformedTable, source, target, data.PrevEdge)
			}
			if data.HasPrevEdge && !data.Reached {
				return nil, fmt.Errorf("%w: row %d target %d is unreached with a prev edge", ErrMalformedTable, source, target)
			}
		}
		r.rows.Store(source, row)
	}
	return r, nil
}

func (r *Router[ET]) Graph() *Graph[ET] {
	return r.graph
}

// 返回起点所在行，未计算时先计算
func (r *Router[ET]) Row(source int) []RouteInternalData {
	row, _ := r.rows.LoadOrCompute(source, func() []RouteInternalData {
		return r.dijkstra(source)
	})
	return row
}

func (r *Router[ET]) ComputedRows() int {
	return r.rows.Size()
}

// 计算所有起点
func (r *Router[ET]) ComputeAll() {
	for source := 0; source < r.graph.VertexCount(); source++ {
		r.Row(source)
	}
}

// 完整的最短路表，按起点下标
func (r *Router[ET]) Table() [][]RouteInternalData {
	r.ComputeAll()
	table := make([][]RouteInternalData, r.graph.VertexCount())
	for source := range table {
		table[source] = r.Row(source)
	}
	return table
}

func (r *Router[ET]) BuildRoute(from, to int) (RouteInfo, bool) {
	row := r.Row(from)
	if !row[to].Reached {
		return RouteInfo{}, false
	}
	edges := make([]int, 0)
	for cur := row[to]; cur.HasPrevEdge; cur = row[r.graph.edges[cur.PrevEdge].From] {
		edges = append(edges, cur.PrevEdge)
		if len(edges) > len(row) {
			// 只有装载了损坏的表才会出现环
			log.Errorf("cycle in shortest path table from %d to %d", from, to)
			return RouteInfo{}, false
		}
	}
	return RouteInfo{Weight: row[to].Weight, Edges: lo.Reverse(edges)}, true
}

// Dijkstra算法计算起点到所有点的最短路
func (r *Router[ET]) dijkstra(source int) []RouteInternalData {
	n := r.graph.VertexCount()
	row := make([]RouteInternalData, n)
	row[source] = RouteInternalData{Reached: true}
	openSet := make(PriorityQueue, 0)
	openSetMap := make(map[int]*Item) // 点 -> openSet中的item
	item := &Item{Value: source, Priority: 0}
	heap.Push(&openSet, item)
	openSetMap[source] = item
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		delete(openSetMap, cur)
		for _, id := range r.graph.incidence[cur] {
			edge := r.graph.edges[id]
			weight := row[cur].Weight + edge.Weight
			if next := row[edge.To]; next.Reached && next.Weight <= weight {
				continue
			}
			row[edge.To] = RouteInternalData{Reached: true, Weight: weight, PrevEdge: id, HasPrevEdge: true}
			if item, ok := openSetMap[edge.To]; ok {
				// 已在堆中，修改其优先级
				item.Priority = weight
				heap.Fix(&openSet, item.Index)
			} else {
				item := &Item{Value: edge.To, Priority: weight}
				heap.Push(&openSet, item)
				openSetMap[edge.To] = item
			}
		}
	}
	return row
}
