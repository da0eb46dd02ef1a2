package algo_test

import (
	"testing"

	"git.fiblab.net/sim/transit-catalogue/router/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph(t *testing.T) {
	g := algo.NewGraph[int](4)

	// 初始化边
	e12 := g.AddEdge(0, 1, 1, 12)
	e23 := g.AddEdge(1, 2, 1, 23)
	e34 := g.AddEdge(2, 3, 1, 34)
	// 两点间的平行边
	e12b := g.AddEdge(0, 1, 5, 120)

	assert.Equal(t, 4, g.VertexCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []int{e12, e12b}, g.IncidentEdges(0))
	assert.Equal(t, algo.Edge[int]{From: 1, To: 2, Weight: 1, Attr: 23}, g.Edge(e23))
	assert.Empty(t, g.IncidentEdges(3))

	// 计算最短路
	r := algo.NewRouter(g)
	route, ok := r.BuildRoute(0, 3)
	require.True(t, ok)
	assert.Equal(t, []int{e12, e23, e34}, route.Edges)
	assert.Equal(t, 3.0, route.Weight)

	route, ok = r.BuildRoute(2, 2)
	require.True(t, ok)
	assert.Empty(t, route.Edges)
	assert.Equal(t, 0.0, route.Weight)

	// 不可达
	_, ok = r.BuildRoute(3, 0)
	assert.False(t, ok)
	row := r.Row(3)
	assert.True(t, row[3].Reached)
	assert.False(t, row[3].HasPrevEdge)
	assert.False(t, row[0].Reached)

	assert.Panics(t, func() { g.AddEdge(0, 4, 1, 0) })
	assert.Panics(t, func() { g.AddEdge(0, 1, -1, 0) })
}

func TestShortestPathPrefersCheaperDetour(t *testing.T) {
	g := algo.NewGraph[int](3)
	g.AddEdge(0, 1, 10, 12)
	e13 := g.AddEdge(0, 2, 2, 13)
	e32 := g.AddEdge(2, 1, 1, 32)

	r := algo.NewRouter(g)
	route, ok := r.BuildRoute(0, 1)
	require.True(t, ok)
	assert.Equal(t, []int{e13, e32}, route.Edges)
	assert.Equal(t, 3.0, route.Weight)
}

func TestRouterMemoizesRows(t *testing.T) {
	g := algo.NewGraph[int](3)
	g.AddEdge(0, 1, 1, 0)
	g.AddEdge(1, 2, 1, 0)
	r := algo.NewRouter(g)
	assert.Equal(t, 0, r.ComputedRows())
	r.BuildRoute(1, 2)
	r.BuildRoute(1, 0)
	assert.Equal(t, 1, r.ComputedRows())
	r.ComputeAll()
	assert.Equal(t, 3, r.ComputedRows())
}

func TestRestore(t *testing.T) {
	g := algo.NewGraph[string](3)
	g.AddEdge(0, 1, 4, "a")
	g.AddEdge(1, 2, 3, "b")
	g.AddEdge(0, 2, 9, "c")
	g.AddEdge(2, 0, 1, "d")
	r := algo.NewRouter(g)
	table := r.Table()

	restoredGraph, err := algo.RestoreGraph(g.VertexCount(), g.Edges(), [][]int{g.IncidentEdges(0), g.IncidentEdges(1), g.IncidentEdges(2)})
	require.NoError(t, err)
	restored, err := algo.RestoreRouter(restoredGraph, table)
	require.NoError(t, err)
	// 装载后不需要再计算
	assert.Equal(t, 3, restored.ComputedRows())
	for from := 0; from < 3; from++ {
		for to := 0; to < 3; to++ {
			want, wantOK := r.BuildRoute(from, to)
			got, gotOK := restored.BuildRoute(from, to)
			assert.Equal(t, wantOK, gotOK)
			assert.Equal(t, want, got)
		}
	}

	_, err = algo.RestoreGraph(3, g.Edges(), [][]int{{0}, {1}})
	assert.ErrorIs(t, err, algo.ErrMalformedGraph)
	_, err = algo.RestoreGraph(3, g.Edges(), [][]int{{1}, {0}, {3}})
	assert.ErrorIs(t, err, algo.ErrMalformedGraph)
	_, err = algo.RestoreGraph(2, g.Edges(), [][]int{{0, 2}, {1}})
	assert.ErrorIs(t, err, algo.ErrVertexOutOfRange)

	_, err = algo.RestoreRouter(restoredGraph, table[:2])
	assert.ErrorIs(t, err, algo.ErrMalformedTable)
	bad := [][]algo.RouteInternalData{table[0], table[1], {{Reached: true}, {}, {PrevEdge: 1, HasPrevEdge: true}}}
	_, err = algo.RestoreRouter(restoredGraph, bad)
	assert.ErrorIs(t, err, algo.ErrMalformedTable)
}
