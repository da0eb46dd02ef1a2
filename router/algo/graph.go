package algo

import (
	"fmt"
)

type Edge[ET any] struct {
	From   int
	To     int
	Weight float64
	Attr   ET
}

// 有向带权多重图，两点之间允许存在多条边
type Graph[ET any] struct {
	// 边表，下标即边id
	edges []Edge[ET]
	// 关联表，点 -> 出边id
	incidence [][]int
}

func NewGraph[ET any](vertexCount int) *Graph[ET] {
	return &Graph[ET]{
		edges:     make([]Edge[ET], 0),
		incidence: make([][]int, vertexCount),
	}
}

// 由已有的边表和关联表直接构建，不重新计算
func RestoreGraph[ET any](vertexCount int, edges []Edge[ET], incidence [][]int) (*Graph[ET], error) {
	if len(incidence) != vertexCount {
		return nil, fmt.Errorf("%w: %d incidence lists for %d vertices", ErrMalformedGraph, len(incidence), vertexCount)
	}
	for id, e := range edges {
		if e.From < 0 || e.From >= vertexCount || e.To < 0 || e.To >= vertexCount {
			return nil, fmt.Errorf("%w: edge %d (%d->%d)", ErrVertexOutOfRange, id, e.From, e.To)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("%w: edge %d", ErrNegativeWeight, id)
		}
	}
	for v, list := range incidence {
		for _, id := range list {
			if id < 0 || id >= len(edges) || edges[id].From != v {
				return nil, fmt.Errorf("%w: vertex %d lists edge %d", ErrMalformedGraph, v, id)
			}
		}
	}
	return &Graph[ET]{edges: edges, incidence: incidence}, nil
}

func (g *Graph[ET]) AddEdge(from, to int, weight float64, attr ET) int {
	if from < 0 || from >= len(g.incidence) || to < 0 || to >= len(g.incidence) {
		log.Panicf("edge %d->%d out of vertex range %d", from, to, len(g.incidence))
	}
	if weight < 0 {
		log.Panicf("negative weight %v on edge %d->%d", weight, from, to)
	}
	id := len(g.edges)
	g.edges = append(g.edges, Edge[ET]{From: from, To: to, Weight: weight, Attr: attr})
	g.incidence[from] = append(g.incidence[from], id)
	return id
}

func (g *Graph[ET]) VertexCount() int {
	return len(g.incidence)
}

func (g *Graph[ET]) EdgeCount() int {
	return len(g.edges)
}

func (g *Graph[ET]) Edge(id int) Edge[ET] {
	return g.edges[id]
}

func (g *Graph[ET]) Edges() []Edge[ET] {
	return g.edges
}

func (g *Graph[ET]) IncidentEdges(v int) []int {
	return g.incidence[v]
}
