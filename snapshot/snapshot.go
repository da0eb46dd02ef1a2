package snapshot

import (
	"bytes"
	"fmt"
	"os"

	"git.fiblab.net/sim/transit-catalogue/catalogue"
	"git.fiblab.net/sim/transit-catalogue/router"
	"git.fiblab.net/sim/transit-catalogue/router/algo"
	"github.com/klauspost/compress/zstd"
)

// State 快照中保存的全部内容
type State struct {
	Catalogue *catalogue.Catalogue
	Router    *router.Router
}

// Encode 计算全部最短路行后编码为快照
func Encode(s *State) ([]byte, error) {
	settings := s.Router.Settings()
	busGraph := s.Router.Graph()
	table := s.Router.Table()

	e := &encoder{}
	e.message(snapshotSettings, func(e *encoder) {
		e.double(settingsWaitTime, settings.BusWaitTime)
		e.double(settingsVelocity, settings.BusVelocity)
	})
	for _, stop := range s.Catalogue.Stops() {
		e.message(snapshotStop, func(e *encoder) {
			e.int(stopID, int(stop.ID))
			e.string(stopName, stop.Name)
			e.double(stopLat, stop.Lat)
			e.double(stopLng, stop.Lng)
		})
	}
	for _, line := range s.Catalogue.BusLines() {
		e.message(snapshotBusLine, func(e *encoder) {
			e.int(busLineID, int(line.ID))
			e.string(busLineName, line.Name)
			e.bool(busLineCircular, line.Circular)
			stops := make([]int, len(line.Stops))
			for i, id := range line.Stops {
				stops[i] = int(id)
			}
			e.packed(busLineStops, stops)
		})
	}
	for _, fact := range s.Catalogue.DistanceFacts() {
		e.message(snapshotDistance, func(e *encoder) {
			e.int(distanceFrom, int(fact.From))
			e.int(distanceTo, int(fact.To))
			e.int(distanceMeters, fact.Meters)
			e.bool(distanceExplicit, fact.Explicit)
		})
	}
	e.message(snapshotGraph, func(e *encoder) {
		e.int(graphVertexCount, busGraph.VertexCount())
		for _, edge := range busGraph.Edges() {
			e.message(graphEdge, func(e *encoder) {
				e.int(edgeFrom, edge.From)
				e.int(edgeTo, edge.To)
				e.double(edgeWeight, edge.Weight)
				e.int(edgeLineID, int(edge.Attr.LineID))
				e.int(edgeSpanCount, edge.Attr.SpanCount)
			})
		}
		for v := 0; v < busGraph.VertexCount(); v++ {
			e.message(graphIncidence, func(e *encoder) {
				e.int(incidenceVertex, v)
				e.packed(incidenceEdges, busGraph.IncidentEdges(v))
			})
		}
	})
	e.message(snapshotRouter, func(e *encoder) {
		for source, row := range table {
			e.message(routerRow, func(e *encoder) {
				e.int(rowSource, source)
				for _, data := range row {
					e.message(rowEntries, func(e *encoder) {
						e.bool(entryReached, data.Reached)
						e.double(entryWeight, data.Weight)
						if data.HasPrevEdge {
							e.presentInt(entryPrevEdge, data.PrevEdge)
						}
					})
				}
			})
		}
	})

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotIO, err)
	}
	defer enc.Close()
	out := append([]byte(nil), magic[:]...)
	out = enc.EncodeAll(e.b, out)
	log.Debugf("encoded snapshot: %d bytes raw, %d bytes compressed", len(e.b), len(out))
	return out, nil
}

// Decode 由快照重建catalogue、公交图与最短路表，不重新建图也不运行最短路算法
func Decode(data []byte) (*State, error) {
	if len(data) < len(magic) || !bytes.Equal(data[:len(magic)-2], magic[:len(magic)-2]) {
		return nil, schemaError("bad magic")
	}
	if !bytes.Equal(data[len(magic)-2:len(magic)], magic[len(magic)-2:]) {
		return nil, schemaError("unsupported version %x", data[len(magic)-2:len(magic)])
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotIO, err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data[len(magic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotSchema, err)
	}

	var (
		settings   router.Settings
		stops      []catalogue.Stop
		lines      []catalogue.BusLine
		facts      []catalogue.DistanceFact
		graphBytes []byte
		routerRaw  []byte
		hasGraph   bool
		hasRouter  bool
	)
	err = forEachField(raw, func(f field) error {
		switch f.num {
		case snapshotSettings:
			b, err := f.message()
			if err != nil {
				return err
			}
			settings, err = decodeSettings(b)
			return err
		case snapshotStop:
			b, err := f.message()
			if err != nil {
				return err
			}
			stop, err := decodeStop(b)
			stops = append(stops, stop)
			return err
		case snapshotBusLine:
			b, err := f.message()
			if err != nil {
				return err
			}
			line, err := decodeBusLine(b)
			lines = append(lines, line)
			return err
		case snapshotDistance:
			b, err := f.message()
			if err != nil {
				return err
			}
			fact, err := decodeDistance(b)
			facts = append(facts, fact)
			return err
		case snapshotGraph:
			hasGraph = true
			graphBytes, err = f.message()
			return err
		case snapshotRouter:
			hasRouter = true
			routerRaw, err = f.message()
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasGraph || !hasRouter {
		return nil, schemaError("missing graph or router")
	}

	cat, err := catalogue.Restore(stops, lines, facts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotSchema, err)
	}
	busGraph, err := decodeGraph(graphBytes)
	if err != nil {
		return nil, err
	}
	table, err := decodeTable(routerRaw, busGraph.VertexCount())
	if err != nil {
		return nil, err
	}
	r, err := router.Restore(cat, settings, busGraph, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotSchema, err)
	}
	log.Debugf("decoded snapshot: %d stops, %d bus lines, %d edges", cat.StopCount(), cat.LineCount(), busGraph.EdgeCount())
	return &State{Catalogue: cat, Router: r}, nil
}

func decodeSettings(b []byte) (s router.Settings, err error) {
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case settingsWaitTime:
			s.BusWaitTime, err = f.double()
		case settingsVelocity:
			s.BusVelocity, err = f.double()
		}
		return
	})
	return
}

func decodeStop(b []byte) (s catalogue.Stop, err error) {
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case stopID:
			var id int
			id, err = f.int()
			s.ID = catalogue.StopID(id)
		case stopName:
			s.Name, err = f.string()
		case stopLat:
			s.Lat, err = f.double()
		case stopLng:
			s.Lng, err = f.double()
		}
		return
	})
	return
}

func decodeBusLine(b []byte) (l catalogue.BusLine, err error) {
	var stops []int
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case busLineID:
			var id int
			id, err = f.int()
			l.ID = catalogue.LineID(id)
		case busLineName:
			l.Name, err = f.string()
		case busLineCircular:
			l.Circular, err = f.bool()
		case busLineStops:
			stops, err = f.appendInts(stops)
		}
		return
	})
	l.Stops = make([]catalogue.StopID, len(stops))
	for i, id := range stops {
		l.Stops[i] = catalogue.StopID(id)
	}
	return
}

func decodeDistance(b []byte) (d catalogue.DistanceFact, err error) {
	err = forEachField(b, func(f field) (err error) {
		var v int
		switch f.num {
		case distanceFrom:
			v, err = f.int()
			d.From = catalogue.StopID(v)
		case distanceTo:
			v, err = f.int()
			d.To = catalogue.StopID(v)
		case distanceMeters:
			d.Meters, err = f.int()
		case distanceExplicit:
			d.Explicit, err = f.bool()
		}
		return
	})
	return
}

func decodeGraph(b []byte) (*algo.Graph[router.BusEdgeAttr], error) {
	var (
		vertexCount int
		edges       []algo.Edge[router.BusEdgeAttr]
		lists       = make(map[int][]int)
	)
	err := forEachField(b, func(f field) (err error) {
		switch f.num {
		case graphVertexCount:
			vertexCount, err = f.int()
		case graphEdge:
			var m []byte
			if m, err = f.message(); err != nil {
				return
			}
			var edge algo.Edge[router.BusEdgeAttr]
			edge, err = decodeEdge(m)
			edges = append(edges, edge)
		case graphIncidence:
			var m []byte
			if m, err = f.message(); err != nil {
				return
			}
			var (
				v   int
				ids []int
			)
			v, ids, err = decodeIncidence(m)
			if err != nil {
				return
			}
			if _, ok := lists[v]; ok {
				return schemaError("duplicate incidence list for vertex %d", v)
			}
			lists[v] = ids
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if vertexCount < 0 {
		return nil, schemaError("negative vertex count %d", vertexCount)
	}
	incidence := make([][]int, vertexCount)
	for v, ids := range lists {
		if v < 0 || v >= vertexCount {
			return nil, schemaError("incidence list for vertex %d out of range", v)
		}
		incidence[v] = ids
	}
	busGraph, err := algo.RestoreGraph(vertexCount, edges, incidence)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotSchema, err)
	}
	return busGraph, nil
}

func decodeEdge(b []byte) (e algo.Edge[router.BusEdgeAttr], err error) {
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case edgeFrom:
			e.From, err = f.int()
		case edgeTo:
			e.To, err = f.int()
		case edgeWeight:
			e.Weight, err = f.double()
		case edgeLineID:
			var id int
			id, err = f.int()
			e.Attr.LineID = catalogue.LineID(id)
		case edgeSpanCount:
			e.Attr.SpanCount, err = f.int()
		}
		return
	})
	return
}

func decodeIncidence(b []byte) (v int, ids []int, err error) {
	ids = make([]int, 0)
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case incidenceVertex:
			v, err = f.int()
		case incidenceEdges:
			ids, err = f.appendInts(ids)
		}
		return
	})
	return
}

func decodeTable(b []byte, vertexCount int) ([][]algo.RouteInternalData, error) {
	table := make([][]algo.RouteInternalData, vertexCount)
	seen := make([]bool, vertexCount)
	err := forEachField(b, func(f field) error {
		if f.num != routerRow {
			return nil
		}
		m, err := f.message()
		if err != nil {
			return err
		}
		source, row, err := decodeRow(m)
		if err != nil {
			return err
		}
		if source < 0 || source >= vertexCount {
			return schemaError("router row for source %d out of range", source)
		}
		if seen[source] {
			return schemaError("duplicate router row for source %d", source)
		}
		seen[source] = true
		table[source] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	for source, ok := range seen {
		if !ok {
			return nil, schemaError("missing router row for source %d", source)
		}
	}
	return table, nil
}

func decodeRow(b []byte) (source int, row []algo.RouteInternalData, err error) {
	row = make([]algo.RouteInternalData, 0)
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case rowSource:
			source, err = f.int()
		case rowEntries:
			var m []byte
			if m, err = f.message(); err != nil {
				return
			}
			var data algo.RouteInternalData
			data, err = decodeEntry(m)
			row = append(row, data)
		}
		return
	})
	return
}

func decodeEntry(b []byte) (data algo.RouteInternalData, err error) {
	err = forEachField(b, func(f field) (err error) {
		switch f.num {
		case entryReached:
			data.Reached, err = f.bool()
		case entryWeight:
			data.Weight, err = f.double()
		case entryPrevEdge:
			data.PrevEdge, err = f.int()
			data.HasPrevEdge = true
		}
		return
	})
	return
}

// Save 写入临时文件后重命名，避免留下写了一半的快照
func Save(path string, s *State) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotIO, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrSnapshotIO, err)
	}
	log.Infof("saved snapshot to %s (%d bytes)", path, len(data))
	return nil
}

func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotIO, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded snapshot from %s", path)
	return s, nil
}
