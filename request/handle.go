package request

import (
	"encoding/json"
	"fmt"
	"io"

	"git.fiblab.net/sim/transit-catalogue/catalogue"
	"git.fiblab.net/sim/transit-catalogue/router"
	"github.com/samber/lo"
)

// Querier 查询接口，*engine.Ready满足此接口
type Querier interface {
	GetLineStats(name string) (catalogue.BusStat, bool)
	GetLinesThroughStop(name string) ([]string, bool)
	BuildItinerary(from, to string) (router.Itinerary, bool)
}

// Handle 按顺序回答全部查询，结果不存在时返回not found
func Handle(q Querier, reqs []StatRequest) []Response {
	return lo.Map(reqs, func(req StatRequest, _ int) Response {
		return HandleOne(q, req)
	})
}

func HandleOne(q Querier, req StatRequest) Response {
	switch req.Type {
	case TypeBus:
		stat, ok := q.GetLineStats(req.Name)
		if !ok {
			return ErrorResponse{ID: req.ID, ErrorMessage: notFound}
		}
		return BusResponse{
			ID:              req.ID,
			Curvature:       stat.Curvature,
			RouteLength:     stat.RoadLength,
			StopCount:       stat.StopCount,
			UniqueStopCount: stat.UniqueStopCount,
		}
	case TypeStop:
		buses, ok := q.GetLinesThroughStop(req.Name)
		if !ok {
			return ErrorResponse{ID: req.ID, ErrorMessage: notFound}
		}
		return StopResponse{ID: req.ID, Buses: append(make([]string, 0, len(buses)), buses...)}
	case TypeRoute:
		it, ok := q.BuildItinerary(req.From, req.To)
		if !ok {
			return ErrorResponse{ID: req.ID, ErrorMessage: notFound}
		}
		return RouteResponse{ID: req.ID, TotalTime: it.TotalTime, Items: NewRouteItems(it)}
	case TypeMap:
		return ErrorResponse{ID: req.ID, ErrorMessage: mapUnsupported}
	default:
		log.Warnf("request %d: unknown type %q", req.ID, req.Type)
		return ErrorResponse{ID: req.ID, ErrorMessage: fmt.Sprintf("%s: %q", ErrUnknownRequest, req.Type)}
	}
}

func NewRouteItems(it router.Itinerary) []RouteItem {
	return lo.Map(it.Segments, func(s router.Segment, _ int) RouteItem {
		item := RouteItem{Type: s.Kind.String(), Time: s.Time}
		if s.Kind == router.SegmentWait {
			item.StopName = s.StopName
		} else {
			item.Bus = s.LineName
			item.SpanCount = s.SpanCount
		}
		return item
	})
}

// 以JSON数组输出全部应答
func WriteResponses(w io.Writer, resps []Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(resps); err != nil {
		return fmt.Errorf("failed to write responses: %w", err)
	}
	return nil
}
