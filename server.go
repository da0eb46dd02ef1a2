package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/transit-catalogue/request"
)

const (
	CatalogueServiceName = "transit.v1.CatalogueService"

	GetBusStatProcedure   = "/" + CatalogueServiceName + "/GetBusStat"
	GetStopBusesProcedure = "/" + CatalogueServiceName + "/GetStopBuses"
	GetRouteProcedure     = "/" + CatalogueServiceName + "/GetRoute"
)

// 消息为普通的Go结构体，使用JSON编解码
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type GetBusStatRequest struct {
	Name string `json:"name"`
}

type GetBusStatResponse struct {
	Found           bool    `json:"found"`
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type GetStopBusesRequest struct {
	Name string `json:"name"`
}

type GetStopBusesResponse struct {
	Found bool     `json:"found"`
	Buses []string `json:"buses"`
}

type GetRouteRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type GetRouteResponse struct {
	Found     bool                `json:"found"`
	TotalTime float64             `json:"total_time"`
	Items     []request.RouteItem `json:"items"`
}

type CatalogueServer struct {
	catalogue request.Querier
}

func NewCatalogueServer(q request.Querier) *CatalogueServer {
	return &CatalogueServer{catalogue: q}
}

// 注册全部接口，返回值可直接传给http.ServeMux.Handle
func NewCatalogueServiceHandler(s *CatalogueServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GetBusStatProcedure, connect.NewUnaryHandler(GetBusStatProcedure, s.GetBusStat, opts...))
	mux.Handle(GetStopBusesProcedure, connect.NewUnaryHandler(GetStopBusesProcedure, s.GetStopBuses, opts...))
	mux.Handle(GetRouteProcedure, connect.NewUnaryHandler(GetRouteProcedure, s.GetRoute, opts...))
	return "/" + CatalogueServiceName + "/", mux
}

func (s *CatalogueServer) GetBusStat(
	ctx context.Context,
	req *connect.Request[GetBusStatRequest],
) (*connect.Response[GetBusStatResponse], error) {
	in := req.Msg
	if in.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty bus name"))
	}
	stat, ok := s.catalogue.GetLineStats(in.Name)
	if !ok {
		// 线路不存在，返回空响应
		return connect.NewResponse(&GetBusStatResponse{}), nil
	}
	return connect.NewResponse(&GetBusStatResponse{
		Found:           true,
		Curvature:       stat.Curvature,
		RouteLength:     stat.RoadLength,
		StopCount:       stat.StopCount,
		UniqueStopCount: stat.UniqueStopCount,
	}), nil
}

func (s *CatalogueServer) GetStopBuses(
	ctx context.Context,
	req *connect.Request[GetStopBusesRequest],
) (*connect.Response[GetStopBusesResponse], error) {
	in := req.Msg
	if in.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty stop name"))
	}
	buses, ok := s.catalogue.GetLinesThroughStop(in.Name)
	if !ok {
		return connect.NewResponse(&GetStopBusesResponse{Buses: []string{}}), nil
	}
	return connect.NewResponse(&GetStopBusesResponse{
		Found: true,
		Buses: append(make([]string, 0, len(buses)), buses...),
	}), nil
}

func (s *CatalogueServer) GetRoute(
	ctx context.Context,
	req *connect.Request[GetRouteRequest],
) (*connect.Response[GetRouteResponse], error) {
	in := req.Msg
	if in.From == "" || in.To == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty from or to stop name"))
	}
	log.Debugf("search route from %q to %q", in.From, in.To)
	it, ok := s.catalogue.BuildItinerary(in.From, in.To)
	if !ok {
		// 无法找到通路，返回空响应
		return connect.NewResponse(&GetRouteResponse{Items: []request.RouteItem{}}), nil
	}
	return connect.NewResponse(&GetRouteResponse{
		Found:     true,
		TotalTime: it.TotalTime,
		Items:     request.NewRouteItems(it),
	}), nil
}
