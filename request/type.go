package request

import (
	"git.fiblab.net/sim/transit-catalogue/router"
)

// 请求类型
const (
	TypeStop  = "Stop"
	TypeBus   = "Bus"
	TypeRoute = "Route"
	TypeMap   = "Map"
)

// Document 一次运行的输入
// make_base阶段使用base_requests，process_requests阶段使用stat_requests
type Document struct {
	BaseRequests          []BaseRequest          `json:"base_requests"`
	StatRequests          []StatRequest          `json:"stat_requests"`
	RoutingSettings       *router.Settings       `json:"routing_settings"`
	SerializationSettings *SerializationSettings `json:"serialization_settings"`
}

// BaseRequest 车站或线路的录入请求，Type为Stop或Bus
type BaseRequest struct {
	Type string `json:"type" bson:"type"`
	Name string `json:"name" bson:"name"`

	// Stop
	Latitude      float64        `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty" bson:"longitude,omitempty"`
	RoadDistances map[string]int `json:"road_distances,omitempty" bson:"road_distances,omitempty"`

	// Bus
	Stops       []string `json:"stops,omitempty" bson:"stops,omitempty"`
	IsRoundtrip bool     `json:"is_roundtrip,omitempty" bson:"is_roundtrip,omitempty"`
}

// StatRequest 查询请求，Route使用From和To，其余使用Name
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type SerializationSettings struct {
	File string `json:"file"`
}

// Response 对应一条StatRequest的应答
type Response interface {
	RequestID() int
}

type ErrorResponse struct {
	ID           int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

type BusResponse struct {
	ID              int     `json:"request_id"`
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type StopResponse struct {
	ID    int      `json:"request_id"`
	Buses []string `json:"buses"`
}

type RouteResponse struct {
	ID        int         `json:"request_id"`
	TotalTime float64     `json:"total_time"`
	Items     []RouteItem `json:"items"`
}

// RouteItem 行程中的一段，Type为Wait或Bus
type RouteItem struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

func (r ErrorResponse) RequestID() int { return r.ID }
func (r BusResponse) RequestID() int   { return r.ID }
func (r StopResponse) RequestID() int  { return r.ID }
func (r RouteResponse) RequestID() int { return r.ID }
