package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ReadDocument(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode request document: %w", err)
	}
	return doc, nil
}

// Finder 可以查询文档的集合，*mongo.Collection满足此接口
type Finder interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// 从mongo集合读取全部base_requests，按_id排序
func LoadBaseRequests(ctx context.Context, coll Finder) ([]BaseRequest, error) {
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query base requests: %w", err)
	}
	defer cursor.Close(ctx)
	reqs := make([]BaseRequest, 0)
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode base requests: %w", err)
	}
	log.Infof("loaded %d base requests from mongo", len(reqs))
	return reqs, nil
}

// Ingester 录入接口，*engine.Unbuilt满足此接口
type Ingester interface {
	AddStop(name string, lat, lng float64) error
	AddDistance(from, to string, meters int) error
	AddBusLine(name string, stops []string, circular bool) error
}

// Fill 先录入全部车站，再录入距离，最后录入线路
// 距离和线路可以引用后出现的车站
func Fill(in Ingester, reqs []BaseRequest) error {
	buses := make([]BaseRequest, 0)
	distances := make([]BaseRequest, 0)
	for _, req := range reqs {
		switch req.Type {
		case TypeStop:
			if err := in.AddStop(req.Name, req.Latitude, req.Longitude); err != nil {
				return err
			}
			if len(req.RoadDistances) > 0 {
				distances = append(distances, req)
			}
		case TypeBus:
			buses = append(buses, req)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownRequest, req.Type)
		}
	}
	for _, req := range distances {
		// map无序，排序后保证结果确定
		tos := lo.Keys(req.RoadDistances)
		sort.Strings(tos)
		for _, to := range tos {
			if err := in.AddDistance(req.Name, to, req.RoadDistances[to]); err != nil {
				return err
			}
		}
	}
	for _, req := range buses {
		if err := in.AddBusLine(req.Name, req.Stops, req.IsRoundtrip); err != nil {
			return err
		}
	}
	log.Debugf("filled %d stops and %d bus lines", len(reqs)-len(buses), len(buses))
	return nil
}
