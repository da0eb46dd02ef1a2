package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"git.fiblab.net/sim/transit-catalogue/request"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Path 文件路径或mongo集合
type Path struct {
	File string
	DB   string
	Coll string
}

func NewPath(filePathOrColl string) (*Path, error) {
	// 检查filePathOrColl是否作为文件存在
	if _, err := os.Stat(filePathOrColl); err == nil {
		return &Path{
			File: filePathOrColl,
		}, nil
	}
	dbDotColl := strings.TrimSpace(filePathOrColl)
	if dbDotColl == "" {
		return nil, nil
	}
	splitted := strings.Split(dbDotColl, ".")
	if len(splitted) != 2 || splitted[0] == "" || splitted[1] == "" {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", dbDotColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) String() string {
	if p.File != "" {
		return p.File
	}
	return p.DB + "." + p.Coll
}

// 读取base_requests，文件按请求文档解析，集合中每条记录为一个请求
func (p *Path) LoadBaseRequests(ctx context.Context, mongoURI string) ([]request.BaseRequest, error) {
	if p.File != "" {
		f, err := os.Open(p.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		doc, err := request.ReadDocument(f)
		if err != nil {
			return nil, err
		}
		return doc.BaseRequests, nil
	}
	if mongoURI == "" {
		return nil, fmt.Errorf("mongo uri is required to read %s", p)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())
	return request.LoadBaseRequests(ctx, client.Database(p.DB).Collection(p.Coll))
}
