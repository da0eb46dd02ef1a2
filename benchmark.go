package main

import (
	"context"
	"flag"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/transit-catalogue/config"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCPU = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

type benchmarkResult struct {
	Count   int
	Success int32
	Cost    time.Duration
}

// 在全部车站中随机选取起终点进行查询
func runBenchmark(server *CatalogueServer, stopNames []string, cfg config.BenchConfig, cpu int) benchmarkResult {
	if len(stopNames) == 0 {
		log.Warn("benchmark skipped: no stops")
		return benchmarkResult{}
	}
	// 设置随机种子
	e := rand.New(rand.NewSource(cfg.Seed))
	reqs := make([]*connect.Request[GetRouteRequest], cfg.Queries)
	for i := range reqs {
		reqs[i] = connect.NewRequest(&GetRouteRequest{
			From: stopNames[e.Intn(len(stopNames))],
			To:   stopNames[e.Intn(len(stopNames))],
		})
	}

	// 开始benchmark
	start := time.Now()
	var success atomic.Int32
	query := func(req *connect.Request[GetRouteRequest]) {
		res, err := server.GetRoute(context.Background(), req)
		if err != nil {
			log.Error("benchmark failed, err:", err)
			return
		}
		if res.Msg.Found {
			success.Add(1)
		}
	}
	if cpu <= 1 {
		for _, req := range reqs {
			query(req)
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(cpu)
		var wg sync.WaitGroup
		ch := make(chan *connect.Request[GetRouteRequest])
		for i := 0; i < cpu; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for req := range ch {
					query(req)
				}
			}()
		}
		for _, req := range reqs {
			ch <- req
		}
		close(ch)
		wg.Wait()
	}
	return benchmarkResult{
		Count:   len(reqs),
		Success: success.Load(),
		Cost:    time.Since(start),
	}
}

func logBenchmark(r benchmarkResult) {
	if r.Count == 0 {
		return
	}
	log.WithFields(logrus.Fields{
		"count":   r.Count,
		"time":    r.Cost,
		"avg":     r.Cost / time.Duration(r.Count),
		"success": r.Success,
	}).Warn("benchmark finished")
}
