package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/transit-catalogue/config"
	"git.fiblab.net/sim/transit-catalogue/engine"
	"git.fiblab.net/sim/transit-catalogue/request"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	// 配置信息，非空时覆盖配置文件
	configPath   = flag.String("config", "", "yaml config file path (empty means defaults and TRANSIT_* env)")
	mongoURI     = flag.String("mongo_uri", "", "mongo db uri")
	basePathStr  = flag.String("base", "", "base requests for make_base, can be empty to use the input document [format: {fspath} or {db}.{col}]")
	inputPath    = flag.String("input", "", "request document path (empty means stdin)")
	snapshotPath = flag.String("snapshot", "", "snapshot file path, overrides serialization_settings")
	grpcEndpoint = flag.String("listen", "", "connect listening address")
	pprofAddr    = flag.String("pprof", "", "pprof listening address")
	logLevel     = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}

	log = logrus.WithField("module", "main")
)

const usage = "usage: transit-catalogue [flags] make_base|process_requests|serve|benchmark"

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}
	if flag.NArg() != 1 {
		logrus.Fatal(usage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	overrideConfig(cfg)

	switch mode := flag.Arg(0); mode {
	case "make_base":
		doc := readDocument()
		if err := makeBase(cfg, doc); err != nil {
			log.Fatalf("make_base failed: %v", err)
		}
	case "process_requests":
		doc := readDocument()
		ready := loadReady(snapshotFile(cfg, doc))
		if err := request.WriteResponses(os.Stdout, request.Handle(ready, doc.StatRequests)); err != nil {
			log.Fatalf("process_requests failed: %v", err)
		}
	case "serve":
		serve(cfg, loadReady(snapshotFile(cfg, nil)))
	case "benchmark":
		ready := loadReady(snapshotFile(cfg, nil))
		if cfg.Pprof != "" {
			// 启动pprof
			startHTTPDebugger(cfg.Pprof)
		}
		log.Logger.SetLevel(logrus.WarnLevel)
		logBenchmark(runBenchmark(NewCatalogueServer(ready), ready.StopNames(), cfg.Bench, *benchmarkCPU))
	default:
		logrus.Fatalf("unknown mode %q, %s", mode, usage)
	}
}

func overrideConfig(cfg *config.Config) {
	if *mongoURI != "" {
		cfg.MongoURI = *mongoURI
	}
	if *grpcEndpoint != "" {
		cfg.Listen = *grpcEndpoint
	}
	if *pprofAddr != "" {
		cfg.Pprof = *pprofAddr
	}
	if *snapshotPath != "" {
		cfg.Snapshot = *snapshotPath
	}
}

func readDocument() *request.Document {
	var in io.Reader = os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("failed to open input: %v", err)
		}
		defer f.Close()
		in = f
	}
	doc, err := request.ReadDocument(in)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return doc
}

// -snapshot优先，其次为文档中的serialization_settings，最后为配置文件
func snapshotFile(cfg *config.Config, doc *request.Document) string {
	if *snapshotPath != "" {
		return *snapshotPath
	}
	if doc != nil && doc.SerializationSettings != nil && doc.SerializationSettings.File != "" {
		return doc.SerializationSettings.File
	}
	if cfg.Snapshot == "" {
		log.Fatal("no snapshot file: set -snapshot, serialization_settings.file or snapshot in config")
	}
	return cfg.Snapshot
}

func makeBase(cfg *config.Config, doc *request.Document) error {
	reqs := doc.BaseRequests
	basePath, err := NewPath(*basePathStr)
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	if basePath != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if reqs, err = basePath.LoadBaseRequests(ctx, cfg.MongoURI); err != nil {
			return fmt.Errorf("failed to load base requests from %s: %w", basePath, err)
		}
	}
	settings := cfg.RoutingSettings()
	if doc.RoutingSettings != nil {
		settings = *doc.RoutingSettings
	}

	u := engine.NewUnbuilt()
	if err := request.Fill(u, reqs); err != nil {
		return err
	}
	ready, err := u.Build(settings)
	if err != nil {
		return err
	}
	return ready.Save(snapshotFile(cfg, doc))
}

func loadReady(path string) *engine.Ready {
	ready, err := engine.Load(path)
	if err != nil {
		log.Fatalf("failed to load snapshot %s: %v", path, err)
	}
	return ready
}

func serve(cfg *config.Config, ready *engine.Ready) {
	server := NewCatalogueServer(ready)
	metrics := NewMetrics(len(ready.StopNames()), ready.Settings())

	if cfg.Pprof != "" {
		// 启动pprof
		startHTTPDebugger(cfg.Pprof)
	}

	// 启动tcp监听和初始化connect服务端
	mux := http.NewServeMux()
	mux.Handle(NewCatalogueServiceHandler(server, connect.WithInterceptors(metrics.Interceptor())))
	mux.Handle("/metrics", metrics.Handler())

	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    cfg.Listen,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// 优雅退出
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	log.Info("transit catalogue closes")
}
