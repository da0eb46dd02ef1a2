package main

import (
	"errors"
	"net/http"
	"net/http/pprof"
)

// 访问/debug/pprof/进入pprof实时分析页面
func startHTTPDebugger(addr string) *http.Server {
	pprofHandler := http.NewServeMux()
	pprofHandler.HandleFunc("/debug/pprof/", pprof.Index)
	pprofHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	pprofHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	pprofHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	pprofHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)
	server := &http.Server{Addr: addr, Handler: pprofHandler}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnf("pprof server error: %v", err)
		}
	}()
	log.Infof("pprof listening at %v", addr)
	return server
}
