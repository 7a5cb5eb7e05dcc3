// Package observe file: internal/observe/debug.go
package observe

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof"
)

// EnablePprof exposes /debug/pprof on addr, e.g. "localhost:6060".
func EnablePprof(addr string) {
	if addr == "" {
		slog.Info("pprof endpoint is disabled because address is empty")
		return
	}
	go func() {
		slog.Info("starting pprof endpoint", "address", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			slog.Error("failed to start pprof endpoint", "error", err)
		}
	}()
}
