// Package server exposes stored diligence runs over HTTP for browsing.
// Read-only: runs are produced by the engine, never through this API.
package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/venturelens/diligence/pkg/config"
	"github.com/venturelens/diligence/pkg/storage"
)

// NewHTTPServer builds the kratos HTTP server serving the run store.
func NewHTTPServer(cfg config.ServerConfig, store *storage.Store, logger log.Logger) *khttp.Server {
	opts := []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
		),
	}
	if cfg.Addr != "" {
		opts = append(opts, khttp.Address(cfg.Addr))
	}
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			opts = append(opts, khttp.Timeout(d))
		}
	}

	srv := khttp.NewServer(opts...)
	registerRoutes(srv, store, log.NewHelper(logger))
	return srv
}

func registerRoutes(srv *khttp.Server, store *storage.Store, logHelper *log.Helper) {
	r := srv.Route("/api")

	r.GET("/runs", func(ctx khttp.Context) error {
		runs, err := store.ListRuns()
		if err != nil {
			logHelper.Errorf("list runs: %v", err)
			return errors.InternalServer("STORE_ERROR", "failed to list runs")
		}
		return ctx.Result(http.StatusOK, runs)
	})

	r.GET("/runs/{id}", func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		rep, err := store.LoadReport(id)
		if err != nil {
			return errors.NotFound("RUN_NOT_FOUND", fmt.Sprintf("run %s not found", id))
		}
		return ctx.Result(http.StatusOK, rep)
	})

	r.GET("/runs/{id}/report", func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		md, err := store.LoadMarkdown(id)
		if err != nil {
			return errors.NotFound("RUN_NOT_FOUND", fmt.Sprintf("run %s not found", id))
		}
		return ctx.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	})
}

// NewApp wraps the HTTP server in a kratos application.
func NewApp(cfg config.ServerConfig, store *storage.Store) *kratos.App {
	id, _ := os.Hostname()
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", "diligence",
	)

	srv := NewHTTPServer(cfg, store, logger)
	return kratos.New(
		kratos.Name("diligence"),
		kratos.Logger(logger),
		kratos.Server(srv),
	)
}
