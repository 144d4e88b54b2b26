// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/deprisk/riskgraph"
	"github.com/katalvlaran/deprisk/scenario"
	"github.com/katalvlaran/deprisk/service"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	addr     string
	capacity int
	scenario string
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one engine over HTTP until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a.log, f, nil)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&f.capacity, "capacity", riskgraph.DefaultCapacity, "fixed vertex capacity (raised to fit --scenario)")
	cmd.Flags().StringVar(&f.scenario, "scenario", "", "optional scenario file loaded before serving")

	return cmd
}

// serveConfig builds the service configuration for f. A scenario larger
// than --capacity raises the capacity to fit it, with a warning.
func serveConfig(log *zap.Logger, f serveFlags) (service.Config, error) {
	if f.capacity <= 0 {
		return service.Config{}, errors.New("serve: --capacity must be > 0")
	}
	cfg := service.Config{Capacity: f.capacity, Logger: log}
	if f.scenario == "" {
		return cfg, nil
	}
	doc, err := scenario.Load(f.scenario)
	if err != nil {
		return service.Config{}, err
	}
	if n := doc.Len(); n > cfg.Capacity {
		log.Warn("capacity raised to fit scenario",
			zap.String("scenario", f.scenario),
			zap.Int("requested", f.capacity),
			zap.Int("capacity", n))
		cfg.Capacity = n
	}
	cfg.Scenario = doc

	return cfg, nil
}

// serve runs the HTTP server until ctx is done. When ready is non-nil the
// bound address is sent on it once the listener is open.
func serve(ctx context.Context, log *zap.Logger, f serveFlags, ready chan<- net.Addr) error {
	cfg, err := serveConfig(log, f)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cfg.Registry = reg

	gin.SetMode(gin.ReleaseMode)
	srv, err := service.New(cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("serving", zap.String("addr", ln.Addr().String()), zap.Int("capacity", cfg.Capacity))
	if ready != nil {
		ready <- ln.Addr()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
