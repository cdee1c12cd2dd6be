package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pzverkov/quantum-go-fips/internal/api"
	"github.com/pzverkov/quantum-go-fips/pkg/fips"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the POST and serve health, metrics and the operator API",
		Long: `Run the power-on self-test, then serve:

  /healthz            liveness
  /readyz             readiness (503 unless the module is operational)
  /health             every check with details
  /metrics            Prometheus metrics
  /v1/state           module state and last POST report
  /v1/selftest        re-run the POST (Crypto Officer, X-FIPS-Credential header)
  /v1/unlock/{role}   release a login lockout (Crypto Officer)

A failed POST does not stop the server; the module stays in the error
state and readiness reports it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, cfg fips.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	var tracer metrics.Tracer = metrics.NoOpTracer{}
	if metrics.OTelEnabled() {
		tracer = metrics.NewOTelTracer("fips-module")
	}

	env, err := openModule(cfg, os.Stderr, fips.WithCollector(collector), fips.WithTracer(tracer))
	if err != nil {
		return err
	}
	defer env.Close()
	log := env.logger.Named("serve")

	if err := env.module.RunPOST(ctx); err != nil {
		log.Error("module not operational", metrics.Fields{"error": err.Error()})
	}

	srv := metrics.NewServer(metrics.ServerConfig{
		Collector: collector,
		Logger:    env.logger,
		Version:   getVersion(),
	})
	srv.AddHealthCheck("module", env.module.HealthCheck)
	srv.Mount("/v1", api.NewHandler(env.module, env.logger).Routes())
	httpSrv := srv.HTTPServer(cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", metrics.Fields{"addr": cfg.Server.Addr})
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
