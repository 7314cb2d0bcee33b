// Package main provides the calculator server binary: the expcalc.v1.Calculator
// gRPC service plus a Prometheus /metrics endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/calcserver"
	"github.com/cory-johannsen/expcalc/internal/config"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/game/species"
	"github.com/cory-johannsen/expcalc/internal/observability"
	"github.com/cory-johannsen/expcalc/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults and EXPCALC_ environment)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	table := species.Builtin()
	if cfg.Data.Species != "" {
		table, err = species.LoadTableFromFile(cfg.Data.Species)
		if err != nil {
			logger.Fatal("loading species table", zap.Error(err))
		}
	}
	logger.Info("species table loaded", zap.Int("species", table.Len()))

	metrics := observability.NewMetrics()
	calc, err := encounter.NewCalculator(table,
		encounter.WithLogger(logger),
		encounter.WithObserver(metrics),
		encounter.WithCacheSize(cfg.Calculator.CacheSize),
	)
	if err != nil {
		logger.Fatal("creating calculator", zap.Error(err))
	}

	svcOpts := []calcserver.Option{
		calcserver.WithLogger(logger),
		calcserver.WithRecorder(metrics),
		calcserver.WithReferenceMaxRate(cfg.Calculator.ReferenceMaxRate),
	}
	if mgr, err := loadLocations(cfg.Data.Dataset); err != nil {
		logger.Warn("encounter dataset unavailable, RankLocations disabled",
			zap.String("path", cfg.Data.Dataset),
			zap.Error(err),
		)
	} else {
		analyzer := analysis.New(calc,
			analysis.WithLogger(logger),
			analysis.WithWorkers(cfg.Calculator.Workers),
			analysis.WithReferenceMaxRate(cfg.Calculator.ReferenceMaxRate),
			analysis.WithDurationObserver(metrics),
		)
		svcOpts = append(svcOpts, calcserver.WithLocations(mgr, analyzer))
		logger.Info("encounter dataset loaded",
			zap.String("path", cfg.Data.Dataset),
			zap.Int("locations", mgr.Len()),
		)
	}
	svc := calcserver.NewServer(calc, svcOpts...)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(svc.UnaryInterceptor()))
	calcserver.RegisterCalculatorServer(grpcServer, svc)
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(calcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = server.DefaultShutdownTimeout
	}
	lifecycle := server.NewLifecycle(logger)
	lifecycle.SetShutdownTimeout(shutdownTimeout)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr())
			if err != nil {
				return err
			}
			logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			healthSrv.Shutdown()
			grpcServer.GracefulStop()
		},
	})

	if cfg.Server.MetricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		httpServer := &http.Server{
			Addr:              cfg.Server.MetricsAddr(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				logger.Info("metrics listening", zap.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := httpServer.Shutdown(ctx); err != nil {
					logger.Warn("metrics shutdown", zap.Error(err))
				}
			},
		})
	}

	logger.Info("calculator server initialized",
		zap.String("grpc_addr", cfg.Server.GRPCAddr()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func loadLocations(path string) (*location.Manager, error) {
	if path == "" {
		return nil, errors.New("data.dataset is empty")
	}
	ds, err := location.LoadDatasetFromFile(path)
	if err != nil {
		return nil, err
	}
	return location.NewManager(ds)
}
