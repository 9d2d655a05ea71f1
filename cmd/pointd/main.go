package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pointchain/config"
	"pointchain/events"
	"pointchain/gateway/audit"
	"pointchain/ledger"
	"pointchain/observability"
	"pointchain/observability/logging"
	"pointchain/rpc"
	"pointchain/state"
	"pointchain/storage"
)

const rpcTokenEnvFallback = "POINTCHAIN_RPC_TOKEN"

// supplyPublisher refreshes the supply gauge whenever an event changes the
// outstanding point supply.
type supplyPublisher struct {
	engine  *ledger.Engine
	metrics *observability.LedgerMetricsRegistry
}

func (p *supplyPublisher) Emit(evt events.Event) {
	switch evt.EventType() {
	case events.TypePointsMinted, events.TypeNativeDeposited, events.TypeProductPurchased:
	default:
		return
	}
	platform, err := p.engine.GetPlatformState()
	if err != nil {
		return
	}
	p.metrics.SetSupply(platform.CurrentSupply)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(os.Getenv("POINTCHAIN_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.SetupWithFile("pointd", env, cfg.LogFile)

	token, err := cfg.ResolveRPCToken()
	if err != nil {
		logger.Error("Failed to resolve RPC token", slog.Any("error", err))
		os.Exit(1)
	}
	if token == "" {
		if fallback := strings.TrimSpace(os.Getenv(rpcTokenEnvFallback)); fallback != "" {
			token = fallback
		} else {
			logger.Warn("RPC auth disabled: no token configured", slog.String("config", *configFile))
		}
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	engine := ledger.NewEngine(state.NewManager(db))
	metrics := observability.LedgerMetrics()

	emitters := events.MultiEmitter{&supplyPublisher{engine: engine, metrics: metrics}}
	if strings.TrimSpace(cfg.AuditDSN) != "" {
		store, err := audit.Open(cfg.AuditDSN)
		if err != nil {
			logger.Error("Failed to open audit store", slog.Any("error", err))
			os.Exit(1)
		}
		emitters = append(emitters, audit.NewRecorder(store, logger))

		if strings.TrimSpace(cfg.AuditAddress) != "" {
			auditAPI := audit.NewAPI(store)
			go func() {
				server := &http.Server{
					Addr:              cfg.AuditAddress,
					Handler:           auditAPI.Handler(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				logger.Info("Audit API listening", slog.String("addr", cfg.AuditAddress))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Audit API stopped", slog.Any("error", err))
				}
			}()
		}
	}
	engine.SetEmitter(emitters)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		logger.Info("Metrics listening", slog.String("addr", cfg.MetricsAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", slog.Any("error", err))
		}
	}()

	rpcServer := rpc.NewServer(engine, token, logger)
	logger.Info("RPC listening",
		slog.String("addr", cfg.RPCAddress),
		slog.String("network", cfg.NetworkName),
	)
	if err := rpcServer.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
