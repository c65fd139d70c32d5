// attacktree-server serves the risk propagation engine over HTTP for the
// authoring layer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/taraforge/attacktree/pkg/api"
	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/logging"
	"github.com/taraforge/attacktree/pkg/persist"
	"github.com/taraforge/attacktree/pkg/server"
	"github.com/taraforge/attacktree/pkg/telemetry"
	"github.com/taraforge/attacktree/pkg/topology"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "attacktree.yaml", "Server configuration file")
	flag.Parse()

	// .env is optional; real environment wins either way.
	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "attacktree-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	log := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	log.Info("starting attacktree-server",
		logging.String("version", version),
		logging.String("graph_file", cfg.GraphFile),
		logging.String("listen_addr", cfg.ListenAddr))

	g, configs, err := persist.Load(cfg.GraphFile)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	store := graph.NewStore(g, configs, topology.NewValidator())
	log.Info("graph loaded", logging.Int("nodes", g.Len()))

	metrics := telemetry.NewRegistry()
	metrics.SetGraphStats(g.Len(), 0)

	policy, err := cfg.FeasibilityPolicy()
	if err != nil {
		return err
	}

	apiServer := api.NewServer(store,
		api.WithLogger(log),
		api.WithTelemetry(metrics),
		api.WithPolicy(policy),
		api.WithLimits(cfg.Limits),
		api.WithVersion(version),
	)

	httpServer := server.NewGracefulServer(cfg.ListenAddr, apiServer.Handler(), log)
	httpServer.SetReloadFunc(func() error {
		reloaded, reloadedConfigs, err := persist.Load(cfg.GraphFile)
		if err != nil {
			return fmt.Errorf("reload graph: %w", err)
		}
		store.Replace(reloaded, reloadedConfigs)
		metrics.SetGraphStats(reloaded.Len(), store.Version())
		log.Info("graph reloaded", logging.Int("nodes", reloaded.Len()))
		return nil
	})

	return httpServer.Start()
}
