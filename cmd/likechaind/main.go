package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"likechain/config"
	"likechain/core"
	"likechain/observability/logging"
	"likechain/rpc"
	"likechain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("LIKECHAIN_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	opts := []logging.Option{}
	if strings.TrimSpace(cfg.LogFile) != "" {
		opts = append(opts, logging.WithRotatingFile(cfg.LogFile))
	}
	logger := logging.Setup("likechaind", env, opts...)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		panic(fmt.Sprintf("Failed to prepare data directory: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node := core.NewNode(db)

	if admin, ok, err := cfg.Admin(); err != nil {
		panic(fmt.Sprintf("Failed to decode admin address: %v", err))
	} else if ok {
		node.SetAdmin(admin.Bytes())
		logger.Info("Ledger admin configured", slog.String("address", admin.String()))
	}

	owner, ownerSet, err := cfg.Owner()
	if err != nil {
		panic(fmt.Sprintf("Failed to decode genesis owner: %v", err))
	}
	supply, supplySet, err := cfg.Supply()
	if err != nil {
		panic(fmt.Sprintf("Failed to parse genesis supply: %v", err))
	}
	if ownerSet != supplySet {
		panic("GenesisOwner and GenesisSupply must be set together")
	}
	if ownerSet {
		if err := node.InitGenesis(owner.Bytes(), supply); err != nil {
			panic(fmt.Sprintf("Failed to initialise genesis supply: %v", err))
		}
		logger.Info("Genesis supply initialised",
			slog.String("owner", owner.String()),
			slog.String("supply", supply.String()))
	}

	server := rpc.NewServer(node)
	logger.Info("Starting RPC server",
		slog.String("address", cfg.RPCAddress),
		slog.String("network", cfg.NetworkName))
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
