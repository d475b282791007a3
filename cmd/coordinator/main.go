package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/api"
	"github.com/manus-ai/fusion-coordinator/pkg/config"
	"github.com/manus-ai/fusion-coordinator/pkg/ethereum_client"
	"github.com/manus-ai/fusion-coordinator/pkg/manager"
	"github.com/manus-ai/fusion-coordinator/pkg/metrics"
	"github.com/manus-ai/fusion-coordinator/pkg/quoter"
	"github.com/manus-ai/fusion-coordinator/pkg/sui_client"
	"github.com/manus-ai/fusion-coordinator/pkg/ws"
)

var (
	configPath string
	devMode    bool
	logger     *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coordinator",
	Short: "Cross-Chain Swap Coordinator",
	Long: `An off-chain coordination service for cross-chain atomic swaps.
Makers fetch quotes and submit signed orders; resolvers receive them over
WebSocket, deploy escrows, and report transaction hashes back for
verification before secrets are released.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	RunE: runCoordinator,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the coordinator service",
	Long:  "Start the REST and WebSocket listeners and the verification pipeline",
	RunE:  runCoordinator,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Cross-Chain Swap Coordinator v1.0.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Serve fixed dev-mode quotes instead of proxying upstream")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogger() error {
	var err error
	if devMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func runCoordinator(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}

	logger.Info("Starting coordinator",
		zap.Int("api_port", cfg.API.Port),
		zap.Int("ws_port", cfg.WS.Port),
		zap.Bool("dev_mode", cfg.DevMode))

	evmClient, err := ethereum_client.NewClient(&cfg.EVM, logger.Named("evm"))
	if err != nil {
		return fmt.Errorf("failed to initialize EVM client: %w", err)
	}
	suiClient, err := sui_client.NewClient(&cfg.Sui, logger.Named("sui"))
	if err != nil {
		return fmt.Errorf("failed to initialize Sui client: %w", err)
	}

	m := metrics.New()
	mgr := manager.New(manager.Config{
		QuoteTTL:            cfg.Coordinator.QuoteTTL,
		SecretReleaseBuffer: cfg.Coordinator.SecretReleaseBuffer,
	}, evmClient, suiClient, m, logger.Named("manager"))

	quoteClient := quoter.New(cfg.OneInch, cfg.DevMode, logger.Named("quoter"))

	apiServer := api.NewServer(cfg.API, mgr, quoteClient, m, logger.Named("api"))
	wsServer := ws.NewServer(cfg.WS, mgr, m, logger.Named("ws"))

	errCh := make(chan error, 2)
	go func() { errCh <- apiServer.Start(ctx) }()
	go func() { errCh <- wsServer.Start(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Listener failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down coordinator...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Coordinator.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("REST shutdown error", zap.Error(err))
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("WebSocket shutdown error", zap.Error(err))
	}
	mgr.Close()
	evmClient.Close()
	suiClient.Close()

	logger.Info("Coordinator stopped successfully")
	return nil
}
