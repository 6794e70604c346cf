package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"simulateur-hq/relay/pkg/cli"
	"simulateur-hq/relay/pkg/config"
	"simulateur-hq/relay/pkg/providers/azure"
	"simulateur-hq/relay/pkg/providers/chatbase"
	"simulateur-hq/relay/pkg/providers/elevenlabs"
	"simulateur-hq/relay/pkg/providers/openai"
	"simulateur-hq/relay/pkg/proxy/handlers"
	"simulateur-hq/relay/pkg/server"
	"simulateur-hq/relay/pkg/telemetry/logging"
	"simulateur-hq/relay/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay server",
	Long: `Start the relay server.

Examples:
  # Configuration from the environment and .env
  relay serve

  # YAML file with a listen override
  relay serve --config relay.yaml --listen 127.0.0.1:8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig reads the dotenv file, the optional YAML file and the
// environment, in that order.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, cli.NewConfigError(envFile, err)
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cfg.Providers.Secrets()))
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger)

	for _, name := range cfg.Providers.Unconfigured() {
		slog.Warn("service credentials missing, requests will fail until configured", "service", name)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			slog.Warn("failed to close providers", "error", err)
		}
	}()

	ctx, stop := cli.ShutdownContext(cmd.Context())
	defer stop()

	issuer := azure.NewIssuer(cfg.Providers.AzureToken())
	defer issuer.Close()

	refresher := azure.NewRefresher(issuer, cfg.Providers.Azure.RefreshSchedule)
	if err := refresher.Start(ctx); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer refresher.Stop()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		promRegistry := prometheus.NewRegistry()
		promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, promRegistry)
	}

	srv := server.NewServer(cfg, registry, issuer, collector)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// buildRegistry registers one adapter per routed service.
func buildRegistry(cfg *config.Config) (*handlers.Registry, error) {
	p := &cfg.Providers
	registry := handlers.NewRegistry()

	steps := []error{
		registry.RegisterStream(config.ServiceOpenAISimulateur, openai.NewProvider(p.OpenAISimulateur())),
		registry.RegisterStream(config.ServiceChatbaseSimulateur, chatbase.NewProvider(p.ChatbaseSimulateur())),
		registry.RegisterBuffered(config.ServiceElevenLabs, elevenlabs.NewProvider(p.ElevenLabsSpeech())),
		registry.RegisterBuffered(config.ServiceOpenAIAnalyse, openai.NewAnalyseProvider(p.OpenAIAnalyse())),
	}
	for _, err := range steps {
		if err != nil {
			_ = registry.Close()
			return nil, fmt.Errorf("failed to register services: %w", err)
		}
	}
	return registry, nil
}
