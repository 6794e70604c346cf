package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"simulateur-hq/relay/pkg/cli"
	"simulateur-hq/relay/pkg/config"
)

var checkConfigOutput string

// configReport summarizes the effective configuration without credentials.
type configReport struct {
	ListenAddress  string   `json:"listen_address"`
	ConnectTimeout string   `json:"connect_timeout"`
	Configured     []string `json:"configured"`
	Unconfigured   []string `json:"unconfigured"`
	MetricsPath    string   `json:"metrics_path,omitempty"`
	TokenRefresh   string   `json:"token_refresh,omitempty"`
}

func (r configReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Listen address:  %s\n", r.ListenAddress)
	fmt.Fprintf(&b, "Connect timeout: %s\n", r.ConnectTimeout)
	fmt.Fprintf(&b, "Configured:      %s\n", joinOrNone(r.Configured))
	fmt.Fprintf(&b, "Unconfigured:    %s\n", joinOrNone(r.Unconfigured))
	if r.MetricsPath != "" {
		fmt.Fprintf(&b, "Metrics:         %s\n", r.MetricsPath)
	}
	if r.TokenRefresh != "" {
		fmt.Fprintf(&b, "Token refresh:   %s\n", r.TokenRefresh)
	}
	return b.String()
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

var allServices = []string{
	config.ServiceOpenAISimulateur,
	config.ServiceOpenAIAnalyse,
	config.ServiceChatbaseSimulateur,
	config.ServiceElevenLabs,
	config.ServiceAzureToken,
}

func newConfigReport(cfg *config.Config) configReport {
	missing := make(map[string]bool)
	unconfigured := cfg.Providers.Unconfigured()
	for _, name := range unconfigured {
		missing[name] = true
	}

	report := configReport{
		ListenAddress:  cfg.Server.ListenAddress,
		ConnectTimeout: cfg.Providers.ConnectTimeout.String(),
		Configured:     []string{},
		Unconfigured:   []string{},
		TokenRefresh:   cfg.Providers.Azure.RefreshSchedule,
	}
	for _, name := range allServices {
		if !missing[name] {
			report.Configured = append(report.Configured, name)
		}
	}
	report.Unconfigured = append(report.Unconfigured, unconfigured...)
	if cfg.Telemetry.Metrics.Enabled {
		report.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	return report
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the configuration and list configured services",
	Long: `Load the configuration the way serve does, validate it and report which
services have credentials. Credential values are never printed.

Exit status is 2 when the configuration is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(checkConfigOutput)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newConfigReport(cfg))
	},
}

func init() {
	checkConfigCmd.Flags().StringVarP(&checkConfigOutput, "output", "o", "text", "output format: text, json")
	rootCmd.AddCommand(checkConfigCmd)
}
