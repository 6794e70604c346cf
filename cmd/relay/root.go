package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simulateur-hq/relay/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Streaming relay for the conversation simulator",
	Long: `Relay keeps the OpenAI, Chatbase, ElevenLabs and Azure credentials on the
server and relays every provider to the browser through one SSE format.

Configuration is read from an optional YAML file, then from a .env file and
the process environment. Missing credentials do not stop the server: the
affected service answers 500 until they are set.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}
