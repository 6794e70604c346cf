/*
Package cli provides helpers shared by the relay commands.

Errors:

ConfigError marks a configuration that failed to load or validate, and
ExitCode maps it to exit status 2. Every other command error exits with 1.

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Output Formatting:

Commands that report data accept --output text|json:

	format, err := cli.ParseOutputFormat(flag)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)

Signal Handling:

	ctx, stop := cli.ShutdownContext(context.Background())
	defer stop()
*/
package cli
