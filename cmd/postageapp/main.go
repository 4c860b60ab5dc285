// Command postageapp inspects the resolved PostageApp configuration, calls
// API methods and serves the inbound email webhook.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lattiq/postageapp"
	"github.com/lattiq/postageapp/credentials"
)

type globalFlags struct {
	envFile         string
	credentialsFile string
	secretID        string
	region          string
	logLevel        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "postageapp",
		Short:         "PostageApp API client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "load POSTAGEAPP_* variables from a .env file")
	rootCmd.PersistentFlags().StringVar(&flags.credentialsFile, "credentials", "", "YAML credentials file with a postageapp: section")
	rootCmd.PersistentFlags().StringVar(&flags.secretID, "secret-id", "", "AWS Secrets Manager secret holding the settings")
	rootCmd.PersistentFlags().StringVar(&flags.region, "region", "", "AWS region for --secret-id")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newConfigCmd(flags),
		newCallCmd(flags),
		newSignCmd(flags),
		newVerifyCmd(flags),
		newServeCmd(flags),
		newVersionCmd(),
	)

	return rootCmd
}

// loadConfig resolves the configuration from the sources named by flags.
func loadConfig(ctx context.Context, flags *globalFlags) (*postageapp.Configuration, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", flags.envFile, err)
		}
	}

	var opts []postageapp.ResolveOption
	switch {
	case flags.secretID != "":
		var smOpts []credentials.SecretsManagerOption
		if flags.region != "" {
			smOpts = append(smOpts, credentials.WithRegion(flags.region))
		}
		store, err := credentials.LoadSecretsManager(ctx, flags.secretID, smOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, postageapp.WithCredentialStore(store))
	case flags.credentialsFile != "":
		store, err := credentials.LoadYAML(flags.credentialsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, postageapp.WithCredentialStore(store))
	}

	logger := newLogger(flags.logLevel)
	opts = append(opts, postageapp.Configure(func(c *postageapp.Configuration) {
		c.SetLogger(logger)
	}))

	return postageapp.Init(opts...), nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "INFO":
		l = slog.LevelInfo
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
