package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lifeledger/internal/backend"
	"lifeledger/internal/cli"
	"lifeledger/internal/config"
	"lifeledger/internal/log"
)

var (
	cfg     *config.Config
	logger  *log.Logger
	rootCmd = &cobra.Command{
		Use:   "lifectl",
		Short: "Administer the lifeledger calendar and ledger",
		Long: `lifectl inspects and maintains a lifeledger datastore: reconciled day views,
merchant classification, schema migrations and bank statement imports.

Configuration comes from the same environment variables as the server.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(daysCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(groupCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importBankCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg = config.Load()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, log.ComponentCLI)
	return nil
}

// openBackend creates the configured store. Callers run the cleanup.
func openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	// lifectl never announces changes.
	bc.AMQPURL = ""
	return backend.NewFactory(logger).CreateBackend(ctx, bc)
}

func userFlag(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = cfg.DefaultUserID
	}
	if user == "" {
		return "", fmt.Errorf("--user is required when DEFAULT_USER_ID is not set")
	}
	return user, nil
}
