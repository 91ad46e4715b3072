package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "recon",
		Short: "🧾 Owner reconciliation and settlement engine",
		Long: `recon turns the visits, expenses and pass-through fees attached to a monthly
owner reconciliation into a single settlement figure: the amount the owner owes
(co-hosting) or the payout the owner receives (full-service).

It validates line items before approval, keeps an audit trail of destructive
changes, and commits full-service payouts exactly once.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/recon/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database path (default: $HOME/.local/share/recon/recon.db)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyDatabasePath, rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(itemsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(expenseCmd())
	rootCmd.AddCommand(payoutCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, formatCommandError(err))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	config.LoadEnvFiles()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.DefaultConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	appConfig = cfg

	level, err := common.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("Configuration loaded",
		"config_file", viper.ConfigFileUsed(),
		"database", cfg.DatabasePath,
		"payout_formula", cfg.PayoutFormula)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recon version %s\n", version)
		},
	}
}
