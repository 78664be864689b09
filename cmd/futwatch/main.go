package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/futwatch"
	"github.com/raykavin/futwatch/internal/config"
	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/storage"
	"github.com/spf13/cobra"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:          "futwatch",
		Short:        "Telegram notifier for new futures listings",
		Version:      "1.0.0",
		SilenceUsage: true,
	}

	// Add commands
	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildContractsCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch for new futures listings and notify subscribers",
		RunE:  runWatch,
	}
}

func buildContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "Fetch the current futures contract list once and print it",
		RunE:  runContracts,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appConfig, err := config.LoadAppConfig()
	if err != nil {
		return err
	}

	if err := appConfig.Validate(); err != nil {
		return err
	}

	store, err := openStorage(ctx, appConfig)
	if err != nil {
		return err
	}

	bot, err := futwatch.New(appConfig.Settings(), futwatch.WithStorage(store))
	if err != nil {
		_ = store.Close()
		return err
	}

	return bot.Run(ctx)
}

// openStorage prefers redis when an address is configured, otherwise buntdb
func openStorage(ctx context.Context, appConfig *config.AppConfig) (core.Store, error) {
	if appConfig.Storage.UseRedis() {
		futwatch.DefaultLog.WithField("addr", appConfig.Storage.RedisAddr).Info("using redis storage")
		return storage.NewRedisStorage(ctx, storage.RedisConfig{
			Addr:      appConfig.Storage.RedisAddr,
			Password:  appConfig.Storage.RedisPassword,
			DB:        appConfig.Storage.RedisDB,
			Namespace: appConfig.Exchange,
		})
	}

	futwatch.DefaultLog.WithField("path", appConfig.Storage.Path).Info("using buntdb storage")
	return storage.NewBuntStorage(appConfig.Storage.Path)
}

func runContracts(cmd *cobra.Command, _ []string) error {
	appConfig, err := config.LoadAppConfig()
	if err != nil {
		return err
	}

	source, err := futwatch.NewSource(appConfig.Exchange, appConfig.Settings().Source, futwatch.DefaultLog)
	if err != nil {
		return err
	}

	symbols, err := source.Contracts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch contracts from %s: %w", source.Name(), err)
	}

	snapshot := core.NewSnapshot(symbols...)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"#", "Symbol"})
	for i, symbol := range snapshot.Symbols() {
		table.Append([]string{strconv.Itoa(i + 1), symbol})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d contracts on %s", snapshot.Len(), source.Name())})
	table.Render()

	return nil
}
