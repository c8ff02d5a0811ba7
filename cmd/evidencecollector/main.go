// evidencecollector gathers web evidence about a company until a quality
// gate passes or the attempt budget runs out.
//
// Usage:
//
//	evidencecollector collect --company=<name> [--domain=<domain>] [--company-domain=<host>] [--json]
//	evidencecollector serve
//	evidencecollector watch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"EvidenceCollector/internal/app"
	"EvidenceCollector/internal/config"
	"EvidenceCollector/internal/logging"
)

const configPathEnv = "EVIDENCE_COLLECTOR_CONFIG"

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:          "evidencecollector",
	Short:        "Self-gating web evidence collection",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		if configPath != "" {
			return os.Setenv(configPathEnv, configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides $"+configPathEnv+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// newApplication loads config and wires the application for one command.
func newApplication(ctx context.Context) (*app.Application, config.Config, error) {
	cfg := config.Load()
	application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level))
	if err != nil {
		return nil, cfg, err
	}
	return application, cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
