// Command scgctl runs operator jobs outside the API server: converting raw
// scanner exports, bulk loading signatures and bootstrapping the first account.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	configPath   string
	outputFormat string
	debugMode    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scgctl",
		Short: "SCG Portal operator tool",
		Long: `scgctl converts scanner exports into upload documents, bulk loads
scanner signatures and bootstraps superuser accounts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (json or yaml)", outputFormat)
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./config.toml)")
	root.PersistentFlags().StringVarP(&outputFormat, "output", "O", "json", "output format: json or yaml")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(convertCmd(), signaturesCmd(), createSuperuserCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// newLogger writes to stderr so stdout stays parseable
func newLogger() *zap.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = "stderr"
	cfg.Level = "warn"
	if debugMode {
		cfg.Level = "debug"
	}
	return logger.New(cfg)
}

// openDatabase connects with the configured DSN; callers close it
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	return persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: "error",
	})
}

// writeOutput encodes v in the selected output format
func writeOutput(w io.Writer, v any) error {
	if outputFormat == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
