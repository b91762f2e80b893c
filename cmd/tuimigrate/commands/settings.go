// Package commands implements CLI command handlers for tuimigrate.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/config"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/migration"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/observability"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/version"
)

const serviceName = "tuimigrate"

// loadConfig reads the config file named by the --config flag, or searches
// dir for one.
func loadConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	var path string
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}

	return config.LoadConfig(path, dir)
}

// startTelemetry builds providers from cfg. Logs go to logOut.
func startTelemetry(cfg *config.Config, mode observability.AppMode, verbose bool, logOut io.Writer) (observability.Providers, error) {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	if verbose {
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = serviceName
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.DebugTrace = cfg.Telemetry.DebugTrace
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogWriter = logOut

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init telemetry: %w", err)
	}

	return providers, nil
}

func shutdownTelemetry(providers observability.Providers) {
	if providers.Shutdown == nil {
		return
	}

	if err := providers.Shutdown(context.Background()); err != nil && providers.Logger != nil {
		providers.Logger.Warn("telemetry shutdown failed", "error", err)
	}
}

// buildRules returns the v3 rules followed by the rules of every file.
func buildRules(files []string) ([]migration.Rule, error) {
	rules := migration.V3Rules()

	for _, path := range files {
		extra, err := migration.LoadRules(path)
		if err != nil {
			return nil, err
		}

		rules = append(rules, extra...)
	}

	return rules, nil
}
