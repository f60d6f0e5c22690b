package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/habitable/internal/pipeline"
	"github.com/ajitpratap0/habitable/pkg/config"
	"github.com/ajitpratap0/habitable/pkg/connector/sources/csv"
	"github.com/ajitpratap0/habitable/pkg/logger"
	"github.com/ajitpratap0/habitable/pkg/metrics"
	"github.com/ajitpratap0/habitable/pkg/observability"
)

var version = "0.1.0"

// inputPath is the Kepler KOI cumulative table, relative to the working directory.
const inputPath = "kepler_data.csv"

func main() {
	root := newRootCommand(inputPath, os.Stdout, os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(path string, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "habitable",
		Short: "List confirmed Kepler planets that could be habitable",
		Long: `habitable scans the Kepler objects-of-interest table in ./kepler_data.csv and
prints the kepler_name of every confirmed planet with a stellar flux between
0.36 and 1.11 times Earth's and a radius below 1.6 Earth radii.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.LoggerConfig())
			if err != nil {
				return err
			}
			logger.Set(log)
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), path, cfg, stdout, stderr, log)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "habitable v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	return root
}

// run executes one scan of path and writes the listing to stdout.
func run(ctx context.Context, path string, cfg *config.Config, stdout, stderr io.Writer, log *zap.Logger) error {
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "habitable",
			ServiceVersion: version,
			SamplingRate:   cfg.Tracing.SamplingRate,
		}, stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	source := csv.NewCSVSource(path, log)
	if err := source.Open(); err != nil {
		return err
	}

	collector := metrics.NewCollector("csv")
	result, err := pipeline.NewSimplePipeline(source, log, pipeline.WithMetrics(collector)).Run(ctx)
	if err != nil {
		return err
	}

	if _, err := result.WriteTo(stdout); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err := collector.WriteText(stderr); err != nil {
			log.Warn("failed to write metrics", zap.Error(err))
		}
	}
	return nil
}
