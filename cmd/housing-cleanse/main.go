package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/analytics"
	"github.com/parcelworks/housing-cleanse/pkg/audit"
	"github.com/parcelworks/housing-cleanse/pkg/cleanse"
	"github.com/parcelworks/housing-cleanse/pkg/config"
	"github.com/parcelworks/housing-cleanse/pkg/report"
	"github.com/parcelworks/housing-cleanse/pkg/sink"
	"github.com/parcelworks/housing-cleanse/pkg/source"
)

func main() {
	jobPath := flag.String("job", "", "path to a YAML job definition")
	sourceKind := flag.String("source", "", "source kind: csv, xlsx, postgres, snowflake (overrides SOURCE_KIND)")
	inputPath := flag.String("input", "", "input file path for csv/xlsx sources (overrides SOURCE_PATH)")
	outputKind := flag.String("output", "", "output kind: csv, postgres (overrides OUTPUT_KIND)")
	outputPath := flag.String("output-path", "", "output file path for csv output (overrides OUTPUT_PATH)")
	envFile := flag.String("env", "", "path to an env file with credentials")
	quiet := flag.Bool("quiet", false, "suppress the rendered report on stdout")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fatal("Failed to load env file %s: %v", *envFile, err)
		}
	} else {
		// A .env in the working directory is optional
		_ = godotenv.Load()
	}

	cfg := config.LoadConfig()

	passNames := cleanse.DefaultPassNames()
	if *jobPath != "" {
		job, err := config.LoadJobFile(*jobPath)
		if err != nil {
			fatal("Failed to load job file: %v", err)
		}
		job.Apply(cfg)
		if len(job.Passes) > 0 {
			passNames = job.Passes
		}
	}

	if *sourceKind != "" {
		cfg.Source.Kind = *sourceKind
	}
	if *inputPath != "" {
		cfg.Source.Path = *inputPath
	}
	if *outputKind != "" {
		cfg.Output.Kind = *outputKind
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}

	if err := cfg.LoadDatabases(); err != nil {
		fatal("Failed to load database configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fatal("Failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := run(context.Background(), cfg, passNames, *quiet, logger); err != nil {
		logger.Error("Cleaning run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// run executes a full cleaning run: read the source, load typed records,
// apply the configured passes, verify invariants, report, and persist the
// audit trail and cleaned output when configured.
func run(ctx context.Context, cfg *config.Config, passNames []string, quiet bool, logger *zap.Logger) error {
	src, err := source.NewSourceFactory(cfg, logger).Create(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	table, err := src.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}

	failures := cleanse.NewErrorCollector(logger)
	records, err := cleanse.NewLoader(failures).Load(table)
	if err != nil {
		return err
	}

	ds := cleanse.NewDataset(src.Name(), records, failures)

	passes, err := cleanse.BuildPasses(passNames)
	if err != nil {
		return err
	}

	result, err := cleanse.NewPipeline().Add(passes...).Run(ctx, ds)
	if err != nil {
		return err
	}
	result.LogSummary(logger)

	invariants := cleanse.NewInvariantChecker().Check(ds)

	analyzer := analytics.NewAnalyzer()
	prices := analyzer.PriceStats(ds.Cleaned)
	outliers := analyzer.DetectOutliers(ds.Cleaned)
	cities := analyzer.AggregateByCity(ds.Cleaned)

	rep := report.NewBuilder().Build(ds, result, invariants, prices, outliers, cities)
	rep.Log(logger)
	if !quiet {
		fmt.Println(rep.Render())
	}

	var db *sqlx.DB
	if cfg.AuditEnabled || cfg.Output.Kind == config.KindPostgres {
		db, err = source.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer db.Close()
	}

	if cfg.AuditEnabled {
		trail, err := audit.NewTrail(db, cfg.AuditTable)
		if err != nil {
			return fmt.Errorf("failed to prepare audit trail: %w", err)
		}
		if err := trail.RecordRun(ctx, result.RunID, ds.Ops); err != nil {
			return fmt.Errorf("failed to persist audit trail: %w", err)
		}
	}

	if cfg.Output.Kind != "" {
		if len(ds.Cleaned) == 0 {
			logger.Warn("No cleaned records to write, skipping output",
				zap.String("output", cfg.Output.Kind))
			return nil
		}

		var out sink.RecordSink
		switch cfg.Output.Kind {
		case config.KindCSV:
			out = sink.NewCSVSink(cfg.Output.Path)
		case config.KindPostgres:
			out = sink.NewPostgresSink(db, cfg.Output.Schema, cfg.Output.Table, cfg.ChunkSize)
		default:
			return fmt.Errorf("unknown output kind: %s", cfg.Output.Kind)
		}
		defer out.Close()

		if _, err := out.Write(ctx, ds.Cleaned); err != nil {
			return fmt.Errorf("failed to write cleaned records to %s: %w", out.Name(), err)
		}
	}

	return nil
}

// buildLogger builds the process logger from the configured level and format
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

// fatal prints error and exits
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
