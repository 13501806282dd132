package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruslano69/dbdump/pkg/config"
	"github.com/ruslano69/dbdump/pkg/resultlog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dbdump", flag.ContinueOnError)
	flags, err := ParseFlags(fs, args)
	if err != nil {
		return 2
	}

	if *flags.Version {
		PrintVersion(os.Stdout)
		return 0
	}
	if *flags.Help {
		PrintHelp(os.Stdout)
		return 0
	}
	if *flags.CreateConfig != "" {
		return createConfigTemplate(*flags.CreateConfig, *flags.Config)
	}

	cfg, err := config.LoadConfig(*flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	applyOverrides(cfg, flags)

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	res, runErr := runDump(ctx, cfg, logger)

	if cfg.ResultLog.Type == "redis" {
		publisher := resultlog.NewRedisPublisher(cfg.ResultLog)
		result := resultlog.NewRunResult(cfg.ResultLog.Name, started, res.Stats, runErr)
		result.Output = res.Output
		result.Checksum = res.Checksum

		// Publish even when the run was interrupted
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := publisher.Publish(pubCtx, result); err != nil {
			logger.Warn().Err(err).Msg("failed to publish run result")
		}
		cancel()
		publisher.Close()
	}

	if runErr != nil {
		logger.Error().Err(runErr).Msg("dump failed")
		return 1
	}

	logger.Info().
		Int("tables", len(res.Stats.Tables)).
		Int("rows", res.Stats.Rows).
		Dur("duration", res.Stats.Duration).
		Msg("dump completed")
	return 0
}

// applyOverrides lets command-line flags win over the config file
func applyOverrides(cfg *config.Config, flags *Flags) {
	if *flags.Output != "" {
		cfg.Output.Path = *flags.Output
	}
	if *flags.BatchSize > 0 {
		cfg.Dump.BatchSize = *flags.BatchSize
	}
	if *flags.LogLevel != "" {
		cfg.Log.Level = *flags.LogLevel
	}
}

// createConfigTemplate writes a sample configuration file
func createConfigTemplate(dbType, path string) int {
	if err := config.Save(path, config.Sample(dbType)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save config: %v\n", err)
		return 1
	}

	fmt.Printf("✓ Created sample %s config: %s\n", dbType, path)
	fmt.Println("Edit the file with your database credentials and run:")
	fmt.Printf("  dbdump -config %s\n", path)
	return 0
}
