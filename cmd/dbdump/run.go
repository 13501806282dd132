package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dbdump/pkg/adapters"
	_ "github.com/ruslano69/dbdump/pkg/adapters/mssql"
	_ "github.com/ruslano69/dbdump/pkg/adapters/mysql"
	_ "github.com/ruslano69/dbdump/pkg/adapters/postgres"
	_ "github.com/ruslano69/dbdump/pkg/adapters/sqlite"
	"github.com/ruslano69/dbdump/pkg/config"
	"github.com/ruslano69/dbdump/pkg/dumper"
	"github.com/ruslano69/dbdump/pkg/output"
	"github.com/ruslano69/dbdump/pkg/sinks"
)

// runResult is what a dump produced
type runResult struct {
	Stats    dumper.Stats
	Output   string
	Checksum string
}

// runDump connects to the source, dumps all tables into the output file and uploads it
func runDump(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (runResult, error) {
	res := runResult{Output: cfg.Output.Path}

	tables, err := cfg.DumperTables()
	if err != nil {
		return res, fmt.Errorf("failed to build tables: %w", err)
	}

	conn, err := adapters.New(ctx, cfg.Database.AdapterConfig())
	if err != nil {
		return res, err
	}
	defer conn.Close(ctx)

	if version, err := conn.GetDatabaseVersion(ctx); err == nil {
		logger.Info().Str("type", conn.GetDatabaseType()).Str("version", version).Msg("connected")
	}

	file, err := output.OpenFile(cfg.Output.Path, output.FileOptions{
		Compress: cfg.Output.Compress,
		Level:    cfg.Output.Level,
		Checksum: cfg.Output.Checksum,
	})
	if err != nil {
		return res, err
	}

	writer, err := newWriter(cfg, conn, file)
	if err != nil {
		file.Close()
		return res, err
	}

	d, err := dumper.New(conn, tables, writer, dumper.Options{
		BatchSize:    cfg.Dump.BatchSize,
		HarvestLimit: cfg.Dump.HarvestLimit,
		Logger:       &logger,
	})
	if err != nil {
		writer.Close()
		return res, err
	}

	res.Stats, err = d.Run(ctx)
	if closeErr := writer.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close output: %w", closeErr))
	}
	if err != nil {
		return res, err
	}

	res.Checksum = file.Sum()
	logger.Info().Str("path", file.Path()).Str("xxh3", res.Checksum).Msg("output written")

	if err := upload(ctx, cfg.Upload, file.Path(), logger); err != nil {
		return res, err
	}

	return res, nil
}

// newWriter picks the row writer for the configured format; the writer closes file
func newWriter(cfg *config.Config, conn adapters.Adapter, file *output.File) (output.Writer, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	switch format {
	case output.FormatXLSX:
		return output.NewXLSXWriter(file), nil
	default:
		source := cfg.Database.Database
		if cfg.Database.Host != "" {
			source = cfg.Database.Host + "/" + source
		}
		return output.NewSQLWriter(file, conn, conn.GetDatabaseType(), source), nil
	}
}

func upload(ctx context.Context, cfg config.UploadConfig, path string, logger zerolog.Logger) error {
	sink, err := sinks.New(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	if sink.Type() == "local" {
		return nil
	}

	sink, err = sinks.WithRetry(sink, sinks.RetryConfig(cfg.Retry, logger))
	if err != nil {
		return err
	}

	if err := sink.Upload(ctx, path); err != nil {
		return fmt.Errorf("failed to upload to %s: %w", sink.Type(), err)
	}

	logger.Info().Str("sink", sink.Type()).Str("path", path).Msg("output uploaded")
	return nil
}
