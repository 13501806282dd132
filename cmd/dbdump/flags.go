package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	Config       *string
	Output       *string
	BatchSize    *int
	LogLevel     *string
	CreateConfig *string
	Version      *bool
	Help         *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags(fs *flag.FlagSet, args []string) (*Flags, error) {
	f := &Flags{}

	f.Config = fs.String("config", "dbdump.yaml", "Configuration file path")
	f.Output = fs.String("output", "", "Output file path (overrides output.path)")
	f.BatchSize = fs.Int("batch-size", 0, "Rows per page (overrides dump.batch_size)")
	f.LogLevel = fs.String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	f.CreateConfig = fs.String("create-config", "", "Write a sample config for: sqlite, postgres, mysql, mssql")
	f.Version = fs.Bool("version", false, "Show version information")
	f.Help = fs.Bool("help", false, "Show help with examples")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
