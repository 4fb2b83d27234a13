package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/veteranandreich/Async-web-server/config"
)

// parseFlags builds the config. If a config file is passed, it's loaded first, and only
// explicitly set flags override its values.
func parseFlags(args []string, output io.Writer) (*config.Config, error) {
	var (
		defaults = config.Default()
		flags    = flag.NewFlagSet("asyncweb", flag.ContinueOnError)

		host     = flags.String("host", defaults.NET.Host, "address to bind to")
		port     = flags.Uint("port", uint(defaults.NET.Port), "port to bind to")
		logLevel = flags.String("log", defaults.Log.Level, "log level: trace, debug, info, warn or error")
		logFile  = flags.String("logfile", defaults.Log.File, "log file path; logs go to stderr if empty")
		workers  = flags.Int("w", defaults.Workers, "number of workers serving the listening socket")
		root     = flags.String("r", defaults.DocumentRoot, "document root")
		driver   = flags.String("driver", defaults.NET.Driver, "connection driver: goroutine or epoll")
		file     = flags.String("config", "", "path to a JSON config file")
	)

	flags.SetOutput(output)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	if *port > 0xffff {
		return nil, fmt.Errorf("port out of range: %d", *port)
	}

	cfg := defaults
	if len(*file) > 0 {
		loaded, err := config.Load(*file)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	overrides := map[string]func(){
		"host":    func() { cfg.NET.Host = *host },
		"port":    func() { cfg.NET.Port = uint16(*port) },
		"log":     func() { cfg.Log.Level = *logLevel },
		"logfile": func() { cfg.Log.File = *logFile },
		"w":       func() { cfg.Workers = *workers },
		"r":       func() { cfg.DocumentRoot = *root },
		"driver":  func() { cfg.NET.Driver = *driver },
	}

	flags.Visit(func(f *flag.Flag) {
		if override, found := overrides[f.Name]; found {
			override()
		}
	})

	return cfg, cfg.Validate()
}
