package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)
	config := loadConfig(defaultConfigPath, logger)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:    "lfx",
		Usage:   "Import Last.fm artists and albums by tag into a local catalog",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Action: func(_ context.Context, _ *cli.Command, debug bool) error {
					if debug {
						shared.SetLogLevel(logger, log.DebugLevel)
					}
					return nil
				},
			},
		},
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	runner.Close()

	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig reads path when it exists, falling back to defaults, then applies environment
// overrides and the configured log level.
func loadConfig(path string, logger *log.Logger) *shared.Config {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if loaded, err := shared.LoadConfig(path); err != nil {
			logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		} else {
			config = loaded
		}
	}

	config.ApplyEnv()
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))
	return config
}
