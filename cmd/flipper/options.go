package main

import (
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-flipper/internal/config"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
)

// runOptions are the global flags shared by every command.
type runOptions struct {
	ConfigPath string
	EnvFile    string
	StorePath  string
	LogLevel   string
	Lists      []string
}

func optionsFromCommand(cmd *cli.Command) runOptions {
	return runOptions{
		ConfigPath: cmd.String("config"),
		EnvFile:    cmd.String("env-file"),
		StorePath:  cmd.String("store"),
		LogLevel:   cmd.String("log-level"),
		Lists:      cmd.StringSlice("list"),
	}
}

// resolveConfig layers the configuration file, the environment and the flags, in that order.
func resolveConfig(opts runOptions) (config.Config, error) {
	cfg := config.Default()

	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	}

	var files []string
	if opts.EnvFile != "" {
		files = append(files, opts.EnvFile)
	}

	env, err := config.ReadEnvironment(files...)
	if err != nil {
		return config.Config{}, err
	}

	cfg.ApplyEnvironment(env)

	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	if len(opts.Lists) > 0 {
		cfg.Lists = opts.Lists
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.NewLoggerWithLevel(cfg.Logging.Level)
}
