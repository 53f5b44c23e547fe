package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"openwhisper/internal/app"
	"openwhisper/internal/config"
	"openwhisper/internal/logging"
)

func init() {
	// the tray loop must own the main OS thread
	runtime.LockOSThread()
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: openwhisper [flags]

Hold the recording hotkey (default ctrl+alt+space) to dictate; release to
transcribe and type the text into the focused window. ctrl+alt+v types the
last transcription again.

Config loading:
  -config <path>   load JSON or YAML config
  ./config.json    loaded when present and -config is not given
  neither          a default config.json is written unless flags are given

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		configPath string
		filePath   string
	)
	flag.Usage = usage
	flag.StringVar(&configPath, "config", "", "path to config JSON or YAML")
	flag.StringVar(&filePath, "file", "", "transcribe an existing audio file and exit")
	fv := config.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, done, err := loadConfig(configPath, fv, filePath != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "[main] %v\n", err)
		os.Exit(1)
	}
	if done {
		return
	}
	config.ApplyFlags(&cfg, fv)
	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "[main] %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[main] logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := config.InitCacheDir(&cfg); err != nil {
		logger.Warnw("cache dir unusable, using system temp dir", "error", err)
	}

	if filePath != "" {
		err = app.RunFileMode(context.Background(), cfg, logger, filePath, fv.OutputPath)
	} else {
		err = app.Run(cfg, logger)
	}
	if err != nil {
		var setupErr *app.SetupError
		if errors.As(err, &setupErr) {
			logger.Errorw("startup failed", "component", setupErr.Component, "error", setupErr.Err)
		} else {
			logger.Errorw("exited with error", "error", err)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}

// loadConfig picks the config source. done is true when a default config
// was written and the process should exit so the user can edit it.
func loadConfig(path string, fv *config.FlagValues, fileMode bool) (config.Config, bool, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return cfg, false, fmt.Errorf("failed to load config '%s': %w", path, err)
		}
		return cfg, false, nil
	}

	_, err := os.Stat("config.json")
	switch {
	case err == nil:
		cfg, err := config.Load("config.json")
		if err != nil {
			return cfg, false, fmt.Errorf("failed to load existing config.json: %w", err)
		}
		return cfg, false, nil
	case !os.IsNotExist(err):
		return config.DefaultConfig(), false, fmt.Errorf("failed to stat config.json: %w", err)
	case fv.AnySet() || fileMode:
		return config.DefaultConfig(), false, nil
	}

	if err := config.SaveDefault("config.json"); err != nil {
		return config.DefaultConfig(), false, fmt.Errorf("failed to write default config: %w", err)
	}
	fmt.Println("[main] default config created at config.json. Please edit it and re-run.")
	return config.DefaultConfig(), true, nil
}
