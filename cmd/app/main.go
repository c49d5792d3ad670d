package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/spf13/cobra"

	"seamless/config"
	"seamless/internal/app"
	"seamless/internal/doctor"
	"seamless/internal/engine"
	"seamless/internal/onboarding"
	"seamless/internal/stats"
	"seamless/version"
)

var (
	configPath     string
	feedFlag       string
	directionFlag  string
	stepFlag       float64
	debugFlag      bool
	cpuProfilePath string
)

var rootCmd = &cobra.Command{
	Use:   "seamless",
	Short: "Scroll a feed of items in a seamless loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		if onboarding.IsFirstRun(path) && !cmd.Flags().Changed("feed") {
			fmt.Println("Welcome to seamless! Let's get you set up.")
			if _, err := onboarding.RunWizard(path); err != nil {
				if errors.Is(err, onboarding.ErrCancelled) {
					return nil
				}
				return fmt.Errorf("setup failed: %w", err)
			}
		}

		cfg, err := loadConfig(cmd, path)
		if err != nil {
			return err
		}

		logger, closeLog, err := openLog()
		if err != nil {
			return err
		}
		defer closeLog()

		if cpuProfilePath != "" {
			stop, err := startCPUProfile(cpuProfilePath)
			if err != nil {
				return err
			}
			defer stop()
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		deps := app.Deps{Config: cfg, Logger: logger}
		if cfg.Stats {
			store, err := openStore(ctx)
			if err != nil {
				logger.Warn("stats disabled", "error", err)
			} else {
				defer store.Close()
				deps.Store = store
			}
		}
		return app.Run(ctx, deps)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Run the setup wizard and write the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := onboarding.RunWizard(path); err != nil && !errors.Is(err, onboarding.ErrCancelled) {
			return err
		}
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config, feed and stats store",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		dbPath, err := config.GetDatabasePath()
		if err != nil {
			return err
		}
		report := doctor.GenerateReport(cmd.Context(), doctor.Paths{ConfigFile: path, DatabasePath: dbPath})
		if code := report.Write(cmd.OutOrStdout()); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigFile()
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, path string) (config.File, error) {
	cfg, err := config.Load(path)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("feed") {
		cfg.Feed = feedFlag
	}
	if flags.Changed("direction") {
		dir, err := engine.ParseDirection(directionFlag)
		if err != nil {
			return cfg, err
		}
		cfg.Ticker.Direction = dir
	}
	if flags.Changed("step") {
		if stepFlag <= 0 {
			return cfg, fmt.Errorf("step must be positive, got %v", stepFlag)
		}
		cfg.Ticker.Step = stepFlag
	}
	return cfg, nil
}

// openLog sends slog output to the log file, since the program owns the
// terminal while it runs.
func openLog() (*slog.Logger, func(), error) {
	path, err := config.GetLogPath()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve log path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

func openStore(ctx context.Context) (*stats.Store, error) {
	path, err := config.GetDatabasePath()
	if err != nil {
		return nil, err
	}
	return stats.Open(ctx, path)
}

func startCPUProfile(path string) (func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()
		file.Close()
		fmt.Printf("Saved CPU profile to %s\n", path)
	}, nil
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/seamless/seamless.yaml)")
	rootCmd.Flags().StringVar(&feedFlag, "feed", "", "Glob of feed files, overriding the config")
	rootCmd.Flags().StringVar(&directionFlag, "direction", "", "Scroll direction: up, down, left or right")
	rootCmd.Flags().Float64Var(&stepFlag, "step", 0, "Cells moved per frame")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "Log engine transitions")
	rootCmd.Flags().StringVar(&cpuProfilePath, "cpuprofile", "", "Write a CPU profile to file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
