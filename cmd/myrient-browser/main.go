package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/havokzero/myrient-browser/internal/config"
	"github.com/havokzero/myrient-browser/internal/domain"
	"github.com/havokzero/myrient-browser/internal/download"
	"github.com/havokzero/myrient-browser/internal/scraper"
	"github.com/havokzero/myrient-browser/internal/ui"
	"github.com/havokzero/myrient-browser/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI colors
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorGray  = "\033[38;5;245m"
	colorCyan  = "\033[36m"
)

var (
	version    = "0.1.0"
	logger     *zap.Logger
	verbose    bool
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "myrient-browser",
		Short: "Browse and download from HTTP directory indexes",
		Long: `Browse a remote file archive served as an HTML directory index
(Apache/Nginx autoindex, Myrient) and download files from it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(verbose)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")

	rootCmd.AddCommand(lsCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(guiCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ Error:%s %v\n", colorRed, colorReset, err)
		os.Exit(1)
	}
}

// newLogger builds a development logger for -v, otherwise an error-only JSON
// logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func newIndex(cfg *config.Config) *scraper.HTTPIndex {
	return scraper.NewHTTPIndex(scraper.Options{
		ProxyURL:          cfg.ProxyURL,
		Timeout:           cfg.RequestTimeout(),
		Retries:           cfg.Retries,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         cfg.UserAgent,
		Logger:            logger,
	})
}

// signalContext is cancelled on Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func lsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ls [path|url]",
		Short: "List a remote directory",
		Long: `List the entries of a remote directory. Without an argument the
configured start path is listed. Relative paths resolve against it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			start := domain.NewLocation(cfg.BaseURL, cfg.StartPath)
			target := start.URL()
			if len(args) == 1 {
				target = start.Resolve(args[0])
			}

			ctx, cancel := signalContext()
			defer cancel()

			entries, err := newIndex(cfg).List(ctx, target)
			if err != nil {
				logger.Error("Listing failed", zap.String("url", target), zap.Error(err))
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s%s %s(%d items)%s\n\n", colorBold, target, colorReset, colorGray, len(entries), colorReset)
			return writeListing(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func getCmd() *cobra.Command {
	var (
		outDir      string
		concurrency int
		recursive   bool
		maxDepth    int
		extract     bool
	)

	cmd := &cobra.Command{
		Use:   "get <path|url>...",
		Short: "Download files",
		Long: `Download remote files into the download directory, mirroring the
remote folder layout below the start path. Directories need --recursive.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Override config with CLI flags
			if outDir != "" {
				cfg.DownloadDir = outDir
			}
			if concurrency > 0 {
				cfg.Concurrency = concurrency
			}
			if cmd.Flags().Changed("extract") {
				cfg.ExtractZip = extract
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			start := domain.NewLocation(cfg.BaseURL, cfg.StartPath)
			idx := newIndex(cfg)

			var jobs []download.Job
			for _, arg := range args {
				target := start.Resolve(arg)
				if !strings.HasSuffix(target, "/") {
					jobs = append(jobs, newJob(cfg, start, target))
					continue
				}
				if !recursive {
					return fmt.Errorf("%s is a directory, use --recursive", target)
				}
				dir, err := domain.ParseLocation(target)
				if err != nil {
					return err
				}
				err = idx.Walk(ctx, dir, maxDepth, func(at domain.Location, e domain.DirectoryEntry) error {
					if !e.IsDir {
						jobs = append(jobs, newJob(cfg, start, at.EntryURL(e)))
					}
					return nil
				})
				if err != nil {
					logger.Error("Walk failed", zap.String("url", target), zap.Error(err))
					return err
				}
			}

			out := cmd.OutOrStdout()
			console := download.NewConsole(func(msg string) {
				if verbose {
					fmt.Fprintf(out, "%s%s%s\n", colorGray, msg, colorReset)
				}
			}, logger)
			q := &download.Queue{
				Manager: download.NewManager(download.Options{
					ExtractZip: cfg.ExtractZip,
					UserAgent:  cfg.UserAgent,
					Console:    console,
				}),
				Concurrency: cfg.Concurrency,
				Attempts:    cfg.DownloadAttempts,
			}

			failed := q.Run(ctx, jobs, func(r download.Result) {
				if r.Err != nil {
					fmt.Fprintf(out, "  %s✗%s [%d/%d] %s: %v\n", colorRed, colorReset, r.Completed, r.Total, r.Job.Name, r.Err)
					return
				}
				fmt.Fprintf(out, "  %s✓%s [%d/%d] %s\n", colorGreen, colorReset, r.Completed, r.Total, r.Job.Name)
			})
			if failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, len(jobs))
			}
			fmt.Fprintf(out, "\n  %s%d files in %s%s\n", colorCyan, len(jobs), cfg.DownloadDir, colorReset)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "Download directory")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Parallel downloads (1-100)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Download directories recursively")
	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "Recursion depth limit (-1 for none)")
	cmd.Flags().BoolVar(&extract, "extract", false, "Extract .zip files after download")
	return cmd
}

func newJob(cfg *config.Config, start domain.Location, fileURL string) download.Job {
	return download.Job{
		Name:      util.FileNameFromURL(fileURL),
		URL:       fileURL,
		TargetDir: util.TargetDirFor(cfg.DownloadDir, start.URL(), fileURL),
	}
}

func guiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if abs, err := filepath.Abs(cfg.DownloadDir); err == nil {
				cfg.DownloadDir = abs
			}
			ui.Run(cfg, newIndex(cfg), logger)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return cmd
}
