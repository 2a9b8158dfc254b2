package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/music-manager-go/internal/app"
	"github.com/yourusername/music-manager-go/internal/domain"
	"github.com/yourusername/music-manager-go/internal/infrastructure"
	"github.com/yourusername/music-manager-go/pkg/logger"
)

var (
	configPath string
	outputDir  string
	logLevel   string
	verbose    bool
	rootCmd    = &cobra.Command{
		Use:   "musicmanager [action] [url]",
		Short: "Download YouTube Music and other content hassle-free",
		Long: `Download playlists and songs with yt-dlp and square-crop their album art.

Actions:
  (none)           download every playlist from the config file
  quick, q         download the playlist under quickDownloadPlaylistLink
  playlist, pl     download all songs from the given URL
  song, so         download a single song from the given URL`,
		Example: `  musicmanager
  musicmanager quick
  musicmanager so 'https://music.youtube.com/watch?v=0hnwIedsoNI'`,
		Args:      cobra.RangeArgs(0, 2),
		ValidArgs: domain.ActionNames,
		Run:       runDownload,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Save directory for playlist/song/quick downloads")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Echo yt-dlp and ffmpeg output to the terminal")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseArgs splits the positional arguments into an action and a URL.
// A URL given to an action that does not take one is ignored.
func parseArgs(args []string) (domain.Action, string, error) {
	var actionArg, url string
	if len(args) > 0 {
		actionArg = args[0]
	}
	if len(args) > 1 {
		url = args[1]
	}

	action, err := domain.ParseAction(actionArg)
	if err != nil {
		return "", "", err
	}
	if !action.NeedsURL() {
		url = ""
	}
	return action, url, nil
}

// loadConfig loads the config file and applies command-line overrides
func loadConfig() *domain.Config {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
	if outputDir != "" {
		config.AdHocSavePath = outputDir
	}
	return config
}

// newLogger builds the application logger and prunes old log files
func newLogger(config *domain.Config) *zap.Logger {
	log, err := logger.New(logger.Config{
		Level:   config.Logging.Level,
		Format:  config.Logging.Format,
		LogsDir: config.Logging.LogsDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		log, _ = logger.New(logger.Config{Level: config.Logging.Level, Format: config.Logging.Format})
	}

	maxAge := time.Duration(config.Logging.MaxAgeDays) * 24 * time.Hour
	removed, err := logger.Prune(config.Logging.LogsDir, maxAge, time.Now())
	if err != nil {
		log.Warn("Failed to prune old log files", zap.Error(err))
	} else if len(removed) > 0 {
		log.Debug("Pruned old log files", zap.Strings("files", removed))
	}
	return log
}

// openHistory opens the run history database. A nil repository (not a typed
// nil) is returned when history is disabled or unavailable.
func openHistory(config *domain.Config, log *zap.Logger) (domain.JobRunRepository, func()) {
	if !config.History.Enabled {
		return nil, func() {}
	}
	repo, err := infrastructure.NewSQLiteRunRepository(config.History.DatabasePath)
	if err != nil {
		log.Warn("Run history unavailable, continuing without it",
			zap.String("path", config.History.DatabasePath),
			zap.Error(err))
		return nil, func() {}
	}
	return repo, func() { repo.Close() }
}

// toolOutput returns the writer receiving raw yt-dlp and ffmpeg output
func toolOutput(config *domain.Config, log *zap.Logger) (io.Writer, func()) {
	var writers []io.Writer
	closer := func() {}

	if config.Logging.LogsDir != "" {
		file, err := logger.OpenDated(config.Logging.LogsDir, logger.ToolLogPrefix, time.Now())
		if err != nil {
			log.Warn("Failed to open tool log", zap.Error(err))
		} else {
			writers = append(writers, file)
			closer = func() { file.Close() }
		}
	}
	if verbose {
		writers = append(writers, os.Stderr)
	}
	return io.MultiWriter(writers...), closer
}

func runDownload(cmd *cobra.Command, args []string) {
	config := loadConfig()
	log := newLogger(config)
	defer log.Sync()

	action, url, err := parseArgs(args)
	if err != nil {
		log.Error("Invalid arguments", zap.Error(err))
		os.Exit(1)
	}

	resolver := app.NewJobResolver(config)
	jobs, err := resolver.Resolve(action, url)
	if err != nil {
		log.Error("Failed to resolve jobs", zap.Error(err))
		os.Exit(1)
	}

	repo, closeRepo := openHistory(config, log)
	defer closeRepo()

	output, closeOutput := toolOutput(config, log)
	defer closeOutput()

	var progress io.Writer
	if config.Art.ShowProgress {
		progress = os.Stderr
	}

	execRunner := infrastructure.NewExecRunner(output, log)
	downloader := infrastructure.NewYTDLPDownloader(&config.Tools, config.Art.PendingPrefix, execRunner, log)
	ffmpeg := infrastructure.NewFFmpeg(&config.Tools, execRunner)
	normalizer := infrastructure.NewArtNormalizer(ffmpeg, config.Art.PendingPrefix, config.Tools.AudioExtension(), progress, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, execRunner, log)

	runner := app.NewRunner(resolver, downloader, normalizer, repo, notifier, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting music manager",
		zap.String("action", string(action)),
		zap.Int("jobs", len(jobs)))

	if err := runner.Run(ctx, jobs); err != nil {
		log.Error("Finished with errors", zap.Error(err))
		closeOutput()
		closeRepo()
		log.Sync()
		os.Exit(1)
	}

	log.Info("All jobs finished")
}
