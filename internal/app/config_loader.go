package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/music-manager-go/internal/domain"
	"github.com/yourusername/music-manager-go/internal/infrastructure"
)

// EnvPrefix is the prefix of environment variables overriding config keys
const EnvPrefix = "MUSICMANAGER"

// LoadConfig loads configuration from a JSON file and the environment.
// With an empty configPath it looks for config.json in the working directory,
// next to the executable and in $HOME/.musicmanager; a missing file leaves
// the defaults in place.
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
		v.AddConfigPath("$HOME/.musicmanager")
	}

	// AutomaticEnv only overrides keys viper already knows
	setDefaults(v, config)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every scalar key of config with v, so that
// MUSICMANAGER_<SECTION>_<KEY> variables apply even when the file omits the key
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("savePathRoot", config.SavePathRoot)
	v.SetDefault("quickDownloadPlaylistLink", config.QuickDownloadPlaylistLink)
	v.SetDefault("adHocSavePath", config.AdHocSavePath)

	v.SetDefault("tools.ytdlpBinary", config.Tools.YTDLPBinary)
	v.SetDefault("tools.ffmpegBinary", config.Tools.FFmpegBinary)
	v.SetDefault("tools.audioFormat", config.Tools.AudioFormat)
	v.SetDefault("tools.audioQuality", config.Tools.AudioQuality)

	v.SetDefault("art.pendingPrefix", config.Art.PendingPrefix)
	v.SetDefault("art.showProgress", config.Art.ShowProgress)

	v.SetDefault("history.enabled", config.History.Enabled)
	v.SetDefault("history.databasePath", config.History.DatabasePath)

	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.method", config.Notification.Method)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.logsDir", config.Logging.LogsDir)
	v.SetDefault("logging.maxAgeDays", config.Logging.MaxAgeDays)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.SavePathRoot = expandPath(config.SavePathRoot)
	config.AdHocSavePath = expandPath(config.AdHocSavePath)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)
	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return os.Expand(path, func(key string) string {
		if key == "HOME" {
			if home, err := os.UserHomeDir(); err == nil {
				return home
			}
		}
		return os.Getenv(key)
	})
}

// validateConfig checks the settings every action relies on. Keys needed only
// by some actions are checked by the job resolver.
func validateConfig(config *domain.Config) error {
	if config.Tools.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Tools.FFmpegBinary == "" {
		return fmt.Errorf("ffmpeg binary not configured")
	}

	if config.Tools.AudioFormat == "" {
		return fmt.Errorf("audio format not configured")
	}

	if config.Tools.AudioQuality == "" {
		return fmt.Errorf("audio quality not configured")
	}

	if config.Art.PendingPrefix == "" {
		return fmt.Errorf("pending prefix cannot be empty")
	}

	if config.AdHocSavePath == "" {
		config.AdHocSavePath = "./"
	}

	if config.Notification.Enabled {
		if _, _, ok := infrastructure.NotificationArgs(config.Notification.Method, "", ""); !ok {
			return fmt.Errorf("unknown notification method %q", config.Notification.Method)
		}
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	for i, playlist := range config.Playlists {
		if playlist.Name == "" || playlist.Link == "" {
			return fmt.Errorf("playlist entry %d needs both name and link", i)
		}
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
