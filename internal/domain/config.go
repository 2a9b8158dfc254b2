package domain

// Config represents the application configuration
type Config struct {
	SavePathRoot              string             `mapstructure:"savePathRoot"`
	Playlists                 []PlaylistEntry    `mapstructure:"playlist"`
	QuickDownloadPlaylistLink string             `mapstructure:"quickDownloadPlaylistLink"`
	AdHocSavePath             string             `mapstructure:"adHocSavePath"`
	Tools                     ToolsConfig        `mapstructure:"tools"`
	Art                       ArtConfig          `mapstructure:"art"`
	History                   HistoryConfig      `mapstructure:"history"`
	Notification              NotificationConfig `mapstructure:"notification"`
	Logging                   LoggingConfig      `mapstructure:"logging"`
}

// PlaylistEntry is a named playlist from the config file
type PlaylistEntry struct {
	Name string `mapstructure:"name"`
	Link string `mapstructure:"link"`
}

// ToolsConfig contains the external binaries and their audio settings
type ToolsConfig struct {
	YTDLPBinary  string `mapstructure:"ytdlpBinary"`
	FFmpegBinary string `mapstructure:"ffmpegBinary"`
	AudioFormat  string `mapstructure:"audioFormat"`
	AudioQuality string `mapstructure:"audioQuality"`
}

// ArtConfig contains album-art normalization settings
type ArtConfig struct {
	PendingPrefix string `mapstructure:"pendingPrefix"`
	ShowProgress  bool   `mapstructure:"showProgress"`
}

// HistoryConfig contains the run history database settings
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"databasePath"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	LogsDir    string `mapstructure:"logsDir"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

// AudioExtension returns the extension (with dot) of downloaded audio files
func (t ToolsConfig) AudioExtension() string {
	return "." + t.AudioFormat
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		AdHocSavePath: "./",
		Tools: ToolsConfig{
			YTDLPBinary:  "yt-dlp",
			FFmpegBinary: "ffmpeg",
			AudioFormat:  "mp3",
			AudioQuality: "0",
		},
		Art: ArtConfig{
			PendingPrefix: "+",
			ShowProgress:  true,
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.musicmanager/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			LogsDir:    "$HOME/.musicmanager/logs",
			MaxAgeDays: 30,
		},
	}
}
