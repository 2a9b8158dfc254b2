package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/music-manager-go/pkg/logger"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the application or tool log for a day",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tools, _ := cmd.Flags().GetBool("tools")
		date, _ := cmd.Flags().GetString("date")
		query, _ := cmd.Flags().GetString("grep")
		limit, _ := cmd.Flags().GetInt("limit")

		day := time.Now()
		if date != "" {
			parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid --date %q, want YYYY-MM-DD\n", date)
				os.Exit(1)
			}
			day = parsed
		}

		prefix := logger.AppLogPrefix
		if tools {
			prefix = logger.ToolLogPrefix
		}

		config := loadConfig()
		entries, err := logger.NewLogReader(config.Logging.LogsDir).SearchLogs(prefix, day, query, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Printf("No entries in %s\n", logger.DatedPath(config.Logging.LogsDir, prefix, day))
			return
		}
		printLogEntries(os.Stdout, entries)
	},
}

func init() {
	logsCmd.Flags().Bool("tools", false, "Show yt-dlp and ffmpeg output instead of the application log")
	logsCmd.Flags().String("date", "", "Day to show (YYYY-MM-DD, default today)")
	logsCmd.Flags().String("grep", "", "Only show entries containing this text")
	logsCmd.Flags().Int("limit", 50, "Number of entries to show (0 for all)")

	rootCmd.AddCommand(logsCmd)
}

func printLogEntries(w io.Writer, entries []logger.LogEntry) {
	for _, entry := range entries {
		if entry.Level == "" {
			fmt.Fprintln(w, entry.Message)
			continue
		}

		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var fields []string
		for _, k := range keys {
			fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		fmt.Fprintf(w, "%s  %-5s  %s  %s\n", entry.Timestamp, strings.ToUpper(entry.Level), entry.Message, strings.Join(fields, " "))
	}
}
