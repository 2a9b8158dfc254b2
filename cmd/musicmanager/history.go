package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/music-manager-go/internal/domain"
	"github.com/yourusername/music-manager-go/internal/infrastructure"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recent job runs, or show one run and its songs",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		repo := openHistoryOrExit()
		defer repo.Close()

		if len(args) == 1 {
			run, err := findRun(repo, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			tracks, err := repo.FindTracks(run.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			printRun(os.Stdout, run, tracks)
			return
		}

		runs, err := repo.FindRecent(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printRuns(os.Stdout, runs)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job run statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openHistoryOrExit()
		defer repo.Close()

		stats, err := repo.GetStats()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printStats(os.Stdout, stats)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of runs to show")
}

func openHistoryOrExit() *infrastructure.SQLiteRunRepository {
	config := loadConfig()
	if !config.History.Enabled {
		fmt.Fprintln(os.Stderr, "Error: run history is disabled in the config")
		os.Exit(1)
	}

	repo, err := infrastructure.NewSQLiteRunRepository(config.History.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repo
}

func printRuns(w io.Writer, runs []*domain.JobRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tSONGS\tFAILED\tSTARTED")
	for _, run := range runs {
		name := run.Name
		if name == "" {
			name = truncate(run.Link, 40)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			truncate(run.ID, 8),
			name,
			run.Status,
			run.NormalizedCount,
			run.FailedCount,
			run.StartedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

// findRun looks a run up by its full ID, or by an unambiguous ID prefix as
// printed in the history list
func findRun(repo domain.JobRunRepository, id string) (*domain.JobRun, error) {
	run, err := repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}

	runs, err := repo.FindRecent(0)
	if err != nil {
		return nil, err
	}
	var matches []*domain.JobRun
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id %s is ambiguous (%d matches)", id, len(matches))
	}
}

func printRun(w io.Writer, run *domain.JobRun, tracks []domain.Track) {
	fmt.Fprintf(w, "Run Details:\n")
	fmt.Fprintf(w, "  ID:       %s\n", run.ID)
	if run.Name != "" {
		fmt.Fprintf(w, "  Name:     %s\n", run.Name)
	}
	fmt.Fprintf(w, "  Link:     %s\n", run.Link)
	fmt.Fprintf(w, "  Dir:      %s\n", run.DestinationDir)
	fmt.Fprintf(w, "  Status:   %s\n", run.Status)
	fmt.Fprintf(w, "  Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.IsTerminal() && run.CompletedAt != nil {
		fmt.Fprintf(w, "  Finished: %s\n", run.CompletedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(w, "  Finished: - (interrupted or still running)\n")
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:    %s\n", run.ErrorMessage)
	}
	fmt.Fprintf(w, "  Songs:    %d fixed, %d failed\n", run.NormalizedCount, run.FailedCount)

	if len(tracks) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tARTIST\tALBUM\tCOVER\tFILE")
	for _, track := range tracks {
		cover := "no"
		if track.HasCover {
			cover = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			truncate(track.Title, 40),
			truncate(track.Artist, 30),
			truncate(track.Album, 30),
			cover,
			filepath.Base(track.Path))
	}
	tw.Flush()
}

func printStats(w io.Writer, stats *domain.RunStats) {
	fmt.Fprintln(w, "Run Statistics:")
	fmt.Fprintf(w, "  Total:      %d\n", stats.Total)
	fmt.Fprintf(w, "  Running:    %d\n", stats.Running)
	fmt.Fprintf(w, "  Completed:  %d\n", stats.Completed)
	fmt.Fprintf(w, "  Partial:    %d\n", stats.Partial)
	fmt.Fprintf(w, "  Failed:     %d\n", stats.Failed)
	fmt.Fprintf(w, "  Songs:      %d\n", stats.Normalized)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
