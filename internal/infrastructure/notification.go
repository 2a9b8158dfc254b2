package infrastructure

import (
	"context"
	"fmt"

	"github.com/yourusername/music-manager-go/internal/domain"
	"go.uber.org/zap"
)

// Notification methods
const (
	NotifyOSAScript  = "osascript"
	NotifyNotifySend = "notify-send"
)

const notificationLinkLen = 30

// NotificationService shows desktop notifications for finished jobs
type NotificationService struct {
	config *domain.NotificationConfig
	runner CommandRunner
	logger *zap.Logger
}

// NewNotificationService creates a notification service that runs the
// configured notifier binary through runner
func NewNotificationService(config *domain.NotificationConfig, runner CommandRunner, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// NotificationArgs returns the binary and arguments that display title and
// message with method; ok is false for an unknown method
func NotificationArgs(method, title, message string) (binary string, args []string, ok bool) {
	switch method {
	case NotifyOSAScript:
		return "osascript", []string{"-e", fmt.Sprintf("display notification %q with title %q", message, title)}, true
	case NotifyNotifySend:
		return "notify-send", []string{"--app-name=musicmanager", title, message}, true
	default:
		return "", nil, false
	}
}

// Send shows a notification. It is a no-op when notifications are disabled.
func (n *NotificationService) Send(ctx context.Context, title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping", zap.String("title", title))
		return nil
	}

	binary, args, ok := NotificationArgs(n.config.Method, title, message)
	if !ok {
		return fmt.Errorf("unknown notification method %q", n.config.Method)
	}
	if err := n.runner.Run(ctx, binary, args...); err != nil {
		return err
	}

	n.logger.Debug("Notification sent", zap.String("title", title), zap.String("message", message))
	return nil
}

// NotifyJobFinished summarises a finished run in a notification. Failures to
// notify are logged and never affect the run.
func (n *NotificationService) NotifyJobFinished(ctx context.Context, run *domain.JobRun) {
	if n == nil {
		return
	}

	title, message := jobFinishedText(run)
	if err := n.Send(ctx, title, message); err != nil {
		n.logger.Warn("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.String("run_id", run.ID),
			zap.Error(err))
	}
}

func jobFinishedText(run *domain.JobRun) (string, string) {
	name := run.Name
	if name == "" {
		name = shortenLink(run.Link, notificationLinkLen)
	}

	switch run.Status {
	case domain.RunCompleted:
		return "Download Completed", fmt.Sprintf("%s: %d new songs", name, run.NormalizedCount)
	case domain.RunPartial:
		return "Download Finished With Errors", fmt.Sprintf("%s: %d new songs, some items were skipped", name, run.NormalizedCount)
	default:
		return "Download Failed", fmt.Sprintf("%s: %d songs need another run", name, run.FailedCount)
	}
}

// shortenLink cuts s to n runes, marking the cut with "..."
func shortenLink(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
