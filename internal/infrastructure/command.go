package infrastructure

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CommandRunner runs an external tool to completion
type CommandRunner interface {
	Run(ctx context.Context, binary string, args ...string) error
}

// ExecRunner runs tools with os/exec, sending their combined stdout and
// stderr to Output framed by a header and a status footer
type ExecRunner struct {
	Output io.Writer
	Logger *zap.Logger
}

// NewExecRunner creates a runner writing tool output to w (io.Discard when nil)
func NewExecRunner(w io.Writer, logger *zap.Logger) *ExecRunner {
	if w == nil {
		w = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{Output: w, Logger: logger}
}

// Run executes binary with args and returns an error on a non-zero exit
func (r *ExecRunner) Run(ctx context.Context, binary string, args ...string) error {
	cmdLine := FormatCommandLine(binary, args...)
	r.Logger.Debug("Running command", zap.String("cmd", cmdLine))

	fmt.Fprintf(r.Output, "\n=== [%s] %s ===\n$ %s\n", time.Now().Format("2006-01-02 15:04:05"), binary, cmdLine)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = r.Output
	cmd.Stderr = r.Output

	err := cmd.Run()
	status := "SUCCESS"
	if err != nil {
		status = "FAILED: " + err.Error()
	}
	fmt.Fprintf(r.Output, "[%s] %s\n=== END ===\n", time.Now().Format("2006-01-02 15:04:05"), status)

	if err != nil {
		return fmt.Errorf("%s failed: %w", binary, err)
	}
	return nil
}

// FormatCommandLine renders a command as it would be typed in a POSIX shell.
// Only used for logs; exec.Command never goes through a shell.
func FormatCommandLine(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(binary))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// shellMeta holds the characters that make an argument need quoting
const shellMeta = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// quoteArg wraps s in single quotes when it contains shell metacharacters.
// An embedded single quote becomes '"'"'.
func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellMeta) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
