package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"
)

// LogEntry is one line of a dated log file. Lines of the tool log are not
// JSON and only carry Message.
type LogEntry struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"-"`
}

// LogReader reads the dated log files written by New and the tool runner
type LogReader struct {
	logsDir string
}

// NewLogReader creates a new log reader
func NewLogReader(logsDir string) *LogReader {
	return &LogReader{logsDir: logsDir}
}

// ReadLogs returns the last limit entries (all with limit <= 0) of the log
// for prefix on day. A missing file yields no entries.
func (lr *LogReader) ReadLogs(prefix string, day time.Time, limit int) ([]LogEntry, error) {
	return lr.SearchLogs(prefix, day, "", limit)
}

// SearchLogs is ReadLogs restricted to entries whose message, level or any
// field value contains query, case-insensitively
func (lr *LogReader) SearchLogs(prefix string, day time.Time, query string, limit int) ([]LogEntry, error) {
	file, err := os.Open(DatedPath(lr.logsDir, prefix, day))
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	query = strings.ToLower(query)
	entries := []LogEntry{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := parseLine(line)
		if query != "" && !entry.matches(query) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func parseLine(line string) LogEntry {
	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Message == "" {
		return LogEntry{Message: line}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err == nil {
		for _, key := range []string{"ts", "level", "msg", "caller", "stacktrace"} {
			delete(raw, key)
		}
		if len(raw) > 0 {
			entry.Fields = raw
		}
	}
	return entry
}

func (e LogEntry) matches(query string) bool {
	if strings.Contains(strings.ToLower(e.Message), query) ||
		strings.Contains(strings.ToLower(e.Level), query) {
		return true
	}
	for _, v := range e.Fields {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}
