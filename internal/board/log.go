package board

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/filelock"
)

const (
	logFileName   = "activity.jsonl"
	logLockName   = ".activity.lock"
	logFileMode   = 0o600
	maxLogEntries = 10000 // oldest entries are dropped past this size
)

// Mutation actions recorded in the activity log.
const (
	ActionReschedule = "reschedule"
	ActionEdit       = "edit"
	ActionCreate     = "create"
	ActionDuplicate  = "duplicate"
	ActionPasswd     = "passwd"
)

// Outcomes of a mutation attempt.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// LogEntry represents a single activity log entry.
type LogEntry struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    event.ID  `json:"task_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

// AppendLog appends a log entry to the activity log in dir, holding the
// log lock. Past maxLogEntries the oldest entries are truncated.
func AppendLog(dir string, entry LogEntry) error {
	unlock, err := filelock.Lock(filepath.Join(dir, logLockName))
	if err != nil {
		return fmt.Errorf("locking activity log: %w", err)
	}
	defer func() { _ = unlock() }()

	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // path under the config dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	_ = truncateLogIfNeeded(path)
	return nil
}

// ReadLog returns the last n entries of the activity log, oldest first.
// Malformed lines are skipped. A missing log yields no entries.
func ReadLog(dir string, n int) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(dir, logFileName)) //nolint:gosec // path under the config dir
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e LogEntry
		if json.Unmarshal(scanner.Bytes(), &e) == nil {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func truncateLogIfNeeded(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // trusted path
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) <= maxLogEntries {
		return nil
	}
	lines = lines[len(lines)-maxLogEntries:]
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), logFileMode)
}

// Logger records mutation outcomes. A Logger with an empty dir drops
// every entry.
type Logger struct {
	dir string
	now func() time.Time
}

// NewLogger returns a Logger writing to dir.
func NewLogger(dir string) *Logger {
	return &Logger{dir: dir, now: time.Now}
}

// Mutation records one mutation attempt. Errors are discarded because
// logging never fails a flow.
func (l *Logger) Mutation(action string, id event.ID, outcome, detail string) {
	if l == nil || l.dir == "" {
		return
	}
	_ = AppendLog(l.dir, LogEntry{
		RequestID: uuid.NewString(),
		Timestamp: l.now(),
		Action:    action,
		TaskID:    id,
		Outcome:   outcome,
		Detail:    detail,
	})
}

// OutcomeOf classifies a flow error for the log.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case clierr.Is(err, clierr.Canceled):
		return OutcomeCanceled
	case clierr.Is(err, clierr.ServerRejected), clierr.Is(err, clierr.Validation):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
