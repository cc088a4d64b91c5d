// Package history keeps an append-only JSONL log of runs.
package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Record is one run of a command.
type Record struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Command    string    `json:"command"`
	Args       []string  `json:"args,omitempty"`
	Workbook   string    `json:"workbook,omitempty"`
	Backup     string    `json:"backup,omitempty"`
	Query      string    `json:"query,omitempty"`
	ShopItems  int       `json:"shop_items,omitempty"`
	NewsItems  int       `json:"news_items,omitempty"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Log appends records to a JSONL file.
type Log struct {
	Path    string
	Enabled bool
}

// New returns a Log writing to path.
func New(path string, enabled bool) *Log {
	return &Log{Path: path, Enabled: enabled}
}

// NewRecord starts a record with a fresh id and the current time.
func NewRecord(command string, args []string) Record {
	return Record{
		ID:      uuid.NewString(),
		Time:    time.Now(),
		Command: command,
		Args:    Redact(args),
		Status:  StatusOK,
	}
}

// Finish stamps the duration and error onto the record.
func (r *Record) Finish(err error) {
	r.DurationMs = time.Since(r.Time).Milliseconds()
	if err != nil {
		r.Status = StatusError
		r.Error = err.Error()
	}
}

// Append writes one record. It is best-effort: failures are logged at debug
// level and never returned, so history can not break a run.
func (l *Log) Append(_ context.Context, r Record) {
	if l == nil || !l.Enabled || l.Path == "" {
		return
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		log.Debug().Err(err).Msg("history directory not writable")
		return
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Debug().Err(err).Msg("history file not writable")
		return
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	_, _ = f.Write(append(data, '\n'))
}

// Read returns all records in the file; a missing file yields none.
func Read(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []Record
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue // skip malformed lines
		}
		records = append(records, r)
	}
	return records, nil
}

// Filter returns records at or after since whose command contains command.
func Filter(records []Record, since time.Time, command string) []Record {
	var out []Record
	for _, r := range records {
		if !since.IsZero() && r.Time.Before(since) {
			continue
		}
		if command != "" && !strings.Contains(r.Command, command) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Size returns the size of the history file in bytes, or 0 if not found.
func Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Clear truncates the history file.
func Clear(path string) error {
	err := os.Truncate(path, 0)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var sensitiveFlags = map[string]bool{
	"--key": true, "--token": true, "--secret": true,
	"--api-key": true, "--client-secret": true,
}

var sensitivePrefixes = []string{"sk-", "Bearer "}

// Redact replaces secret flag values and key-looking arguments.
func Redact(args []string) []string {
	result := make([]string, len(args))
	redactNext := false
	for i, arg := range args {
		switch {
		case redactNext:
			result[i] = "[REDACTED]"
			redactNext = false
		case sensitiveFlags[arg]:
			result[i] = arg
			redactNext = true
		case hasSecretPrefix(arg):
			result[i] = "[REDACTED]"
		default:
			result[i] = arg
		}
	}
	return result
}

func hasSecretPrefix(s string) bool {
	for _, p := range sensitivePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
