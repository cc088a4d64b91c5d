// Package output formats command results for the terminal and for --json.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klytics/rpakit/cmd/version"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, missing file, missing credentials
	ExitSystemError = 2 // network failure, IO error, API error
)

// JSONResult is the JSON envelope every command prints with --json.
type JSONResult struct {
	OK      bool   `json:"ok"`
	Command string `json:"command"`
	Version string `json:"version"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PrintJSON writes a success envelope to stdout.
func PrintJSON(cmd string, data any) error {
	return WriteJSON(os.Stdout, cmd, data)
}

// WriteJSON writes a success envelope to w.
func WriteJSON(w io.Writer, cmd string, data any) error {
	return encode(w, JSONResult{
		OK:      true,
		Command: cmd,
		Version: version.Version,
		Data:    data,
	})
}

// PrintJSONError writes an error envelope to stdout.
func PrintJSONError(cmd string, err error, code int) error {
	return WriteJSONError(os.Stdout, cmd, err, code)
}

// WriteJSONError writes an error envelope to w.
func WriteJSONError(w io.Writer, cmd string, err error, code int) error {
	if encErr := encode(w, JSONResult{
		OK:      false,
		Command: cmd,
		Version: version.Version,
		Error:   err.Error(),
		Code:    code,
	}); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
