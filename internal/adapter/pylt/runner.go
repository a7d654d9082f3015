// Package pylt runs the external YLT adjustment routine as a child process.
//
// The child receives a domain.AdjustmentRequest as JSON on stdin and must write
// the adjusted table to stdout as a pandas orient="split" document:
//
//	{"columns": ["event_id", ...], "data": [[101, ...], ...]}
//
// A non-zero exit is a failed adjustment; the last non-empty stderr line (where
// a Python traceback ends with the exception message) becomes the error text.
package pylt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/couchcryptid/climate-adjust-service/internal/domain"
)

// waitDelay bounds how long output pipes stay open after the command is killed,
// in case it left grandchildren holding them.
const waitDelay = 2 * time.Second

// Runner implements domain.Adjuster by executing a bridge command.
type Runner struct {
	command []string
	logger  *slog.Logger
}

// NewRunner creates a Runner. command[0] is the executable; the rest are arguments.
func NewRunner(command []string, logger *slog.Logger) *Runner {
	return &Runner{command: command, logger: logger}
}

// Adjust runs the bridge command once and decodes its output.
func (r *Runner) Adjust(ctx context.Context, req domain.AdjustmentRequest) (domain.Table, error) {
	if len(r.command) == 0 {
		return domain.Table{}, errors.New("adjust command is empty")
	}

	input, err := json.Marshal(req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("encode adjustment request: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...) //nolint:gosec // command comes from operator config
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	r.logger.Debug("running adjustment command", "command", strings.Join(r.command, " "))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Table{}, fmt.Errorf("adjustment command: %w", ctxErr)
		}
		if msg := lastLine(stderr.String()); msg != "" {
			r.logger.Debug("adjustment command stderr", "stderr", stderr.String())
			return domain.Table{}, errors.New(msg)
		}
		return domain.Table{}, fmt.Errorf("adjustment command: %w", err)
	}

	if stderr.Len() > 0 {
		r.logger.Debug("adjustment command stderr", "stderr", stderr.String())
	}

	return domain.DecodeSplitTable(stdout.Bytes())
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
