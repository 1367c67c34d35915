package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dkoosis/difftest/internal/console"
)

// Exit statuses synthesized for invocations that never produced one.
const (
	StatusNotFound      = 127
	StatusNotExecutable = 126
	StatusTimeout       = 124
	StatusFailed        = 1
)

// waitDelay bounds how long Wait lingers on inherited pipes after a kill.
const waitDelay = 2 * time.Second

// Invocation is one external command run inside a job directory.
type Invocation struct {
	Dir  string   // working directory of the command
	Argv []string // program and arguments
	Log  string   // log file name, relative to Dir
}

// Result is what an invocation produced. A non-zero Status is routine data.
type Result struct {
	Status   int
	Output   []byte // combined stdout and stderr
	TimedOut bool
}

// Transcript is the log body: output followed by the return code. Two runs
// are equivalent when their transcripts are byte-identical.
func (r Result) Transcript() []byte {
	var b bytes.Buffer
	b.Write(r.Output)
	b.WriteString("\nreturn code: ")
	b.WriteString(strconv.Itoa(r.Status))
	b.WriteString("\n")
	return b.Bytes()
}

// Invoker runs external commands. The returned error is reserved for harness
// failures (cancellation, unwritable log); exit statuses live in Result.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (Result, error)
}

// ExecInvoker runs commands on the host, one process group per invocation.
type ExecInvoker struct {
	// Timeout bounds each invocation; zero disables the bound.
	Timeout time.Duration
	Console *console.Console
}

// Invoke runs inv.Argv in inv.Dir and writes the transcript to inv.Log.
func (e *ExecInvoker) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	if len(inv.Argv) == 0 {
		return Result{}, errors.New("empty argv")
	}
	e.Console.Verbosef(1, "difftest: %s", strings.Join(inv.Argv, " "))

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	// #nosec G204 -- argv comes from the harness configuration and the job layout.
	cmd := exec.CommandContext(runCtx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	res := Result{Output: out.Bytes()}
	switch {
	case runErr == nil:
		res.Status = 0
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.Status = StatusTimeout
		res.Output = append(res.Output, fmt.Sprintf("difftest: killed after %s", e.Timeout)...)
	case errors.Is(runErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
		// The program exited; a leftover child kept the output pipe open.
		res.Status = cmd.ProcessState.ExitCode()
	default:
		res.Status = exitStatus(runErr)
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			res.Output = append(res.Output, fmt.Sprintf("difftest: %v", runErr)...)
		}
	}

	if inv.Log != "" {
		logPath := filepath.Join(inv.Dir, inv.Log)
		if err := os.WriteFile(logPath, res.Transcript(), 0o644); err != nil {
			return res, fmt.Errorf("writing %s: %w", logPath, err)
		}
	}
	return res, nil
}

// exitStatus maps a Run error onto a shell-style status: the real exit code
// when there is one, 127 when the program could not be found, 126 when it
// could not be executed, 1 otherwise.
func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := exitCodeFromError(exitErr); ok {
			return code
		}
		return StatusFailed
	}
	if isCommandNotFound(err) {
		return StatusNotFound
	}
	if errors.Is(err, os.ErrPermission) {
		return StatusNotExecutable
	}
	return StatusFailed
}

func isCommandNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") {
		return true
	}
	return runtime.GOOS != "windows" && strings.Contains(msg, "no such file or directory")
}
