// Package session invokes the worker tool and shapes the prompts and
// results that flow through it.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kastheco/orchestra/config"
	"github.com/kastheco/orchestra/log"
)

// BypassFlag lets the worker run without approval prompts or sandboxing.
const BypassFlag = "--dangerously-bypass-approvals-and-sandbox"

// DryRunDelay is how long a dry-run worker pretends to work.
const DryRunDelay = 100 * time.Millisecond

// Executor is the part of cmd.Executor the worker needs.
type Executor interface {
	Output(cmd *exec.Cmd) ([]byte, error)
}

// Call is one worker invocation. OutPath, when set, is where the worker
// writes its last message.
type Call struct {
	WorkerID int
	Prompt   string
	OutPath  string
}

// Result is what a finished worker process left behind.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Worker runs a prompt through the worker tool.
type Worker interface {
	Exec(ctx context.Context, call Call) (Result, error)
}

// Codex runs `<bin> exec [bypass] --color never -o <out> <prompt>`.
type Codex struct {
	Bin  string
	Auto bool
	// Dir is the working directory of the worker process; empty means the
	// current directory.
	Dir string

	exec Executor
}

// NewCodex builds a worker from the resolved AI settings.
func NewCodex(ai config.AIConfig, executor Executor) *Codex {
	return &Codex{Bin: ai.Model, Auto: ai.Auto, exec: executor}
}

// Args returns the argument list for call, without the binary.
func (c *Codex) Args(call Call) []string {
	args := []string{"exec"}
	if c.Auto {
		args = append(args, BypassFlag)
	}
	args = append(args, "--color", "never")
	if call.OutPath != "" {
		args = append(args, "-o", call.OutPath)
	}
	return append(args, call.Prompt)
}

// Exec runs the worker. A non-zero exit is reported through Result.ExitCode,
// not as an error; an error means the process could not run at all.
func (c *Codex) Exec(ctx context.Context, call Call) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Bin, c.Args(call)...)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := c.exec.Output(cmd)
	res := Result{Stdout: string(out), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("failed to execute %s for worker %d: %w", c.Bin, call.WorkerID, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// DryRun stands in for the worker tool. It waits briefly and answers with
// "dry-run worker <id>".
type DryRun struct {
	Delay time.Duration
}

func (d DryRun) Exec(ctx context.Context, call Call) (Result, error) {
	delay := d.Delay
	if delay <= 0 {
		delay = DryRunDelay
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-t.C:
	}

	text := "dry-run worker " + strconv.Itoa(call.WorkerID)
	if call.OutPath != "" {
		if err := os.WriteFile(call.OutPath, []byte(text), 0o644); err != nil {
			return Result{}, err
		}
	}
	return Result{Stdout: text}, nil
}

// LastMessagePath is the per-worker output file used by batch runs.
func LastMessagePath(workerID int) string {
	return filepath.Join(os.TempDir(),
		fmt.Sprintf("orchestra_codex_last_message_%d_%d.txt", os.Getpid(), workerID))
}

// LastMessage runs call and replaces Stdout with the contents of
// call.OutPath when the worker wrote it. The file is removed afterwards.
func LastMessage(ctx context.Context, w Worker, call Call) (Result, error) {
	res, err := w.Exec(ctx, call)
	if call.OutPath != "" {
		if data, readErr := os.ReadFile(call.OutPath); readErr == nil {
			res.Stdout = string(data)
		}
		if rmErr := os.Remove(call.OutPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.WarningLog.Printf("failed to remove worker output %s: %v", call.OutPath, rmErr)
		}
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Ask runs a single prompt and returns the worker's last message. A non-zero
// exit is an error.
func Ask(ctx context.Context, w Worker, label, prompt string) (string, error) {
	out := filepath.Join(os.TempDir(),
		fmt.Sprintf("orchestra_%s_%d_%d.txt", label, os.Getpid(), time.Now().UnixNano()))
	res, err := LastMessage(ctx, w, Call{Prompt: prompt, OutPath: out})
	if err != nil {
		return "", fmt.Errorf("%s worker failed: %w", label, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s worker exited with code %d", label, res.ExitCode)
	}
	return res.Stdout, nil
}
