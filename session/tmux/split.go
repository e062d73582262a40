// Package tmux opens worker panes next to the console.
package tmux

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kastheco/orchestra/cmd"
	"github.com/kastheco/orchestra/log"
)

// ErrNotInTmux is returned when the console does not run inside tmux.
var ErrNotInTmux = errors.New("tmux session not detected, run the console inside tmux")

// BypassFlag mirrors the worker's approval bypass flag.
const BypassFlag = "--dangerously-bypass-approvals-and-sandbox"

// Split describes an interactive worker opened in a new pane.
type Split struct {
	// Program is the worker binary, e.g. "codex".
	Program string
	// Auto adds the approval bypass flag.
	Auto bool
	// Prompt is the opening message of the session.
	Prompt string
	// WorkDir is the pane's working directory; empty keeps tmux's
	// pane_current_path.
	WorkDir string
	// Vertical stacks the new pane below instead of beside.
	Vertical bool

	cmdExec cmd.Executor
	// promptFile is set when the prompt was too long to inline.
	promptFile string
}

// NewSplit returns a split that runs through cmdExec.
func NewSplit(cmdExec cmd.Executor, program string, auto bool, prompt string) *Split {
	return &Split{Program: program, Auto: auto, Prompt: prompt, cmdExec: cmdExec}
}

// InTmux reports whether the process runs inside a tmux client.
func InTmux() bool {
	return os.Getenv("TMUX") != ""
}

// Command builds the shell command line run in the new pane.
func (s *Split) Command() string {
	parts := []string{s.Program}
	if s.Auto {
		parts = append(parts, BypassFlag)
	}
	if s.Prompt != "" {
		arg, file := promptArg(s.WorkDir, s.Prompt)
		s.promptFile = file
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Args returns the tmux arguments for the split.
func (s *Split) Args() []string {
	dir := "#{pane_current_path}"
	if s.WorkDir != "" {
		dir = s.WorkDir
	}
	orient := "-h"
	if s.Vertical {
		orient = "-v"
	}
	return []string{"split-window", orient, "-c", dir, s.Command()}
}

// Open runs tmux split-window.
func (s *Split) Open() error {
	if !InTmux() {
		return ErrNotInTmux
	}
	c := exec.Command("tmux", s.Args()...)
	if err := s.cmdExec.Run(c); err != nil {
		s.Close()
		return fmt.Errorf("tmux split-window failed: %w", err)
	}
	log.InfoLog.Printf("opened tmux split: %s", s.Program)
	return nil
}

// Close removes a prompt file left by a long prompt.
func (s *Split) Close() {
	if s.promptFile == "" {
		return
	}
	if err := os.Remove(s.promptFile); err != nil && !os.IsNotExist(err) {
		log.WarningLog.Printf("failed to remove prompt file %s: %v", s.promptFile, err)
	}
	s.promptFile = ""
}
