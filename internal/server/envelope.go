// Package server receives worker results over HTTP and keeps them for the
// console.
package server

import (
	"fmt"
	"strings"
)

// Protocol is announced to workers in every prompt.
const Protocol = "http+json"

const (
	HealthPath  = "/v1/health"
	ResultsPath = "/v1/results"
)

// Info tells a worker where to report.
type Info struct {
	Protocol    string `json:"protocol"`
	CallbackURL string `json:"callback_url"`
}

// Completion is what one worker reports when it finishes.
type Completion struct {
	WorkerID       int    `json:"worker_id"`
	CommandMessage string `json:"command_message"`
	CodexFinished  bool   `json:"codex_finished"`
	ExitCode       int    `json:"exit_code"`
	Stdout         string `json:"stdout"`
	Stderr         string `json:"stderr"`
}

// Envelope is the JSON body of POST /v1/results.
type Envelope struct {
	Server Info       `json:"server"`
	Result Completion `json:"result"`
}

// NormalizeURL turns a server base URL into its results endpoint.
func NormalizeURL(base string) string {
	return strings.TrimRight(base, "/") + ResultsPath
}

func oneLine(s, sep string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", sep)
}

// LogLine renders a received envelope as one log line. Stderr is included
// only for a non-zero exit.
func (e Envelope) LogLine() string {
	r := e.Result
	line := fmt.Sprintf("[result] worker=%d finished=%t code=%d message=%s response=%s",
		r.WorkerID, r.CodexFinished, r.ExitCode, r.CommandMessage, oneLine(r.Stdout, " "))
	if r.ExitCode != 0 {
		line += " stderr=" + oneLine(r.Stderr, " ")
	}
	return line
}

// SummaryLine renders an envelope for the report printed after a console
// run.
func (e Envelope) SummaryLine() string {
	r := e.Result
	line := fmt.Sprintf("worker=%d request=%s finished=%t response=%s",
		r.WorkerID, r.CommandMessage, r.CodexFinished, oneLine(r.Stdout, " | "))
	if r.ExitCode != 0 {
		line += " stderr=" + oneLine(r.Stderr, " | ")
	}
	return fmt.Sprintf("%s exit_code=%d", line, r.ExitCode)
}
