package tmux

import (
	"os"
	"path/filepath"
	"strings"
)

// MaxInlinePromptLen is the threshold above which a prompt is not inlined as
// a shell argument. Long prompts can exceed tmux argument limits and make
// split-window fail silently.
const MaxInlinePromptLen = 8192

// promptDir is where long prompts are written, under the working directory.
const promptDir = ".orchestra"

// shellEscapeSingleQuote wraps s in POSIX single quotes, escaping embedded
// single quotes with the '\'' idiom. Safe for all content except NUL bytes.
func shellEscapeSingleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// promptArg returns the shell argument carrying prompt. Long prompts are
// written to <workDir>/.orchestra/ and replaced by an instruction to read
// that file; the file path is returned so the caller can remove it later.
func promptArg(workDir, prompt string) (arg string, file string) {
	if len(prompt) <= MaxInlinePromptLen {
		return shellEscapeSingleQuote(prompt), ""
	}

	dir := filepath.Join(workDir, promptDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return shellEscapeSingleQuote(prompt), ""
	}
	f, err := os.CreateTemp(dir, "prompt-*.md")
	if err != nil {
		return shellEscapeSingleQuote(prompt), ""
	}
	if _, err := f.WriteString(prompt); err != nil {
		f.Close()
		os.Remove(f.Name())
		return shellEscapeSingleQuote(prompt), ""
	}
	f.Close()

	return shellEscapeSingleQuote("Read the instructions in " + f.Name() + " and follow them."), f.Name()
}
