package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kastheco/orchestra/config"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/session"
	"github.com/kastheco/orchestra/session/git"
)

// Env is what every subcommand resolves before doing its work.
type Env struct {
	Root    string
	Config  *config.Config
	Project planstore.Project
}

// ResolveEnv finds the repository root of the working directory, loads the
// configuration and prepares the project directory. An empty name selects
// the configured project.
func ResolveEnv(projectName string) (Env, error) {
	cwd, err := filepath.Abs(".")
	if err != nil {
		return Env{}, fmt.Errorf("failed to get current directory: %w", err)
	}
	return ResolveEnvAt(cwd, projectName)
}

// ResolveEnvAt is ResolveEnv for an explicit working directory.
func ResolveEnvAt(cwd, projectName string) (Env, error) {
	root := git.ResolveRoot(cwd)
	cfg := config.LoadConfig(root)

	base := root
	if cfg.Project.Path != "" {
		base = git.NormalizeRoot(cfg.Project.Path)
	}
	name := projectName
	if name == "" {
		name = cfg.Project.Name
	}
	project := planstore.NewProject(base, name)
	if err := project.EnsureLayout(); err != nil {
		return Env{}, err
	}
	return Env{Root: root, Config: cfg, Project: project}, nil
}

// WorkerOptions select the worker tool.
type WorkerOptions struct {
	// CodexBin overrides ai.model.
	CodexBin string
	DryRun   bool
	// Dir is the worker's working directory.
	Dir string
}

// NewWorker builds the worker tool runner. Dry-run workers never start a
// process.
func NewWorker(cfg *config.Config, opts WorkerOptions, executor Executor) session.Worker {
	if opts.DryRun {
		return session.DryRun{}
	}
	w := session.NewCodex(cfg.ResolveAI(opts.CodexBin), executor)
	w.Dir = opts.Dir
	return w
}
