// Package app implements the application layer for crate.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.trai.ch/crate/internal/adapters/detector"
	"go.trai.ch/crate/internal/adapters/linear"
	"go.trai.ch/crate/internal/adapters/npm"
	"go.trai.ch/crate/internal/adapters/prompt"
	"go.trai.ch/crate/internal/adapters/shell"
	"go.trai.ch/crate/internal/adapters/telemetry"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/crate/internal/engine/pipeline"
	"go.trai.ch/crate/internal/engine/planner"
	"go.trai.ch/crate/internal/engine/release"
	"go.trai.ch/crate/internal/engine/scaffold"
	"go.trai.ch/crate/internal/engine/scanner"
	"go.trai.ch/crate/internal/engine/versioning"
	"go.trai.ch/zerr"
)

// DefaultChannel is released to when no channel is named.
const DefaultChannel = "global"

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	fs           ports.FileSystem
	versions     ports.VersionStore
	store        ports.BuildInfoStore
	hasher       ports.Hasher
	runner       npm.Runner
	logger       ports.Logger

	stdout io.Writer
	stderr io.Writer

	prompter     ports.Prompter
	newToolchain func(*domain.Config) ports.Toolchain
	newRegistry  func(*domain.Config) ports.Registry
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	fs ports.FileSystem,
	versions ports.VersionStore,
	store ports.BuildInfoStore,
	hasher ports.Hasher,
	runner npm.Runner,
	log ports.Logger,
) *App {
	a := &App{
		configLoader: loader,
		fs:           fs,
		versions:     versions,
		store:        store,
		hasher:       hasher,
		runner:       runner,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	a.newToolchain = func(cfg *domain.Config) ports.Toolchain {
		return shell.NewToolchain(a.runner, a.fs, cfg)
	}
	a.newRegistry = func(cfg *domain.Config) ports.Registry {
		return npm.NewRegistry(a.runner, cfg.Toolchain.Registry)
	}
	return a
}

// WithOutput redirects tool output and progress.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithPrompter answers every decision with p instead of the terminal.
// This is primarily used for testing.
func (a *App) WithPrompter(p ports.Prompter) *App {
	a.prompter = p
	return a
}

// WithToolchain replaces the external build tools.
func (a *App) WithToolchain(t ports.Toolchain) *App {
	a.newToolchain = func(*domain.Config) ports.Toolchain { return t }
	return a
}

// WithRegistry replaces the registry client.
func (a *App) WithRegistry(r ports.Registry) *App {
	a.newRegistry = func(*domain.Config) ports.Registry { return r }
	return a
}

// Options are the settings shared by every command.
type Options struct {
	// Cwd is the directory configuration discovery starts from. Empty means the process directory.
	Cwd string
	// Config is an explicit configuration file.
	Config string
	// JSON switches logs to JSON and turns off progress rendering.
	JSON bool
	// Yes answers every question with its default.
	Yes bool
}

// session is the state of one command invocation.
type session struct {
	cfg      *domain.Config
	ws       *domain.Workspace
	graph    *domain.Graph
	prompter ports.Prompter
	tracer   ports.Tracer
	renderer ports.Renderer
}

func (a *App) open(ctx context.Context, opts Options) (*session, error) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(opts.JSON)
	}

	cwd := opts.Cwd
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return nil, zerr.Wrap(err, "failed to resolve working directory")
		}
	}

	cfg, err := a.configLoader.Load(cwd, opts.Config)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	s := &session{cfg: cfg, prompter: a.prompter}
	if s.prompter == nil {
		mode := detector.ModeAuto
		if opts.Yes {
			mode = detector.ModeDefaults
		}
		s.prompter = prompt.ForMode(mode)
	}

	if opts.JSON {
		s.tracer = telemetry.NewNoOpTracer()
	} else {
		renderer := linear.NewRenderer(a.stdout, a.stderr)
		if err := renderer.Start(ctx); err != nil {
			return nil, err
		}
		s.renderer = renderer
		s.tracer = telemetry.NewOTelTracer("crate", renderer)
	}
	return s, nil
}

func (a *App) scan(ctx context.Context, s *session) error {
	ws, graph, err := scanner.New(s.cfg, a.fs, a.versions, a.logger).Scan(ctx)
	if err != nil {
		return err
	}
	s.ws, s.graph = ws, graph
	return nil
}

func (a *App) close(ctx context.Context, s *session) {
	_ = s.tracer.Shutdown(ctx)
	if s.renderer != nil {
		_ = s.renderer.Stop()
		_ = s.renderer.Wait()
	}
}

// selection turns scope names into a selection. Unknown names are reported and dropped.
func (a *App) selection(ws *domain.Workspace, scope []string) domain.Selection {
	if len(scope) == 0 {
		return nil
	}
	sel := make(domain.Selection, 0, len(scope))
	for _, name := range scope {
		if ws.Get(name) == nil {
			a.logger.Warn("package " + name + " not found")
			continue
		}
		sel = append(sel, name)
	}
	return sel
}

// BumpOptions configuration for the Bump method.
type BumpOptions struct {
	Scope []string
	// Kind is a transition kind. Empty offers the transition menu per package.
	Kind string
	// Channel is the pre-release channel of a pre-release transition.
	Channel string
}

// Bump stages the next version of every selected package.
func (a *App) Bump(ctx context.Context, opts Options, bump BumpOptions) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx, s)
	if err := a.scan(ctx, s); err != nil {
		return err
	}

	var kind domain.TransitionKind
	var ch domain.Channel
	if bump.Kind != "" {
		if kind, err = domain.ParseTransitionKind(bump.Kind); err != nil {
			return err
		}
	}
	if bump.Channel != "" {
		if ch, err = domain.ParseChannel(bump.Channel); err != nil {
			return err
		}
	}

	stager := versioning.NewStager(a.versions, s.prompter, a.logger)
	sel := a.selection(s.ws, bump.Scope)
	for _, pkg := range s.ws.Packages {
		if !sel.Contains(pkg.Name) {
			continue
		}
		if kind == "" {
			_, err = stager.Choose(ctx, pkg)
		} else {
			_, err = stager.StageNext(ctx, pkg, kind, ch)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Format runs the source formatter over every selected package.
func (a *App) Format(ctx context.Context, opts Options, scope []string) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx, s)
	if err := a.scan(ctx, s); err != nil {
		return err
	}

	toolchain := a.newToolchain(s.cfg)
	sel := a.selection(s.ws, scope)
	for _, pkg := range s.ws.Packages {
		if !sel.Contains(pkg.Name) {
			continue
		}
		if err := a.format(ctx, s.tracer, toolchain, pkg); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) format(ctx context.Context, tracer ports.Tracer, toolchain ports.Toolchain, pkg *domain.Package) (err error) {
	ctx, span := tracer.Start(ctx, pkg.Name+":format", ports.WithPackage(pkg.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if err := toolchain.Format(ctx, pkg.Dir, span); err != nil {
		return domain.NewBuildError(pkg.Name, nil, err)
	}
	return nil
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	Scope []string
	// Rebuild builds the selected packages at their committed versions without planning.
	Rebuild bool
}

// Build plans and runs a build of the staged packages in scope.
func (a *App) Build(ctx context.Context, opts Options, build BuildOptions) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx, s)
	if err := a.scan(ctx, s); err != nil {
		return err
	}

	pipe := pipeline.New(s.cfg, a.fs, a.newToolchain(s.cfg), a.versions, a.store, a.hasher, s.tracer, a.logger)
	plan := planner.New(s.ws, s.graph, pipe, a.versions, s.prompter, s.tracer, a.logger)

	sel := a.selection(s.ws, build.Scope)
	if build.Rebuild {
		names := []string(sel)
		if sel.All() {
			names = slices.Collect(s.graph.Walk())
		}
		return plan.Rebuild(ctx, names)
	}

	p, err := plan.Plan(ctx, sel)
	if err != nil {
		return err
	}
	if p.Empty() {
		a.logger.Info("nothing to build: no package has a staged version")
		return nil
	}
	if err := plan.Execute(ctx, p); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("built %d package(s)", len(p.Required)))
	return nil
}

// ReleaseOptions configuration for the Release method.
type ReleaseOptions struct {
	Scope    []string
	Channels []string
}

// Release publishes the selected packages to every named channel, one channel after another.
func (a *App) Release(ctx context.Context, opts Options, rel ReleaseOptions) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx, s)
	if err := a.scan(ctx, s); err != nil {
		return err
	}

	channels := rel.Channels
	if len(channels) == 0 {
		channels = []string{DefaultChannel}
	}

	publisher := release.New(s.cfg, s.ws, a.newRegistry(s.cfg), a.versions, s.prompter, s.tracer, a.logger, a.stderr)
	sel := a.selection(s.ws, rel.Scope)
	for _, ch := range channels {
		if err := publisher.Publish(ctx, ch, sel); err != nil {
			return err
		}
	}
	return nil
}

// ScaffoldOptions configuration for the Scaffold method.
type ScaffoldOptions struct {
	Name         string
	Organisation *bool
}

// Scaffold creates a new package in the workspace.
func (a *App) Scaffold(ctx context.Context, opts Options, sc ScaffoldOptions) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx, s)

	// A fresh workspace may not have its package directory yet.
	if err := a.scan(ctx, s); err != nil && !errors.Is(err, domain.ErrWorkspaceDirRead) {
		return err
	}

	dir, err := scaffold.New(s.cfg, a.fs, s.prompter, a.logger).
		Create(ctx, s.ws, scaffold.Request{Name: sc.Name, Organisation: sc.Organisation})
	if err != nil {
		return err
	}
	a.logger.Info("created package in " + dir)
	return nil
}
