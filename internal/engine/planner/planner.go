// Package planner decides which packages a build run rebuilds and drives the run.
package planner

import (
	"context"
	"fmt"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/crate/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// Builder is the staged build of single packages.
type Builder interface {
	Build(ctx context.Context, pkg *domain.Package, deps map[string]domain.Version) (*pipeline.Result, error)
	Promote(res *pipeline.Result) error
	Discard(pkg *domain.Package)
	Commit(pkg *domain.Package) error
	RefreshManifest(pkg *domain.Package, deps map[string]domain.Version) error
}

// Planner plans and executes build runs over one scanned workspace.
type Planner struct {
	ws       *domain.Workspace
	graph    *domain.Graph
	builder  Builder
	versions ports.VersionStore
	prompter ports.Prompter
	tracer   ports.Tracer
	logger   ports.Logger
}

// New creates a new Planner. graph must have been validated.
func New(
	ws *domain.Workspace,
	graph *domain.Graph,
	builder Builder,
	versions ports.VersionStore,
	prompter ports.Prompter,
	tracer ports.Tracer,
	logger ports.Logger,
) *Planner {
	return &Planner{
		ws:       ws,
		graph:    graph,
		builder:  builder,
		versions: versions,
		prompter: prompter,
		tracer:   tracer,
		logger:   logger,
	}
}

// Plan computes the packages to rebuild for the selection.
// Dependents of staged packages that already have output are offered as optional
// rebuilds; the ones not chosen are restaged with a patch bump and only get their
// committed manifest refreshed. An empty plan is not an error.
func (p *Planner) Plan(ctx context.Context, sel domain.Selection) (*domain.BuildPlan, error) {
	var required []string
	mandatory := make(map[string]bool)
	for _, pkg := range p.ws.Packages {
		if pkg.StagedVersion != nil && sel.Contains(pkg.Name) {
			required = append(required, pkg.Name)
			mandatory[pkg.Name] = true
		}
	}
	if len(required) == 0 {
		return &domain.BuildPlan{}, nil
	}

	reached := make(map[string]bool, len(p.ws.Packages))
	queue := append([]string(nil), required...)
	for _, name := range queue {
		reached[name] = true
	}

	var optional []string
	for i := 0; i < len(queue); i++ {
		for _, name := range p.graph.Dependents(queue[i]) {
			if reached[name] {
				continue
			}
			reached[name] = true
			queue = append(queue, name)

			if !p.ws.Get(name).IsBuilt() {
				required = append(required, name)
				mandatory[name] = true
			} else {
				optional = append(optional, name)
			}
		}
	}

	chosen, err := p.chooseRebuilds(ctx, optional)
	if err != nil {
		return nil, err
	}

	var versionOnly []string
	for _, name := range optional {
		pkg := p.ws.Get(name)
		if pkg.StagedVersion == nil {
			if err := p.restage(pkg); err != nil {
				return nil, err
			}
		}
		if chosen[name] {
			required = append(required, name)
		} else {
			versionOnly = append(versionOnly, name)
		}
	}

	order, err := p.graph.Order(required)
	if err != nil {
		return nil, err
	}

	return &domain.BuildPlan{
		Required:           order,
		Mandatory:          mandatory,
		VersionOnly:        versionOnly,
		DependencyVersions: p.ws.DependencyVersions(),
	}, nil
}

func (p *Planner) chooseRebuilds(ctx context.Context, optional []string) (map[string]bool, error) {
	chosen := make(map[string]bool, len(optional))
	if len(optional) == 0 {
		return chosen, nil
	}

	options := make([]ports.Option, len(optional))
	for i, name := range optional {
		pkg := p.ws.Get(name)
		options[i] = ports.Option{
			Label:       name,
			Description: "built " + pkg.LatestBuiltVersion.String(),
			Value:       name,
		}
	}

	picked, err := p.prompter.ChooseSubset(ctx, "Select the dependent packages to rebuild", options)
	if err != nil {
		return nil, err
	}
	for _, name := range picked {
		chosen[name] = true
	}
	return chosen, nil
}

// restage gives a dependent a patch bump so its refreshed manifest carries a new version.
func (p *Planner) restage(pkg *domain.Package) error {
	next, err := domain.Transition(pkg.CommittedVersion, domain.TransitionPatch, "")
	if err != nil {
		return zerr.With(err, "package", pkg.Name)
	}
	pkg.StagedVersion = &next
	if err := p.versions.Save(pkg.Dir, pkg.Record()); err != nil {
		return zerr.With(err, "package", pkg.Name)
	}
	return nil
}

// Execute builds the required packages of the plan in order.
// Staging output of every package is promoted only after all builds succeeded;
// a build failure discards the staging output built so far (domain.RollbackStaging).
// Each package is committed right after its promotion. A failed promotion discards
// the staging output not yet promoted. Version-only packages are then refreshed and committed.
func (p *Planner) Execute(ctx context.Context, plan *domain.BuildPlan) error {
	if plan.Empty() {
		return nil
	}

	p.tracer.EmitPlan(ctx, plan.Required, p.dependencyMap(plan.Required))

	built := make([]*pipeline.Result, 0, len(plan.Required))
	for _, name := range plan.Required {
		if err := ctx.Err(); err != nil {
			p.rollback(built)
			return err
		}
		res, err := p.builder.Build(ctx, p.ws.Get(name), plan.DependencyVersions)
		if err != nil {
			p.rollback(built)
			return err
		}
		built = append(built, res)
	}

	for i, res := range built {
		if err := p.builder.Promote(res); err != nil {
			p.rollback(built[i+1:])
			return err
		}
		if err := p.builder.Commit(res.Package); err != nil {
			p.rollback(built[i+1:])
			return err
		}
	}

	for _, name := range plan.VersionOnly {
		if err := p.builder.RefreshManifest(p.ws.Get(name), plan.DependencyVersions); err != nil {
			return err
		}
		if err := p.builder.Commit(p.ws.Get(name)); err != nil {
			return err
		}
		p.logger.Info(fmt.Sprintf("refreshed manifest of %s to %s", name, plan.DependencyVersions[name]))
	}
	return nil
}

func (p *Planner) rollback(built []*pipeline.Result) {
	for _, res := range built {
		p.builder.Discard(res.Package)
	}
}

// Rebuild builds the named packages against the committed versions and promotes each
// one right away. Versions are left as they are. Unknown names are skipped.
func (p *Planner) Rebuild(ctx context.Context, names []string) error {
	deps := p.ws.CommittedVersions()

	var pkgs []*domain.Package
	for _, name := range names {
		pkg := p.ws.Get(name)
		if pkg == nil {
			p.logger.Warn("package " + name + " not found")
			continue
		}
		pkgs = append(pkgs, pkg)
	}

	ordered := make([]string, len(pkgs))
	for i, pkg := range pkgs {
		ordered[i] = pkg.Name
	}
	p.tracer.EmitPlan(ctx, ordered, p.dependencyMap(ordered))

	for _, pkg := range pkgs {
		res, err := p.builder.Build(ctx, pkg, deps)
		if err != nil {
			return err
		}
		if err := p.builder.Promote(res); err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) dependencyMap(names []string) map[string][]string {
	out := make(map[string][]string, len(names))
	for _, name := range names {
		out[name] = p.ws.Get(name).Dependencies
	}
	return out
}
