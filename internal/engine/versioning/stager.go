// Package versioning stages version bumps for workspace packages.
package versioning

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stager records the next version of packages without touching their committed version.
type Stager struct {
	versions ports.VersionStore
	prompter ports.Prompter
	logger   ports.Logger
}

// NewStager creates a new Stager.
func NewStager(versions ports.VersionStore, prompter ports.Prompter, logger ports.Logger) *Stager {
	return &Stager{
		versions: versions,
		prompter: prompter,
		logger:   logger,
	}
}

// StageNext computes the transition from the committed version and persists it as the
// staged version. An existing staged version is kept when the prompter confirms so.
func (s *Stager) StageNext(
	ctx context.Context,
	pkg *domain.Package,
	kind domain.TransitionKind,
	ch domain.Channel,
) (domain.Version, error) {
	keep, err := s.keepStaged(ctx, pkg)
	if err != nil {
		return domain.Version{}, err
	}
	if keep {
		return *pkg.StagedVersion, nil
	}

	next, err := domain.Transition(pkg.CommittedVersion, kind, ch)
	if err != nil {
		return domain.Version{}, zerr.With(err, "package", pkg.Name)
	}
	return s.stage(pkg, next)
}

// Choose offers the transition menu for the package and stages the selected version.
func (s *Stager) Choose(ctx context.Context, pkg *domain.Package) (domain.Version, error) {
	keep, err := s.keepStaged(ctx, pkg)
	if err != nil {
		return domain.Version{}, err
	}
	if keep {
		return *pkg.StagedVersion, nil
	}

	choices := domain.Choices(pkg.CommittedVersion)
	options := make([]ports.Option, len(choices))
	for i, c := range choices {
		options[i] = ports.Option{
			Label:       c.Label,
			Description: c.Version.String(),
			Value:       c.Version.String(),
		}
	}

	title := fmt.Sprintf("Increment %s version %s to:", pkg.Name, pkg.CommittedVersion)
	picked, err := s.prompter.SelectOne(ctx, title, options)
	if err != nil {
		return domain.Version{}, zerr.With(err, "package", pkg.Name)
	}

	for _, c := range choices {
		if c.Version.String() == picked {
			return s.stage(pkg, c.Version)
		}
	}
	return domain.Version{}, zerr.With(domain.Annotate(domain.ErrInvalidTransition, "package", pkg.Name), "choice", picked)
}

// keepStaged asks whether an existing staged version stays as it is.
// Without anyone to ask, overwriting is refused.
func (s *Stager) keepStaged(ctx context.Context, pkg *domain.Package) (bool, error) {
	if pkg.StagedVersion == nil {
		return false, nil
	}

	title := fmt.Sprintf("%s already staged at %s, leave as is?", pkg.Name, pkg.StagedVersion)
	keep, err := s.prompter.Confirm(ctx, title, true)
	if errors.Is(err, domain.ErrPromptUnavailable) {
		err = zerr.With(domain.Annotate(domain.ErrStateConflict, "package", pkg.Name), "staged", pkg.StagedVersion.String())
		return false, err
	}
	if err != nil {
		return false, err
	}
	return keep, nil
}

func (s *Stager) stage(pkg *domain.Package, next domain.Version) (domain.Version, error) {
	if pkg.StagedVersion != nil && pkg.StagedVersion.Equal(next) {
		return next, nil
	}

	pkg.StagedVersion = &next
	if err := s.versions.Save(pkg.Dir, pkg.Record()); err != nil {
		return domain.Version{}, zerr.With(err, "package", pkg.Name)
	}

	s.logger.Info(fmt.Sprintf("staged %s %s » %s", pkg.Name, pkg.CommittedVersion, next))
	return next, nil
}
