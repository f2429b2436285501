// Package release publishes committed package output to release channels.
package release

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var emailPattern = regexp.MustCompile(`^.+?@.+?\.[a-z]+$`)

var (
	errShortPassword = zerr.Wrap(domain.ErrInvalidCredentials, "password must be longer than 3 characters")
	errInvalidEmail  = zerr.Wrap(domain.ErrInvalidCredentials, "enter a valid email")
	errEmptyCode     = zerr.Wrap(domain.ErrInvalidCredentials, "one-time password is required")
)

// Publisher uploads packages to a release channel and records what reached it.
// Packages are published one after another; a failure stops the run and keeps the
// release state of the packages published before it (domain.KeepCompleted).
type Publisher struct {
	cfg      *domain.Config
	ws       *domain.Workspace
	registry ports.Registry
	versions ports.VersionStore
	prompter ports.Prompter
	tracer   ports.Tracer
	logger   ports.Logger
	out      io.Writer
}

// New creates a new Publisher. Login output meant for the user is written to out.
func New(
	cfg *domain.Config,
	ws *domain.Workspace,
	registry ports.Registry,
	versions ports.VersionStore,
	prompter ports.Prompter,
	tracer ports.Tracer,
	logger ports.Logger,
	out io.Writer,
) *Publisher {
	return &Publisher{
		cfg:      cfg,
		ws:       ws,
		registry: registry,
		versions: versions,
		prompter: prompter,
		tracer:   tracer,
		logger:   logger,
		out:      out,
	}
}

// Publish releases every candidate package of the selection to the named channel.
// A run with nothing to publish is reported and succeeds.
func (p *Publisher) Publish(ctx context.Context, channel string, scope domain.Selection) error {
	ch, ok := p.cfg.Channel(channel)
	if !ok {
		return domain.NewPublishError(channel, "", domain.Annotate(domain.ErrUnknownChannel, "channel", channel))
	}

	proceed, err := p.authenticate(ctx, ch)
	if err != nil {
		return domain.NewPublishError(ch.Name, "", err)
	}
	if !proceed {
		p.logger.Info("release aborted")
		return nil
	}

	candidates := p.candidates(ch.Name, scope)
	if len(candidates) == 0 {
		p.logger.Info(fmt.Sprintf("nothing to publish: every package is released to channel %s", ch.Name))
		return nil
	}

	names := make([]string, len(candidates))
	for i, pkg := range candidates {
		names[i] = pkg.Name
	}
	p.tracer.EmitPlan(ctx, names, map[string][]string{})

	for _, pkg := range candidates {
		if err := p.publishOne(ctx, ch, pkg); err != nil {
			return domain.NewPublishError(ch.Name, pkg.Name, err)
		}
	}
	return nil
}

func (p *Publisher) candidates(channel string, scope domain.Selection) []*domain.Package {
	var out []*domain.Package
	for _, pkg := range p.ws.Packages {
		if pkg.ReleaseCandidate(channel) && scope.Contains(pkg.Name) {
			out = append(out, pkg)
		}
	}
	return out
}

func (p *Publisher) publishOne(ctx context.Context, ch domain.ReleaseChannel, pkg *domain.Package) (err error) {
	ctx, span := p.tracer.Start(ctx, pkg.Name+":publish", ports.WithPackage(pkg.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	version := pkg.CommittedVersion.String()
	span.SetAttribute("crate.channel", ch.Name)
	span.SetAttribute("crate.version", version)

	if err := p.registry.Publish(ctx, ch, pkg.OutDir, span); err != nil {
		return err
	}

	if pkg.ReleaseState == nil {
		pkg.ReleaseState = make(map[string]string)
	}
	pkg.ReleaseState[ch.Name] = version
	if err := p.versions.Save(pkg.Dir, pkg.Record()); err != nil {
		return err
	}

	p.logger.Info(fmt.Sprintf("published %s@%s to %s", pkg.Name, version, ch.Name))
	return nil
}

// authenticate makes sure the registry session belongs to the channel principal.
// It reports false when the user declines to switch accounts.
func (p *Publisher) authenticate(ctx context.Context, ch domain.ReleaseChannel) (bool, error) {
	user, err := p.registry.Whoami(ctx, ch)
	if err != nil {
		return false, err
	}
	if user == ch.Principal {
		return true, nil
	}

	if user != "" {
		title := fmt.Sprintf("You are signed in as %s. Log out and log in as %s?", user, ch.Principal)
		yes, err := p.prompter.Confirm(ctx, title, false)
		if err != nil {
			return false, err
		}
		if !yes {
			return false, nil
		}
		if err := p.registry.Logout(ctx, ch); err != nil {
			return false, err
		}
	}

	return true, p.login(ctx, ch)
}

func (p *Publisher) login(ctx context.Context, ch domain.ReleaseChannel) error {
	creds, err := p.credentials(ctx, ch)
	if err != nil {
		return err
	}

	sess, err := p.registry.StartLogin(ctx, ch)
	if err != nil {
		return err
	}

	otp := func(ctx context.Context) (string, error) {
		return p.prompter.CollectSecret(ctx, "Enter one-time password:", validateCode)
	}
	proto := NewLoginProtocol(creds, otp, p.cfg.Release.TolerateUnknownLoginOutput, p.out)
	if err := proto.Run(ctx, sess); err != nil {
		return zerr.With(err, "user", ch.Principal)
	}
	return nil
}

// credentials are collected before the login starts so the dialogue never waits on the user
// except for a one-time password.
func (p *Publisher) credentials(ctx context.Context, ch domain.ReleaseChannel) (Credentials, error) {
	password, err := p.prompter.CollectSecret(ctx, fmt.Sprintf("Enter password for user %s:", ch.Principal), validatePassword)
	if err != nil {
		return Credentials{}, err
	}
	email, err := p.prompter.Input(ctx, fmt.Sprintf("Enter email for user %s:", ch.Principal), validateEmail)
	if err != nil {
		return Credentials{}, err
	}

	// Not every prompter runs the validators.
	if err := validatePassword(password); err != nil {
		return Credentials{}, err
	}
	if err := validateEmail(email); err != nil {
		return Credentials{}, zerr.With(err, "email", email)
	}
	return Credentials{Principal: ch.Principal, Password: password, Email: email}, nil
}

func validatePassword(s string) error {
	if len(strings.TrimSpace(s)) <= 3 {
		return errShortPassword
	}
	return nil
}

func validateEmail(s string) error {
	if !emailPattern.MatchString(s) {
		return errInvalidEmail
	}
	return nil
}

func validateCode(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmptyCode
	}
	return nil
}
