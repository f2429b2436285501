package release

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

// LoginState is the position of a login dialogue.
type LoginState int

const (
	AwaitingUsername LoginState = iota
	AwaitingPassword
	AwaitingEmail
	AwaitingOTP
	AwaitingResult
	LoggedIn
)

func (s LoginState) String() string {
	switch s {
	case AwaitingUsername:
		return "awaiting-username"
	case AwaitingPassword:
		return "awaiting-password"
	case AwaitingEmail:
		return "awaiting-email"
	case AwaitingOTP:
		return "awaiting-otp"
	case AwaitingResult:
		return "awaiting-result"
	case LoggedIn:
		return "logged-in"
	default:
		return fmt.Sprintf("LoginState(%d)", int(s))
	}
}

const (
	usernamePrompt = "Username:"
	passwordPrompt = "Password:"
	emailPrefix    = "Email"
	otpMarker      = "Enter one-time password"
	otpNotice      = "one-time password"
	loggedInPrefix = "Logged in as"
)

// Credentials answer the login prompts.
type Credentials struct {
	Principal string
	Password  string
	Email     string
}

// LoginProtocol drives the line-oriented login dialogue of the registry client.
// Lines the dialogue does not expect are shown to the user. Once the credentials are
// sent, an unexpected line fails the login unless the protocol is tolerant.
// A known prompt arriving out of order always fails it.
type LoginProtocol struct {
	creds    Credentials
	otp      func(ctx context.Context) (string, error)
	tolerant bool
	out      io.Writer
	state    LoginState
}

// NewLoginProtocol creates a protocol in the awaiting-username state.
// otp is asked for a one-time password when the registry requests one.
func NewLoginProtocol(
	creds Credentials,
	otp func(ctx context.Context) (string, error),
	tolerant bool,
	out io.Writer,
) *LoginProtocol {
	return &LoginProtocol{creds: creds, otp: otp, tolerant: tolerant, out: out}
}

// State returns the current state.
func (p *LoginProtocol) State() LoginState {
	return p.state
}

// Feed handles one line of client output and returns the answer to send, if any.
func (p *LoginProtocol) Feed(ctx context.Context, line string) (answer string, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}

	switch {
	case strings.HasPrefix(line, loggedInPrefix):
		p.state = LoggedIn
		p.passThrough(line)
		return "", false, nil

	case line == usernamePrompt:
		if p.state != AwaitingUsername {
			return "", false, p.unexpected(line)
		}
		p.state = AwaitingPassword
		return p.creds.Principal, true, nil

	case line == passwordPrompt:
		if p.state != AwaitingPassword {
			return "", false, p.unexpected(line)
		}
		p.state = AwaitingEmail
		return p.creds.Password, true, nil

	case strings.HasPrefix(line, emailPrefix):
		if p.state != AwaitingEmail {
			return "", false, p.unexpected(line)
		}
		p.state = AwaitingResult
		return p.creds.Email, true, nil

	case strings.Contains(line, otpMarker):
		if p.state != AwaitingEmail && p.state != AwaitingResult {
			return "", false, p.unexpected(line)
		}
		p.state = AwaitingOTP
		code, err := p.otp(ctx)
		if err != nil {
			return "", false, zerr.With(domain.WrapCause(domain.ErrLoginFailed, err), "state", p.state.String())
		}
		p.state = AwaitingResult
		return code, true, nil

	// The registry announces the one-time password before asking for it.
	case strings.Contains(strings.ToLower(line), otpNotice):
		p.passThrough(line)
		return "", false, nil
	}

	if p.state == AwaitingResult && !p.tolerant {
		return "", false, p.unexpected(line)
	}
	p.passThrough(line)
	return "", false, nil
}

// isPrompt reports whether text is a prompt the client prints without a trailing newline.
func isPrompt(text string) bool {
	text = strings.TrimSpace(text)
	return text == usernamePrompt ||
		text == passwordPrompt ||
		strings.HasPrefix(text, emailPrefix) ||
		strings.Contains(text, otpMarker)
}

func (p *LoginProtocol) passThrough(line string) {
	if p.out != nil {
		_, _ = fmt.Fprintln(p.out, line)
	}
}

func (p *LoginProtocol) unexpected(line string) error {
	return zerr.With(domain.Annotate(domain.ErrLoginProtocol, "state", p.state.String()), "output", line)
}

// Run drives the session until it completes. The login resolves exactly once, with the
// first of: a protocol failure, the subprocess exit or the end of ctx.
func (p *LoginProtocol) Run(ctx context.Context, sess ports.LoginSession) error {
	defer func() { _ = sess.Close() }()

	result := make(chan error, 1)
	var once sync.Once
	finish := func(err error) {
		once.Do(func() { result <- err })
	}

	go func() {
		if err := p.read(ctx, sess); err != nil {
			finish(err)
		}
	}()

	go func() {
		if err := sess.Wait(); err != nil {
			finish(domain.WrapCause(domain.ErrLoginFailed, err))
			return
		}
		finish(nil)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		finish(ctx.Err())
		return <-result
	}
}

// read splits the session output into lines and answers prompts.
// Prompts are recognized before their line is terminated.
func (p *LoginProtocol) read(ctx context.Context, sess ports.LoginSession) error {
	var pending bytes.Buffer
	buf := make([]byte, 4096)

	for {
		n, readErr := sess.Read(buf)
		pending.Write(bytes.ReplaceAll(buf[:n], []byte("\r"), nil))

		for {
			line, err := pending.ReadString('\n')
			if err != nil {
				// Partial line: keep it unless it is a prompt waiting for input.
				if isPrompt(line) {
					if err := p.answer(ctx, sess, line); err != nil {
						return err
					}
				} else {
					pending.WriteString(line)
				}
				break
			}
			if err := p.answer(ctx, sess, line); err != nil {
				return err
			}
		}

		if readErr != nil {
			if rest := pending.String(); rest != "" {
				return p.answer(ctx, sess, rest)
			}
			// The subprocess exit decides the outcome.
			return nil
		}
	}
}

func (p *LoginProtocol) answer(ctx context.Context, sess ports.LoginSession, line string) error {
	reply, ok, err := p.Feed(ctx, line)
	if err != nil || !ok {
		return err
	}
	if _, err := io.WriteString(sess, reply+"\n"); err != nil {
		return zerr.With(domain.WrapCause(domain.ErrLoginFailed, err), "state", p.state.String())
	}
	return nil
}
