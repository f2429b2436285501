package release_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/engine/release"
)

// step is one chunk of client output, optionally followed by a wait for an answer.
type step struct {
	out   string
	reply bool
}

// scriptedSession plays a login dialogue. Wait returns once the output was read to the
// end or the session was closed.
type scriptedSession struct {
	r       *io.PipeReader
	answers chan string
	exit    error

	eof       chan struct{}
	closed    chan struct{}
	eofOnce   sync.Once
	closeOnce sync.Once

	mu       sync.Mutex
	received []string
}

func newSession(exit error, steps ...step) *scriptedSession {
	r, w := io.Pipe()
	s := &scriptedSession{
		r:       r,
		answers: make(chan string, 8),
		exit:    exit,
		eof:     make(chan struct{}),
		closed:  make(chan struct{}),
	}
	go func() {
		defer func() { _ = w.Close() }()
		for _, st := range steps {
			if _, err := io.WriteString(w, st.out); err != nil {
				return
			}
			if !st.reply {
				continue
			}
			select {
			case a := <-s.answers:
				s.mu.Lock()
				s.received = append(s.received, a)
				s.mu.Unlock()
			case <-s.closed:
				return
			}
		}
	}()
	return s
}

func (s *scriptedSession) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil {
		s.eofOnce.Do(func() { close(s.eof) })
	}
	return n, err
}

func (s *scriptedSession) Write(p []byte) (int, error) {
	s.answers <- strings.TrimSuffix(string(p), "\n")
	return len(p), nil
}

func (s *scriptedSession) Wait() error {
	select {
	case <-s.eof:
	case <-s.closed:
	}
	return s.exit
}

func (s *scriptedSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.r.Close()
	})
	return nil
}

func (s *scriptedSession) answersReceived() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

var creds = release.Credentials{Principal: "bot", Password: "s3cret", Email: "bot@example.com"}

func noOTP(context.Context) (string, error) {
	return "", errors.New("no one-time password expected")
}

func TestLoginProtocol_Run(t *testing.T) {
	var out bytes.Buffer
	sess := newSession(nil,
		step{out: "npm notice Log in on https://registry.npmjs.org/\r\nUsername: ", reply: true},
		step{out: "\r\nPassword: ", reply: true},
		step{out: "\r\nEmail: (this IS public) ", reply: true},
		step{out: "\r\nLogged in as bot on https://registry.npmjs.org/.\r\n"},
	)

	proto := release.NewLoginProtocol(creds, noOTP, false, &out)
	require.NoError(t, proto.Run(context.Background(), sess))

	assert.Equal(t, []string{"bot", "s3cret", "bot@example.com"}, sess.answersReceived())
	assert.Equal(t, release.LoggedIn, proto.State())
	assert.Equal(t,
		"npm notice Log in on https://registry.npmjs.org/\nLogged in as bot on https://registry.npmjs.org/.\n",
		out.String())
}

func TestLoginProtocol_RunAsksForOneTimePassword(t *testing.T) {
	sess := newSession(nil,
		step{out: "Username:\n", reply: true},
		step{out: "Password:\n", reply: true},
		step{out: "Email: (this IS public)\n", reply: true},
		step{out: "npm notice Please check your email for a one-time password (OTP)\nEnter one-time password: ", reply: true},
		step{out: "\nLogged in as bot.\n"},
	)

	asked := 0
	otp := func(context.Context) (string, error) {
		asked++
		return "123456", nil
	}

	var out strings.Builder
	proto := release.NewLoginProtocol(creds, otp, false, &out)
	require.NoError(t, proto.Run(context.Background(), sess))

	assert.Equal(t, 1, asked)
	assert.Equal(t, []string{"bot", "s3cret", "bot@example.com", "123456"}, sess.answersReceived())
	assert.Contains(t, out.String(), "npm notice Please check your email for a one-time password (OTP)")
	assert.Equal(t, release.LoggedIn, proto.State())
}

func TestLoginProtocol_FeedOneTimePasswordNotice(t *testing.T) {
	proto := release.NewLoginProtocol(creds, noOTP, false, io.Discard)
	for _, line := range []string{"Username:", "Password:", "Email: (this IS public)"} {
		_, _, err := proto.Feed(context.Background(), line)
		require.NoError(t, err)
	}

	answer, ok, err := proto.Feed(context.Background(), "npm notice Please check your email for a one-time password (OTP)")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, answer)
	assert.Equal(t, release.AwaitingResult, proto.State())
}

func TestLoginProtocol_RunUnexpectedOutput(t *testing.T) {
	script := func() *scriptedSession {
		return newSession(nil,
			step{out: "Username:\n", reply: true},
			step{out: "Password:\n", reply: true},
			step{out: "Email:\n", reply: true},
			step{out: "npm WARN config something changed\n"},
			step{out: "Logged in as bot.\n"},
		)
	}

	t.Run("strict", func(t *testing.T) {
		proto := release.NewLoginProtocol(creds, noOTP, false, io.Discard)
		err := proto.Run(context.Background(), script())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLoginProtocol)
		assert.ErrorIs(t, err, domain.ErrPublish)
		assert.Equal(t, release.AwaitingResult, proto.State())
	})

	t.Run("tolerant", func(t *testing.T) {
		var out bytes.Buffer
		proto := release.NewLoginProtocol(creds, noOTP, true, &out)
		require.NoError(t, proto.Run(context.Background(), script()))
		assert.Contains(t, out.String(), "npm WARN config something changed")
	})
}

func TestLoginProtocol_RunExitFailure(t *testing.T) {
	sess := newSession(errors.New("exit status 1"),
		step{out: "Username:\n", reply: true},
		step{out: "Password:\n", reply: true},
		step{out: "Email:\n", reply: true},
	)

	proto := release.NewLoginProtocol(creds, noOTP, false, io.Discard)
	err := proto.Run(context.Background(), sess)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoginFailed)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestLoginProtocol_RunCanceled(t *testing.T) {
	// The client never answers after the username, so only the context ends the login.
	sess := newSession(nil,
		step{out: "Username:\n", reply: true},
		step{out: "npm notice waiting\n", reply: true},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proto := release.NewLoginProtocol(creds, noOTP, false, io.Discard)
	err := proto.Run(ctx, sess)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoginProtocol_Feed(t *testing.T) {
	tests := []struct {
		name      string
		tolerant  bool
		lines     []string
		answers   []string
		wantState release.LoginState
		wantErr   error
	}{
		{
			name:      "full dialogue",
			lines:     []string{"Username:", "Password:", "Email: (this IS public)", "Logged in as bot."},
			answers:   []string{"bot", "s3cret", "bot@example.com"},
			wantState: release.LoggedIn,
		},
		{
			name:      "notices before the prompts pass through",
			lines:     []string{"npm notice hello", "Username:", "npm notice still here"},
			answers:   []string{"bot"},
			wantState: release.AwaitingPassword,
		},
		{
			name:      "prompt out of order",
			lines:     []string{"Password:"},
			wantState: release.AwaitingUsername,
			wantErr:   domain.ErrLoginProtocol,
		},
		{
			name:      "repeated username prompt",
			tolerant:  true,
			lines:     []string{"Username:", "Password:", "Username:"},
			answers:   []string{"bot", "s3cret"},
			wantState: release.AwaitingEmail,
			wantErr:   domain.ErrLoginProtocol,
		},
		{
			name:      "unknown line after credentials",
			lines:     []string{"Username:", "Password:", "Email:", "npm ERR! code E401"},
			answers:   []string{"bot", "s3cret", "bot@example.com"},
			wantState: release.AwaitingResult,
			wantErr:   domain.ErrLoginProtocol,
		},
		{
			name:      "blank lines are ignored",
			lines:     []string{"", "  ", "Username:"},
			answers:   []string{"bot"},
			wantState: release.AwaitingPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto := release.NewLoginProtocol(creds, noOTP, tt.tolerant, io.Discard)

			var answers []string
			var err error
			for _, line := range tt.lines {
				var answer string
				var ok bool
				answer, ok, err = proto.Feed(context.Background(), line)
				if err != nil {
					break
				}
				if ok {
					answers = append(answers, answer)
				}
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.answers, answers)
			assert.Equal(t, tt.wantState, proto.State())
		})
	}
}

func TestLoginProtocol_FeedOneTimePasswordFailure(t *testing.T) {
	otp := func(context.Context) (string, error) { return "", domain.ErrPromptCanceled }
	proto := release.NewLoginProtocol(creds, otp, false, io.Discard)

	for _, line := range []string{"Username:", "Password:", "Email:"} {
		_, _, err := proto.Feed(context.Background(), line)
		require.NoError(t, err)
	}
	_, _, err := proto.Feed(context.Background(), "Enter one-time password:")
	assert.ErrorIs(t, err, domain.ErrLoginFailed)
	assert.ErrorIs(t, err, domain.ErrPromptCanceled)
	assert.Equal(t, release.AwaitingOTP, proto.State())
}

func TestLoginState_String(t *testing.T) {
	assert.Equal(t, "awaiting-username", release.AwaitingUsername.String())
	assert.Equal(t, "awaiting-otp", release.AwaitingOTP.String())
	assert.Equal(t, "LoginState(42)", release.LoginState(42).String())
}
